package common

import (
	"fmt"
	"strings"
)

// Method is the closed set of HTTP methods the EC3 API is called with.
type Method uint8

const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPatch
	MethodPut
	MethodDelete
)

var methodNames = map[Method]string{
	MethodGet:    "GET",
	MethodPost:   "POST",
	MethodPatch:  "PATCH",
	MethodPut:    "PUT",
	MethodDelete: "DELETE",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

// Valid reports whether m is one of the declared methods.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// AllowsBody reports whether a request body is sent for m. GET and DELETE never carry one.
func (m Method) AllowsBody() bool {
	return m == MethodPost || m == MethodPatch || m == MethodPut
}

// ParseMethod maps a case-insensitive method name to a Method.
func ParseMethod(s string) (Method, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for m, name := range methodNames {
		if name == upper {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unsupported http method %q", s)
}
