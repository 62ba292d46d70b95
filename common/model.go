package common

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Request describes one logical call. It is never modified by the executor.
type Request struct {
	URL    string
	Method Method
	// Body is sent for POST, PATCH and PUT only. []byte and json.RawMessage
	// are sent verbatim, anything else is marshalled to JSON once per call.
	Body any
	// CredentialOverride names the configuration entry holding the token,
	// bypassing host based resolution.
	CredentialOverride string
}

type OutcomeKind uint8

const (
	// Success carries the parsed response body (200, 201)
	Success OutcomeKind = iota + 1
	// SuccessWithStatus carries only the status code (204)
	SuccessWithStatus
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case SuccessWithStatus:
		return "success_with_status"
	default:
		return "unknown"
	}
}

// Outcome is the normalized successful result of an Executor call.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	// Body is the raw JSON payload, nil when the response had no content
	Body json.RawMessage
	// Value is Body decoded into generic JSON values; numbers are json.Number
	Value    any
	Attempts int
}

var ErrEmptyBody = errors.New("outcome has no body")

// Empty reports whether the outcome carries no body.
func (o *Outcome) Empty() bool {
	return o == nil || len(o.Body) == 0
}

// Decode unmarshals the body into v.
func (o *Outcome) Decode(v any) error {
	if o.Empty() {
		return ErrEmptyBody
	}
	return json.Unmarshal(o.Body, v)
}

// ParseJSON decodes a response body into generic JSON values, keeping numbers exact.
// Whitespace-only bodies decode to nil.
func ParseJSON(body []byte) (any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, errors.New("unexpected data after top-level json value")
	}
	return value, nil
}
