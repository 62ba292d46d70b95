package credentials

import (
	"os"
	"strings"
)

// Source is a read-only mapping from credential name to bearer token.
type Source interface {
	Lookup(name string) (string, bool)
}

// MapSource serves tokens from a fixed map.
type MapSource map[string]string

func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// EnvSource is a snapshot of the process environment taken when it is created.
// Later changes to the environment are not observed.
type EnvSource struct {
	values map[string]string
}

func NewEnvSource() *EnvSource {
	return newEnvSource(os.Environ())
}

func newEnvSource(environ []string) *EnvSource {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			values[k] = v
		}
	}
	return &EnvSource{values: values}
}

func (e *EnvSource) Lookup(name string) (string, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Chain returns the first non-empty value found in its sources.
type Chain []Source

func (c Chain) Lookup(name string) (string, bool) {
	for _, s := range c {
		if v, ok := s.Lookup(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
