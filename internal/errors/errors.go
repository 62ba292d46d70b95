package errors

import (
	"errors"
	"fmt"
)

// Kind classifies why an executor call did not produce an Outcome.
type Kind uint8

const (
	// ConfigurationError: the credential for the request is missing. Never retried.
	ConfigurationError Kind = iota + 1
	// TransientNetworkError: connection failure, timeout or open circuit. Retried with exponential backoff.
	TransientNetworkError
	// RateLimited: http-429. Retried after the server advertised wait.
	RateLimited
	// ClientOrServerError: any other non-2xx status. Never retried.
	ClientOrServerError
	// RetriesExhausted: attempts or wait budget used up on retryable conditions.
	RetriesExhausted
	// Canceled: the caller's context ended.
	Canceled
	// MalformedResponse: a 200/201 body that is not JSON.
	MalformedResponse
	// InvalidRequest: the request could not be built.
	InvalidRequest
)

var kindNames = map[Kind]string{
	ConfigurationError:    "configuration_error",
	TransientNetworkError: "transient_network_error",
	RateLimited:           "rate_limited",
	ClientOrServerError:   "client_or_server_error",
	RetriesExhausted:      "retries_exhausted",
	Canceled:              "canceled",
	MalformedResponse:     "malformed_response",
	InvalidRequest:        "invalid_request",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Retryable reports whether the executor retries failures of this kind.
func (k Kind) Retryable() bool {
	return k == TransientNetworkError || k == RateLimited
}

// Failure is the error returned by the executor for every expected
// network or http condition.
type Failure struct {
	Kind       Kind
	StatusCode int
	Body       []byte
	Message    string
	Attempts   int
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode > 0 {
		return fmt.Sprintf("ec3client: %s (http %d): %s", f.Kind, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("ec3client: %s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches another *Failure by kind, so sentinel values such as
// ErrRetriesExhausted work with errors.Is.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind && t.StatusCode == 0 && t.Message == ""
}

var (
	ErrConfiguration    = &Failure{Kind: ConfigurationError}
	ErrTransientNetwork = &Failure{Kind: TransientNetworkError}
	ErrRateLimited      = &Failure{Kind: RateLimited}
	ErrClientOrServer   = &Failure{Kind: ClientOrServerError}
	ErrRetriesExhausted = &Failure{Kind: RetriesExhausted}
	ErrCanceled         = &Failure{Kind: Canceled}
	ErrMalformed        = &Failure{Kind: MalformedResponse}
	ErrInvalidRequest   = &Failure{Kind: InvalidRequest}
)

func New(kind Kind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

func Newf(kind Kind, err error, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// StatusFailure builds a ClientOrServerError or RateLimited failure from a response.
func StatusFailure(kind Kind, statusCode int, body []byte) *Failure {
	return &Failure{
		Kind:       kind,
		StatusCode: statusCode,
		Body:       body,
		Message:    fmt.Sprintf("received status code %d", statusCode),
	}
}

// KindOf returns the Kind of the first *Failure in err's chain, or 0.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}
