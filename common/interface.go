package common

import (
	"context"
	"errors"
	"net/http"
)

// ErrResponseTooLarge is returned by a Sender when a response body exceeds its size limit.
// The server did answer, so it is never retried.
var ErrResponseTooLarge = errors.New("response body too large")

// Executor performs one logical EC3 API operation with credential resolution
// and bounded retry.
// Retried conditions: network errors, http-429
// Terminal conditions: any other non-2xx status, missing credentials, context.Canceled|context.DeadlineExceeded
type Executor interface {
	// Execute returns an Outcome on 200/201/204, otherwise a *Failure error
	Execute(ctx context.Context, request Request) (*Outcome, error)
}

// Sender is the transport capability every decorator implements
type Sender interface {
	// Send dispatches exactly one http request. A non-nil error means no usable response
	// was received: a transport failure, or ErrResponseTooLarge.
	Send(ctx context.Context, method Method, url string, headers http.Header, body []byte) (*Response, error)
}

// Response is a fully read http response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
