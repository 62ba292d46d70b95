package cb

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/RassulYunussov/ec3client/common"
	internal_common "github.com/RassulYunussov/ec3client/internal/common"
	"github.com/sony/gobreaker/v2"
)

// circuitBreakerBackedHttpClient keeps one breaker per method and host.
// Network errors and http-5xx count as failures, http-429 does not.
type circuitBreakerBackedHttpClient struct {
	client              common.Sender
	maxRequests         uint32
	consecutiveFailures uint32
	interval            time.Duration
	timeout             time.Duration
	circuitBreakers     sync.Map
}

func CreateCircuitBreakerHttpClient(client common.Sender, circuitBreakerParameters *CircuitBreakerParameters) common.Sender {
	return &circuitBreakerBackedHttpClient{
		maxRequests:         circuitBreakerParameters.MaxRequests,
		consecutiveFailures: circuitBreakerParameters.ConsecutiveFailures,
		interval:            circuitBreakerParameters.Interval,
		timeout:             circuitBreakerParameters.Timeout,
		client:              client,
	}
}

// IsRejection reports whether err means the breaker refused to send the request
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (c *circuitBreakerBackedHttpClient) Send(ctx context.Context, method common.Method, url string, headers http.Header, body []byte) (*common.Response, error) {
	cb := c.getCircuitBreaker(internal_common.Resource(method, url))
	resp, err := cb.execute(func() (*common.Response, error) {
		return c.do(ctx, method, url, headers, body)
	})
	var e *circuitBreakerErrorWrapper[*common.Response]
	if errors.As(err, &e) {
		return e.wrapped, nil
	}
	return resp, err
}

func (c *circuitBreakerBackedHttpClient) getCircuitBreaker(resource string) *circuitBreaker[common.Response] {
	if cb, ok := c.circuitBreakers.Load(resource); ok {
		return cb.(*circuitBreaker[common.Response])
	}
	cb, _ := c.circuitBreakers.LoadOrStore(resource, newCircuitBreaker[common.Response](c.maxRequests, c.interval, c.timeout, c.consecutiveFailures, resource))
	return cb.(*circuitBreaker[common.Response])
}

func (c *circuitBreakerBackedHttpClient) do(ctx context.Context, method common.Method, url string, headers http.Header, body []byte) (*common.Response, error) {
	resp, err := c.client.Send(ctx, method, url, headers, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusInternalServerError {
		return resp, nil
	}
	return nil, &circuitBreakerErrorWrapper[*common.Response]{
		wrapped: resp,
	}
}
