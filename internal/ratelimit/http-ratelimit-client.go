package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RassulYunussov/ec3client/common"
	"golang.org/x/time/rate"
)

type RateLimitParameters struct {
	RequestsPerSecond float64
	Burst             int
}

// rateLimitedHttpClient paces outgoing requests with a token bucket so a
// batch run stays under the server quota instead of bouncing off http-429
type rateLimitedHttpClient struct {
	client  common.Sender
	limiter *rate.Limiter
}

func CreateRateLimitedHttpClient(client common.Sender, parameters *RateLimitParameters) common.Sender {
	burst := parameters.Burst
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedHttpClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(parameters.RequestsPerSecond), burst),
	}
}

func (c *rateLimitedHttpClient) Send(ctx context.Context, method common.Method, url string, headers http.Header, body []byte) (*common.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, ok := ctx.Deadline(); ok {
			return nil, fmt.Errorf("rate limit wait: %w", context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return c.client.Send(ctx, method, url, headers, body)
}
