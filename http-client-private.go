package ec3client

import (
	"net/http"

	"github.com/RassulYunussov/ec3client/common"
	"github.com/RassulYunussov/ec3client/internal/cb"
	"github.com/RassulYunussov/ec3client/internal/credentials"
	"github.com/RassulYunussov/ec3client/internal/ratelimit"
	"github.com/RassulYunussov/ec3client/internal/resilient"
	"github.com/rs/zerolog"
)

type clientCreationParameters struct {
	retryParameters          *resilient.RetryParameters
	circuitBreakerParameters *cb.CircuitBreakerParameters
	rateLimitParameters      *ratelimit.RateLimitParameters
	resolver                 *credentials.Resolver
	logger                   *zerolog.Logger
	sleeper                  resilient.Sleeper
	sender                   common.Sender
	httpClient               *http.Client
	maxResponseSize          int64
	newRequestID             func() string
}

func (p *clientCreationParameters) retry() *resilient.RetryParameters {
	if p.retryParameters == nil {
		p.retryParameters = resilient.DefaultRetryParameters()
	}
	return p.retryParameters
}
