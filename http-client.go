package ec3client

import (
	"net/http"
	"time"

	"github.com/RassulYunussov/ec3client/common"
	"github.com/RassulYunussov/ec3client/internal/cb"
	"github.com/RassulYunussov/ec3client/internal/credentials"
	"github.com/RassulYunussov/ec3client/internal/noop"
	"github.com/RassulYunussov/ec3client/internal/ratelimit"
	"github.com/RassulYunussov/ec3client/internal/resilient"
	"github.com/rs/zerolog"
)

type Option func(*clientCreationParameters) *clientCreationParameters

// Get new instance of Client.
// Without options it retries up to 5 attempts, waits in seconds and resolves
// credentials from the process environment as read at creation time.
func Create(timeout time.Duration, opts ...Option) Client {
	parameters := new(clientCreationParameters)
	for _, o := range opts {
		parameters = o(parameters)
	}

	sender := parameters.sender
	if sender == nil {
		if parameters.httpClient != nil {
			sender = noop.CreateNoOpHttpClientWith(parameters.httpClient, parameters.maxResponseSize)
		} else {
			sender = noop.CreateNoOpHttpClient(timeout, parameters.maxResponseSize)
		}
	}
	if parameters.circuitBreakerParameters != nil {
		sender = cb.CreateCircuitBreakerHttpClient(sender, parameters.circuitBreakerParameters)
	}
	if parameters.rateLimitParameters != nil {
		sender = ratelimit.CreateRateLimitedHttpClient(sender, parameters.rateLimitParameters)
	}

	resolver := parameters.resolver
	if resolver == nil {
		resolver = credentials.NewResolver(credentials.NewEnvSource(), credentials.DefaultPrimaryName, credentials.DefaultHost)
	}
	logger := zerolog.Nop()
	if parameters.logger != nil {
		logger = *parameters.logger
	}

	executor := resilient.CreateResilientHttpClient(sender, resolver, &resilient.ExecutorParameters{
		Retry:        parameters.retry(),
		Sleeper:      parameters.sleeper,
		Logger:       logger,
		NewRequestID: parameters.newRequestID,
	})
	return &client{executor: executor}
}

// Apply retry policy: at most maxAttempts attempts, waits measured in unit
func WithRetry(maxAttempts int, unit time.Duration) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		retry := p.retry()
		retry.MaxAttempts = maxAttempts
		retry.WaitUnit = unit
		return p
	}
}

// Units to wait after an http-429 that does not advertise its own wait
func WithRateLimitWait(units int) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.retry().RateLimitWaitUnits = units
		return p
	}
}

// Upper bound for the summed waits of one call, zero disables it
func WithRetryBudget(maxTotalWait time.Duration) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.retry().MaxTotalWait = maxTotalWait
		return p
	}
}

// Apply circuit breaker policy per method and host.
// https://github.com/sony/gobreaker
func WithCircuitBreaker(maxRequests uint32,
	consecutiveFailures uint32,
	interval time.Duration,
	timeout time.Duration) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		circuitBreakerParameters := new(cb.CircuitBreakerParameters)
		circuitBreakerParameters.MaxRequests = maxRequests
		circuitBreakerParameters.ConsecutiveFailures = consecutiveFailures
		circuitBreakerParameters.Interval = interval
		circuitBreakerParameters.Timeout = timeout
		p.circuitBreakerParameters = circuitBreakerParameters
		return p
	}
}

// Pace requests with a token bucket shared by every call of the client
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.rateLimitParameters = &ratelimit.RateLimitParameters{RequestsPerSecond: requestsPerSecond, Burst: burst}
		return p
	}
}

// Resolve tokens from source, naming them after primaryName and defaultHost
func WithCredentials(source credentials.Source, primaryName, defaultHost string) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.resolver = credentials.NewResolver(source, primaryName, defaultHost)
		return p
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.logger = &logger
		return p
	}
}

// Replace the real timer used between attempts
func WithSleeper(sleeper resilient.Sleeper) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.sleeper = sleeper
		return p
	}
}

// Replace the net/http transport. Circuit breaker and rate limit still wrap it.
func WithSender(sender common.Sender) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.sender = sender
		return p
	}
}

// Use a preconfigured *http.Client, the timeout passed to Create is ignored
func WithHttpClient(httpClient *http.Client) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.httpClient = httpClient
		return p
	}
}

// Largest response body read, in bytes. Larger responses fail with
// MalformedResponse wrapping common.ErrResponseTooLarge. Ignored with WithSender.
func WithMaxResponseSize(maxResponseSize int64) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.maxResponseSize = maxResponseSize
		return p
	}
}

func WithRequestID(newRequestID func() string) Option {
	return func(p *clientCreationParameters) *clientCreationParameters {
		p.newRequestID = newRequestID
		return p
	}
}
