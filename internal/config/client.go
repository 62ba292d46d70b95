package config

import (
	"github.com/RassulYunussov/ec3client"
	"github.com/rs/zerolog"
)

// CredentialSource reads the process environment first, then configured tokens.
// The environment is snapshotted when this is called.
func (c *Config) CredentialSource() ec3client.CredentialSource {
	return ec3client.ChainSource{
		ec3client.NewEnvSource(),
		ec3client.MapSource(c.Credentials.Tokens),
	}
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions(logger zerolog.Logger) []ec3client.Option {
	opts := []ec3client.Option{
		ec3client.WithRetry(c.Retry.MaxAttempts, c.Retry.WaitUnit),
		ec3client.WithRateLimitWait(c.Retry.RateLimitWait),
		ec3client.WithRetryBudget(c.Retry.MaxTotalWait),
		ec3client.WithCredentials(c.CredentialSource(), c.Credentials.PrimaryName, c.Credentials.DefaultHost),
		ec3client.WithLogger(logger),
		ec3client.WithMaxResponseSize(c.HTTP.MaxResponseSize),
	}
	if c.CircuitBreaker.Enabled {
		opts = append(opts, ec3client.WithCircuitBreaker(
			c.CircuitBreaker.MaxRequests,
			c.CircuitBreaker.ConsecutiveFailures,
			c.CircuitBreaker.Interval,
			c.CircuitBreaker.Timeout,
		))
	}
	if c.RateLimit.Enabled {
		opts = append(opts, ec3client.WithRateLimit(c.RateLimit.RequestsPerSecond, c.RateLimit.Burst))
	}
	return opts
}

// NewClient builds a client from the configuration, extra options are applied last.
func (c *Config) NewClient(logger zerolog.Logger, extra ...ec3client.Option) ec3client.Client {
	return ec3client.Create(c.HTTP.Timeout, append(c.ClientOptions(logger), extra...)...)
}
