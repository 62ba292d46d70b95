package resilient

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxAttempts = 5
	DefaultWaitUnit    = time.Second
	// DefaultRateLimitWaitUnits is used when a 429 does not advertise a wait
	DefaultRateLimitWaitUnits = 60
	DefaultMaxTotalWait       = 15 * time.Minute
)

type RetryParameters struct {
	MaxAttempts int
	// WaitUnit scales every computed wait: 2^attempt units for network
	// errors, N+1 units for an advertised rate limit
	WaitUnit           time.Duration
	RateLimitWaitUnits int
	// MaxTotalWait caps the summed waits of one call, zero disables the cap
	MaxTotalWait time.Duration
}

func DefaultRetryParameters() *RetryParameters {
	return &RetryParameters{
		MaxAttempts:        DefaultMaxAttempts,
		WaitUnit:           DefaultWaitUnit,
		RateLimitWaitUnits: DefaultRateLimitWaitUnits,
		MaxTotalWait:       DefaultMaxTotalWait,
	}
}

type ExecutorParameters struct {
	Retry        *RetryParameters
	Sleeper      Sleeper
	Logger       zerolog.Logger
	NewRequestID func() string
}
