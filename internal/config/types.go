package config

import "time"

// Config holds everything the client and its commands read at start-up.
// It is never modified after Load returns.
type Config struct {
	API            APIConfig            `koanf:"api" yaml:"api"`
	HTTP           HTTPConfig           `koanf:"http" yaml:"http"`
	Retry          RetryConfig          `koanf:"retry" yaml:"retry"`
	Credentials    CredentialsConfig    `koanf:"credentials" yaml:"credentials"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" yaml:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit" yaml:"rate_limit"`
	Batch          BatchConfig          `koanf:"batch" yaml:"batch"`
	Log            LogConfig            `koanf:"log" yaml:"log"`
}

type APIConfig struct {
	BaseURL string `koanf:"base_url" yaml:"base_url" validate:"required,url"`
}

type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout" yaml:"timeout" validate:"gt=0"`
	// MaxResponseSize in bytes, larger bodies fail the request
	MaxResponseSize int64 `koanf:"max_response_size" yaml:"max_response_size" validate:"gt=0"`
}

type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts" yaml:"max_attempts" validate:"gte=1,lte=100"`
	WaitUnit    time.Duration `koanf:"wait_unit" yaml:"wait_unit" validate:"gt=0"`
	// RateLimitWait is in wait units, used when a 429 carries no advertised wait
	RateLimitWait int `koanf:"rate_limit_wait" yaml:"rate_limit_wait" validate:"gte=1"`
	// MaxTotalWait of zero disables the ceiling
	MaxTotalWait time.Duration `koanf:"max_total_wait" yaml:"max_total_wait" validate:"gte=0"`
}

type CredentialsConfig struct {
	PrimaryName string `koanf:"primary_name" yaml:"primary_name" validate:"required"`
	DefaultHost string `koanf:"default_host" yaml:"default_host" validate:"required,hostname"`
	// Tokens are consulted after the environment
	Tokens map[string]string `koanf:"tokens" yaml:"tokens"`
}

type CircuitBreakerConfig struct {
	Enabled             bool          `koanf:"enabled" yaml:"enabled"`
	MaxRequests         uint32        `koanf:"max_requests" yaml:"max_requests" validate:"required_if=Enabled true"`
	ConsecutiveFailures uint32        `koanf:"consecutive_failures" yaml:"consecutive_failures" validate:"required_if=Enabled true"`
	Interval            time.Duration `koanf:"interval" yaml:"interval" validate:"gte=0"`
	Timeout             time.Duration `koanf:"timeout" yaml:"timeout" validate:"gte=0"`
}

type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second" yaml:"requests_per_second" validate:"required_if=Enabled true,gte=0"`
	Burst             int     `koanf:"burst" yaml:"burst" validate:"gte=0"`
}

type BatchConfig struct {
	Workers int `koanf:"workers" yaml:"workers" validate:"gte=1,lte=64"`
	// Pause is the upper bound of the random delay before each job
	Pause time.Duration `koanf:"pause" yaml:"pause" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" yaml:"pretty"`
}
