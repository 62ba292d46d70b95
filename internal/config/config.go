package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix marks variables that override configuration keys.
	// A double underscore separates sections: EC3CLIENT_RETRY__MAX_ATTEMPTS.
	EnvPrefix = "EC3CLIENT_"
	// BaseURLEnv is honored for compatibility with existing .env files
	BaseURLEnv = "EC3_BASE_URL"

	DefaultConfigFile = "ec3client.yaml"
	DefaultEnvFile    = ".env"
)

type loadOptions struct {
	configFile         string
	envFile            string
	configFileRequired bool
	envFileRequired    bool
}

type Option func(*loadOptions)

// WithConfigFile makes the YAML file at path mandatory
func WithConfigFile(path string) Option {
	return func(o *loadOptions) {
		o.configFile = path
		o.configFileRequired = true
	}
}

// WithEnvFile makes the dotenv file at path mandatory
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
		o.envFileRequired = true
	}
}

// Load reads configuration with priority:
// 1. EC3CLIENT_* environment variables (highest priority)
// 2. YAML configuration file
// 3. Default values (lowest priority)
//
// A dotenv file is loaded into the process environment first; variables
// already set are not overwritten.
func Load(opts ...Option) (*Config, error) {
	o := loadOptions{configFile: DefaultConfigFile, envFile: DefaultEnvFile}
	for _, opt := range opts {
		opt(&o)
	}

	if err := godotenv.Load(o.envFile); err != nil {
		if o.envFileRequired || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", o.envFile, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(file.Provider(o.configFile), yaml.Parser()); err != nil {
		if o.configFileRequired || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", o.configFile, err)
		}
	}

	if baseURL := os.Getenv(BaseURLEnv); baseURL != "" {
		if err := k.Set("api.base_url", baseURL); err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", BaseURLEnv, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func defaults() map[string]any {
	return map[string]any{
		"api.base_url": "https://buildingtransparency.org/api",

		"http.timeout":           "30s",
		"http.max_response_size": 10 << 20,

		"retry.max_attempts":    5,
		"retry.wait_unit":       "1s",
		"retry.rate_limit_wait": 60,
		"retry.max_total_wait":  "15m",

		"credentials.primary_name": "EC3_API_KEY",
		"credentials.default_host": "buildingtransparency.org",

		"circuit_breaker.enabled":              false,
		"circuit_breaker.max_requests":         1,
		"circuit_breaker.consecutive_failures": 5,
		"circuit_breaker.interval":             "0s",
		"circuit_breaker.timeout":              "60s",

		"rate_limit.enabled":             false,
		"rate_limit.requests_per_second": 2,
		"rate_limit.burst":               1,

		"batch.workers": 1,
		"batch.pause":   "1s",

		"log.level":  "info",
		"log.pretty": false,
	}
}

var validate = validator.New()

// Validate checks struct constraints and reports every failing field.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(fields, "; "))
		}
		return err
	}
	return nil
}
