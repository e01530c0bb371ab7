package server

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the API server settings, read from PEOPLEDESK_* variables.
type Config struct {
	Addr           string        `envconfig:"ADDR" default:":8080"`
	DB             string        `envconfig:"DB" default:"peopledesk.db"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	// RedisAddr enables the response cache when set.
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit int `envconfig:"RATE_LIMIT" default:"300"`

	// Token, when set, is required as a bearer token on /api routes.
	Token string `envconfig:"TOKEN"`

	Seed bool `envconfig:"SEED" default:"false"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	Env       string `envconfig:"ENV" default:"development"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("peopledesk", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction returns true when the server runs in production.
func (c Config) IsProduction() bool { return c.Env == "production" }
