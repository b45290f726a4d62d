package session

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// DevSecret is the fallback signing secret for local development.
//
// Deployments must set TODO_APP_SESSION_SECRET; the server logs a warning
// when it falls back to this value.
const DevSecret = "your-super-secret-jwt-key-at-least-32-characters-long"

// DefaultTTL is the default session lifetime.
const DefaultTTL = 7 * 24 * time.Hour

// Config controls session token issuance.
type Config struct {
	Secret string        `env:"TODO_APP_SESSION_SECRET"`
	TTL    time.Duration `env:"TODO_APP_SESSION_TTL" envDefault:"168h"`
}

// LoadConfigFromEnv returns session configuration with defaults.
func LoadConfigFromEnv() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		cfg = Config{}
	}
	if cfg.Secret == "" {
		cfg.Secret = DevSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return cfg
}

// UsesDevSecret reports whether the config fell back to the insecure default.
func (c Config) UsesDevSecret() bool {
	return c.Secret == DevSecret
}
