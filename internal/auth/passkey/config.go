package passkey

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// ChallengeTTL bounds how long an issued ceremony challenge stays redeemable.
//
// The value is fixed rather than configurable: abandoned ceremonies expire
// on their own and the client restarts from the options step.
const ChallengeTTL = 5 * time.Minute

// Config controls WebAuthn relying party settings.
type Config struct {
	RPDisplayName string   `env:"TODO_APP_RP_DISPLAY_NAME" envDefault:"Todo App"`
	RPID          string   `env:"TODO_APP_RP_ID"           envDefault:"localhost"`
	RPOrigins     []string `env:"TODO_APP_RP_ORIGINS"      envSeparator:","`
}

// LoadConfigFromEnv returns passkey configuration with defaults.
func LoadConfigFromEnv() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{
			RPDisplayName: "Todo App",
			RPID:          "localhost",
			RPOrigins:     []string{"http://localhost:3000"},
		}
	}
	if len(cfg.RPOrigins) == 0 {
		cfg.RPOrigins = []string{"http://localhost:3000"}
	}
	return cfg
}
