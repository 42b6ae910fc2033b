package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the client's environment-driven configuration. Reconnect
// defaults mirror the original client (5 attempts, 1s apart).
// CreateMatch makes this client create the match before joining it,
// instead of joining one another participant created.
type Config struct {
	ServerURL         string        `env:"XAT_SERVER_URL" envDefault:"ws://localhost:8080"`
	DisplayName       string        `env:"XAT_DISPLAY_NAME"`
	DeckPath          string        `env:"XAT_DECK_PATH" envDefault:"deck.json"`
	CreateMatch       bool          `env:"XAT_CREATE_MATCH"`
	ReconnectAttempts int           `env:"XAT_RECONNECT_ATTEMPTS" envDefault:"5"`
	ReconnectDelay    time.Duration `env:"XAT_RECONNECT_DELAY" envDefault:"1s"`
	// HistoryDSN enables match-record persistence when set.
	HistoryDSN string `env:"XAT_HISTORY_DSN"`
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load() // absent .env is fine

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}
