// Package config reads the process configuration from environment variables,
// with a .env file as fallback for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Fallback RD$/USD rate used to convert FOB values when an order has no
// payments yet. Overridable via DEFAULT_EXCHANGE_RATE.
const defaultExchangeRate = "60"

type Config struct {
	DatabaseURL         string
	ServerPort          string
	AllowedOrigins      string
	LogLevel            string
	DefaultExchangeRate decimal.Decimal
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServerPort:     envOr("SERVER_PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	rateRaw := envOr("DEFAULT_EXCHANGE_RATE", defaultExchangeRate)
	rate, err := decimal.NewFromString(rateRaw)
	if err != nil || rate.Sign() <= 0 {
		return Config{}, fmt.Errorf("invalid DEFAULT_EXCHANGE_RATE: %q", rateRaw)
	}
	cfg.DefaultExchangeRate = rate

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
