// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full environment surface consumed by the service. Secret
// values are config inputs only; they are never echoed into logs or errors.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8787"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Session tokens (HS256).
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"identity-entitlements-api"`

	// Identity assertions.
	AllowedGoogleClientIDs []string `env:"ALLOWED_GOOGLE_CLIENT_IDS" envSeparator:","`
	GoogleClientID         string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret     string   `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI      string   `env:"GOOGLE_REDIRECT_URI"`

	// Entitlement tokens (RS256). When the PEM is empty an ephemeral key is
	// generated; restarting then invalidates previously issued tokens.
	EntJWTPrivateKeyPEM string `env:"ENT_JWT_PRIVATE_KEY_PEM"`
	EntJWTKeyID         string `env:"ENT_JWT_KID"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
}

// Load reads .env (when present) and parses the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
