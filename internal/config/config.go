// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSigningSecret is the shared HMAC secret for issuing and validating
	// access tokens. Must be at least 32 bytes when APP_ENV=production.
	JWTSigningSecret string `mapstructure:"JWT_SIGNING_SECRET"`
	// JWTTokenTTL is the access token lifetime (e.g. "24h").
	JWTTokenTTL string `mapstructure:"JWT_TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// GoogleClientID is the expected aud claim on Google ID tokens. Federated
	// login with Google is disabled when empty.
	GoogleClientID string `mapstructure:"GOOGLE_CLIENT_ID"`
	// GoogleIssuer overrides the expected Google iss claim (tests only).
	GoogleIssuer string `mapstructure:"GOOGLE_ISSUER"`
	// GoogleJWKSURL overrides the Google signing-key endpoint (tests only).
	GoogleJWKSURL string `mapstructure:"GOOGLE_JWKS_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SIGNING_SECRET", "")
	v.SetDefault("JWT_TOKEN_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_ISSUER", "")
	v.SetDefault("GOOGLE_JWKS_URL", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTSigningSecret == "" {
		return nil, errors.New("config: JWT_SIGNING_SECRET must be set")
	}
	if cfg.Env == "production" && len(cfg.JWTSigningSecret) < 32 {
		return nil, errors.New("config: JWT_SIGNING_SECRET must be at least 32 bytes when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// TokenTTL parses JWTTokenTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTTokenTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
