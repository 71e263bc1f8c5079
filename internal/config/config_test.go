package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SIGNING_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr default: got %q", cfg.HTTPAddr)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost default: got %d", cfg.BcryptCost)
	}
	if cfg.TokenTTL() != 24*time.Hour {
		t.Errorf("TokenTTL default: got %v", cfg.TokenTTL())
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SIGNING_SECRET", "")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SIGNING_SECRET") {
		t.Errorf("want error about JWT_SIGNING_SECRET, got %v", err)
	}
}

func TestLoad_ShortSecretInProduction(t *testing.T) {
	t.Setenv("JWT_SIGNING_SECRET", "short")
	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Error("short secret in production should be rejected")
	}

	t.Setenv("APP_ENV", "development")
	if _, err := Load(); err != nil {
		t.Errorf("short secret outside production should load: %v", err)
	}
}

func TestLoad_BcryptCostBounds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Error("out-of-range bcrypt cost should be rejected")
	}
}

func TestTokenTTL_Invalid(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_TOKEN_TTL", "not-a-duration")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL() != 24*time.Hour {
		t.Errorf("invalid TTL should fall back to 24h, got %v", cfg.TokenTTL())
	}
}
