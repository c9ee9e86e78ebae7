package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_ACCESS_SECRET", "dev-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "dev-refresh-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("API_RATE_LIMIT_RPM", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr %q", cfg.HTTPAddr)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Fatalf("BaseURL %q", cfg.BaseURL)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("AccessTokenTTL %v, want 1h", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTokenTTL %v, want 168h", cfg.RefreshTokenTTL)
	}
	if cfg.APIRateLimitRPM != 300 {
		t.Fatalf("APIRateLimitRPM %d, want 300", cfg.APIRateLimitRPM)
	}
	if cfg.IsProduction() {
		t.Fatal("development profile must not report production")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_ACCESS_SECRET")
	}

	setBaseEnv(t)
	t.Setenv("JWT_REFRESH_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_REFRESH_SECRET")
	}
}

func TestLoadProductionConstraints(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_SECRET", "short")
	t.Setenv("JWT_REFRESH_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for short secrets in production")
	}

	t.Setenv("JWT_ACCESS_SECRET", "an-access-secret-of-32-bytes-min!")
	t.Setenv("JWT_REFRESH_SECRET", "a-refresh-secret-of-32-bytes-min")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_DSN in production")
	}

	t.Setenv("DATABASE_DSN", "postgres://app@db/inkwell")
	t.Setenv("DB_DRIVER", "postgres")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production profile")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadParsesRateLimit(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("API_RATE_LIMIT_RPM", "42")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIRateLimitRPM != 42 {
		t.Fatalf("APIRateLimitRPM %d, want 42", cfg.APIRateLimitRPM)
	}

	t.Setenv("API_RATE_LIMIT_RPM", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparsable rate limit")
	}
}
