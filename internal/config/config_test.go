package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CLINIC_CLOSED_WEEKDAY", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.ClinicClosedWeekday != 0 {
		t.Fatalf("expected Sunday as default closed weekday, got %d", cfg.ClinicClosedWeekday)
	}
	if cfg.MonthCacheTTL != 10*time.Minute {
		t.Fatalf("expected default month cache TTL, got %s", cfg.MonthCacheTTL)
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Fatalf("expected no default CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("CLINIC_CLOSED_WEEKDAY", "1")
	t.Setenv("HISTORY_SYNC_INTERVAL", "45m")
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected trimmed CORS origins, got %v", cfg.CORSOrigins)
	}
	if cfg.ClinicClosedWeekday != 1 {
		t.Fatalf("expected closed weekday override, got %d", cfg.ClinicClosedWeekday)
	}
	if cfg.HistorySyncInterval != 45*time.Minute {
		t.Fatalf("expected sync interval override, got %s", cfg.HistorySyncInterval)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("expected token ttl override, got %s", cfg.TokenTTL)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis tls override")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CLINIC_CLOSED_WEEKDAY", "sunday")
	t.Setenv("HISTORY_SYNC_INTERVAL", "soon")
	t.Setenv("REDIS_TLS", "yep")
	cfg := Load()
	if cfg.ClinicClosedWeekday != 0 {
		t.Fatalf("expected fallback weekday, got %d", cfg.ClinicClosedWeekday)
	}
	if cfg.HistorySyncInterval != 6*time.Hour {
		t.Fatalf("expected fallback sync interval, got %s", cfg.HistorySyncInterval)
	}
	if cfg.RedisTLS {
		t.Fatal("expected fallback redis tls false")
	}
}
