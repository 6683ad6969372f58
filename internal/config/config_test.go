package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %s", cfg.Addr)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("unexpected default token ttl: %v", cfg.TokenTTL)
	}
	if cfg.RateBurst != 20 || cfg.RatePerSec != 10 {
		t.Fatalf("unexpected rate defaults: burst=%d per_sec=%d", cfg.RateBurst, cfg.RatePerSec)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FIELDTRACK_ADDR", ":9999")
	t.Setenv("FIELDTRACK_PG_DSN", "postgres://localhost/fieldtrack")
	t.Setenv("FIELDTRACK_TOKEN_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("addr override not applied: %s", cfg.Addr)
	}
	if cfg.PGDSN != "postgres://localhost/fieldtrack" {
		t.Fatalf("dsn override not applied: %s", cfg.PGDSN)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("ttl override not applied: %v", cfg.TokenTTL)
	}
}

func TestLoadRejectsBadRate(t *testing.T) {
	t.Setenv("FIELDTRACK_RATE_BURST", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero rate burst")
	}
}
