package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds process configuration sourced from the environment.
// All knobs use the FIELDTRACK_ prefix so deployments can coexist with
// other services on the same host.
type Config struct {
	Addr     string `env:"FIELDTRACK_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"FIELDTRACK_GRPC_ADDR"`

	// PGDSN selects the Postgres store; when empty the API serves from the
	// in-memory store (useful for local development and smoke tests).
	PGDSN string `env:"FIELDTRACK_PG_DSN"`

	AuthSecret string        `env:"FIELDTRACK_AUTH_SECRET"`
	TokenTTL   time.Duration `env:"FIELDTRACK_TOKEN_TTL" envDefault:"15m"`

	RateBurst  int `env:"FIELDTRACK_RATE_BURST" envDefault:"20"`
	RatePerSec int `env:"FIELDTRACK_RATE_PER_SEC" envDefault:"10"`

	MigrationsDir string `env:"FIELDTRACK_MIGRATIONS_DIR" envDefault:"db/migrations"`
	SeedsDir      string `env:"FIELDTRACK_SEEDS_DIR" envDefault:"db/seeds"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.RateBurst <= 0 || cfg.RatePerSec <= 0 {
		return Config{}, fmt.Errorf("rate limit settings must be positive")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("token ttl must be positive")
	}
	return cfg, nil
}
