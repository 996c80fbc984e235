// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config maps environment variables onto the promptlib runtime settings.

It leverages 'caarlos0/env' for parsing, defaults and required-field checks.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to constructors.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Library storage backends.
const (
	LibraryBackendRedis  = "redis"
	LibraryBackendMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the promptlib API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Public directory (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"4"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Personal library store and cross-instance cache invalidation (Redis)
	RedisURL       string `env:"REDIS_URL,required"`
	LibraryBackend string `env:"LIBRARY_BACKEND" envDefault:"redis"`
	RedisPoolSize  int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// CacheDisabled bypasses the in-process read cache (every read hits PostgreSQL).
	CacheDisabled bool `env:"CACHE_DISABLED" envDefault:"false"`

	// JWTPubKeyPath verifies bearer tokens on the admin endpoints.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LibraryBackend {
	case LibraryBackendRedis, LibraryBackendMemory:
	default:
		return fmt.Errorf("config: unsupported LIBRARY_BACKEND %q", c.LibraryBackend)
	}

	if c.DBMinConns < 0 || c.DBMaxConns < 1 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("config: DB_MIN_CONNS (%d) must be between 0 and DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RedisPoolSize < 1 {
		return fmt.Errorf("config: REDIS_POOL_SIZE must be positive, got %d", c.RedisPoolSize)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
