// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from TS_ environment variables.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported database drivers.
const (
	DriverSQLite    = "sqlite"
	DriverSQLiteCGO = "sqlite3"
	DriverMySQL     = "mysql"
)

var (
	validDrivers   = []string{DriverSQLite, DriverSQLiteCGO, DriverMySQL}
	validEnvs      = []string{"development", "production", "testing"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver   string `env:"TS_DB_DRIVER" envDefault:"sqlite"`
	DBDSN      string `env:"TS_DB_DSN" envDefault:"./data/translations.db"`
	ServerHost string `env:"TS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"TS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"TS_ENV" envDefault:"development"`
	LogLevel   string `env:"TS_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL     string        `env:"TS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string        `env:"TS_CACHE_PREFIX" envDefault:"ts:"`     // Redis key prefix
	CacheTTL     int           `env:"TS_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int           `env:"TS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries
	CacheTimeout time.Duration `env:"TS_CACHE_TIMEOUT" envDefault:"250ms"`  // Bound on each cache operation

	// API configuration
	TokenTTL       time.Duration `env:"TS_TOKEN_TTL" envDefault:"0s"`       // 0 issues tokens that never expire
	ExportPublic   bool          `env:"TS_EXPORT_PUBLIC" envDefault:"true"` // Serve export routes without a token
	RateLimit      float64       `env:"TS_RATE_LIMIT" envDefault:"20"`      // Requests per second per client IP (0 = off)
	RateBurst      int           `env:"TS_RATE_BURST" envDefault:"40"`
	TokenRateLimit float64       `env:"TS_TOKEN_RATE_LIMIT" envDefault:"10"` // Requests per second per token (0 = off)
	TokenRateBurst int           `env:"TS_TOKEN_RATE_BURST" envDefault:"20"`
	EventRetention time.Duration `env:"TS_EVENT_RETENTION" envDefault:"720h"` // Age after which event log rows are purged

	// Seeding configuration
	DoSeed        bool   `env:"TS_DO_SEED" envDefault:"false"` // Create the admin user on startup
	AdminEmail    string `env:"TS_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"TS_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheDefaultTTL returns TS_CACHE_TTL as a duration.
func (c Config) CacheDefaultTTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// IsSQLite reports whether the configured driver is one of the SQLite drivers.
func (c Config) IsSQLite() bool {
	return c.DBDriver == DriverSQLite || c.DBDriver == DriverSQLiteCGO
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.DoSeed && cfg.AdminPassword == "" {
		slog.Warn("TS_DO_SEED is set but TS_ADMIN_PASSWORD is empty; the admin user will not be created")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validDrivers, c.DBDriver) {
		return fmt.Errorf("TS_DB_DRIVER must be one of %s, got %q", strings.Join(validDrivers, ", "), c.DBDriver)
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("TS_DB_DSN must not be empty")
	}
	if !slices.Contains(validEnvs, c.Env) {
		return fmt.Errorf("TS_ENV must be one of %s, got %q", strings.Join(validEnvs, ", "), c.Env)
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("TS_LOG_LEVEL must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.LogLevel)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("TS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.CacheTTL < 1 {
		return fmt.Errorf("TS_CACHE_TTL must be positive, got %d", c.CacheTTL)
	}
	if c.CacheMaxSize < 0 {
		return fmt.Errorf("TS_CACHE_MAX_SIZE must not be negative, got %d", c.CacheMaxSize)
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("TS_TOKEN_TTL must not be negative, got %s", c.TokenTTL)
	}
	return nil
}
