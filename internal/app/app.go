// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package app wires configuration, storage, cache and services together for
// the server and the admin CLI.
package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/cache"
	"github.com/gulzarali-packages/translation-service/internal/config"
	"github.com/gulzarali-packages/translation-service/internal/handler/api"
	"github.com/gulzarali-packages/translation-service/internal/service"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config       *config.Config
	DB           *sql.DB
	Cache        cache.Cacher
	CacheBackend string

	Events      *service.EventService
	Invalidator *service.CacheInvalidator
	Services    api.Services
}

// Open connects to the database, applies migrations, creates the cache and
// builds the services.
func Open(cfg *config.Config) (*App, error) {
	if cfg.IsSQLite() {
		if dir := sqliteDir(cfg.DBDSN); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
	}

	slog.Info("initializing database", "driver", cfg.DBDriver)
	db, err := store.NewDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	slog.Info("running database migrations")
	if err := store.Migrate(db, cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	c, backend := cache.NewCache(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheDefaultTTL(),
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
		OpTimeout:       cfg.CacheTimeout,
	})

	return New(cfg, db, c, backend), nil
}

// New builds the services over an open database and cache.
func New(cfg *config.Config, db *sql.DB, c cache.Cacher, backend string) *App {
	events := service.NewEventService(db)
	inv := service.NewCacheInvalidator(c)
	languages := service.NewLanguageService(db, c, inv, events)

	return &App{
		Config:       cfg,
		DB:           db,
		Cache:        c,
		CacheBackend: backend,
		Events:       events,
		Invalidator:  inv,
		Services: api.Services{
			Languages:    languages,
			Tags:         service.NewTagService(db, inv, events),
			Translations: service.NewTranslationService(db, inv, events),
			Exporter:     service.NewExporter(db, c, languages, service.NewFreshnessResolver(db, c)),
			Auth:         service.NewAuthService(db, cfg.TokenTTL, events),
		},
	}
}

// Close releases the cache and the database.
func (a *App) Close() error {
	return errors.Join(a.Cache.Close(), a.DB.Close())
}

// ParseLogLevel maps a config log level to a slog level.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// sqliteDir returns the directory of a SQLite DSN such as
// "file:./data/t.db?_pragma=..." or "" for in-memory databases.
func sqliteDir(dsn string) string {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" {
		return ""
	}
	return filepath.Dir(path)
}
