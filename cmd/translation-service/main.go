// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gulzarali-packages/translation-service/internal/app"
	"github.com/gulzarali-packages/translation-service/internal/config"
	"github.com/gulzarali-packages/translation-service/internal/handler/api"
	"github.com/gulzarali-packages/translation-service/internal/logging"
	"github.com/gulzarali-packages/translation-service/internal/middleware"
	"github.com/gulzarali-packages/translation-service/internal/scheduler"
	"github.com/gulzarali-packages/translation-service/internal/store"
	"github.com/gulzarali-packages/translation-service/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// maxTrackedLimiters is the number of per-IP rate limiters tracked before idle ones are dropped.
const maxTrackedLimiters = 10000

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "translation-service - translation management API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TS_DB_DRIVER       sqlite|sqlite3|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TS_DB_DSN          Database DSN (default: ./data/translations.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TS_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TS_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TS_REDIS_URL       Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TS_TOKEN_TTL       Access token lifetime, 0 for no expiry (default: 0s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TS_EXPORT_PUBLIC   Serve export routes without a token (default: true)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Printf("translation-service %s\n", versionInfo)
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := app.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	a, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("error closing resources", "error", err)
		}
	}()

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, a.DB))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, a.DB, store.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	var rateLimiter *middleware.GlobalRateLimiter
	if cfg.RateLimit > 0 {
		rateLimiter = middleware.NewGlobalRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	login := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer login.Stop()

	sched := scheduler.New(logger)
	jobs := []scheduler.Job{
		scheduler.TokenPurgeJob(a.Services.Auth, logger),
		scheduler.EventPruneJob(a.Events, cfg.EventRetention, logger),
		scheduler.CacheStatsJob(a.Cache, logger),
	}
	if rateLimiter != nil {
		jobs = append(jobs, scheduler.RateLimiterPruneJob(rateLimiter, maxTrackedLimiters, logger))
	}
	for _, job := range jobs {
		if err := sched.Register(job); err != nil {
			return fmt.Errorf("registering job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	router := api.NewRouter(api.RouterConfig{
		DB:              a.DB,
		Cache:           a.Cache,
		Services:        a.Services,
		Version:         versionInfo,
		IsDev:           cfg.IsDevelopment(),
		ExportPublic:    cfg.ExportPublic,
		RateLimiter:     rateLimiter,
		LoginProtection: login,
		TokenRPS:        cfg.TokenRateLimit,
		TokenBurst:      cfg.TokenRateBurst,
		AccessLog:       true,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"version", versionInfo.Version,
			"cache", a.CacheBackend,
			"export_public", cfg.ExportPublic,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
