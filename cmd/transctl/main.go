// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gulzarali-packages/translation-service/internal/app"
	"github.com/gulzarali-packages/translation-service/internal/config"
	"github.com/gulzarali-packages/translation-service/internal/scheduler"
	"github.com/gulzarali-packages/translation-service/internal/seed"
	"github.com/gulzarali-packages/translation-service/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	rootCmd.Version = version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}.String()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads the environment and opens the database and cache. The caller
// must defer a.Close().
func newApp() (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := app.ParseLogLevel(cfg.LogLevel)
	if !verbose {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	a, err := app.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "transctl",
	Short:        "Administer the translation service",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		fmt.Printf("Database migrated (%s)\n", a.Config.DBDriver)
		return nil
	},
}

// seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate translations for load testing",
	Long: "Creates the common languages and tags when missing, then the given " +
		"number of translations with one to three random tags each.",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		chunk, _ := cmd.Flags().GetInt("chunk")
		if count < 0 {
			return fmt.Errorf("count must not be negative")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		res, err := seed.Run(cmd.Context(), a.DB, seed.Options{
			Count:       count,
			ChunkSize:   chunk,
			Invalidator: a.Invalidator,
			Progress: func(done, total int) {
				fmt.Printf("\r%d/%d translations", done, total)
			},
		})
		if count > 0 {
			fmt.Println()
		}
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}

		fmt.Printf("Languages:    %d\n", res.Languages)
		fmt.Printf("Tags:         %d\n", res.Tags)
		fmt.Printf("Translations: %d\n", res.Translations)
		fmt.Printf("Took:         %s\n", res.Duration.Round(time.Millisecond))
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user that can obtain API tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")

		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			return fmt.Errorf("--email is required")
		}
		if name == "" {
			name = email
		}
		if password == "" {
			p, err := readPassword()
			if err != nil {
				return err
			}
			password = p
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		u, err := a.Services.Auth.CreateUser(cmd.Context(), email, name, password)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		fmt.Printf("Created user %d <%s>\n", u.ID, u.Email)
		return nil
	},
}

// readPassword prompts twice on a terminal, or reads one line from stdin.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}

// tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Manage access tokens",
}

var tokensPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired access tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		n, err := a.Services.Auth.PurgeExpiredTokens(cmd.Context())
		if err != nil {
			return fmt.Errorf("purging tokens: %w", err)
		}
		fmt.Printf("Deleted %d expired tokens\n", n)
		return nil
	},
}

// cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the export cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached export and fingerprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		if err := a.Cache.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clearing %s cache: %w", a.CacheBackend, err)
		}
		fmt.Printf("Cleared %s cache\n", a.CacheBackend)
		return nil
	},
}

// jobs command
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and run maintenance jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List maintenance jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withScheduler(func(_ context.Context, s *scheduler.Scheduler) error {
			for _, j := range s.List() {
				fmt.Printf("%-20s %-14s %s\n", j.Name, j.Schedule, j.Description)
			}
			return nil
		})
	},
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a maintenance job once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withScheduler(func(ctx context.Context, s *scheduler.Scheduler) error {
			if err := s.TriggerNow(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Ran %s\n", args[0])
			return nil
		})
	},
}

// withScheduler registers the jobs that make sense outside the server and
// calls fn without starting the cron loop.
func withScheduler(fn func(context.Context, *scheduler.Scheduler) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	s := scheduler.New(logger)
	for _, job := range []scheduler.Job{
		scheduler.TokenPurgeJob(a.Services.Auth, logger),
		scheduler.EventPruneJob(a.Events, a.Config.EventRetention, logger),
		scheduler.CacheStatsJob(a.Cache, logger),
	} {
		if err := s.Register(job); err != nil {
			return err
		}
	}
	return fn(context.Background(), s)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Log at the configured TS_LOG_LEVEL instead of warn")

	seedCmd.Flags().IntP("count", "n", 100000, "Number of translations to create")
	seedCmd.Flags().Int("chunk", 1000, "Translations per transaction")
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(migrateCmd)

	userCreateCmd.Flags().String("email", "", "Email address (required)")
	userCreateCmd.Flags().String("name", "", "Display name (defaults to the email)")
	userCreateCmd.Flags().String("password", "", "Password (prompted when omitted)")
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)

	tokensCmd.AddCommand(tokensPurgeCmd)
	rootCmd.AddCommand(tokensCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsRunCmd)
	rootCmd.AddCommand(jobsCmd)
}
