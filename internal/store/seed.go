// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/auth"
	"github.com/gulzarali-packages/translation-service/internal/model"
)

// DefaultAdminName is the display name of the seeded admin user.
const DefaultAdminName = "Administrator"

// SeedOptions configures Seed.
type SeedOptions struct {
	AdminEmail string
	// AdminPassword is required to create the admin user; when empty only
	// languages are seeded.
	AdminPassword string
}

// Seed creates the admin user and the common languages when they do not
// exist yet.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	queries := New(db)

	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if err := seedAdmin(ctx, queries, opts.AdminEmail, opts.AdminPassword); err != nil {
			return err
		}
	}
	return seedLanguages(ctx, queries)
}

func seedAdmin(ctx context.Context, queries *Queries, email, password string) error {
	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        email,
		Name:         DefaultAdminName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "email", user.Email)
	return nil
}

func seedLanguages(ctx context.Context, queries *Queries) error {
	now := time.Now().UTC()
	for _, l := range model.CommonLanguages {
		_, err := queries.GetLanguageByCode(ctx, l.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking language %s: %w", l.Code, err)
		}
		if _, err := queries.CreateLanguage(ctx, CreateLanguageParams{
			Code:      l.Code,
			Name:      l.Name,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("creating language %s: %w", l.Code, err)
		}
		slog.Info("created language", "code", l.Code)
	}
	return nil
}
