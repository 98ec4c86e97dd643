// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/auth"
	"github.com/gulzarali-packages/translation-service/internal/model"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// LoginResult is returned by a successful login. Token is only available here.
type LoginResult struct {
	Token     string
	User      store.User
	ExpiresAt *time.Time
}

// AuthService issues and validates bearer tokens.
type AuthService struct {
	db       *sql.DB
	queries  *store.Queries
	tokenTTL time.Duration
	events   *EventService
}

// NewAuthService creates an AuthService. A zero tokenTTL issues tokens that
// never expire.
func NewAuthService(db *sql.DB, tokenTTL time.Duration, events *EventService) *AuthService {
	return &AuthService{
		db:       db,
		queries:  store.New(db),
		tokenTTL: tokenTTL,
		events:   events,
	}
}

// Login checks the credentials and issues a token for deviceName. Tokens the
// user previously issued for the same device are revoked first.
func (s *AuthService) Login(ctx context.Context, email, password, deviceName string) (LoginResult, error) {
	email = normalizeEmail(email)

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("loading user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("stored password hash is unreadable", "user_id", user.ID, "error", err)
		return LoginResult{}, ErrInvalidCredentials
	}
	if !ok {
		s.logWarning(ctx, "Failed login attempt", map[string]any{"email": email})
		return LoginResult{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	raw, prefix, err := model.GenerateToken()
	if err != nil {
		return LoginResult{}, fmt.Errorf("generating token: %w", err)
	}

	now := time.Now().UTC()
	var expires sql.NullTime
	if s.tokenTTL > 0 {
		expires = sql.NullTime{Time: now.Add(s.tokenTTL), Valid: true}
	}

	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		if _, err := q.DeleteAccessTokensByUserAndName(ctx, store.DeleteAccessTokensByUserAndNameParams{
			UserID: user.ID,
			Name:   deviceName,
		}); err != nil {
			return err
		}
		_, err := q.CreateAccessToken(ctx, store.CreateAccessTokenParams{
			UserID:      user.ID,
			Name:        deviceName,
			TokenHash:   model.HashToken(raw),
			TokenPrefix: prefix,
			ExpiresAt:   expires,
			CreatedAt:   now,
		})
		return err
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("issuing token: %w", err)
	}

	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategoryAuth, "User logged in", map[string]any{
			"user_id": user.ID,
			"device":  deviceName,
		})
	}

	res := LoginResult{Token: raw, User: user}
	if expires.Valid {
		res.ExpiresAt = &expires.Time
	}
	return res, nil
}

// Authenticate resolves a raw bearer token to its user and token record.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (store.User, store.AccessToken, error) {
	if rawToken == "" {
		return store.User{}, store.AccessToken{}, ErrInvalidToken
	}

	token, err := s.queries.GetAccessTokenByHash(ctx, model.HashToken(rawToken))
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.AccessToken{}, ErrInvalidToken
	}
	if err != nil {
		return store.User{}, store.AccessToken{}, fmt.Errorf("loading token: %w", err)
	}

	now := time.Now().UTC()
	if token.IsExpired(now) {
		return store.User{}, store.AccessToken{}, ErrInvalidToken
	}

	user, err := s.queries.GetUser(ctx, token.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.AccessToken{}, ErrInvalidToken
	}
	if err != nil {
		return store.User{}, store.AccessToken{}, fmt.Errorf("loading user: %w", err)
	}

	if err := s.queries.UpdateAccessTokenLastUsed(ctx, store.UpdateAccessTokenLastUsedParams{
		ID:         token.ID,
		LastUsedAt: now,
	}); err != nil {
		slog.Warn("failed to record token use", "token_id", token.ID, "error", err)
	}

	return user, token, nil
}

// Logout revokes the given token, or every token of its user when all is set.
// It returns the number of revoked tokens.
func (s *AuthService) Logout(ctx context.Context, token store.AccessToken, all bool) (int64, error) {
	if all {
		n, err := s.queries.DeleteAccessTokensByUser(ctx, token.UserID)
		if err != nil {
			return 0, fmt.Errorf("revoking tokens: %w", err)
		}
		return n, nil
	}

	if err := s.queries.DeleteAccessToken(ctx, token.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("revoking token: %w", err)
	}
	return 1, nil
}

// CreateUser adds a user with an argon2id password hash.
func (s *AuthService) CreateUser(ctx context.Context, email, name, password string) (store.User, error) {
	email = normalizeEmail(email)

	if err := auth.ValidatePassword(password); err != nil {
		return store.User{}, &FieldError{Field: "password", Message: err.Error(), Err: err}
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return store.User{}, conflict("email", "The email has already been taken.")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.User{}, fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return store.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// PurgeExpiredTokens deletes tokens whose expiry has passed.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.queries.DeleteExpiredAccessTokens(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purging tokens: %w", err)
	}
	return n, nil
}

func (s *AuthService) rehash(ctx context.Context, userID int64, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return
	}
	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		ID:           userID,
		PasswordHash: hash,
		UpdatedAt:    time.Now().UTC(),
	}); err != nil {
		slog.Warn("failed to upgrade password hash", "user_id", userID, "error", err)
	}
}

func (s *AuthService) logWarning(ctx context.Context, message string, metadata map[string]any) {
	if s.events != nil {
		_ = s.events.LogWarning(ctx, model.EventCategoryAuth, message, metadata)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
