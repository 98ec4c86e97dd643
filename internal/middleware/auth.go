// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gulzarali-packages/translation-service/internal/store"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// ContextKeyUser is the context key for the authenticated user.
	ContextKeyUser ContextKey = "user"
	// ContextKeyToken is the context key for the access token of the request.
	ContextKeyToken ContextKey = "access_token"
)

// ErrUnauthenticated is returned by an Authenticator for a token it does not accept.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (store.User, store.AccessToken, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, rawToken string) (store.User, store.AccessToken, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, rawToken string) (store.User, store.AccessToken, error) {
	return f(ctx, rawToken)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// TokenAuth creates middleware that requires a valid bearer token and puts
// the user and token into the request context. isInvalid classifies
// authenticator errors that mean "bad token" rather than a server failure.
func TokenAuth(auth Authenticator, isInvalid func(error) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Unauthenticated.", nil)
				return
			}

			user, token, err := auth.Authenticate(r.Context(), raw)
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) || (isInvalid != nil && isInvalid(err)) {
					WriteAPIError(w, http.StatusUnauthorized, "unauthenticated", "Unauthenticated.", nil)
					return
				}
				slog.Error("failed to authenticate token", "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to authenticate request", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyToken, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the authenticated user from the request context.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetToken retrieves the access token from the request context.
func GetToken(r *http.Request) *store.AccessToken {
	token, ok := r.Context().Value(ContextKeyToken).(store.AccessToken)
	if !ok {
		return nil
	}
	return &token
}
