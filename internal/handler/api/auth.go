// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/middleware"
	"github.com/gulzarali-packages/translation-service/internal/service"
)

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if h.login != nil {
		if locked, remaining := h.login.IsAccountLocked(req.Email); locked {
			slog.Warn("login attempt on locked account", "category", "auth", "email", req.Email, "ip", middleware.GetClientIP(r))
			middleware.WriteAccountLocked(w, remaining)
			return
		}
	}

	result, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password, req.DeviceName)
	if errors.Is(err, service.ErrInvalidCredentials) {
		if h.login != nil {
			h.login.RecordFailedAttempt(req.Email)
		}
		WriteValidationError(w, map[string]string{"email": "The provided credentials are incorrect."})
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "login")
		return
	}
	if h.login != nil {
		h.login.RecordSuccessfulLogin(req.Email)
	}

	WriteSuccess(w, LoginResponse{
		Token:     result.Token,
		User:      userToResponse(result.User),
		ExpiresAt: result.ExpiresAt,
	}, nil)
}

// Logout handles POST /api/logout. With ?all=true every token of the user
// is revoked.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r)
	if token == nil {
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Unauthenticated.", nil)
		return
	}
	all := r.URL.Query().Get("all") == "true"
	revoked, err := h.svc.Auth.Logout(r.Context(), *token, all)
	if err != nil {
		writeServiceError(w, r, err, "logout")
		return
	}
	WriteSuccess(w, map[string]any{
		"message": "Logged out",
		"revoked": revoked,
	}, nil)
}

// CurrentUser handles GET /api/user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Unauthenticated.", nil)
		return
	}
	WriteSuccess(w, userToResponse(*user), nil)
}
