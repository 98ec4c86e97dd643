// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gulzarali-packages/translation-service/internal/cache"
	"github.com/gulzarali-packages/translation-service/internal/middleware"
	"github.com/gulzarali-packages/translation-service/internal/service"
	"github.com/gulzarali-packages/translation-service/internal/version"
)

// compressMinSize is the smallest export body worth compressing.
const compressMinSize = 1024

// RouterConfig holds the dependencies and options of the HTTP router.
type RouterConfig struct {
	DB       *sql.DB
	Cache    cache.Cacher
	Services Services
	Version  version.Info

	// IsDev relaxes security headers (no HSTS).
	IsDev bool
	// ExportPublic serves the export routes without authentication.
	ExportPublic bool
	// RequestTimeout bounds every request. Defaults to 30s.
	RequestTimeout time.Duration

	// RateLimiter limits requests per client IP. Nil disables it.
	RateLimiter *middleware.GlobalRateLimiter
	// LoginProtection guards POST /api/login. Nil uses the defaults.
	LoginProtection *middleware.LoginProtection
	// TokenRPS and TokenBurst limit requests per access token. Zero disables it.
	TokenRPS   float64
	TokenBurst int

	// AccessLog enables the chi request logger.
	AccessLog bool
}

// NewRouter builds the HTTP routes of the service.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.LoginProtection == nil {
		cfg.LoginProtection = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}

	h := NewHandler(cfg.DB, cfg.Cache, cfg.Services, cfg.Version)
	h.login = cfg.LoginProtection
	h.exportPublic = cfg.ExportPublic

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDev)))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware())
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	r.Get("/health", h.Health)
	r.Get("/health/live", h.Liveness)

	requireToken := middleware.TokenAuth(h.svc.Auth, func(err error) bool {
		return errors.Is(err, service.ErrInvalidToken)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Info)

		r.With(cfg.LoginProtection.Middleware()).Post("/login", h.Login)

		exports := func(r chi.Router) {
			r.Use(middleware.CompressJSON(compressMinSize))
			r.Get("/export/language/{code}", h.ExportLanguage)
			r.Get("/export/all", h.ExportAll)
			r.Get("/export/tags", h.ExportTags)
		}
		if cfg.ExportPublic {
			r.Group(exports)
		}

		r.Group(func(r chi.Router) {
			r.Use(requireToken)
			if cfg.TokenRPS > 0 {
				r.Use(middleware.TokenRateLimit(cfg.TokenRPS, cfg.TokenBurst))
			}

			r.Post("/logout", h.Logout)
			r.Get("/user", h.CurrentUser)

			r.Route("/languages", func(r chi.Router) {
				r.Get("/", h.ListLanguages)
				r.Post("/", h.CreateLanguage)
				r.Get("/{id}", h.GetLanguage)
				r.Put("/{id}", h.UpdateLanguage)
				r.Delete("/{id}", h.DeleteLanguage)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", h.ListTags)
				r.Post("/", h.CreateTag)
				r.Get("/{id}", h.GetTag)
				r.Put("/{id}", h.UpdateTag)
				r.Delete("/{id}", h.DeleteTag)
			})

			r.Route("/translations", func(r chi.Router) {
				r.Get("/", h.ListTranslations)
				r.Post("/", h.CreateTranslation)
				r.Get("/search", h.SearchTranslations)
				r.Get("/{id}", h.GetTranslation)
				r.Put("/{id}", h.UpdateTranslation)
				r.Delete("/{id}", h.DeleteTranslation)
			})

			if !cfg.ExportPublic {
				r.Group(exports)
			}
		})
	})

	return r
}
