// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON handlers and routes of the translation API.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gulzarali-packages/translation-service/internal/cache"
	"github.com/gulzarali-packages/translation-service/internal/middleware"
	"github.com/gulzarali-packages/translation-service/internal/service"
	"github.com/gulzarali-packages/translation-service/internal/version"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Services groups the domain services used by the handlers.
type Services struct {
	Languages    *service.LanguageService
	Tags         *service.TagService
	Translations *service.TranslationService
	Exporter     *service.Exporter
	Auth         *service.AuthService
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db           *sql.DB
	cache        cache.Cacher
	svc          Services
	version      version.Info
	login        *middleware.LoginProtection
	exportPublic bool
	startTime    time.Time
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, c cache.Cacher, svc Services, v version.Info) *Handler {
	return &Handler{
		db:        db,
		cache:     c,
		svc:       svc,
		version:   v,
		startTime: time.Now(),
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	LastPage    int   `json:"last_page"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps service errors to responses. entity names the
// resource for not-found messages.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, entity string) {
	var fe *service.FieldError
	switch {
	case errors.As(err, &fe):
		WriteValidationError(w, map[string]string{fe.Field: fe.Message})
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, capitalizeFirst(entity)+" not found")
	default:
		slog.Error("request failed", "path", r.URL.Path, "entity", entity, "error", err)
		WriteInternalError(w, "Failed to process "+entity)
	}
}

// validatable is implemented by request DTOs.
type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the JSON body into dst and validates it.
// Returns false if a response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		WriteBadRequest(w, "Invalid JSON body")
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	if err := dst.Validate(); err != nil {
		if details := validationDetails(err); details != nil {
			WriteValidationError(w, details)
			return false
		}
		slog.Error("validation failed unexpectedly", "error", err)
		WriteInternalError(w, "Failed to validate request")
		return false
	}
	return true
}

// parseIDParam parses the {id} URL parameter. Writes 404 for malformed ids.
func parseIDParam(w http.ResponseWriter, r *http.Request, entity string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteNotFound(w, capitalizeFirst(entity)+" not found")
		return 0, false
	}
	return id, true
}

// parsePositiveInt returns the query parameter as a positive int or def.
func parsePositiveInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// parseIDList parses a comma separated list of ids, skipping invalid entries.
func parseIDList(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// capitalizeFirst returns s with the first letter capitalized.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
