// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/gulzarali-packages/translation-service/internal/store"
)

// ListLanguages handles GET /api/languages.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.svc.Languages.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "language")
		return
	}
	if languages == nil {
		languages = []store.Language{}
	}
	WriteSuccess(w, languages, nil)
}

// GetLanguage handles GET /api/languages/{id}.
func (h *Handler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "language")
	if !ok {
		return
	}
	lang, err := h.svc.Languages.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "language")
		return
	}
	WriteSuccess(w, lang, nil)
}

// CreateLanguage handles POST /api/languages.
func (h *Handler) CreateLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lang, err := h.svc.Languages.Create(r.Context(), req.Input())
	if err != nil {
		writeServiceError(w, r, err, "language")
		return
	}
	WriteCreated(w, lang)
}

// UpdateLanguage handles PUT /api/languages/{id}.
func (h *Handler) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "language")
	if !ok {
		return
	}
	var req LanguageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lang, err := h.svc.Languages.Update(r.Context(), id, req.Input())
	if err != nil {
		writeServiceError(w, r, err, "language")
		return
	}
	WriteSuccess(w, lang, nil)
}

// DeleteLanguage handles DELETE /api/languages/{id}. The language's
// translations are removed with it.
func (h *Handler) DeleteLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "language")
	if !ok {
		return
	}
	if err := h.svc.Languages.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "language")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
