// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gulzarali-packages/translation-service/internal/service"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// ListTranslations handles GET /api/translations.
// Query parameters: language_id, tag, key, content, page, per_page.
func (h *Handler) ListTranslations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TranslationFilter{
		TagName: strings.TrimSpace(q.Get("tag")),
		Key:     strings.TrimSpace(q.Get("key")),
		Content: strings.TrimSpace(q.Get("content")),
	}
	if v := q.Get("language_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			WriteValidationError(w, map[string]string{"language_id": "must be an integer"})
			return
		}
		filter.LanguageID = id
	}

	page, err := h.svc.Translations.List(r.Context(), filter,
		parsePositiveInt(r, "page", 1), parsePositiveInt(r, "per_page", service.DefaultPerPage))
	if err != nil {
		writeServiceError(w, r, err, "translation")
		return
	}
	writeTranslationPage(w, page)
}

// SearchTranslations handles GET /api/translations/search.
// Query parameters: query (required), language_id, tags (comma separated ids), page, per_page.
func (h *Handler) SearchTranslations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		WriteValidationError(w, map[string]string{"query": "cannot be blank"})
		return
	}
	var languageID int64
	if v := q.Get("language_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			WriteValidationError(w, map[string]string{"language_id": "must be an integer"})
			return
		}
		languageID = id
	}

	page, err := h.svc.Translations.Search(r.Context(), query, languageID, parseIDList(q.Get("tags")),
		parsePositiveInt(r, "page", 1), parsePositiveInt(r, "per_page", service.DefaultPerPage))
	if err != nil {
		writeServiceError(w, r, err, "translation")
		return
	}
	writeTranslationPage(w, page)
}

func writeTranslationPage(w http.ResponseWriter, page service.TranslationPage) {
	data := make([]TranslationResponse, 0, len(page.Items))
	for _, item := range page.Items {
		data = append(data, translationToResponse(item))
	}
	WriteSuccess(w, data, &Meta{
		Total:       page.Total,
		CurrentPage: page.Page,
		PerPage:     page.PerPage,
		LastPage:    page.LastPage(),
	})
}

// GetTranslation handles GET /api/translations/{id}.
func (h *Handler) GetTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "translation")
	if !ok {
		return
	}
	t, err := h.svc.Translations.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "translation")
		return
	}
	WriteSuccess(w, translationToResponse(t), nil)
}

// CreateTranslation handles POST /api/translations.
func (h *Handler) CreateTranslation(w http.ResponseWriter, r *http.Request) {
	var req TranslationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	t, err := h.svc.Translations.Create(r.Context(), req.Input())
	if err != nil {
		writeServiceError(w, r, err, "translation")
		return
	}
	WriteCreated(w, translationToResponse(t))
}

// UpdateTranslation handles PUT /api/translations/{id}.
func (h *Handler) UpdateTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "translation")
	if !ok {
		return
	}
	var req TranslationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	t, err := h.svc.Translations.Update(r.Context(), id, req.Input())
	if err != nil {
		writeServiceError(w, r, err, "translation")
		return
	}
	WriteSuccess(w, translationToResponse(t), nil)
}

// DeleteTranslation handles DELETE /api/translations/{id}.
func (h *Handler) DeleteTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "translation")
	if !ok {
		return
	}
	if err := h.svc.Translations.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "translation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
