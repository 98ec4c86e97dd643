// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ExportLanguage handles GET /api/export/language/{code}.
// Responds with a flat key to content map.
func (h *Handler) ExportLanguage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	out, found, err := h.svc.Exporter.ExportByLanguage(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err, "export")
		return
	}
	if !found {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Language not found"})
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// ExportAll handles GET /api/export/all.
// Responds with a language code to key to content map.
func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Exporter.ExportAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "export")
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// ExportTags handles GET /api/export/tags?tags=a,b&language=code.
func (h *Handler) ExportTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	names := splitList(q.Get("tags"))
	if len(names) == 0 {
		WriteValidationError(w, map[string]string{"tags": "The tags field is required."})
		return
	}
	out, err := h.svc.Exporter.ExportByTags(r.Context(), names, q.Get("language"))
	if err != nil {
		writeServiceError(w, r, err, "export")
		return
	}
	WriteJSON(w, http.StatusOK, out)
}
