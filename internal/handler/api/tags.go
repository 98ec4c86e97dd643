// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import "net/http"

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "tag")
		return
	}
	data := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		data = append(data, tagToResponse(t))
	}
	WriteSuccess(w, data, nil)
}

// GetTag handles GET /api/tags/{id}.
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "tag")
	if !ok {
		return
	}
	tag, err := h.svc.Tags.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "tag")
		return
	}
	WriteSuccess(w, tagToResponse(tag), nil)
}

// CreateTag handles POST /api/tags.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tag, err := h.svc.Tags.Create(r.Context(), req.Input())
	if err != nil {
		writeServiceError(w, r, err, "tag")
		return
	}
	WriteCreated(w, tagToResponse(tag))
}

// UpdateTag handles PUT /api/tags/{id}.
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "tag")
	if !ok {
		return
	}
	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tag, err := h.svc.Tags.Update(r.Context(), id, req.Input())
	if err != nil {
		writeServiceError(w, r, err, "tag")
		return
	}
	WriteSuccess(w, tagToResponse(tag), nil)
}

// DeleteTag handles DELETE /api/tags/{id}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "tag")
	if !ok {
		return
	}
	if err := h.svc.Tags.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
