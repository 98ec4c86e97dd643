// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import "net/http"

// EndpointInfo describes one API route.
type EndpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Auth        bool   `json:"auth"`
}

// APIInfo is the body of GET /api.
type APIInfo struct {
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	Endpoints []EndpointInfo `json:"endpoints"`
}

// Info handles GET /api.
func (h *Handler) Info(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, APIInfo{
		Name:      "Translation Management Service",
		Version:   h.version.Version,
		Endpoints: h.endpoints(),
	})
}

func (h *Handler) endpoints() []EndpointInfo {
	exportAuth := !h.exportPublic
	return []EndpointInfo{
		{"POST", "/api/login", "Issue an access token", false},
		{"POST", "/api/logout", "Revoke the current token, or all with ?all=true", true},
		{"GET", "/api/user", "Current user", true},
		{"GET", "/api/languages", "List languages", true},
		{"POST", "/api/languages", "Create a language", true},
		{"GET", "/api/languages/{id}", "Get a language", true},
		{"PUT", "/api/languages/{id}", "Update a language", true},
		{"DELETE", "/api/languages/{id}", "Delete a language and its translations", true},
		{"GET", "/api/tags", "List tags", true},
		{"POST", "/api/tags", "Create a tag", true},
		{"GET", "/api/tags/{id}", "Get a tag", true},
		{"PUT", "/api/tags/{id}", "Update a tag", true},
		{"DELETE", "/api/tags/{id}", "Delete a tag", true},
		{"GET", "/api/translations", "List translations (language_id, tag, key, content, page, per_page)", true},
		{"POST", "/api/translations", "Create a translation", true},
		{"GET", "/api/translations/search", "Search translations (query, language_id, tags, page, per_page)", true},
		{"GET", "/api/translations/{id}", "Get a translation", true},
		{"PUT", "/api/translations/{id}", "Update a translation", true},
		{"DELETE", "/api/translations/{id}", "Delete a translation", true},
		{"GET", "/api/export/language/{code}", "Export one language as a key/content map", exportAuth},
		{"GET", "/api/export/all", "Export every language", exportAuth},
		{"GET", "/api/export/tags", "Export translations carrying any of ?tags=a,b, optionally for ?language=code", exportAuth},
		{"GET", "/health", "Database and cache health", false},
	}
}
