// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gulzarali-packages/translation-service/internal/cache"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// LanguageExport maps translation keys to content for one language.
type LanguageExport map[string]string

// MultiLanguageExport maps language codes to their key/content maps.
type MultiLanguageExport map[string]LanguageExport

// Exporter assembles export payloads and caches them under keys that embed
// the current freshness fingerprint.
type Exporter struct {
	queries   *store.Queries
	languages *LanguageService
	freshness *FreshnessResolver
	single    *cache.TypedCache[LanguageExport]
	multi     *cache.TypedCache[MultiLanguageExport]
}

// NewExporter creates an Exporter. Cache failures are logged and the payload
// is computed from the database instead.
func NewExporter(db *sql.DB, c cache.Cacher, languages *LanguageService, freshness *FreshnessResolver) *Exporter {
	return &Exporter{
		queries:   store.New(db),
		languages: languages,
		freshness: freshness,
		single:    cache.NewTypedCache[LanguageExport](c, ExportTTL).OnError(logCacheError),
		multi:     cache.NewTypedCache[MultiLanguageExport](c, ExportTTL).OnError(logCacheError),
	}
}

func logCacheError(_ context.Context, op, key string, err error) {
	slog.Warn("export cache unavailable, serving from database", "op", op, "key", key, "error", err)
}

// ExportByLanguage returns the translations of the language with code.
// found is false, with an empty map, when no such language exists.
func (e *Exporter) ExportByLanguage(ctx context.Context, code string) (LanguageExport, bool, error) {
	lang, err := e.languages.ByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return LanguageExport{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	fp, err := e.freshness.Fingerprint(ctx, LanguageScope(lang.ID))
	if err != nil {
		return nil, false, err
	}

	out, _, err := e.single.GetOrSet(ctx, LanguageExportKey(lang.Code, fp), func(ctx context.Context) (LanguageExport, error) {
		rows, err := e.queries.ListExportRowsByLanguage(ctx, lang.ID)
		if err != nil {
			return nil, fmt.Errorf("loading translations: %w", err)
		}
		m := make(LanguageExport, len(rows))
		for _, r := range rows {
			m[r.Key] = r.Content
		}
		return m, nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// ExportAll returns the translations of every language, active or not.
// Languages without translations are present with an empty map.
func (e *Exporter) ExportAll(ctx context.Context) (MultiLanguageExport, error) {
	fp, err := e.freshness.Fingerprint(ctx, AllScope())
	if err != nil {
		return nil, err
	}

	out, _, err := e.multi.GetOrSet(ctx, AllExportKey(fp), func(ctx context.Context) (MultiLanguageExport, error) {
		langs, err := e.queries.ListLanguages(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading languages: %w", err)
		}
		rows, err := e.queries.ListExportRowsAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading translations: %w", err)
		}

		m := make(MultiLanguageExport, len(langs))
		for _, l := range langs {
			m[l.Code] = LanguageExport{}
		}
		group(m, rows)
		return m, nil
	})
	return out, err
}

// ExportByTags returns translations carrying any of the named tags, grouped
// by language. languageCode restricts the result to one language when set;
// an unknown code is reported as a FieldError on "language".
func (e *Exporter) ExportByTags(ctx context.Context, tagNames []string, languageCode string) (MultiLanguageExport, error) {
	names := NormalizeTagNames(tagNames)
	if len(names) == 0 {
		return MultiLanguageExport{}, nil
	}

	var (
		languageID int64
		code       string
	)
	if languageCode != "" {
		lang, err := e.languages.ByCode(ctx, languageCode)
		if errors.Is(err, ErrNotFound) {
			return nil, missing("language", "The selected language is invalid.")
		}
		if err != nil {
			return nil, err
		}
		languageID, code = lang.ID, lang.Code
	}

	fp, err := e.freshness.Fingerprint(ctx, TagsScope())
	if err != nil {
		return nil, err
	}

	out, _, err := e.multi.GetOrSet(ctx, TagExportKey(names, code, fp), func(ctx context.Context) (MultiLanguageExport, error) {
		rows, err := e.queries.ListExportRowsByTagNames(ctx, store.ListExportRowsByTagNamesParams{
			TagNames:   names,
			LanguageID: languageID,
		})
		if err != nil {
			return nil, fmt.Errorf("loading tagged translations: %w", err)
		}
		m := MultiLanguageExport{}
		group(m, rows)
		return m, nil
	})
	return out, err
}

func group(m MultiLanguageExport, rows []store.ExportRow) {
	for _, r := range rows {
		inner, ok := m[r.LanguageCode]
		if !ok {
			inner = LanguageExport{}
			m[r.LanguageCode] = inner
		}
		inner[r.Key] = r.Content
	}
}
