// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/cache"
	"github.com/gulzarali-packages/translation-service/internal/model"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// LanguageInput holds the writable fields of a language.
type LanguageInput struct {
	Code     string
	Name     string
	IsActive bool
}

// LanguageService manages languages and resolves language codes.
type LanguageService struct {
	db          *sql.DB
	queries     *store.Queries
	cache       cache.Cacher
	invalidator *CacheInvalidator
	events      *EventService
	codeTTL     time.Duration
}

// NewLanguageService creates a LanguageService. c may be nil to disable the
// code lookup cache.
func NewLanguageService(db *sql.DB, c cache.Cacher, invalidator *CacheInvalidator, events *EventService) *LanguageService {
	return &LanguageService{
		db:          db,
		queries:     store.New(db),
		cache:       c,
		invalidator: invalidator,
		events:      events,
		codeTTL:     LanguageCodeTTL,
	}
}

// List returns all languages ordered by id.
func (s *LanguageService) List(ctx context.Context) ([]store.Language, error) {
	return s.queries.ListLanguages(ctx)
}

// Get returns a language by id.
func (s *LanguageService) Get(ctx context.Context, id int64) (store.Language, error) {
	lang, err := s.queries.GetLanguage(ctx, id)
	if err != nil {
		return store.Language{}, notFound(err, "language")
	}
	return lang, nil
}

// ByCode resolves a language code. Results are cached for LanguageCodeTTL and
// dropped when the language is updated or deleted. Unknown codes are not
// cached and return ErrNotFound.
func (s *LanguageService) ByCode(ctx context.Context, code string) (store.Language, error) {
	code = model.NormalizeLanguageCode(code)
	key := languageCodeKey(code)

	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			var lang store.Language
			if err := json.Unmarshal(data, &lang); err == nil {
				return lang, nil
			}
			slog.Warn("discarding malformed cached language", "key", key)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Warn("language cache read failed", "key", key, "error", err)
		}
	}

	lang, err := s.queries.GetLanguageByCode(ctx, code)
	if err != nil {
		return store.Language{}, notFound(err, "language")
	}

	if s.cache != nil {
		if data, err := json.Marshal(lang); err == nil {
			if err := s.cache.Set(ctx, key, data, s.codeTTL); err != nil {
				slog.Warn("language cache write failed", "key", key, "error", err)
			}
		}
	}

	return lang, nil
}

// Create adds a language. The code must be unique.
func (s *LanguageService) Create(ctx context.Context, in LanguageInput) (store.Language, error) {
	code := model.NormalizeLanguageCode(in.Code)

	exists, err := s.queries.LanguageCodeExists(ctx, code, 0)
	if err != nil {
		return store.Language{}, fmt.Errorf("checking language code: %w", err)
	}
	if exists {
		return store.Language{}, conflict("code", msgCodeTaken)
	}

	now := time.Now().UTC()
	lang, err := s.queries.CreateLanguage(ctx, store.CreateLanguageParams{
		Code:      code,
		Name:      in.Name,
		IsActive:  in.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if cerr := uniqueConflict(err, "code", msgCodeTaken); cerr != nil {
			return store.Language{}, cerr
		}
		return store.Language{}, fmt.Errorf("creating language: %w", err)
	}

	s.invalidator.LanguageChanged(ctx, lang.ID, lang.Code)
	s.logInfo(ctx, "Language created", lang)
	return lang, nil
}

// Update replaces the fields of a language.
func (s *LanguageService) Update(ctx context.Context, id int64, in LanguageInput) (store.Language, error) {
	current, err := s.queries.GetLanguage(ctx, id)
	if err != nil {
		return store.Language{}, notFound(err, "language")
	}

	code := model.NormalizeLanguageCode(in.Code)
	exists, err := s.queries.LanguageCodeExists(ctx, code, id)
	if err != nil {
		return store.Language{}, fmt.Errorf("checking language code: %w", err)
	}
	if exists {
		return store.Language{}, conflict("code", msgCodeTaken)
	}

	lang, err := s.queries.UpdateLanguage(ctx, store.UpdateLanguageParams{
		ID:        id,
		Code:      code,
		Name:      in.Name,
		IsActive:  in.IsActive,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		if cerr := uniqueConflict(err, "code", msgCodeTaken); cerr != nil {
			return store.Language{}, cerr
		}
		return store.Language{}, notFound(err, "language")
	}

	s.invalidator.LanguageChanged(ctx, id, current.Code, lang.Code)
	s.logInfo(ctx, "Language updated", lang)
	return lang, nil
}

// Delete removes a language together with its translations and their tag
// links.
func (s *LanguageService) Delete(ctx context.Context, id int64) error {
	lang, err := s.queries.GetLanguage(ctx, id)
	if err != nil {
		return notFound(err, "language")
	}

	var removed int64
	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeleteTranslationTagsByLanguage(ctx, id); err != nil {
			return err
		}
		n, err := q.DeleteTranslationsByLanguage(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return q.DeleteLanguage(ctx, id)
	})
	if err != nil {
		return notFound(err, "language")
	}

	s.invalidator.LanguageChanged(ctx, id, lang.Code)
	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategoryLanguage, "Language deleted", map[string]any{
			"language_id":  id,
			"code":         lang.Code,
			"translations": removed,
		})
	}
	return nil
}

func (s *LanguageService) logInfo(ctx context.Context, message string, lang store.Language) {
	if s.events == nil {
		return
	}
	_ = s.events.LogInfo(ctx, model.EventCategoryLanguage, message, map[string]any{
		"language_id": lang.ID,
		"code":        lang.Code,
	})
}
