// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/model"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// DefaultPerPage is the page size used when none is requested.
const DefaultPerPage = 15

// MaxPerPage caps the page size of translation listings.
const MaxPerPage = 100

// TagRef is the tag summary embedded in translation responses.
type TagRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TranslationDetail is a translation with its language and tags.
type TranslationDetail struct {
	store.TranslationWithLanguage
	Tags []TagRef `json:"tags"`
}

// TranslationPage is one page of a translation listing.
type TranslationPage struct {
	Items   []TranslationDetail
	Total   int64
	Page    int
	PerPage int
}

// LastPage returns the number of the last page, at least 1.
func (p TranslationPage) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// TranslationInput holds the writable fields of a translation.
type TranslationInput struct {
	LanguageID int64
	Key        string
	Content    string
	Metadata   model.Metadata
	TagIDs     []int64
}

// TranslationService manages translations and their tag links.
type TranslationService struct {
	db          *sql.DB
	queries     *store.Queries
	invalidator *CacheInvalidator
	events      *EventService
}

// NewTranslationService creates a TranslationService.
func NewTranslationService(db *sql.DB, invalidator *CacheInvalidator, events *EventService) *TranslationService {
	return &TranslationService{
		db:          db,
		queries:     store.New(db),
		invalidator: invalidator,
		events:      events,
	}
}

// List returns one page of translations matching filter.
func (s *TranslationService) List(ctx context.Context, filter store.TranslationFilter, page, perPage int) (TranslationPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	total, err := s.queries.CountFilteredTranslations(ctx, filter)
	if err != nil {
		return TranslationPage{}, fmt.Errorf("counting translations: %w", err)
	}

	rows, err := s.queries.ListTranslations(ctx, store.ListTranslationsParams{
		Filter: filter,
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	})
	if err != nil {
		return TranslationPage{}, fmt.Errorf("listing translations: %w", err)
	}

	items, err := s.withTags(ctx, rows)
	if err != nil {
		return TranslationPage{}, err
	}

	return TranslationPage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Search matches query against key or content, optionally narrowed by
// language and tag ids.
func (s *TranslationService) Search(ctx context.Context, query string, languageID int64, tagIDs []int64, page, perPage int) (TranslationPage, error) {
	return s.List(ctx, store.TranslationFilter{
		LanguageID: languageID,
		TagIDs:     tagIDs,
		Search:     strings.TrimSpace(query),
	}, page, perPage)
}

// Get returns a translation with its language and tags.
func (s *TranslationService) Get(ctx context.Context, id int64) (TranslationDetail, error) {
	t, err := s.queries.GetTranslation(ctx, id)
	if err != nil {
		return TranslationDetail{}, notFound(err, "translation")
	}
	items, err := s.withTags(ctx, []store.TranslationWithLanguage{t})
	if err != nil {
		return TranslationDetail{}, err
	}
	return items[0], nil
}

// Create adds a translation and links its tags in one transaction.
func (s *TranslationService) Create(ctx context.Context, in TranslationInput) (TranslationDetail, error) {
	if err := s.validate(ctx, in, 0); err != nil {
		return TranslationDetail{}, err
	}

	now := time.Now().UTC()
	var id int64
	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		t, err := q.CreateTranslation(ctx, store.CreateTranslationParams{
			LanguageID: in.LanguageID,
			Key:        in.Key,
			Content:    in.Content,
			Metadata:   in.Metadata,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}
		id = t.ID
		return linkTags(ctx, q, id, in.TagIDs)
	})
	if err != nil {
		if cerr := uniqueConflict(err, "key", msgKeyTaken); cerr != nil {
			return TranslationDetail{}, cerr
		}
		return TranslationDetail{}, fmt.Errorf("creating translation: %w", err)
	}

	s.invalidator.TranslationChanged(ctx, in.LanguageID)
	s.logInfo(ctx, "Translation created", id, in.LanguageID, in.Key)
	return s.Get(ctx, id)
}

// Update replaces a translation and its tag links in one transaction.
// Moving it to another language invalidates both languages.
func (s *TranslationService) Update(ctx context.Context, id int64, in TranslationInput) (TranslationDetail, error) {
	current, err := s.queries.GetTranslationRow(ctx, id)
	if err != nil {
		return TranslationDetail{}, notFound(err, "translation")
	}
	if err := s.validate(ctx, in, id); err != nil {
		return TranslationDetail{}, err
	}

	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		err := q.UpdateTranslation(ctx, store.UpdateTranslationParams{
			ID:         id,
			LanguageID: in.LanguageID,
			Key:        in.Key,
			Content:    in.Content,
			Metadata:   in.Metadata,
			UpdatedAt:  time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if err := q.DeleteTranslationTags(ctx, id); err != nil {
			return err
		}
		return linkTags(ctx, q, id, in.TagIDs)
	})
	if err != nil {
		if cerr := uniqueConflict(err, "key", msgKeyTaken); cerr != nil {
			return TranslationDetail{}, cerr
		}
		return TranslationDetail{}, notFound(err, "translation")
	}

	s.invalidator.TranslationChanged(ctx, current.LanguageID, in.LanguageID)
	s.logInfo(ctx, "Translation updated", id, in.LanguageID, in.Key)
	return s.Get(ctx, id)
}

// Delete removes a translation and its tag links.
func (s *TranslationService) Delete(ctx context.Context, id int64) error {
	current, err := s.queries.GetTranslationRow(ctx, id)
	if err != nil {
		return notFound(err, "translation")
	}

	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeleteTranslationTags(ctx, id); err != nil {
			return err
		}
		return q.DeleteTranslation(ctx, id)
	})
	if err != nil {
		return notFound(err, "translation")
	}

	s.invalidator.TranslationChanged(ctx, current.LanguageID)
	s.logInfo(ctx, "Translation deleted", id, current.LanguageID, current.Key)
	return nil
}

// validate checks references and the (language, key) uniqueness rule.
func (s *TranslationService) validate(ctx context.Context, in TranslationInput, excludeID int64) error {
	if _, err := s.queries.GetLanguage(ctx, in.LanguageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return missing("language_id", "The selected language id is invalid.")
		}
		return fmt.Errorf("loading language: %w", err)
	}

	exists, err := s.queries.TranslationKeyExists(ctx, store.TranslationKeyExistsParams{
		LanguageID: in.LanguageID,
		Key:        in.Key,
		ExcludeID:  excludeID,
	})
	if err != nil {
		return fmt.Errorf("checking translation key: %w", err)
	}
	if exists {
		return conflict("key", msgKeyTaken)
	}

	ids := uniqueIDs(in.TagIDs)
	if len(ids) > 0 {
		tags, err := s.queries.ListTagsByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("loading tags: %w", err)
		}
		if len(tags) != len(ids) {
			return missing("tags", "The selected tags are invalid.")
		}
	}
	return nil
}

func (s *TranslationService) withTags(ctx context.Context, rows []store.TranslationWithLanguage) ([]TranslationDetail, error) {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	links, err := s.queries.ListTagsForTranslations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading translation tags: %w", err)
	}

	byID := make(map[int64][]TagRef, len(rows))
	for _, l := range links {
		byID[l.TranslationID] = append(byID[l.TranslationID], TagRef{ID: l.TagID, Name: l.TagName})
	}

	items := make([]TranslationDetail, len(rows))
	for i, r := range rows {
		tags := byID[r.ID]
		if tags == nil {
			tags = []TagRef{}
		}
		items[i] = TranslationDetail{TranslationWithLanguage: r, Tags: tags}
	}
	return items, nil
}

func (s *TranslationService) logInfo(ctx context.Context, message string, id, languageID int64, key string) {
	if s.events == nil {
		return
	}
	_ = s.events.LogInfo(ctx, model.EventCategoryTranslation, message, map[string]any{
		"translation_id": id,
		"language_id":    languageID,
		"key":            key,
	})
}

func linkTags(ctx context.Context, q *store.Queries, translationID int64, tagIDs []int64) error {
	for _, tagID := range uniqueIDs(tagIDs) {
		if err := q.AddTagToTranslation(ctx, store.AddTagToTranslationParams{
			TranslationID: translationID,
			TagID:         tagID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
