// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/model"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// TagInput holds the writable fields of a tag.
type TagInput struct {
	Name        string
	Description string
}

// TagService manages tags.
type TagService struct {
	db          *sql.DB
	queries     *store.Queries
	invalidator *CacheInvalidator
	events      *EventService
}

// NewTagService creates a TagService.
func NewTagService(db *sql.DB, invalidator *CacheInvalidator, events *EventService) *TagService {
	return &TagService{
		db:          db,
		queries:     store.New(db),
		invalidator: invalidator,
		events:      events,
	}
}

// List returns all tags ordered by name.
func (s *TagService) List(ctx context.Context) ([]store.Tag, error) {
	return s.queries.ListTags(ctx)
}

// Get returns a tag by id.
func (s *TagService) Get(ctx context.Context, id int64) (store.Tag, error) {
	tag, err := s.queries.GetTag(ctx, id)
	if err != nil {
		return store.Tag{}, notFound(err, "tag")
	}
	return tag, nil
}

// Create adds a tag. The name must be unique.
func (s *TagService) Create(ctx context.Context, in TagInput) (store.Tag, error) {
	name := strings.TrimSpace(in.Name)

	exists, err := s.queries.TagNameExists(ctx, name, 0)
	if err != nil {
		return store.Tag{}, fmt.Errorf("checking tag name: %w", err)
	}
	if exists {
		return store.Tag{}, conflict("name", msgNameTaken)
	}

	now := time.Now().UTC()
	tag, err := s.queries.CreateTag(ctx, store.CreateTagParams{
		Name:        name,
		Description: nullString(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if cerr := uniqueConflict(err, "name", msgNameTaken); cerr != nil {
			return store.Tag{}, cerr
		}
		return store.Tag{}, fmt.Errorf("creating tag: %w", err)
	}

	s.invalidator.TagsChanged(ctx)
	s.logInfo(ctx, "Tag created", tag)
	return tag, nil
}

// Update replaces the fields of a tag.
func (s *TagService) Update(ctx context.Context, id int64, in TagInput) (store.Tag, error) {
	name := strings.TrimSpace(in.Name)

	exists, err := s.queries.TagNameExists(ctx, name, id)
	if err != nil {
		return store.Tag{}, fmt.Errorf("checking tag name: %w", err)
	}
	if exists {
		return store.Tag{}, conflict("name", msgNameTaken)
	}

	tag, err := s.queries.UpdateTag(ctx, store.UpdateTagParams{
		ID:          id,
		Name:        name,
		Description: nullString(in.Description),
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if cerr := uniqueConflict(err, "name", msgNameTaken); cerr != nil {
			return store.Tag{}, cerr
		}
		return store.Tag{}, notFound(err, "tag")
	}

	s.invalidator.TagsChanged(ctx)
	s.logInfo(ctx, "Tag updated", tag)
	return tag, nil
}

// Delete removes a tag and detaches it from all translations.
func (s *TagService) Delete(ctx context.Context, id int64) error {
	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeleteTranslationTagsByTag(ctx, id); err != nil {
			return err
		}
		return q.DeleteTag(ctx, id)
	})
	if err != nil {
		return notFound(err, "tag")
	}

	s.invalidator.TagsChanged(ctx)
	if s.events != nil {
		_ = s.events.LogInfo(ctx, model.EventCategoryTag, "Tag deleted", map[string]any{"tag_id": id})
	}
	return nil
}

func (s *TagService) logInfo(ctx context.Context, message string, tag store.Tag) {
	if s.events == nil {
		return
	}
	_ = s.events.LogInfo(ctx, model.EventCategoryTag, message, map[string]any{
		"tag_id": tag.ID,
		"name":   tag.Name,
	})
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
