// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seed fills the database with generated translations for load and
// performance testing.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gulzarali-packages/translation-service/internal/model"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// DefaultChunkSize is the number of translations written per transaction.
const DefaultChunkSize = 1000

// Tags created by the seeder.
var Tags = []struct {
	Name        string
	Description string
}{
	{"web", "Strings shown in the web application"},
	{"mobile", "Strings shown in the mobile apps"},
	{"desktop", "Strings shown in the desktop client"},
	{"admin", "Administration screens"},
	{"auth", "Sign in, sign up and password flows"},
	{"email", "Transactional email templates"},
	{"errors", "Error and validation messages"},
	{"marketing", "Landing pages and campaigns"},
}

// Word lists for generating keys and content
var (
	sections = []string{
		"auth", "dashboard", "settings", "profile", "billing",
		"notifications", "search", "checkout", "onboarding", "errors",
	}

	elements = []string{
		"title", "subtitle", "button", "label", "placeholder",
		"tooltip", "message", "heading", "description", "link",
	}

	words = []string{
		"account", "save", "cancel", "continue", "welcome", "update",
		"delete", "confirm", "password", "email", "language", "profile",
		"settings", "order", "payment", "success", "failed", "please",
		"your", "new", "review", "details", "back", "next",
	}

	contexts = []string{
		"page header", "form field", "modal dialog", "navigation",
		"toast notification", "email body", "empty state",
	}

	editors = []string{"alice", "bob", "carol", "dave", "erin"}
)

// Invalidator drops cached export fingerprints after bulk writes.
type Invalidator interface {
	TranslationChanged(ctx context.Context, languageIDs ...int64)
	TagsChanged(ctx context.Context)
}

// Options configures a seeding run.
type Options struct {
	// Count is the number of translations to create.
	Count int
	// ChunkSize is the number of translations per transaction (default 1000).
	ChunkSize int
	// Rand supplies randomness; a time-seeded source is used when nil.
	Rand *rand.Rand
	// Invalidator, when set, is told about the written languages and tags.
	Invalidator Invalidator
	// Progress, when set, is called after each committed chunk.
	Progress func(done, total int)
}

// Result reports what a seeding run created.
type Result struct {
	Languages    int
	Tags         int
	Translations int
	Duration     time.Duration
}

// Run creates the common languages and tags when missing, then Count
// translations with one to three random tags each.
func Run(ctx context.Context, db *sql.DB, opts Options) (Result, error) {
	start := time.Now()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	queries := store.New(db)
	var res Result

	languageIDs, created, err := ensureLanguages(ctx, queries)
	if err != nil {
		return res, err
	}
	res.Languages = created

	tagIDs, created, err := ensureTags(ctx, queries)
	if err != nil {
		return res, err
	}
	res.Tags = created

	for done := 0; done < opts.Count; {
		n := min(opts.ChunkSize, opts.Count-done)
		err := store.RunInTx(ctx, db, func(q *store.Queries) error {
			return writeChunk(ctx, q, rng, n, languageIDs, tagIDs)
		})
		if err != nil {
			return res, fmt.Errorf("seeding translations %d-%d: %w", done+1, done+n, err)
		}
		done += n
		res.Translations = done
		if opts.Progress != nil {
			opts.Progress(done, opts.Count)
		}
	}

	if opts.Invalidator != nil {
		opts.Invalidator.TranslationChanged(ctx, languageIDs...)
		opts.Invalidator.TagsChanged(ctx)
	}

	res.Duration = time.Since(start)
	slog.Info("seeding finished",
		"languages", res.Languages,
		"tags", res.Tags,
		"translations", res.Translations,
		"duration", res.Duration.Round(time.Millisecond),
	)
	return res, nil
}

func ensureLanguages(ctx context.Context, q *store.Queries) ([]int64, int, error) {
	now := time.Now().UTC()
	ids := make([]int64, 0, len(model.CommonLanguages))
	created := 0
	for _, l := range model.CommonLanguages {
		lang, err := q.GetLanguageByCode(ctx, l.Code)
		if errors.Is(err, sql.ErrNoRows) {
			lang, err = q.CreateLanguage(ctx, store.CreateLanguageParams{
				Code:      l.Code,
				Name:      l.Name,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			})
			created++
		}
		if err != nil {
			return nil, 0, fmt.Errorf("ensuring language %s: %w", l.Code, err)
		}
		ids = append(ids, lang.ID)
	}
	return ids, created, nil
}

func ensureTags(ctx context.Context, q *store.Queries) ([]int64, int, error) {
	now := time.Now().UTC()
	ids := make([]int64, 0, len(Tags))
	created := 0
	for _, t := range Tags {
		tag, err := q.GetTagByName(ctx, t.Name)
		if errors.Is(err, sql.ErrNoRows) {
			tag, err = q.CreateTag(ctx, store.CreateTagParams{
				Name:        t.Name,
				Description: sql.NullString{String: t.Description, Valid: true},
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			created++
		}
		if err != nil {
			return nil, 0, fmt.Errorf("ensuring tag %s: %w", t.Name, err)
		}
		ids = append(ids, tag.ID)
	}
	return ids, created, nil
}

func writeChunk(ctx context.Context, q *store.Queries, rng *rand.Rand, n int, languageIDs, tagIDs []int64) error {
	now := time.Now().UTC()
	for range n {
		t, err := q.CreateTranslation(ctx, store.CreateTranslationParams{
			LanguageID: languageIDs[rng.Intn(len(languageIDs))],
			Key:        randomKey(rng),
			Content:    randomSentence(rng),
			Metadata:   randomMetadata(rng),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}
		for _, tagID := range pickTags(rng, tagIDs, 3) {
			if err := q.AddTagToTranslation(ctx, store.AddTagToTranslationParams{
				TranslationID: t.ID,
				TagID:         tagID,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// randomKey returns a dotted key such as "settings.button.3f2a9c1b".
func randomKey(rng *rand.Rand) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s.%s.%s", randomElement(rng, sections), randomElement(rng, elements), suffix)
}

// randomSentence returns three to ten random words, capitalized.
func randomSentence(rng *rand.Rand) string {
	n := rng.Intn(8) + 3
	parts := make([]string, n)
	for i := range parts {
		parts[i] = randomElement(rng, words)
	}
	s := strings.Join(parts, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func randomMetadata(rng *rand.Rand) model.Metadata {
	return model.Metadata{
		"context":        randomElement(rng, contexts),
		"max_length":     (rng.Intn(10) + 1) * 25,
		"last_edited_by": randomElement(rng, editors),
	}
}

// pickTags returns between one and maxItems distinct ids.
func pickTags(rng *rand.Rand, ids []int64, maxItems int) []int64 {
	if len(ids) == 0 {
		return nil
	}
	n := min(rng.Intn(maxItems)+1, len(ids))
	picked := make([]int64, 0, n)
	for _, i := range rng.Perm(len(ids))[:n] {
		picked = append(picked, ids[i])
	}
	return picked
}

func randomElement(rng *rand.Rand, slice []string) string {
	return slice[rng.Intn(len(slice))]
}
