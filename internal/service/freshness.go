// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/cache"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// NoDataFingerprint is returned for a scope that holds no rows at all.
const NoDataFingerprint = "empty"

// fingerprintLength is the number of hex characters kept from the digest.
const fingerprintLength = 16

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeLanguage
	scopeTags
)

// Scope selects the data a fingerprint describes.
type Scope struct {
	kind       scopeKind
	languageID int64
}

// AllScope covers every language and translation.
func AllScope() Scope { return Scope{kind: scopeAll} }

// LanguageScope covers one language and its translations.
func LanguageScope(languageID int64) Scope {
	return Scope{kind: scopeLanguage, languageID: languageID}
}

// TagsScope covers translations, languages, tags and their associations.
func TagsScope() Scope { return Scope{kind: scopeTags} }

// CacheKey returns the key the fingerprint of the scope is cached under.
func (s Scope) CacheKey() string {
	switch s.kind {
	case scopeLanguage:
		return fingerprintLanguageKey(s.languageID)
	case scopeTags:
		return fingerprintTagsKey
	default:
		return fingerprintAllKey
	}
}

func (s Scope) String() string {
	return s.CacheKey()
}

// FreshnessResolver derives a fingerprint that changes whenever the data of a
// scope changes. Export cache keys embed the fingerprint, so a new
// fingerprint makes older payloads unreachable.
type FreshnessResolver struct {
	queries *store.Queries
	cache   cache.Cacher
	ttl     time.Duration
}

// NewFreshnessResolver creates a resolver caching fingerprints in c.
func NewFreshnessResolver(db *sql.DB, c cache.Cacher) *FreshnessResolver {
	return &FreshnessResolver{
		queries: store.New(db),
		cache:   c,
		ttl:     FingerprintTTL,
	}
}

// Fingerprint returns the current fingerprint for scope. A cached value is
// reused for up to FingerprintTTL; cache failures fall back to computing it.
func (r *FreshnessResolver) Fingerprint(ctx context.Context, scope Scope) (string, error) {
	key := scope.CacheKey()

	if r.cache != nil {
		data, err := r.cache.Get(ctx, key)
		switch {
		case err == nil && len(data) > 0:
			return string(data), nil
		case err != nil && !errors.Is(err, cache.ErrCacheMiss):
			slog.Warn("fingerprint cache read failed", "key", key, "error", err)
		}
	}

	fp, err := r.compute(ctx, scope)
	if err != nil {
		return "", err
	}

	// A write committing between compute and Set can leave fp cached after its
	// invalidation; r.ttl bounds how long that lasts.
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, []byte(fp), r.ttl); err != nil {
			slog.Warn("fingerprint cache write failed", "key", key, "error", err)
		}
	}

	return fp, nil
}

func (r *FreshnessResolver) compute(ctx context.Context, scope Scope) (string, error) {
	var parts []store.TableStats

	switch scope.kind {
	case scopeLanguage:
		ts, err := r.queries.TranslationStatsByLanguage(ctx, scope.languageID)
		if err != nil {
			return "", fmt.Errorf("reading translation stats: %w", err)
		}
		parts = append(parts, ts)

		lang, err := r.queries.GetLanguage(ctx, scope.languageID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			parts = append(parts, store.TableStats{})
		case err != nil:
			return "", fmt.Errorf("reading language: %w", err)
		default:
			parts = append(parts, store.TableStats{
				MaxUpdatedAt: lang.UpdatedAt.UTC().Format(time.RFC3339Nano),
				Count:        1,
			})
		}

	case scopeAll, scopeTags:
		ts, err := r.queries.TranslationStats(ctx)
		if err != nil {
			return "", fmt.Errorf("reading translation stats: %w", err)
		}
		ls, err := r.queries.LanguageStats(ctx)
		if err != nil {
			return "", fmt.Errorf("reading language stats: %w", err)
		}
		parts = append(parts, ts, ls)

		if scope.kind == scopeTags {
			gs, err := r.queries.TagStats(ctx)
			if err != nil {
				return "", fmt.Errorf("reading tag stats: %w", err)
			}
			links, err := r.queries.CountTranslationTags(ctx)
			if err != nil {
				return "", fmt.Errorf("counting tag links: %w", err)
			}
			parts = append(parts, gs, store.TableStats{Count: links})
		}
	}

	return fingerprintOf(parts), nil
}

// fingerprintOf hashes the aggregates. A scope without any rows gets
// NoDataFingerprint so an empty store always maps to the same key.
func fingerprintOf(parts []store.TableStats) string {
	var (
		b     strings.Builder
		total int64
	)
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(p.MaxUpdatedAt)
		b.WriteByte('#')
		b.WriteString(strconv.FormatInt(p.Count, 10))
		total += p.Count
	}
	if total == 0 {
		return NoDataFingerprint
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}
