// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"

	"github.com/gulzarali-packages/translation-service/internal/cache"
)

// CacheInvalidator drops the fingerprints of scopes touched by a write.
// Export payloads are never deleted directly: once the fingerprint is gone
// the next export computes a new key and old payloads expire on their own.
type CacheInvalidator struct {
	cache cache.Cacher
}

// NewCacheInvalidator creates an invalidator working on c.
func NewCacheInvalidator(c cache.Cacher) *CacheInvalidator {
	return &CacheInvalidator{cache: c}
}

// TranslationChanged invalidates the global and tag scopes and the scope of
// every given language. Pass both languages when a translation moves.
func (i *CacheInvalidator) TranslationChanged(ctx context.Context, languageIDs ...int64) {
	keys := []string{fingerprintAllKey, fingerprintTagsKey}
	seen := make(map[int64]bool, len(languageIDs))
	for _, id := range languageIDs {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, fingerprintLanguageKey(id))
	}
	i.delete(ctx, keys...)
}

// LanguageChanged invalidates the scopes of a language and the code lookup
// entries of its old and new codes.
func (i *CacheInvalidator) LanguageChanged(ctx context.Context, languageID int64, codes ...string) {
	keys := []string{fingerprintAllKey, fingerprintTagsKey, fingerprintLanguageKey(languageID)}
	for _, code := range codes {
		if code != "" {
			keys = append(keys, languageCodeKey(code))
		}
	}
	i.delete(ctx, keys...)
}

// TagsChanged invalidates the tag export scope.
func (i *CacheInvalidator) TagsChanged(ctx context.Context) {
	i.delete(ctx, fingerprintTagsKey)
}

func (i *CacheInvalidator) delete(ctx context.Context, keys ...string) {
	if i == nil || i.cache == nil {
		return
	}
	for _, key := range keys {
		if err := i.cache.Delete(ctx, key); err != nil {
			slog.Warn("cache invalidation failed", "key", key, "error", err)
		}
	}
}
