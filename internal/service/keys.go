// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cache lifetimes.
const (
	// ExportTTL is how long an export payload stays cached (1440 minutes).
	ExportTTL = 24 * time.Hour
	// FingerprintTTL bounds how long a fingerprint is reused when an
	// invalidation was not observed by this cache.
	FingerprintTTL = time.Hour
	// LanguageCodeTTL bounds how long a resolved language code is reused.
	// A lookup racing a delete or rename can store a stale entry after the
	// invalidation ran; it then lives at most this long.
	LanguageCodeTTL = time.Hour
)

const (
	fingerprintAllKey  = "fingerprint:all"
	fingerprintTagsKey = "fingerprint:tags"
)

func fingerprintLanguageKey(languageID int64) string {
	return "fingerprint:lang:" + strconv.FormatInt(languageID, 10)
}

// LanguageExportKey is the cache key of a single-language export.
func LanguageExportKey(code, fingerprint string) string {
	return "export:lang:" + code + ":" + fingerprint
}

// AllExportKey is the cache key of the all-languages export.
func AllExportKey(fingerprint string) string {
	return "export:all:" + fingerprint
}

// TagExportKey is the cache key of a tag export. languageCode may be empty
// for all languages.
func TagExportKey(tagNames []string, languageCode, fingerprint string) string {
	scope := languageCode
	if scope == "" {
		scope = "all"
	}
	return "export:tags:" + TagSetHash(tagNames) + ":" + scope + ":" + fingerprint
}

// TagSetHash hashes the sorted, de-duplicated tag names so that the same
// set in any order maps to the same key.
func TagSetHash(tagNames []string) string {
	names := NormalizeTagNames(tagNames)
	sum := sha256.Sum256([]byte(strings.Join(names, "\x00")))
	return hex.EncodeToString(sum[:])
}

// NormalizeTagNames trims, drops empties, de-duplicates and sorts tag names.
func NormalizeTagNames(tagNames []string) []string {
	seen := make(map[string]struct{}, len(tagNames))
	out := make([]string, 0, len(tagNames))
	for _, n := range tagNames {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func languageCodeKey(code string) string {
	return "language:code:" + code
}
