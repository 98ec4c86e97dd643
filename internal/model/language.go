// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"

	"golang.org/x/text/language"
)

// MaxLanguageCodeLength is the longest language code accepted by the API.
const MaxLanguageCodeLength = 10

// CommonLanguages lists the languages created by the seeder.
var CommonLanguages = []struct {
	Code string
	Name string
}{
	{"en", "English"},
	{"fr", "French"},
	{"es", "Spanish"},
	{"de", "German"},
	{"it", "Italian"},
}

// NormalizeLanguageCode trims and lowercases a language code.
func NormalizeLanguageCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// IsValidLanguageCode reports whether code parses as a BCP 47 language tag
// (en, pt-br, zh-hant) and fits in MaxLanguageCodeLength.
func IsValidLanguageCode(code string) bool {
	if code == "" || len(code) > MaxLanguageCodeLength {
		return false
	}
	_, err := language.Parse(code)
	return err == nil
}
