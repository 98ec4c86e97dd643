// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/model"
)

type Language struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Tag struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description sql.NullString `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Translation struct {
	ID         int64          `json:"id"`
	LanguageID int64          `json:"language_id"`
	Key        string         `json:"key"`
	Content    string         `json:"content"`
	Metadata   model.Metadata `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TranslationWithLanguage is a translation joined to its language row.
type TranslationWithLanguage struct {
	Translation
	LanguageCode string `json:"language_code"`
	LanguageName string `json:"language_name"`
}

// TranslationTag is one row of the translation_tags association joined to
// the tag name.
type TranslationTag struct {
	TranslationID int64
	TagID         int64
	TagName       string
}

// ExportRow is the minimal projection used to build export payloads.
type ExportRow struct {
	LanguageCode string
	Key          string
	Content      string
}

// TableStats is the freshness aggregate of a table or a filtered subset.
type TableStats struct {
	MaxUpdatedAt string
	Count        int64
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type AccessToken struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	Name        string       `json:"name"`
	TokenHash   string       `json:"-"`
	TokenPrefix string       `json:"token_prefix"`
	LastUsedAt  sql.NullTime `json:"last_used_at"`
	ExpiresAt   sql.NullTime `json:"expires_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IsExpired reports whether the token has an expiry in the past.
func (t AccessToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Valid && !t.ExpiresAt.Time.After(now)
}

type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
