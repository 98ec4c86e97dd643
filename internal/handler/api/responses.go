// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"time"

	"github.com/gulzarali-packages/translation-service/internal/model"
	"github.com/gulzarali-packages/translation-service/internal/service"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LanguageRef is the language summary embedded in translation responses.
type LanguageRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// TranslationResponse represents a translation in API responses.
type TranslationResponse struct {
	ID         int64            `json:"id"`
	LanguageID int64            `json:"language_id"`
	Key        string           `json:"key"`
	Content    string           `json:"content"`
	Metadata   model.Metadata   `json:"metadata"`
	Language   LanguageRef      `json:"language"`
	Tags       []service.TagRef `json:"tags"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// UserResponse represents the authenticated user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func tagToResponse(t store.Tag) TagResponse {
	resp := TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Description.Valid {
		resp.Description = &t.Description.String
	}
	return resp
}

func translationToResponse(d service.TranslationDetail) TranslationResponse {
	tags := d.Tags
	if tags == nil {
		tags = []service.TagRef{}
	}
	return TranslationResponse{
		ID:         d.ID,
		LanguageID: d.LanguageID,
		Key:        d.Key,
		Content:    d.Content,
		Metadata:   d.Metadata,
		Language: LanguageRef{
			ID:   d.LanguageID,
			Code: d.LanguageCode,
			Name: d.LanguageName,
		},
		Tags:      tags,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func userToResponse(u store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
