// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/gulzarali-packages/translation-service/internal/model"
	"github.com/gulzarali-packages/translation-service/internal/service"
)

// normalizer is implemented by requests that clean up input before validation.
type normalizer interface {
	Normalize()
}

// languageCodeRule checks that a value is a well-formed BCP 47 language tag.
var languageCodeRule = validation.By(func(value any) error {
	code, _ := value.(string)
	if code == "" {
		return nil
	}
	if !model.IsValidLanguageCode(model.NormalizeLanguageCode(code)) {
		return validation.NewError("validation_language_code", "must be a valid language code")
	}
	return nil
})

// LanguageRequest is the body of language create and update requests.
type LanguageRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

// Normalize trims the request fields.
func (req *LanguageRequest) Normalize() {
	req.Code = model.NormalizeLanguageCode(req.Code)
	req.Name = strings.TrimSpace(req.Name)
}

// Validate checks the request fields.
func (req *LanguageRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Code, validation.Required, validation.Length(1, model.MaxLanguageCodeLength), languageCodeRule),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
	)
}

// Input converts the request into service input. Languages are active
// unless is_active is explicitly false.
func (req *LanguageRequest) Input() service.LanguageInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return service.LanguageInput{Code: req.Code, Name: req.Name, IsActive: active}
}

// TagRequest is the body of tag create and update requests.
type TagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Normalize trims the request fields.
func (req *TagRequest) Normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
}

// Validate checks the request fields.
func (req *TagRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Description, validation.Length(0, 255)),
	)
}

// Input converts the request into service input.
func (req *TagRequest) Input() service.TagInput {
	return service.TagInput{Name: req.Name, Description: req.Description}
}

// TranslationRequest is the body of translation create and update requests.
type TranslationRequest struct {
	LanguageID int64          `json:"language_id"`
	Key        string         `json:"key"`
	Content    string         `json:"content"`
	Metadata   model.Metadata `json:"metadata"`
	Tags       []int64        `json:"tags"`
}

// Normalize trims the request fields.
func (req *TranslationRequest) Normalize() {
	req.Key = strings.TrimSpace(req.Key)
}

// Validate checks the request fields.
func (req *TranslationRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.LanguageID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Key, validation.Required, validation.Length(1, model.MaxTranslationKeyLength)),
		validation.Field(&req.Content, validation.Required),
		validation.Field(&req.Tags, validation.Each(validation.Min(int64(1)))),
	)
}

// Input converts the request into service input.
func (req *TranslationRequest) Input() service.TranslationInput {
	return service.TranslationInput{
		LanguageID: req.LanguageID,
		Key:        req.Key,
		Content:    req.Content,
		Metadata:   req.Metadata,
		TagIDs:     req.Tags,
	}
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

// Normalize trims the request fields.
func (req *LoginRequest) Normalize() {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DeviceName = strings.TrimSpace(req.DeviceName)
}

// Validate checks the request fields.
func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required),
		validation.Field(&req.DeviceName, validation.Required, validation.Length(1, 255)),
	)
}

// validationDetails flattens ozzo field errors into a field to message map.
// Returns nil if err is not a validation error.
func validationDetails(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil
	}
	details := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		details[field] = fieldErr.Error()
	}
	return details
}
