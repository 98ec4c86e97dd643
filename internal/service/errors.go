// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/gulzarali-packages/translation-service/internal/store"
)

// Messages for values already taken by another record.
const (
	msgCodeTaken = "The code has already been taken."
	msgNameTaken = "The name has already been taken."
	msgKeyTaken  = "The key has already been taken for this language."
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("the provided credentials are incorrect")

	// ErrInvalidToken is returned for unknown or expired access tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// FieldError reports a rejected value for one input field. It wraps
// ErrConflict or ErrNotFound so callers can still match the category.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func conflict(field, message string) error {
	return &FieldError{Field: field, Message: message, Err: ErrConflict}
}

func missing(field, message string) error {
	return &FieldError{Field: field, Message: message, Err: ErrNotFound}
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}

// uniqueConflict returns a conflict on field when err is a unique index
// violation, and nil otherwise. A concurrent write can pass the existence
// check and still be rejected by the index.
func uniqueConflict(err error, field, message string) error {
	if store.IsUniqueViolation(err) {
		return conflict(field, message)
	}
	return nil
}
