// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxTranslationKeyLength is the longest translation key accepted by the API.
const MaxTranslationKeyLength = 255

// Metadata is the free-form JSON object attached to a translation
// (context, max_length, last_edited_by, ...).
type Metadata map[string]any

// Value implements driver.Valuer. A nil map is stored as SQL NULL.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("metadata: unsupported column type")
	}
	if len(raw) == 0 {
		*m = nil
		return nil
	}
	out := make(Metadata)
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decoding metadata: %w", err)
	}
	*m = out
	return nil
}
