// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain types and helpers shared by the store,
// service and API layers.
package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// TokenPrefixLength is the number of leading characters of a raw token kept
// in clear text for identification.
const TokenPrefixLength = 8

// GenerateToken generates a new random access token.
// Returns the raw token (shown to the client once) and its prefix.
func GenerateToken() (rawToken string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	rawToken = base64.RawURLEncoding.EncodeToString(bytes)
	prefix = rawToken[:TokenPrefixLength]

	return rawToken, prefix, nil
}

// HashToken creates a SHA-256 hash of the token for storage.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
