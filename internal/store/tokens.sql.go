// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const accessTokenColumns = `id, user_id, name, token_hash, token_prefix, last_used_at, expires_at, created_at`

func scanAccessToken(row interface{ Scan(...any) error }) (AccessToken, error) {
	var t AccessToken
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.TokenHash, &t.TokenPrefix, &t.LastUsedAt, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

const createAccessToken = `INSERT INTO access_tokens (user_id, name, token_hash, token_prefix, expires_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`

type CreateAccessTokenParams struct {
	UserID      int64
	Name        string
	TokenHash   string
	TokenPrefix string
	ExpiresAt   sql.NullTime
	CreatedAt   time.Time
}

func (q *Queries) CreateAccessToken(ctx context.Context, arg CreateAccessTokenParams) (AccessToken, error) {
	res, err := q.db.ExecContext(ctx, createAccessToken,
		arg.UserID, arg.Name, arg.TokenHash, arg.TokenPrefix, arg.ExpiresAt, arg.CreatedAt)
	if err != nil {
		return AccessToken{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{
		ID:          id,
		UserID:      arg.UserID,
		Name:        arg.Name,
		TokenHash:   arg.TokenHash,
		TokenPrefix: arg.TokenPrefix,
		ExpiresAt:   arg.ExpiresAt,
		CreatedAt:   arg.CreatedAt,
	}, nil
}

const getAccessTokenByHash = `SELECT ` + accessTokenColumns + ` FROM access_tokens WHERE token_hash = ?`

func (q *Queries) GetAccessTokenByHash(ctx context.Context, tokenHash string) (AccessToken, error) {
	return scanAccessToken(q.db.QueryRowContext(ctx, getAccessTokenByHash, tokenHash))
}

const listAccessTokensByUser = `SELECT ` + accessTokenColumns + ` FROM access_tokens WHERE user_id = ? ORDER BY id`

func (q *Queries) ListAccessTokensByUser(ctx context.Context, userID int64) ([]AccessToken, error) {
	rows, err := q.db.QueryContext(ctx, listAccessTokensByUser, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []AccessToken{}
	for rows.Next() {
		t, err := scanAccessToken(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateAccessTokenLastUsed = `UPDATE access_tokens SET last_used_at = ? WHERE id = ?`

type UpdateAccessTokenLastUsedParams struct {
	ID         int64
	LastUsedAt time.Time
}

func (q *Queries) UpdateAccessTokenLastUsed(ctx context.Context, arg UpdateAccessTokenLastUsedParams) error {
	_, err := q.db.ExecContext(ctx, updateAccessTokenLastUsed, arg.LastUsedAt, arg.ID)
	return err
}

const deleteAccessToken = `DELETE FROM access_tokens WHERE id = ?`

func (q *Queries) DeleteAccessToken(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteAccessToken, id)
	return err
}

const deleteAccessTokensByUserAndName = `DELETE FROM access_tokens WHERE user_id = ? AND name = ?`

type DeleteAccessTokensByUserAndNameParams struct {
	UserID int64
	Name   string
}

// DeleteAccessTokensByUserAndName revokes the tokens a user issued for one device.
func (q *Queries) DeleteAccessTokensByUserAndName(ctx context.Context, arg DeleteAccessTokensByUserAndNameParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAccessTokensByUserAndName, arg.UserID, arg.Name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteAccessTokensByUser = `DELETE FROM access_tokens WHERE user_id = ?`

func (q *Queries) DeleteAccessTokensByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAccessTokensByUser, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpiredAccessTokens = `DELETE FROM access_tokens WHERE expires_at IS NOT NULL AND expires_at <= ?`

// DeleteExpiredAccessTokens removes tokens that expired at or before now.
func (q *Queries) DeleteExpiredAccessTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredAccessTokens, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
