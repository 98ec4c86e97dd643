// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const languageColumns = `id, code, name, is_active, created_at, updated_at`

func scanLanguage(row interface{ Scan(...any) error }) (Language, error) {
	var l Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

const createLanguage = `INSERT INTO languages (code, name, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

type CreateLanguageParams struct {
	Code      string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (Language, error) {
	res, err := q.db.ExecContext(ctx, createLanguage, arg.Code, arg.Name, arg.IsActive, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Language{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Language{}, err
	}
	return q.GetLanguage(ctx, id)
}

const getLanguage = `SELECT ` + languageColumns + ` FROM languages WHERE id = ?`

func (q *Queries) GetLanguage(ctx context.Context, id int64) (Language, error) {
	return scanLanguage(q.db.QueryRowContext(ctx, getLanguage, id))
}

const getLanguageByCode = `SELECT ` + languageColumns + ` FROM languages WHERE code = ?`

func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (Language, error) {
	return scanLanguage(q.db.QueryRowContext(ctx, getLanguageByCode, code))
}

const listLanguages = `SELECT ` + languageColumns + ` FROM languages ORDER BY id`

func (q *Queries) ListLanguages(ctx context.Context) ([]Language, error) {
	rows, err := q.db.QueryContext(ctx, listLanguages)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Language{}
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

const countLanguages = `SELECT COUNT(*) FROM languages`

func (q *Queries) CountLanguages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countLanguages).Scan(&n)
	return n, err
}

const updateLanguage = `UPDATE languages SET code = ?, name = ?, is_active = ?, updated_at = ? WHERE id = ?`

type UpdateLanguageParams struct {
	ID        int64
	Code      string
	Name      string
	IsActive  bool
	UpdatedAt time.Time
}

func (q *Queries) UpdateLanguage(ctx context.Context, arg UpdateLanguageParams) (Language, error) {
	res, err := q.db.ExecContext(ctx, updateLanguage, arg.Code, arg.Name, arg.IsActive, arg.UpdatedAt, arg.ID)
	if err != nil {
		return Language{}, err
	}
	if err := requireAffected(res); err != nil {
		return Language{}, err
	}
	return q.GetLanguage(ctx, arg.ID)
}

const deleteLanguage = `DELETE FROM languages WHERE id = ?`

func (q *Queries) DeleteLanguage(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteLanguage, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const languageCodeExists = `SELECT COUNT(*) FROM languages WHERE code = ? AND id <> ?`

// LanguageCodeExists reports whether another language (id != excludeID) uses code.
func (q *Queries) LanguageCodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, languageCodeExists, code, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

const languageStats = `SELECT MAX(updated_at), COUNT(*) FROM languages`

// LanguageStats returns the freshness aggregate of the languages table.
func (q *Queries) LanguageStats(ctx context.Context) (TableStats, error) {
	return scanStats(q.db.QueryRowContext(ctx, languageStats))
}

func scanStats(row *sql.Row) (TableStats, error) {
	var (
		maxUpdated sql.NullString
		s          TableStats
	)
	if err := row.Scan(&maxUpdated, &s.Count); err != nil {
		return TableStats{}, err
	}
	s.MaxUpdatedAt = maxUpdated.String
	return s, nil
}

// requireAffected maps a zero-row write to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
