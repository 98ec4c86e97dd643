// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const tagColumns = `id, name, description, created_at, updated_at`

func scanTag(row interface{ Scan(...any) error }) (Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (q *Queries) queryTags(ctx context.Context, query string, args ...any) ([]Tag, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const createTag = `INSERT INTO tags (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`

type CreateTagParams struct {
	Name        string
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error) {
	res, err := q.db.ExecContext(ctx, createTag, arg.Name, arg.Description, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Tag{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Tag{}, err
	}
	return q.GetTag(ctx, id)
}

const getTag = `SELECT ` + tagColumns + ` FROM tags WHERE id = ?`

func (q *Queries) GetTag(ctx context.Context, id int64) (Tag, error) {
	return scanTag(q.db.QueryRowContext(ctx, getTag, id))
}

const getTagByName = `SELECT ` + tagColumns + ` FROM tags WHERE name = ?`

func (q *Queries) GetTagByName(ctx context.Context, name string) (Tag, error) {
	return scanTag(q.db.QueryRowContext(ctx, getTagByName, name))
}

const listTags = `SELECT ` + tagColumns + ` FROM tags ORDER BY name`

func (q *Queries) ListTags(ctx context.Context) ([]Tag, error) {
	return q.queryTags(ctx, listTags)
}

// ListTagsByIDs returns the tags whose id is in ids.
func (q *Queries) ListTagsByIDs(ctx context.Context, ids []int64) ([]Tag, error) {
	if len(ids) == 0 {
		return []Tag{}, nil
	}
	query := `SELECT ` + tagColumns + ` FROM tags WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY name`
	return q.queryTags(ctx, query, int64Args(ids)...)
}

const countTags = `SELECT COUNT(*) FROM tags`

func (q *Queries) CountTags(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTags).Scan(&n)
	return n, err
}

const updateTag = `UPDATE tags SET name = ?, description = ?, updated_at = ? WHERE id = ?`

type UpdateTagParams struct {
	ID          int64
	Name        string
	Description sql.NullString
	UpdatedAt   time.Time
}

func (q *Queries) UpdateTag(ctx context.Context, arg UpdateTagParams) (Tag, error) {
	res, err := q.db.ExecContext(ctx, updateTag, arg.Name, arg.Description, arg.UpdatedAt, arg.ID)
	if err != nil {
		return Tag{}, err
	}
	if err := requireAffected(res); err != nil {
		return Tag{}, err
	}
	return q.GetTag(ctx, arg.ID)
}

const deleteTag = `DELETE FROM tags WHERE id = ?`

func (q *Queries) DeleteTag(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteTag, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const tagNameExists = `SELECT COUNT(*) FROM tags WHERE name = ? AND id <> ?`

// TagNameExists reports whether another tag (id != excludeID) uses name.
func (q *Queries) TagNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, tagNameExists, name, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

const tagStats = `SELECT MAX(updated_at), COUNT(*) FROM tags`

// TagStats returns the freshness aggregate of the tags table.
func (q *Queries) TagStats(ctx context.Context) (TableStats, error) {
	return scanStats(q.db.QueryRowContext(ctx, tagStats))
}

const deleteTranslationTagsByTag = `DELETE FROM translation_tags WHERE tag_id = ?`

func (q *Queries) DeleteTranslationTagsByTag(ctx context.Context, tagID int64) error {
	_, err := q.db.ExecContext(ctx, deleteTranslationTagsByTag, tagID)
	return err
}

const translationTagStats = `SELECT COUNT(*) FROM translation_tags`

// CountTranslationTags returns the number of translation/tag associations.
func (q *Queries) CountTranslationTags(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, translationTagStats).Scan(&n)
	return n, err
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
