// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/model"
)

// keyCol is quoted because KEY is reserved in MySQL. SQLite accepts backticks too.
const keyCol = "`key`"

const translationWithLanguageColumns = `t.id, t.language_id, t.` + keyCol + `, t.content, t.metadata, t.created_at, t.updated_at, l.code, l.name`

func scanTranslation(row interface{ Scan(...any) error }) (Translation, error) {
	var t Translation
	err := row.Scan(&t.ID, &t.LanguageID, &t.Key, &t.Content, &t.Metadata, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanTranslationWithLanguage(row interface{ Scan(...any) error }) (TranslationWithLanguage, error) {
	var t TranslationWithLanguage
	err := row.Scan(&t.ID, &t.LanguageID, &t.Key, &t.Content, &t.Metadata, &t.CreatedAt, &t.UpdatedAt,
		&t.LanguageCode, &t.LanguageName)
	return t, err
}

const createTranslation = `INSERT INTO translations (language_id, ` + keyCol + `, content, metadata, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`

type CreateTranslationParams struct {
	LanguageID int64
	Key        string
	Content    string
	Metadata   model.Metadata
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (q *Queries) CreateTranslation(ctx context.Context, arg CreateTranslationParams) (Translation, error) {
	res, err := q.db.ExecContext(ctx, createTranslation,
		arg.LanguageID, arg.Key, arg.Content, arg.Metadata, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Translation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Translation{}, err
	}
	return Translation{
		ID:         id,
		LanguageID: arg.LanguageID,
		Key:        arg.Key,
		Content:    arg.Content,
		Metadata:   arg.Metadata,
		CreatedAt:  arg.CreatedAt,
		UpdatedAt:  arg.UpdatedAt,
	}, nil
}

const getTranslation = `SELECT ` + translationWithLanguageColumns + `
FROM translations t
JOIN languages l ON l.id = t.language_id
WHERE t.id = ?`

func (q *Queries) GetTranslation(ctx context.Context, id int64) (TranslationWithLanguage, error) {
	return scanTranslationWithLanguage(q.db.QueryRowContext(ctx, getTranslation, id))
}

const getTranslationRow = `SELECT id, language_id, ` + keyCol + `, content, metadata, created_at, updated_at FROM translations WHERE id = ?`

// GetTranslationRow returns the bare translation row without joins.
func (q *Queries) GetTranslationRow(ctx context.Context, id int64) (Translation, error) {
	return scanTranslation(q.db.QueryRowContext(ctx, getTranslationRow, id))
}

const updateTranslation = `UPDATE translations SET language_id = ?, ` + keyCol + ` = ?, content = ?, metadata = ?, updated_at = ? WHERE id = ?`

type UpdateTranslationParams struct {
	ID         int64
	LanguageID int64
	Key        string
	Content    string
	Metadata   model.Metadata
	UpdatedAt  time.Time
}

func (q *Queries) UpdateTranslation(ctx context.Context, arg UpdateTranslationParams) error {
	res, err := q.db.ExecContext(ctx, updateTranslation,
		arg.LanguageID, arg.Key, arg.Content, arg.Metadata, arg.UpdatedAt, arg.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const deleteTranslation = `DELETE FROM translations WHERE id = ?`

func (q *Queries) DeleteTranslation(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, deleteTranslation, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const deleteTranslationsByLanguage = `DELETE FROM translations WHERE language_id = ?`

// DeleteTranslationsByLanguage removes every translation of a language and
// returns the number of deleted rows.
func (q *Queries) DeleteTranslationsByLanguage(ctx context.Context, languageID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTranslationsByLanguage, languageID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTranslationTagsByLanguage = `DELETE FROM translation_tags WHERE translation_id IN (SELECT id FROM translations WHERE language_id = ?)`

func (q *Queries) DeleteTranslationTagsByLanguage(ctx context.Context, languageID int64) error {
	_, err := q.db.ExecContext(ctx, deleteTranslationTagsByLanguage, languageID)
	return err
}

const translationKeyExists = `SELECT COUNT(*) FROM translations WHERE language_id = ? AND ` + keyCol + ` = ? AND id <> ?`

type TranslationKeyExistsParams struct {
	LanguageID int64
	Key        string
	ExcludeID  int64
}

// TranslationKeyExists reports whether another translation of the language
// already uses the key.
func (q *Queries) TranslationKeyExists(ctx context.Context, arg TranslationKeyExistsParams) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, translationKeyExists, arg.LanguageID, arg.Key, arg.ExcludeID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const countTranslations = `SELECT COUNT(*) FROM translations`

func (q *Queries) CountTranslations(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTranslations).Scan(&n)
	return n, err
}

const addTagToTranslation = `INSERT INTO translation_tags (translation_id, tag_id) VALUES (?, ?)`

type AddTagToTranslationParams struct {
	TranslationID int64
	TagID         int64
}

func (q *Queries) AddTagToTranslation(ctx context.Context, arg AddTagToTranslationParams) error {
	_, err := q.db.ExecContext(ctx, addTagToTranslation, arg.TranslationID, arg.TagID)
	return err
}

const deleteTranslationTags = `DELETE FROM translation_tags WHERE translation_id = ?`

func (q *Queries) DeleteTranslationTags(ctx context.Context, translationID int64) error {
	_, err := q.db.ExecContext(ctx, deleteTranslationTags, translationID)
	return err
}

// ListTagsForTranslations returns the tag associations of the given translations.
func (q *Queries) ListTagsForTranslations(ctx context.Context, translationIDs []int64) ([]TranslationTag, error) {
	if len(translationIDs) == 0 {
		return []TranslationTag{}, nil
	}
	query := `SELECT tt.translation_id, tt.tag_id, g.name
FROM translation_tags tt
JOIN tags g ON g.id = tt.tag_id
WHERE tt.translation_id IN (` + placeholders(len(translationIDs)) + `)
ORDER BY g.name`

	rows, err := q.db.QueryContext(ctx, query, int64Args(translationIDs)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []TranslationTag{}
	for rows.Next() {
		var tt TranslationTag
		if err := rows.Scan(&tt.TranslationID, &tt.TagID, &tt.TagName); err != nil {
			return nil, err
		}
		items = append(items, tt)
	}
	return items, rows.Err()
}

// TranslationFilter narrows a translation listing. Zero values disable a condition.
type TranslationFilter struct {
	LanguageID int64
	// TagName keeps translations carrying the named tag.
	TagName string
	// TagIDs keeps translations carrying any of the tags.
	TagIDs []int64
	// Key and Content are substring matches combined with AND.
	Key     string
	Content string
	// Search is a substring matched against key OR content.
	Search string
}

func (f TranslationFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.LanguageID > 0 {
		conds = append(conds, "t.language_id = ?")
		args = append(args, f.LanguageID)
	}
	if f.TagName != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM translation_tags tt JOIN tags g ON g.id = tt.tag_id
WHERE tt.translation_id = t.id AND g.name = ?)`)
		args = append(args, f.TagName)
	}
	if len(f.TagIDs) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM translation_tags tt
WHERE tt.translation_id = t.id AND tt.tag_id IN (`+placeholders(len(f.TagIDs))+`))`)
		args = append(args, int64Args(f.TagIDs)...)
	}
	if f.Key != "" {
		conds = append(conds, "t."+keyCol+" LIKE ? ESCAPE '!'")
		args = append(args, likePattern(f.Key))
	}
	if f.Content != "" {
		conds = append(conds, "t.content LIKE ? ESCAPE '!'")
		args = append(args, likePattern(f.Content))
	}
	if f.Search != "" {
		conds = append(conds, "(t."+keyCol+" LIKE ? ESCAPE '!' OR t.content LIKE ? ESCAPE '!')")
		p := likePattern(f.Search)
		args = append(args, p, p)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type ListTranslationsParams struct {
	Filter TranslationFilter
	Limit  int64
	Offset int64
}

// ListTranslations returns one page of translations matching the filter,
// ordered by id.
func (q *Queries) ListTranslations(ctx context.Context, arg ListTranslationsParams) ([]TranslationWithLanguage, error) {
	where, args := arg.Filter.where()
	query := `SELECT ` + translationWithLanguageColumns + `
FROM translations t
JOIN languages l ON l.id = t.language_id` + where + `
ORDER BY t.id
LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []TranslationWithLanguage{}
	for rows.Next() {
		t, err := scanTranslationWithLanguage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// CountFilteredTranslations returns the number of translations matching the filter.
func (q *Queries) CountFilteredTranslations(ctx context.Context, filter TranslationFilter) (int64, error) {
	where, args := filter.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations t`+where, args...).Scan(&n)
	return n, err
}

const listExportRowsByLanguage = `SELECT l.code, t.` + keyCol + `, t.content
FROM translations t
JOIN languages l ON l.id = t.language_id
WHERE t.language_id = ?
ORDER BY t.id`

// ListExportRowsByLanguage returns the key/content pairs of one language.
func (q *Queries) ListExportRowsByLanguage(ctx context.Context, languageID int64) ([]ExportRow, error) {
	return q.queryExportRows(ctx, listExportRowsByLanguage, languageID)
}

const listExportRowsAll = `SELECT l.code, t.` + keyCol + `, t.content
FROM translations t
JOIN languages l ON l.id = t.language_id
ORDER BY l.code, t.id`

// ListExportRowsAll returns the key/content pairs of every language,
// regardless of the language's active flag.
func (q *Queries) ListExportRowsAll(ctx context.Context) ([]ExportRow, error) {
	return q.queryExportRows(ctx, listExportRowsAll)
}

type ListExportRowsByTagNamesParams struct {
	TagNames []string
	// LanguageID restricts the rows to one language when non-zero.
	LanguageID int64
}

// ListExportRowsByTagNames returns the key/content pairs of translations that
// carry any of the named tags.
func (q *Queries) ListExportRowsByTagNames(ctx context.Context, arg ListExportRowsByTagNamesParams) ([]ExportRow, error) {
	if len(arg.TagNames) == 0 {
		return []ExportRow{}, nil
	}
	args := stringArgs(arg.TagNames)
	query := `SELECT l.code, t.` + keyCol + `, t.content
FROM translations t
JOIN languages l ON l.id = t.language_id
WHERE EXISTS (
    SELECT 1 FROM translation_tags tt
    JOIN tags g ON g.id = tt.tag_id
    WHERE tt.translation_id = t.id AND g.name IN (` + placeholders(len(arg.TagNames)) + `)
)`
	if arg.LanguageID > 0 {
		query += ` AND t.language_id = ?`
		args = append(args, arg.LanguageID)
	}
	query += ` ORDER BY l.code, t.id`
	return q.queryExportRows(ctx, query, args...)
}

func (q *Queries) queryExportRows(ctx context.Context, query string, args ...any) ([]ExportRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []ExportRow{}
	for rows.Next() {
		var r ExportRow
		if err := rows.Scan(&r.LanguageCode, &r.Key, &r.Content); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const translationStats = `SELECT MAX(updated_at), COUNT(*) FROM translations`

// TranslationStats returns the freshness aggregate over all translations.
func (q *Queries) TranslationStats(ctx context.Context) (TableStats, error) {
	return scanStats(q.db.QueryRowContext(ctx, translationStats))
}

const translationStatsByLanguage = `SELECT MAX(updated_at), COUNT(*) FROM translations WHERE language_id = ?`

// TranslationStatsByLanguage returns the freshness aggregate of one language's translations.
func (q *Queries) TranslationStatsByLanguage(ctx context.Context, languageID int64) (TableStats, error) {
	return scanStats(q.db.QueryRowContext(ctx, translationStatsByLanguage, languageID))
}
