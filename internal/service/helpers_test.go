package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gulzarali-packages/translation-service/internal/cache"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

// testDB opens a migrated SQLite database in a temp directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(store.DriverSQLiteCGO, filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.Migrate(db, store.DriverSQLiteCGO))
	return db
}

type testServices struct {
	db           *sql.DB
	cache        cache.Cacher
	events       *EventService
	languages    *LanguageService
	tags         *TagService
	translations *TranslationService
	exporter     *Exporter
	freshness    *FreshnessResolver
}

func newTestServices(t *testing.T, c cache.Cacher) *testServices {
	t.Helper()

	db := testDB(t)
	if c == nil {
		mc := cache.NewMemoryCache(cache.MemoryCacheOptions{})
		t.Cleanup(func() { _ = mc.Close() })
		c = mc
	}

	events := NewEventService(db)
	inv := NewCacheInvalidator(c)
	languages := NewLanguageService(db, c, inv, events)
	freshness := NewFreshnessResolver(db, c)

	return &testServices{
		db:           db,
		cache:        c,
		events:       events,
		languages:    languages,
		tags:         NewTagService(db, inv, events),
		translations: NewTranslationService(db, inv, events),
		exporter:     NewExporter(db, c, languages, freshness),
		freshness:    freshness,
	}
}

func (s *testServices) language(t *testing.T, code string, active bool) store.Language {
	t.Helper()
	lang, err := s.languages.Create(context.Background(), LanguageInput{Code: code, Name: code, IsActive: active})
	require.NoError(t, err)
	return lang
}

func (s *testServices) tag(t *testing.T, name string) store.Tag {
	t.Helper()
	tag, err := s.tags.Create(context.Background(), TagInput{Name: name})
	require.NoError(t, err)
	return tag
}

func (s *testServices) translation(t *testing.T, languageID int64, key, content string, tagIDs ...int64) TranslationDetail {
	t.Helper()
	tr, err := s.translations.Create(context.Background(), TranslationInput{
		LanguageID: languageID,
		Key:        key,
		Content:    content,
		TagIDs:     tagIDs,
	})
	require.NoError(t, err)
	return tr
}
