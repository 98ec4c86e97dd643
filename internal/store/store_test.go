package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/gulzarali-packages/translation-service/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "ts-store-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(DriverSQLite, dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db, DriverSQLite); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
		_ = os.Remove(dbPath + "-wal")
		_ = os.Remove(dbPath + "-shm")
	}

	return db, cleanup
}

func createTestLanguage(t *testing.T, q *Queries, code string, active bool) Language {
	t.Helper()
	now := time.Now().UTC()
	lang, err := q.CreateLanguage(context.Background(), CreateLanguageParams{
		Code:      code,
		Name:      code + " name",
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLanguage(%s): %v", code, err)
	}
	return lang
}

func createTestTag(t *testing.T, q *Queries, name string) Tag {
	t.Helper()
	now := time.Now().UTC()
	tag, err := q.CreateTag(context.Background(), CreateTagParams{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTag(%s): %v", name, err)
	}
	return tag
}

func createTestTranslation(t *testing.T, q *Queries, langID int64, key, content string, tagIDs ...int64) Translation {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	tr, err := q.CreateTranslation(ctx, CreateTranslationParams{
		LanguageID: langID,
		Key:        key,
		Content:    content,
		Metadata:   model.Metadata{"context": "test"},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateTranslation(%s): %v", key, err)
	}
	for _, id := range tagIDs {
		if err := q.AddTagToTranslation(ctx, AddTagToTranslationParams{TranslationID: tr.ID, TagID: id}); err != nil {
			t.Fatalf("AddTagToTranslation: %v", err)
		}
	}
	return tr
}

func TestNewDB_UnsupportedDriver(t *testing.T) {
	if _, err := NewDB("postgres", "whatever"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestPrepareDSN(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dsn     string
		want    string
		wantErr bool
	}{
		{
			name:   "sqlite appends pragmas",
			driver: DriverSQLite,
			dsn:    "data.db",
			want:   "data.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=temp_store(MEMORY)&_time_format=sqlite",
		},
		{
			name:   "sqlite3 keeps existing query",
			driver: DriverSQLiteCGO,
			dsn:    "file:data.db?cache=shared",
			want:   "file:data.db?cache=shared&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=on",
		},
		{
			name:    "unknown driver",
			driver:  "oracle",
			dsn:     "x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := prepareDSN(tt.driver, tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("prepareDSN: %v", err)
			}
			if got != tt.want {
				t.Errorf("prepareDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrepareDSN_MySQLForcesParseTime(t *testing.T) {
	got, err := prepareDSN(DriverMySQL, "user:pass@tcp(localhost:3306)/translations")
	if err != nil {
		t.Fatalf("prepareDSN: %v", err)
	}
	for _, want := range []string{"parseTime=true", "clientFoundRows=true"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %q", got, want)
		}
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "%hello%"},
		{"50%", "%50!%%"},
		{"a_b", "%a!_b%"},
		{"wow!", "%wow!!%"},
		{"", "%%"},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(3); got != "?, ?, ?" {
		t.Errorf("placeholders(3) = %q", got)
	}
	if got := placeholders(0); got != "" {
		t.Errorf("placeholders(0) = %q", got)
	}
}

func TestLanguageCRUD(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	lang := createTestLanguage(t, q, "en", true)
	if lang.ID == 0 {
		t.Fatal("lang.ID should not be 0")
	}

	found, err := q.GetLanguageByCode(ctx, "en")
	if err != nil {
		t.Fatalf("GetLanguageByCode: %v", err)
	}
	if found.ID != lang.ID || !found.IsActive {
		t.Errorf("GetLanguageByCode = %+v", found)
	}

	updated, err := q.UpdateLanguage(ctx, UpdateLanguageParams{
		ID:        lang.ID,
		Code:      "en",
		Name:      "English",
		IsActive:  false,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpdateLanguage: %v", err)
	}
	if updated.Name != "English" || updated.IsActive {
		t.Errorf("UpdateLanguage = %+v", updated)
	}

	exists, err := q.LanguageCodeExists(ctx, "en", lang.ID)
	if err != nil {
		t.Fatalf("LanguageCodeExists: %v", err)
	}
	if exists {
		t.Error("code should not conflict with its own row")
	}
	exists, err = q.LanguageCodeExists(ctx, "en", 0)
	if err != nil {
		t.Fatalf("LanguageCodeExists: %v", err)
	}
	if !exists {
		t.Error("code should exist")
	}

	if err := q.DeleteLanguage(ctx, lang.ID); err != nil {
		t.Fatalf("DeleteLanguage: %v", err)
	}
	if _, err := q.GetLanguage(ctx, lang.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if err := q.DeleteLanguage(ctx, lang.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second delete: expected sql.ErrNoRows, got %v", err)
	}
}

func TestLanguageCodeUnique(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	q := New(db)
	createTestLanguage(t, q, "fr", true)

	now := time.Now().UTC()
	_, err := q.CreateLanguage(context.Background(), CreateLanguageParams{
		Code: "fr", Name: "Duplicate", IsActive: true, CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Fatal("expected unique constraint violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestTranslationKeyUniquePerLanguage(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	en := createTestLanguage(t, q, "en", true)
	fr := createTestLanguage(t, q, "fr", true)

	createTestTranslation(t, q, en.ID, "greeting", "Hello")
	createTestTranslation(t, q, fr.ID, "greeting", "Bonjour")

	exists, err := q.TranslationKeyExists(ctx, TranslationKeyExistsParams{LanguageID: en.ID, Key: "greeting"})
	if err != nil {
		t.Fatalf("TranslationKeyExists: %v", err)
	}
	if !exists {
		t.Error("greeting should exist for en")
	}

	now := time.Now().UTC()
	_, err = q.CreateTranslation(ctx, CreateTranslationParams{
		LanguageID: en.ID, Key: "greeting", Content: "Hi", CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Fatal("expected unique (language_id, key) violation")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no rows", sql.ErrNoRows, false},
		{"sqlite", errors.New("UNIQUE constraint failed: translations.language_id, translations.key"), true},
		{"wrapped sqlite", fmt.Errorf("creating: %w", errors.New("constraint failed: UNIQUE constraint failed: languages.code (2067)")), true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'fr' for key 'code'"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1452, Message: "foreign key"}, false},
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetTranslation(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	en := createTestLanguage(t, q, "en", true)
	tr := createTestTranslation(t, q, en.ID, "greeting", "Hello")

	got, err := q.GetTranslation(ctx, tr.ID)
	if err != nil {
		t.Fatalf("GetTranslation: %v", err)
	}
	if got.Key != "greeting" || got.Content != "Hello" {
		t.Errorf("GetTranslation = %+v", got)
	}
	if got.LanguageCode != "en" {
		t.Errorf("LanguageCode = %q, want en", got.LanguageCode)
	}
	if got.Metadata["context"] != "test" {
		t.Errorf("Metadata = %v", got.Metadata)
	}
}

func TestListTranslations_Filters(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	en := createTestLanguage(t, q, "en", true)
	fr := createTestLanguage(t, q, "fr", true)
	web := createTestTag(t, q, "web")
	mobile := createTestTag(t, q, "mobile")

	createTestTranslation(t, q, en.ID, "auth.login", "Log in", web.ID)
	createTestTranslation(t, q, en.ID, "auth.logout", "Log out", mobile.ID)
	createTestTranslation(t, q, fr.ID, "auth.login", "Connexion", web.ID, mobile.ID)
	createTestTranslation(t, q, fr.ID, "discount", "50% off")

	tests := []struct {
		name   string
		filter TranslationFilter
		want   int64
	}{
		{"no filter", TranslationFilter{}, 4},
		{"language", TranslationFilter{LanguageID: en.ID}, 2},
		{"tag name", TranslationFilter{TagName: "web"}, 2},
		{"tag ids", TranslationFilter{TagIDs: []int64{web.ID, mobile.ID}}, 3},
		{"key like", TranslationFilter{Key: "logout"}, 1},
		{"content like", TranslationFilter{Content: "log"}, 2},
		{"literal percent", TranslationFilter{Content: "50%"}, 1},
		{"search key or content", TranslationFilter{Search: "connexion"}, 1},
		{"combined", TranslationFilter{LanguageID: fr.ID, TagName: "mobile"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := q.CountFilteredTranslations(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CountFilteredTranslations: %v", err)
			}
			if n != tt.want {
				t.Errorf("count = %d, want %d", n, tt.want)
			}

			items, err := q.ListTranslations(ctx, ListTranslationsParams{Filter: tt.filter, Limit: 10})
			if err != nil {
				t.Fatalf("ListTranslations: %v", err)
			}
			if int64(len(items)) != tt.want {
				t.Errorf("len(items) = %d, want %d", len(items), tt.want)
			}
		})
	}
}

func TestListTranslations_Pagination(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	en := createTestLanguage(t, q, "en", true)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		createTestTranslation(t, q, en.ID, k, k)
	}

	page, err := q.ListTranslations(ctx, ListTranslationsParams{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListTranslations: %v", err)
	}
	if len(page) != 2 || page[0].Key != "c" || page[1].Key != "d" {
		t.Errorf("page = %+v", page)
	}
}

func TestListExportRowsByTagNames_Union(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	en := createTestLanguage(t, q, "en", true)
	fr := createTestLanguage(t, q, "fr", false)
	web := createTestTag(t, q, "web")
	mobile := createTestTag(t, q, "mobile")
	createTestTag(t, q, "unused")

	createTestTranslation(t, q, en.ID, "a", "A", web.ID)
	createTestTranslation(t, q, en.ID, "b", "B", mobile.ID)
	createTestTranslation(t, q, en.ID, "c", "C", web.ID, mobile.ID)
	createTestTranslation(t, q, fr.ID, "a", "A-fr", web.ID)
	createTestTranslation(t, q, en.ID, "d", "D")

	rows, err := q.ListExportRowsByTagNames(ctx, ListExportRowsByTagNamesParams{TagNames: []string{"web", "mobile"}})
	if err != nil {
		t.Fatalf("ListExportRowsByTagNames: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("len(rows) = %d, want 4 (each translation once)", len(rows))
	}

	rows, err = q.ListExportRowsByTagNames(ctx, ListExportRowsByTagNamesParams{
		TagNames:   []string{"web"},
		LanguageID: en.ID,
	})
	if err != nil {
		t.Fatalf("ListExportRowsByTagNames: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("len(rows) = %d, want 2", len(rows))
	}

	rows, err = q.ListExportRowsByTagNames(ctx, ListExportRowsByTagNamesParams{TagNames: []string{"unused", "missing"}})
	if err != nil {
		t.Fatalf("ListExportRowsByTagNames: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestListExportRowsAll_IncludesInactive(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	en := createTestLanguage(t, q, "en", true)
	de := createTestLanguage(t, q, "de", false)
	createTestTranslation(t, q, en.ID, "greeting", "Hello")
	createTestTranslation(t, q, de.ID, "greeting", "Hallo")

	rows, err := q.ListExportRowsAll(ctx)
	if err != nil {
		t.Fatalf("ListExportRowsAll: %v", err)
	}
	codes := map[string]bool{}
	for _, r := range rows {
		codes[r.LanguageCode] = true
	}
	if !codes["en"] || !codes["de"] {
		t.Errorf("codes = %v, want en and de", codes)
	}
}

func TestTranslationStats(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	empty, err := q.TranslationStats(ctx)
	if err != nil {
		t.Fatalf("TranslationStats: %v", err)
	}
	if empty.Count != 0 || empty.MaxUpdatedAt != "" {
		t.Errorf("empty stats = %+v", empty)
	}

	en := createTestLanguage(t, q, "en", true)
	tr := createTestTranslation(t, q, en.ID, "greeting", "Hello")

	before, err := q.TranslationStatsByLanguage(ctx, en.ID)
	if err != nil {
		t.Fatalf("TranslationStatsByLanguage: %v", err)
	}
	if before.Count != 1 || before.MaxUpdatedAt == "" {
		t.Errorf("stats = %+v", before)
	}

	time.Sleep(2 * time.Millisecond)
	if err := q.UpdateTranslation(ctx, UpdateTranslationParams{
		ID: tr.ID, LanguageID: en.ID, Key: "greeting", Content: "Hi", UpdatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("UpdateTranslation: %v", err)
	}

	after, err := q.TranslationStatsByLanguage(ctx, en.ID)
	if err != nil {
		t.Fatalf("TranslationStatsByLanguage: %v", err)
	}
	if after.MaxUpdatedAt == before.MaxUpdatedAt {
		t.Errorf("MaxUpdatedAt did not change after update: %q", after.MaxUpdatedAt)
	}
}

func TestDeleteLanguage_CascadesTranslations(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	en := createTestLanguage(t, q, "en", true)
	web := createTestTag(t, q, "web")
	createTestTranslation(t, q, en.ID, "greeting", "Hello", web.ID)

	if err := q.DeleteLanguage(ctx, en.ID); err != nil {
		t.Fatalf("DeleteLanguage: %v", err)
	}

	n, err := q.CountTranslations(ctx)
	if err != nil {
		t.Fatalf("CountTranslations: %v", err)
	}
	if n != 0 {
		t.Errorf("translations left = %d, want 0", n)
	}
	links, err := q.CountTranslationTags(ctx)
	if err != nil {
		t.Fatalf("CountTranslationTags: %v", err)
	}
	if links != 0 {
		t.Errorf("translation_tags left = %d, want 0", links)
	}
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	wantErr := errors.New("boom")

	err := RunInTx(ctx, db, func(q *Queries) error {
		createTestLanguage(t, q, "es", true)
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunInTx error = %v, want %v", err, wantErr)
	}

	if _, err := New(db).GetLanguageByCode(ctx, "es"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("language should have been rolled back, got err=%v", err)
	}
}

func TestAccessTokens(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now().UTC()

	user, err := q.CreateUser(ctx, CreateUserParams{
		Email: "test@example.com", Name: "Test", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	active, err := q.CreateAccessToken(ctx, CreateAccessTokenParams{
		UserID: user.ID, Name: "laptop", TokenHash: "hash-active", TokenPrefix: "abcd1234", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	_, err = q.CreateAccessToken(ctx, CreateAccessTokenParams{
		UserID: user.ID, Name: "phone", TokenHash: "hash-expired", TokenPrefix: "efgh5678",
		ExpiresAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true}, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	found, err := q.GetAccessTokenByHash(ctx, "hash-active")
	if err != nil {
		t.Fatalf("GetAccessTokenByHash: %v", err)
	}
	if found.ID != active.ID || found.IsExpired(now) {
		t.Errorf("found = %+v", found)
	}

	purged, err := q.DeleteExpiredAccessTokens(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredAccessTokens: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	n, err := q.DeleteAccessTokensByUserAndName(ctx, DeleteAccessTokensByUserAndNameParams{UserID: user.ID, Name: "laptop"})
	if err != nil {
		t.Fatalf("DeleteAccessTokensByUserAndName: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
}

func TestEvents(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	if err := q.CreateEvent(ctx, CreateEventParams{
		Level:     model.EventLevelWarning,
		Category:  model.EventCategoryCache,
		Message:   "cache unavailable",
		Metadata:  `{"key":"export:all"}`,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	events, err := q.ListEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Category != model.EventCategoryCache {
		t.Errorf("events = %+v", events)
	}
}

func TestSeed(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()
	q := New(db)

	opts := SeedOptions{AdminEmail: "root@example.com", AdminPassword: "long-enough-password"}
	if err := Seed(ctx, db, opts); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Seeding twice is a no-op.
	if err := Seed(ctx, db, opts); err != nil {
		t.Fatalf("Seed (second run): %v", err)
	}

	user, err := q.GetUserByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user.Name != DefaultAdminName {
		t.Errorf("Name = %q, want %q", user.Name, DefaultAdminName)
	}

	langs, err := q.ListLanguages(ctx)
	if err != nil {
		t.Fatalf("ListLanguages: %v", err)
	}
	if len(langs) != len(model.CommonLanguages) {
		t.Errorf("got %d languages, want %d", len(langs), len(model.CommonLanguages))
	}
}

func TestSeed_WithoutPasswordSkipsAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := Seed(ctx, db, SeedOptions{AdminEmail: "root@example.com"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, err := New(db).GetUserByEmail(ctx, "root@example.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByEmail error = %v, want sql.ErrNoRows", err)
	}
}
