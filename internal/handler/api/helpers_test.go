package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gulzarali-packages/translation-service/internal/cache"
	"github.com/gulzarali-packages/translation-service/internal/middleware"
	"github.com/gulzarali-packages/translation-service/internal/service"
	"github.com/gulzarali-packages/translation-service/internal/store"
	"github.com/gulzarali-packages/translation-service/internal/version"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "secret-password"
)

type testEnv struct {
	t      *testing.T
	db     *sql.DB
	svc    Services
	router http.Handler
	token  string
}

type envOptions struct {
	exportPublic bool
	maxFailed    int
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	db, err := store.NewDB(store.DriverSQLiteCGO, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db, store.DriverSQLiteCGO))

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	t.Cleanup(func() { _ = c.Close() })

	events := service.NewEventService(db)
	inv := service.NewCacheInvalidator(c)
	languages := service.NewLanguageService(db, c, inv, events)
	svc := Services{
		Languages:    languages,
		Tags:         service.NewTagService(db, inv, events),
		Translations: service.NewTranslationService(db, inv, events),
		Exporter:     service.NewExporter(db, c, languages, service.NewFreshnessResolver(db, c)),
		Auth:         service.NewAuthService(db, 0, events),
	}

	maxFailed := opts.maxFailed
	if maxFailed == 0 {
		maxFailed = 5
	}
	login := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: maxFailed,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	t.Cleanup(login.Stop)

	router := NewRouter(RouterConfig{
		DB:              db,
		Cache:           c,
		Services:        svc,
		Version:         version.Info{Version: "test"},
		IsDev:           true,
		ExportPublic:    opts.exportPublic,
		LoginProtection: login,
	})

	env := &testEnv{t: t, db: db, svc: svc, router: router}

	_, err = svc.Auth.CreateUser(context.Background(), testEmail, "Admin", testPassword)
	require.NoError(t, err)
	result, err := svc.Auth.Login(context.Background(), testEmail, testPassword, "tests")
	require.NoError(t, err)
	env.token = result.Token

	return env
}

// do sends a request with the env's token.
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doWithToken(method, path, body, e.token)
}

func (e *testEnv) doWithToken(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createLanguage creates a language through the API and returns its id.
func (e *testEnv) createLanguage(code, name string) int64 {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/languages", map[string]any{"code": code, "name": name})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data store.Language `json:"data"`
	}
	decode(e.t, w, &resp)
	return resp.Data.ID
}

func (e *testEnv) createTag(name string) int64 {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/tags", map[string]any{"name": name})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data TagResponse `json:"data"`
	}
	decode(e.t, w, &resp)
	return resp.Data.ID
}

func (e *testEnv) createTranslation(languageID int64, key, content string, tagIDs ...int64) TranslationResponse {
	e.t.Helper()
	body := map[string]any{"language_id": languageID, "key": key, "content": content}
	if len(tagIDs) > 0 {
		body["tags"] = tagIDs
	}
	w := e.do(http.MethodPost, "/api/translations", body)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data TranslationResponse `json:"data"`
	}
	decode(e.t, w, &resp)
	return resp.Data
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	decode(t, w, &resp)
	return resp.Error
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
