package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gulzarali-packages/translation-service/internal/store"
)

var errBadToken = errors.New("bad token")

func testAuthenticator(valid string) Authenticator {
	return AuthenticatorFunc(func(_ context.Context, raw string) (store.User, store.AccessToken, error) {
		switch raw {
		case valid:
			return store.User{ID: 7, Email: "a@example.com"}, store.AccessToken{ID: 3, UserID: 7, Name: "cli"}, nil
		case "broken":
			return store.User{}, store.AccessToken{}, errors.New("database is locked")
		default:
			return store.User{}, store.AccessToken{}, errBadToken
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(req)
			if got != tt.want || ok != tt.ok {
				t.Errorf("BearerToken() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTokenAuth(t *testing.T) {
	var gotUser *store.User
	var gotToken *store.AccessToken
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUser(r)
		gotToken = GetToken(r)
		w.WriteHeader(http.StatusOK)
	})

	isInvalid := func(err error) bool { return errors.Is(err, errBadToken) }
	handler := TokenAuth(testAuthenticator("good"), isInvalid)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"store failure", "Bearer broken", http.StatusInternalServerError},
		{"valid token", "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotToken = nil, nil
			req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				if gotUser == nil || gotUser.ID != 7 {
					t.Errorf("user = %+v, want id 7", gotUser)
				}
				if gotToken == nil || gotToken.ID != 3 {
					t.Errorf("token = %+v, want id 3", gotToken)
				}
				return
			}

			var apiErr APIError
			if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if apiErr.Error.Code == "" {
				t.Error("error code should be set")
			}
		})
	}
}

func TestGetUserWithoutContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetUser(req) != nil {
		t.Error("GetUser() should be nil without auth")
	}
	if GetToken(req) != nil {
		t.Error("GetToken() should be nil without auth")
	}
}
