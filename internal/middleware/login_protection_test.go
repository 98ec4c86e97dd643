package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

const loginEmail = "admin@example.com"

func newTestLoginProtection(t *testing.T, maxFailed int, lockout, window time.Duration) *LoginProtection {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: maxFailed,
		LockoutDuration:   lockout,
		AttemptWindow:     window,
	})
	t.Cleanup(lp.Stop)
	return lp
}

func TestNewLoginProtection_Defaults(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Stop()

	def := DefaultLoginProtectionConfig()
	if lp.maxFailedAttempts != def.MaxFailedAttempts {
		t.Errorf("maxFailedAttempts = %d, want %d", lp.maxFailedAttempts, def.MaxFailedAttempts)
	}
	if lp.lockoutDuration != def.LockoutDuration {
		t.Errorf("lockoutDuration = %v, want %v", lp.lockoutDuration, def.LockoutDuration)
	}
	if lp.attemptWindow != def.AttemptWindow {
		t.Errorf("attemptWindow = %v, want %v", lp.attemptWindow, def.AttemptWindow)
	}
	if lp.ipLimiters.limit != rate.Limit(def.IPRateLimit) || lp.ipLimiters.burst != def.IPBurst {
		t.Errorf("ip limiter = (%v, %d), want (%v, %d)",
			lp.ipLimiters.limit, lp.ipLimiters.burst, def.IPRateLimit, def.IPBurst)
	}
}

func TestLoginProtection_StopTwice(t *testing.T) {
	lp := NewLoginProtection(DefaultLoginProtectionConfig())
	lp.Stop()
	lp.Stop()
}

func TestLoginProtection_LocksAfterMaxFailures(t *testing.T) {
	lp := newTestLoginProtection(t, 3, time.Minute, time.Minute)

	for i := 1; i <= 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(loginEmail); locked {
			t.Fatalf("failure %d locked the account", i)
		}
		if got := lp.RemainingAttempts(loginEmail); got != 3-i {
			t.Errorf("RemainingAttempts after %d failures = %d, want %d", i, got, 3-i)
		}
	}

	locked, d := lp.RecordFailedAttempt(loginEmail)
	if !locked || d != time.Minute {
		t.Fatalf("third failure = (%v, %v), want (true, 1m)", locked, d)
	}

	locked, remaining := lp.IsAccountLocked(loginEmail)
	if !locked {
		t.Fatal("account should be locked")
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("remaining = %v, want within (0, 1m]", remaining)
	}
}

func TestLoginProtection_EmailIsNormalized(t *testing.T) {
	lp := newTestLoginProtection(t, 2, time.Minute, time.Minute)

	lp.RecordFailedAttempt("Admin@Example.com")
	lp.RecordFailedAttempt("  admin@example.com ")

	if locked, _ := lp.IsAccountLocked(loginEmail); !locked {
		t.Error("failures with different casing should count against the same account")
	}

	lp.RecordSuccessfulLogin("ADMIN@EXAMPLE.COM")
	if locked, _ := lp.IsAccountLocked(loginEmail); locked {
		t.Error("successful login should clear the lockout")
	}
	if got := lp.RemainingAttempts(loginEmail); got != 2 {
		t.Errorf("RemainingAttempts = %d, want 2", got)
	}
}

func TestLoginProtection_OtherAccountsUnaffected(t *testing.T) {
	lp := newTestLoginProtection(t, 1, time.Minute, time.Minute)

	lp.RecordFailedAttempt(loginEmail)

	if locked, _ := lp.IsAccountLocked("translator@example.com"); locked {
		t.Error("lockout leaked to another account")
	}
}

func TestLoginProtection_LockoutExpires(t *testing.T) {
	lp := newTestLoginProtection(t, 1, 50*time.Millisecond, time.Minute)

	lp.RecordFailedAttempt(loginEmail)
	time.Sleep(80 * time.Millisecond)

	if locked, _ := lp.IsAccountLocked(loginEmail); locked {
		t.Error("account should unlock once the lockout passed")
	}
}

func TestLoginProtection_LockoutDoublesAndCaps(t *testing.T) {
	lp := newTestLoginProtection(t, 1, 10*time.Hour, time.Minute)

	want := []time.Duration{10 * time.Hour, 20 * time.Hour, maxLockout, maxLockout}
	for i, w := range want {
		_, d := lp.RecordFailedAttempt(loginEmail)
		if d != w {
			t.Errorf("lockout %d = %v, want %v", i+1, d, w)
		}
	}
}

func TestLoginProtection_WindowResetsCount(t *testing.T) {
	lp := newTestLoginProtection(t, 2, time.Minute, 50*time.Millisecond)

	lp.RecordFailedAttempt(loginEmail)
	time.Sleep(80 * time.Millisecond)

	if got := lp.RemainingAttempts(loginEmail); got != 2 {
		t.Errorf("RemainingAttempts after window = %d, want 2", got)
	}
	if locked, _ := lp.RecordFailedAttempt(loginEmail); locked {
		t.Error("a failure outside the window should start a new count")
	}
}

func TestLoginProtection_Prune(t *testing.T) {
	lp := newTestLoginProtection(t, 5, time.Minute, time.Minute)

	lp.RecordFailedAttempt(loginEmail)
	lp.prune(time.Now())
	if got := lp.RemainingAttempts(loginEmail); got != 4 {
		t.Errorf("recent failure pruned: RemainingAttempts = %d, want 4", got)
	}

	lp.prune(time.Now().Add(2 * time.Minute))
	lp.mu.Lock()
	n := len(lp.accounts)
	lp.mu.Unlock()
	if n != 0 {
		t.Errorf("accounts after prune = %d, want 0", n)
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.5, IPBurst: 2})
	defer lp.Stop()
	handler := lp.Middleware()(simpleOKHandler)

	login := func(method, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/login", strings.NewReader(`{}`))
		req.RemoteAddr = ip + ":40000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := login(http.MethodPost, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("login %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := login(http.MethodPost, "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
	var body APIError
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "rate_limit_exceeded" {
		t.Errorf("error code = %q, want rate_limit_exceeded", body.Error.Code)
	}

	if rec := login(http.MethodPost, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", rec.Code)
	}
	if rec := login(http.MethodGet, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", rec.Code)
	}
}

func TestWriteAccountLocked(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAccountLocked(rec, 90*time.Second+200*time.Millisecond)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "91" {
		t.Errorf("Retry-After = %q, want 91", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body APIError
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "account_locked" {
		t.Errorf("error code = %q, want account_locked", body.Error.Code)
	}
	if !strings.Contains(body.Error.Message, "1m30s") {
		t.Errorf("message = %q, want the rounded remaining time", body.Error.Message)
	}
	if _, ok := body.Error.Details["email"]; !ok {
		t.Errorf("details = %v, want an email entry", body.Error.Details)
	}
}

func TestSetRetryAfter_AtLeastOneSecond(t *testing.T) {
	rec := httptest.NewRecorder()
	setRetryAfter(rec, 10*time.Millisecond)
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{"remote addr", "192.168.1.1:12345", "", "", "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", "", "", "192.168.1.1"},
		{"first forwarded entry", "127.0.0.1:8080", "10.0.0.1, 10.0.0.2", "", "10.0.0.1"},
		{"forwarded trimmed", "127.0.0.1:8080", "  10.0.0.1  ", "", "10.0.0.1"},
		{"real ip", "127.0.0.1:8080", "", "10.0.0.5", "10.0.0.5"},
		{"forwarded wins over real ip", "127.0.0.1:8080", "10.0.0.1", "10.0.0.5", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
