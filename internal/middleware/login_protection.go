// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// maxLockout caps the doubling lockout of an account.
	maxLockout = 24 * time.Hour
	// maxLoginLimiters is the number of per-IP login limiters tracked before
	// idle ones are dropped.
	maxLoginLimiters = 10000
	// loginCleanupInterval is how often stale lockout state is dropped.
	loginCleanupInterval = 10 * time.Minute
)

// LoginProtection guards POST /api/login with a per-IP rate limit and a
// per-account lockout after repeated bad credentials. Accounts are keyed
// by their normalized email.
type LoginProtection struct {
	ipLimiters *limiterSet[string]

	mu       sync.Mutex
	accounts map[string]*accountFailures

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// accountFailures tracks bad credentials for one email.
type accountFailures struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login requests per second per client IP (default: 0.5)
	IPRateLimit float64
	// IPBurst is the burst allowed per client IP (default: 5)
	IPBurst int
	// MaxFailedAttempts within AttemptWindow locks the account (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is the first lockout; each further one doubles it up to 24h (default: 15m)
	LockoutDuration time.Duration
	// AttemptWindow is the window failures are counted in (default: 15m)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a LoginProtection and starts its cleanup loop.
// Zero config fields take the defaults. Call Stop to end the loop.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterSet[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts:          make(map[string]*accountFailures),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		stopCh:            make(chan struct{}),
	}

	go lp.cleanupLoop(loginCleanupInterval)

	return lp
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (lp *LoginProtection) Stop() {
	lp.stopOnce.Do(func() { close(lp.stopCh) })
}

func accountKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AllowIP reports whether another login request from ip is allowed now,
// and otherwise how long the client should wait.
func (lp *LoginProtection) AllowIP(ip string) (bool, time.Duration) {
	ok, _, retryAfter := lp.ipLimiters.allow(ip, time.Now())
	return ok, retryAfter
}

// IsAccountLocked reports whether email is locked out and for how long.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	f, ok := lp.accounts[accountKey(email)]
	if !ok {
		return false, 0
	}
	if remaining := time.Until(f.lockedUntil); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt counts bad credentials for email. It reports whether
// this failure locked the account and for how long.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	key := accountKey(email)
	now := time.Now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	f, ok := lp.accounts[key]
	if !ok {
		f = &accountFailures{}
		lp.accounts[key] = f
	}
	if f.count == 0 || now.Sub(f.firstFailed) > lp.attemptWindow {
		f.count = 0
		f.firstFailed = now
	}
	f.count++

	if f.count < lp.maxFailedAttempts {
		slog.Debug("failed login recorded", "email", key, "count", f.count)
		return false, 0
	}

	lockout := lp.lockoutDuration << f.lockouts
	if lockout > maxLockout || lockout <= 0 {
		lockout = maxLockout
	}
	f.lockedUntil = now.Add(lockout)
	f.lockouts++
	f.count = 0

	slog.Warn("account locked after failed logins",
		"category", "auth",
		"email", key,
		"lockouts", f.lockouts,
		"duration", lockout,
	)
	return true, lockout
}

// RecordSuccessfulLogin forgets the failures of email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(email))
	lp.mu.Unlock()
}

// RemainingAttempts returns how many more bad passwords email may submit
// before it is locked.
func (lp *LoginProtection) RemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	f, ok := lp.accounts[accountKey(email)]
	if !ok || f.count == 0 || time.Since(f.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-f.count, 0)
}

func (lp *LoginProtection) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.prune(time.Now())
		case <-lp.stopCh:
			return
		}
	}
}

// prune drops accounts whose lockout expired and whose failures are outside
// the window, and idle IP limiters once there are too many.
func (lp *LoginProtection) prune(now time.Time) {
	if n := lp.ipLimiters.prune(maxLoginLimiters, now); n > 0 {
		slog.Info("pruned login rate limiters", "dropped", n)
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, f := range lp.accounts {
		if now.After(f.lockedUntil) && now.Sub(f.firstFailed) > lp.attemptWindow {
			delete(lp.accounts, key)
		}
	}
}

// Middleware rate limits POST requests per client IP. Rejected requests get
// a JSON 429 with Retry-After.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := GetClientIP(r)
			if ok, retryAfter := lp.AllowIP(ip); !ok {
				slog.Warn("login rate limit exceeded", "category", "auth", "ip", ip)
				setRetryAfter(w, retryAfter)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					"Too many login attempts. Please try again later.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteAccountLocked writes the 429 returned for a locked account.
func WriteAccountLocked(w http.ResponseWriter, remaining time.Duration) {
	setRetryAfter(w, remaining)
	WriteAPIError(w, http.StatusTooManyRequests, "account_locked",
		fmt.Sprintf("Too many failed attempts. Try again in %s.", remaining.Round(time.Second)),
		map[string]string{"email": "This account is temporarily locked."})
}

// setRetryAfter sets Retry-After in whole seconds, at least one.
func setRetryAfter(w http.ResponseWriter, d time.Duration) {
	secs := max(int(math.Ceil(d.Seconds())), 1)
	w.Header().Set("Retry-After", strconv.Itoa(secs))
}

// GetClientIP extracts the client IP from the request. The first
// X-Forwarded-For entry wins over X-Real-IP, then RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
