// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for token authentication,
// rate limiting and request handling of the translation API.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// limiterSet holds one token bucket per key.
type limiterSet[K comparable] struct {
	mu       sync.Mutex
	limiters map[K]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLimiterSet[K comparable](rps float64, burst int) *limiterSet[K] {
	return &limiterSet[K]{
		limiters: make(map[K]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

func (ls *limiterSet[K]) limiter(key K) *rate.Limiter {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	lim, ok := ls.limiters[key]
	if !ok {
		lim = rate.NewLimiter(ls.limit, ls.burst)
		ls.limiters[key] = lim
	}
	return lim
}

// allow takes one token for key. When none is available it reports how long
// until one is, and takes nothing.
func (ls *limiterSet[K]) allow(key K, now time.Time) (ok bool, remaining int, retryAfter time.Duration) {
	lim := ls.limiter(key)

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, 0, time.Second
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, 0, delay
	}
	return true, max(int(lim.TokensAt(now)), 0), 0
}

// prune drops the limiters of idle keys, those whose bucket is full again,
// once more than maxSize are tracked. It returns how many were dropped.
func (ls *limiterSet[K]) prune(maxSize int, now time.Time) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if len(ls.limiters) <= maxSize {
		return 0
	}
	dropped := 0
	for key, lim := range ls.limiters {
		if lim.TokensAt(now) >= float64(ls.burst) {
			delete(ls.limiters, key)
			dropped++
		}
	}
	return dropped
}

func (ls *limiterSet[K]) size() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.limiters)
}

// setRateLimitHeaders reports the bucket size and what is left of it.
func setRateLimitHeaders(w http.ResponseWriter, limit, remaining int) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
}

func writeRateLimited(w http.ResponseWriter, limit int, retryAfter time.Duration) {
	setRateLimitHeaders(w, limit, 0)
	setRetryAfter(w, retryAfter)
	WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too Many Attempts.", nil)
}

// TokenRateLimit limits requests per access token to rps with the given
// burst. Requests without an authenticated token pass through.
func TokenRateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	set := newLimiterSet[int64](rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := GetToken(r)
			if token == nil {
				next.ServeHTTP(w, r)
				return
			}

			ok, remaining, retryAfter := set.allow(token.ID, time.Now())
			if !ok {
				slog.Warn("token rate limit exceeded", "category", "auth", "token_id", token.ID, "path", r.URL.Path)
				writeRateLimited(w, burst, retryAfter)
				return
			}
			setRateLimitHeaders(w, burst, remaining)
			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimiter limits requests per client IP.
type GlobalRateLimiter struct {
	set   *limiterSet[string]
	burst int
}

// NewGlobalRateLimiter creates a limiter allowing rps requests per second
// per client IP with the given burst.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{
		set:   newLimiterSet[string](rps, burst),
		burst: burst,
	}
}

// Middleware returns the rate limiting middleware.
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetClientIP(r)
			ok, remaining, retryAfter := rl.set.allow(ip, time.Now())
			if !ok {
				slog.Warn("api rate limit exceeded", "ip", ip, "path", r.URL.Path)
				writeRateLimited(w, rl.burst, retryAfter)
				return
			}
			setRateLimitHeaders(w, rl.burst, remaining)
			next.ServeHTTP(w, r)
		})
	}
}

// Prune drops the limiters of idle client IPs once more than maxSize are
// tracked and returns how many were dropped.
func (rl *GlobalRateLimiter) Prune(maxSize int) int {
	return rl.set.prune(maxSize, time.Now())
}
