// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"
)

// TimeoutCache bounds every operation of the wrapped cache with a deadline
// so a slow backend degrades into errors instead of stalled requests.
type TimeoutCache struct {
	next    Cacher
	timeout time.Duration
}

// WithTimeout wraps c so each call runs under context.WithTimeout(ctx, d).
// A non-positive d returns c unchanged.
func WithTimeout(c Cacher, d time.Duration) Cacher {
	if d <= 0 {
		return c
	}
	return &TimeoutCache{next: c, timeout: d}
}

// Unwrap returns the underlying cache.
func (c *TimeoutCache) Unwrap() Cacher {
	return c.next
}

func (c *TimeoutCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.Get(ctx, key)
}

func (c *TimeoutCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.Set(ctx, key, value, ttl)
}

func (c *TimeoutCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.Delete(ctx, key)
}

func (c *TimeoutCache) Clear(ctx context.Context) error {
	return c.next.Clear(ctx)
}

func (c *TimeoutCache) Has(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.Has(ctx, key)
}

func (c *TimeoutCache) Close() error {
	return c.next.Close()
}

// Stats forwards to the wrapped cache when it tracks statistics.
func (c *TimeoutCache) Stats() Stats {
	if sp, ok := c.next.(StatsProvider); ok {
		return sp.Stats()
	}
	return Stats{}
}

// ResetStats forwards to the wrapped cache when it tracks statistics.
func (c *TimeoutCache) ResetStats() {
	if sp, ok := c.next.(StatsProvider); ok {
		sp.ResetStats()
	}
}

// Ping forwards to the wrapped cache; local caches are always reachable.
func (c *TimeoutCache) Ping(ctx context.Context) error {
	p, ok := c.next.(Pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return p.Ping(ctx)
}

var (
	_ Cacher        = (*TimeoutCache)(nil)
	_ StatsProvider = (*TimeoutCache)(nil)
	_ Pinger        = (*TimeoutCache)(nil)
)
