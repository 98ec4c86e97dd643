// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gulzarali-packages/translation-service/internal/cache"
)

// Default schedules of the maintenance jobs.
const (
	TokenPurgeSchedule       = "0 * * * *"
	EventPruneSchedule       = "30 3 * * *"
	CacheStatsSchedule       = "*/15 * * * *"
	RateLimiterPruneSchedule = "*/10 * * * *"
)

// TokenPurger deletes expired access tokens.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// EventPruner deletes old event log rows.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// LimiterPruner drops idle rate limiters once too many are tracked.
type LimiterPruner interface {
	Prune(maxSize int) int
}

// TokenPurgeJob deletes expired access tokens every hour.
func TokenPurgeJob(p TokenPurger, logger *slog.Logger) Job {
	return Job{
		Name:        "purge-expired-tokens",
		Description: "Delete access tokens past their expiry",
		Schedule:    TokenPurgeSchedule,
		Run: func(ctx context.Context) error {
			n, err := p.PurgeExpiredTokens(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("purged expired tokens", "count", n)
			}
			return nil
		},
	}
}

// EventPruneJob deletes events older than retention once a day.
func EventPruneJob(p EventPruner, retention time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:        "prune-events",
		Description: "Delete event log entries older than the retention period",
		Schedule:    EventPruneSchedule,
		Run: func(ctx context.Context) error {
			n, err := p.DeleteOldEvents(ctx, retention)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned old events", "count", n, "retention", retention)
			}
			return nil
		},
	}
}

// CacheStatsJob logs cache hit statistics when the cache tracks them.
func CacheStatsJob(c cache.Cacher, logger *slog.Logger) Job {
	return Job{
		Name:        "log-cache-stats",
		Description: "Log cache hit rate and size",
		Schedule:    CacheStatsSchedule,
		Run: func(context.Context) error {
			sp, ok := c.(cache.StatsProvider)
			if !ok {
				return nil
			}
			st := sp.Stats()
			logger.Info("cache stats",
				"hits", st.Hits,
				"misses", st.Misses,
				"sets", st.Sets,
				"items", st.Items,
				"hit_rate", st.HitRate,
			)
			return nil
		},
	}
}

// RateLimiterPruneJob bounds the memory used by per-client rate limiters.
func RateLimiterPruneJob(p LimiterPruner, maxSize int, logger *slog.Logger) Job {
	return Job{
		Name:        "prune-rate-limiters",
		Description: "Drop idle per-client rate limiters when too many are tracked",
		Schedule:    RateLimiterPruneSchedule,
		Run: func(context.Context) error {
			if n := p.Prune(maxSize); n > 0 {
				logger.Info("idle rate limiters dropped", "dropped", n, "max_size", maxSize)
			}
			return nil
		},
	}
}
