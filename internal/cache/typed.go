// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrorHandler receives cache failures that TypedCache swallowed.
// op is "get" or "set".
type ErrorHandler func(ctx context.Context, op, key string, err error)

// TypedCache provides type-safe caching operations using generics.
// It wraps a Cacher implementation and handles JSON serialization.
type TypedCache[T any] struct {
	cache      Cacher
	defaultTTL time.Duration
	onError    ErrorHandler
}

// NewTypedCache creates a new TypedCache wrapping the given cache implementation.
func NewTypedCache[T any](cache Cacher, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// OnError registers a handler for cache failures in GetOrSet.
func (c *TypedCache[T]) OnError(h ErrorHandler) *TypedCache[T] {
	c.onError = h
	return c
}

// Get retrieves and decodes a value. It returns ErrCacheMiss when the key is
// absent; any other error means the cache itself failed or held bad data.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, error) {
	var value T

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decoding cached value %q: %w", key, err)
	}

	return value, nil
}

// Set stores a value in the cache with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores a value in the cache with a custom TTL.
func (c *TypedCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.cache.Set(ctx, key, data, ttl)
}

// Delete removes a key from the cache.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// GetOrSet retrieves a value from cache, or calls fn to compute and store it.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	return c.GetOrSetWithTTL(ctx, key, c.defaultTTL, fn)
}

// GetOrSetWithTTL retrieves a value from cache, or calls fn to compute and
// store it with ttl. The boolean reports a cache hit. Cache failures never
// fail the call: they go to the error handler and the value is computed
// directly. Only errors from fn are returned.
func (c *TypedCache[T]) GetOrSetWithTTL(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, bool, error) {
	value, err := c.Get(ctx, key)
	if err == nil {
		return value, true, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.report(ctx, "get", key, err)
	}

	value, err = fn(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if err := c.SetWithTTL(ctx, key, value, ttl); err != nil {
		c.report(ctx, "set", key, err)
	}

	return value, false, nil
}

func (c *TypedCache[T]) report(ctx context.Context, op, key string, err error) {
	if c.onError != nil {
		c.onError(ctx, op, key, err)
	}
}
