package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestMemoryCache(t *testing.T, opts MemoryCacheOptions) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(opts)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := newTestMemoryCache(t, MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 100})
	ctx := context.Background()

	if err := cache.Set(ctx, "export:all:fp", []byte(`{"en":{}}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := cache.Get(ctx, "export:all:fp")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != `{"en":{}}` {
		t.Errorf("Get = %s", val)
	}

	has, err := cache.Has(ctx, "export:all:fp")
	if err != nil || !has {
		t.Errorf("Has = %v, %v; want true, nil", has, err)
	}

	if err := cache.Delete(ctx, "export:all:fp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := cache.Get(ctx, "export:all:fp"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	if err := cache.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
}

func TestMemoryCache_CacheMiss(t *testing.T) {
	cache := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	if _, err := cache.Get(ctx, "nonexistent"); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	has, err := cache.Has(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if has {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	cache := newTestMemoryCache(t, MemoryCacheOptions{DefaultTTL: 50 * time.Millisecond})
	ctx := context.Background()

	_ = cache.Set(ctx, "default", []byte("v"), 0)
	_ = cache.Set(ctx, "long", []byte("v"), time.Hour)
	_ = cache.Set(ctx, "forever", []byte("v"), NoExpiration)

	if _, err := cache.Get(ctx, "default"); err != nil {
		t.Fatalf("expected key to exist immediately, got %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	tests := []struct {
		key     string
		wantErr error
	}{
		{"default", ErrCacheMiss},
		{"long", nil},
		{"forever", nil},
	}
	for _, tt := range tests {
		if _, err := cache.Get(ctx, tt.key); err != tt.wantErr {
			t.Errorf("Get(%s) error = %v, want %v", tt.key, err, tt.wantErr)
		}
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	for _, key := range []string{"key1", "key2", "key3"} {
		_ = cache.Set(ctx, key, []byte("value"), 0)
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, key := range []string{"key1", "key2", "key3"} {
		if _, err := cache.Get(ctx, key); err != ErrCacheMiss {
			t.Errorf("expected %s to be cleared", key)
		}
	}
	if got := cache.Stats().Size; got != 0 {
		t.Errorf("Size after Clear = %d, want 0", got)
	}
}

func TestMemoryCache_MaxSizeEvictsSoonestExpiring(t *testing.T) {
	cache := newTestMemoryCache(t, MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 3})
	ctx := context.Background()

	_ = cache.Set(ctx, "forever", []byte("f"), NoExpiration)
	_ = cache.Set(ctx, "soon", []byte("s"), time.Minute)
	_ = cache.Set(ctx, "later", []byte("l"), 2*time.Hour)

	_ = cache.Set(ctx, "new", []byte("n"), time.Hour)

	if _, err := cache.Get(ctx, "soon"); err != ErrCacheMiss {
		t.Errorf("expected soon to be evicted, got %v", err)
	}
	for _, key := range []string{"forever", "later", "new"} {
		if _, err := cache.Get(ctx, key); err != nil {
			t.Errorf("expected %s to survive eviction, got %v", key, err)
		}
	}
	if cache.Evictions() != 1 {
		t.Errorf("Evictions = %d, want 1", cache.Evictions())
	}

	// overwriting an existing key never evicts
	_ = cache.Set(ctx, "new", []byte("n2"), time.Hour)
	if cache.Evictions() != 1 {
		t.Errorf("Evictions after overwrite = %d, want 1", cache.Evictions())
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	_ = cache.Set(ctx, "key1", []byte("value1"), 0)
	_ = cache.Set(ctx, "key2", []byte("value2"), 0)

	_, _ = cache.Get(ctx, "key1")
	_, _ = cache.Get(ctx, "key1")
	_, _ = cache.Get(ctx, "nonexistent")

	stats := cache.Stats()
	if stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if stats.Sets != 2 {
		t.Errorf("expected 2 sets, got %d", stats.Sets)
	}
	if stats.Items != 2 {
		t.Errorf("expected 2 items, got %d", stats.Items)
	}
	if stats.Size != 12 {
		t.Errorf("expected 12 bytes, got %d", stats.Size)
	}

	expectedHitRate := float64(2) / float64(3) * 100
	if stats.HitRate < expectedHitRate-0.01 || stats.HitRate > expectedHitRate+0.01 {
		t.Errorf("expected hit rate ~%.2f, got %.2f", expectedHitRate, stats.HitRate)
	}

	cache.ResetStats()
	if s := cache.Stats(); s.Hits != 0 || s.Misses != 0 || s.Sets != 0 {
		t.Errorf("stats after reset = %+v", s)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := newTestMemoryCache(t, MemoryCacheOptions{DefaultTTL: time.Hour, MaxSize: 50})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = cache.Set(ctx, fmt.Sprintf("key-%d", (id+j)%80), []byte("value"), 0)
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = cache.Get(ctx, fmt.Sprintf("key-%d", (id+j)%80))
			}
		}(i)
	}
	wg.Wait()

	if items := cache.Stats().Items; items > 50 {
		t.Errorf("Items = %d, want <= 50", items)
	}
}

func TestMemoryCache_ValueCopy(t *testing.T) {
	cache := NewSimpleMemoryCache(time.Hour)
	defer func() { _ = cache.Close() }()
	ctx := context.Background()

	original := []byte("original")
	if err := cache.Set(ctx, "key", original, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	original[0] = 'X'

	val, err := cache.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "original" {
		t.Errorf("expected original, got %s (cache didn't copy on set)", string(val))
	}

	val[0] = 'Y'
	val2, _ := cache.Get(ctx, "key")
	if string(val2) != "original" {
		t.Errorf("expected original, got %s (cache didn't copy on get)", string(val2))
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Second,
	})
	ctx := context.Background()

	_ = cache.Set(ctx, "key", []byte("value"), 0)

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := cache.Get(ctx, "key"); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed after close, got %v", err)
	}
	if err := cache.Set(ctx, "key2", []byte("value"), 0); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed on Set after close, got %v", err)
	}
	if err := cache.Delete(ctx, "key"); err != ErrCacheClosed {
		t.Errorf("expected ErrCacheClosed on Delete after close, got %v", err)
	}

	if err := cache.Close(); err != nil {
		t.Errorf("second Close should succeed, got %v", err)
	}
}
