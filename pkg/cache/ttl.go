package cache

import (
	"context"
	"sync"
	"time"
)

const (
	defaultTTL        = 5 * time.Minute
	defaultMaxEntries = 1000
)

// Config controls cache behavior. Zero fields fall back to package defaults.
type Config struct {
	DefaultTTL time.Duration // applied when Set is called with ttl <= 0
	MaxEntries int           // capacity that triggers an expired-entry sweep on Set
}

type entry[V any] struct {
	value     V
	createdAt time.Time
	expiresAt time.Time
}

// Entry exposes stored metadata for diagnostics.
type Entry[V any] struct {
	Value     V
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
	HitRate float64 // percentage, 0 when no lookups yet
}

// TTL is a thread-safe map with per-entry expiry.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	items   map[K]entry[V]
	ttl     time.Duration
	max     int
	hits    uint64
	misses  uint64
	nowFunc func() time.Time // overridable for deterministic expiry tests
}

// NewTTL creates a cache with the given configuration.
func NewTTL[K comparable, V any](cfg Config) *TTL[K, V] {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = defaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	return &TTL[K, V]{
		items:   make(map[K]entry[V]),
		ttl:     cfg.DefaultTTL,
		max:     cfg.MaxEntries,
		nowFunc: time.Now,
	}
}

// SetNowFunc replaces the clock. Intended for tests that need to cross the
// expiry boundary without sleeping.
func (c *TTL[K, V]) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now != nil {
		c.nowFunc = now
	}
}

// Get returns the live value for key. Expired entries are deleted on read
// and count as misses.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	if c.nowFunc().After(e.expiresAt) {
		delete(c.items, key)
		c.misses++
		return zero, false
	}

	c.hits++
	return e.value, true
}

// GetEntry returns the entry with its timestamps, bypassing expiry deletion
// and statistics. Diagnostics only.
func (c *TTL[K, V]) GetEntry(key K) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return Entry[V]{}, false
	}
	return Entry[V]{Value: e.value, CreatedAt: e.createdAt, ExpiresAt: e.expiresAt}, true
}

// Set stores value under key with the given ttl (<= 0 uses the default).
// At capacity it sweeps expired entries first; the write always proceeds.
func (c *TTL[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= c.max {
		c.sweepLocked()
	}

	now := c.nowFunc()
	c.items[key] = entry[V]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// Invalidate removes the entry for key, reporting whether it existed.
// Used when an external event must be reflected before the TTL elapses.
func (c *TTL[K, V]) Invalidate(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	delete(c.items, key)
	return ok
}

// InvalidateMany removes all given keys and returns how many were present.
func (c *TTL[K, V]) InvalidateMany(keys []K) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for _, key := range keys {
		if _, ok := c.items[key]; ok {
			delete(c.items, key)
			deleted++
		}
	}
	return deleted
}

// Cleanup removes all expired entries and returns how many were deleted.
func (c *TTL[K, V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked()
}

// Clear empties the cache and resets statistics.
func (c *TTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]entry[V])
	c.hits = 0
	c.misses = 0
}

// Len returns the number of stored entries, expired ones included until
// they are read or swept.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of hit/miss counters.
func (c *TTL[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.items)}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total) * 100
	}
	return s
}

// StartJanitor sweeps expired entries every interval until ctx is done.
// Blocks; run it in a goroutine owned by the component's lifecycle.
func (c *TTL[K, V]) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// Must be called with lock held.
func (c *TTL[K, V]) sweepLocked() int {
	now := c.nowFunc()
	deleted := 0
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
			deleted++
		}
	}
	return deleted
}
