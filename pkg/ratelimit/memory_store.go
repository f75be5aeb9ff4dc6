package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultJanitorInterval = 5 * time.Minute

type memoryEntry struct {
	count        int
	windowEndsAt time.Time
	blockedUntil time.Time
}

// MemoryStore keeps limiter state in process memory.
// A background janitor purges keys whose window and block have both fully
// elapsed, bounding memory under churn.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	nowFunc func() time.Time

	janitorInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithJanitorInterval overrides how often expired keys are purged.
func WithJanitorInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.janitorInterval = interval
		}
	}
}

// NewMemoryStore creates a store with its janitor running.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:         make(map[string]*memoryEntry),
		nowFunc:         time.Now,
		janitorInterval: defaultJanitorInterval,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.janitorLoop()

	return s
}

// SetNowFunc replaces the clock for deterministic window-boundary tests.
func (s *MemoryStore) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFunc = now
	}
}

// Take applies the window/block transition for key under the store mutex.
func (s *MemoryStore) Take(ctx context.Context, key string, cfg Config) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()

	e, ok := s.entries[key]
	if !ok {
		e = &memoryEntry{windowEndsAt: now.Add(cfg.Window)}
		s.entries[key] = e
	}

	switch {
	case !e.blockedUntil.IsZero():
		if now.Before(e.blockedUntil) {
			return State{
				Allowed:      false,
				Count:        e.count,
				WindowEndsAt: e.windowEndsAt,
				BlockedUntil: e.blockedUntil,
			}, nil
		}
		// Block elapsed: full reset, not just an unblock, so the first call
		// back starts a fresh window instead of re-tripping immediately.
		e.count = 0
		e.blockedUntil = time.Time{}
		e.windowEndsAt = now.Add(cfg.Window)

	case !now.Before(e.windowEndsAt):
		e.count = 0
		e.windowEndsAt = now.Add(cfg.Window)
	}

	e.count++

	if e.count > cfg.MaxRequests {
		e.blockedUntil = now.Add(cfg.BlockDuration)
		return State{
			Allowed:      false,
			Count:        e.count,
			WindowEndsAt: e.windowEndsAt,
			BlockedUntil: e.blockedUntil,
		}, nil
	}

	return State{
		Allowed:      true,
		Count:        e.count,
		WindowEndsAt: e.windowEndsAt,
	}, nil
}

// Reset removes all state for key.
func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// StoreStats is a snapshot of tracked keys.
type StoreStats struct {
	TotalKeys   int
	ActiveKeys  int // keys inside a live window
	BlockedKeys int
}

// Stats returns a snapshot for observability.
func (s *MemoryStore) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	st := StoreStats{TotalKeys: len(s.entries)}
	for _, e := range s.entries {
		if !e.blockedUntil.IsZero() && now.Before(e.blockedUntil) {
			st.BlockedKeys++
		}
		if now.Before(e.windowEndsAt) {
			st.ActiveKeys++
		}
	}
	return st
}

// Cleanup purges keys whose window and block have both elapsed.
// Returns the number of keys removed. Exposed for deterministic tests.
func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	deleted := 0
	for key, e := range s.entries {
		windowDone := !now.Before(e.windowEndsAt)
		blockDone := e.blockedUntil.IsZero() || !now.Before(e.blockedUntil)
		if windowDone && blockDone {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted
}

// Close stops the janitor.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}

func (s *MemoryStore) janitorLoop() {
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stop:
			return
		}
	}
}
