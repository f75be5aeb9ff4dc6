package ratelimit

import (
	"context"
	"time"
)

// Limiter applies one Config to keys through a Store.
type Limiter struct {
	store Store
	cfg   Config
}

// NewLimiter creates a limiter. Panics on an invalid config to fail fast at
// startup; limiter profiles are static wiring, not runtime input.
func NewLimiter(store Store, cfg Config) *Limiter {
	if store == nil {
		panic("ratelimit: store is required")
	}
	if err := cfg.validate(); err != nil {
		panic(err)
	}
	return &Limiter{store: store, cfg: cfg}
}

// Config returns the limiter's profile.
func (l *Limiter) Config() Config {
	return l.cfg
}

// Check records one request for key and reports whether it is allowed.
// A denied request is a normal outcome; err is non-nil only on store failure.
func (l *Limiter) Check(ctx context.Context, key string) (Result, error) {
	if key == "" {
		return Result{}, ErrKeyRequired
	}

	st, err := l.store.Take(ctx, key, l.cfg)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Allowed: st.Allowed,
		Limit:   l.cfg.MaxRequests,
		ResetAt: st.WindowEndsAt,
		Blocked: !st.BlockedUntil.IsZero(),
	}

	if remaining := l.cfg.MaxRequests - st.Count; remaining > 0 {
		res.Remaining = remaining
	}

	if !st.Allowed {
		if res.Blocked {
			res.RetryAfter = time.Until(st.BlockedUntil)
		} else {
			res.RetryAfter = time.Until(st.WindowEndsAt)
		}
		if res.RetryAfter < 0 {
			res.RetryAfter = 0
		}
	}

	return res, nil
}

// Reset clears the limiter state for key, lifting any block.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return l.store.Reset(ctx, key)
}
