// Package ratelimit implements a fixed-window rate limiter with block
// escalation: a key that exceeds its window quota is rejected outright for a
// cooldown period, then fully reset rather than merely unblocked, so a hot
// client cannot re-trip the limit on its first call back.
//
// Exceeding the limit is a reportable outcome, not an error: callers must
// check Result.Allowed. Errors are reserved for store failures.
//
// Three profiles cover the platform's endpoint classes:
//
//   - Strict: payment-sensitive endpoints (narrow quota, long block)
//   - Moderate: general authenticated APIs
//   - Lenient: public and internal endpoints
//
// Basic usage:
//
//	store := ratelimit.NewMemoryStore()
//	defer store.Close()
//
//	limiter := ratelimit.NewLimiter(store, ratelimit.Strict())
//
//	res, err := limiter.Check(ctx, "203.0.113.7")
//	if err != nil {
//		// store failure
//	}
//	if !res.Allowed {
//		// reject with res.RetryAfter
//	}
//
// For multi-instance deployments use NewRedisStore, which runs the same
// window/block algorithm atomically in a Lua script.
package ratelimit
