// Package retry executes fallible operations with exponential backoff,
// jitter, and pluggable retryability classification, plus a circuit breaker
// for dependencies that fail across calls rather than within one sequence.
//
// The executor never panics or throws past its boundary: every invocation
// returns an Outcome carrying the final value or error, the attempts used,
// and the elapsed time. Errors wrapped with Permanent are returned on first
// occurrence without any delay.
//
// Basic usage:
//
//	outcome := retry.Do(ctx, retry.Important(), func(ctx context.Context) (*Row, error) {
//		return queryRow(ctx, id)
//	})
//	if !outcome.Success() {
//		// all attempts exhausted or a permanent error occurred
//	}
//
// Three policies match the platform's operation classes: Critical (payment
// provider calls), Important (database lookups), Standard (everything else).
// Each differs only in attempt budget, delay curve, and what it considers
// retryable.
//
// The Breaker tracks consecutive failures across calls: after the threshold
// it rejects immediately for a cooldown, then half-opens to probe with a
// single call. BreakerDo combines both, so a degraded dependency is not
// hammered by the retries of many concurrent callers.
package retry
