package retry

import (
	"context"
	"sync"
	"time"
)

// BreakerState is the circuit breaker state.
type BreakerState int

const (
	// StateClosed lets calls through.
	StateClosed BreakerState = iota
	// StateOpen rejects calls without attempting the operation.
	StateOpen
	// StateHalfOpen lets a probe call through to test recovery.
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker counts consecutive failures across calls. After the threshold it
// opens and rejects immediately for the cooldown, then half-opens: one
// probe success closes it, a probe failure reopens it. Safe for concurrent
// use.
type Breaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration

	state       BreakerState
	failures    int
	openedUntil time.Time
	nowFunc     func() time.Time
}

// NewBreaker creates a breaker. Non-positive arguments get conservative
// defaults (5 consecutive failures, 1 minute cooldown).
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		state:     StateClosed,
		nowFunc:   time.Now,
	}
}

// SetNowFunc replaces the clock for deterministic cooldown tests.
func (b *Breaker) SetNowFunc(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now != nil {
		b.nowFunc = now
	}
}

// Allow reports whether a call may proceed, transitioning open to half-open
// once the cooldown has passed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if !b.nowFunc().Before(b.openedUntil) {
			b.state = StateHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess resets the failure streak; a half-open probe success closes
// the circuit.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
}

// RecordFailure extends the failure streak; reaching the threshold, or any
// half-open probe failure, opens the circuit for the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.state = StateOpen
		b.openedUntil = b.nowFunc().Add(b.cooldown)
	}
}

// State returns the effective state, accounting for an elapsed cooldown.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && !b.nowFunc().Before(b.openedUntil) {
		return StateHalfOpen
	}
	return b.state
}

// Reset closes the circuit and clears the failure streak.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
	b.openedUntil = time.Time{}
}

// BreakerStats is a snapshot for observability.
type BreakerStats struct {
	State    string
	Failures int
}

// Stats returns the current breaker snapshot.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BreakerStats{State: b.state.String(), Failures: b.failures}
}

// BreakerDo runs op through the breaker and the retry executor. When the
// circuit is open the operation is never attempted and the outcome carries
// ErrCircuitOpen with zero attempts; each full executor run records one
// success or failure against the breaker, so many concurrent retriers
// cannot keep a degraded dependency pinned down.
func BreakerDo[T any](ctx context.Context, b *Breaker, cfg Config, op func(context.Context) (T, error)) Outcome[T] {
	if !b.Allow() {
		return Outcome[T]{Err: ErrCircuitOpen}
	}

	outcome := Do(ctx, cfg, op)
	if outcome.Success() {
		b.RecordSuccess()
	} else {
		b.RecordFailure()
	}
	return outcome
}
