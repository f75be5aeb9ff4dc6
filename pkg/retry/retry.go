package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultMaxDelay    = 30 * time.Second
	defaultMultiplier  = 2.0
	defaultJitter      = time.Second
)

// Config controls one executor invocation.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64

	// Jitter is the upper bound of the random delay added to each backoff
	// to spread concurrent retries. Zero applies the 1s default; a negative
	// value disables jitter for deterministic timing.
	Jitter time.Duration

	// RetryIf classifies errors as retryable. Nil retries everything not
	// marked Permanent. A Permanent error always wins over RetryIf.
	RetryIf func(error) bool

	// OnRetry fires before each sleep, for observability.
	OnRetry func(attempt int, err error)
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.Multiplier <= 0 {
		c.Multiplier = defaultMultiplier
	}
	if c.Jitter == 0 {
		c.Jitter = defaultJitter
	}
	return c
}

// Delay returns the pre-jitter backoff before retry number attempt:
// min(BaseDelay * Multiplier^(attempt-1), MaxDelay).
func (c Config) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	c = c.withDefaults()

	delay := float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt-1))
	if delay > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(delay)
}

func (c Config) retryable(err error) bool {
	if IsPermanent(err) {
		return false
	}
	if c.RetryIf != nil {
		return c.RetryIf(err)
	}
	return true
}

// Outcome is the structured result of one executor invocation.
type Outcome[T any] struct {
	Value    T
	Err      error
	Attempts int
	Elapsed  time.Duration
}

// Success reports whether the operation eventually succeeded.
func (o Outcome[T]) Success() bool {
	return o.Err == nil
}

// Do runs op up to cfg.MaxAttempts times, sleeping between failures with
// exponential backoff plus jitter. It returns immediately on success, on a
// non-retryable error, or when ctx is cancelled during a backoff sleep.
// Exhaustion is reported through the Outcome, never via panic.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) Outcome[T] {
	cfg = cfg.withDefaults()
	start := time.Now()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return Outcome[T]{Value: value, Attempts: attempt, Elapsed: time.Since(start)}
		}
		lastErr = err

		if attempt == cfg.MaxAttempts || !cfg.retryable(err) {
			return Outcome[T]{Err: err, Attempts: attempt, Elapsed: time.Since(start)}
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		delay := cfg.Delay(attempt)
		if cfg.Jitter > 0 {
			delay += rand.N(cfg.Jitter)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Outcome[T]{
				Err:      errors.Join(lastErr, ctx.Err()),
				Attempts: attempt,
				Elapsed:  time.Since(start),
			}
		}
	}

	// Unreachable: the loop always returns on the last attempt.
	return Outcome[T]{Err: lastErr, Attempts: cfg.MaxAttempts, Elapsed: time.Since(start)}
}
