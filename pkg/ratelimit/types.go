package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Config defines one fixed-window profile.
type Config struct {
	Window        time.Duration // counting window length
	MaxRequests   int           // allowed requests per window
	BlockDuration time.Duration // cooldown applied after the quota is exceeded
}

func (c Config) validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	if c.MaxRequests <= 0 {
		return fmt.Errorf("%w: max requests must be positive, got %d", ErrInvalidConfig, c.MaxRequests)
	}
	if c.BlockDuration <= 0 {
		return fmt.Errorf("%w: block duration must be positive, got %v", ErrInvalidConfig, c.BlockDuration)
	}
	return nil
}

// Strict limits payment-sensitive endpoints: tiny quota, hour-long block.
func Strict() Config {
	return Config{
		Window:        15 * time.Minute,
		MaxRequests:   5,
		BlockDuration: time.Hour,
	}
}

// Moderate suits general authenticated APIs.
func Moderate() Config {
	return Config{
		Window:        15 * time.Minute,
		MaxRequests:   100,
		BlockDuration: 15 * time.Minute,
	}
}

// Lenient suits public and internal endpoints.
func Lenient() Config {
	return Config{
		Window:        15 * time.Minute,
		MaxRequests:   1000,
		BlockDuration: 5 * time.Minute,
	}
}

// Result reports the outcome of a single limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time     // end of the current counting window
	Blocked    bool          // key is in its cooldown period
	RetryAfter time.Duration // zero when allowed
}

// State is the raw store outcome the limiter shapes into a Result.
type State struct {
	Allowed      bool
	Count        int
	WindowEndsAt time.Time
	BlockedUntil time.Time // zero when not blocked
}

// Store runs the window/block algorithm atomically for one key.
// Implementations must apply the full transition (reset elapsed windows,
// honor and expire blocks, count, trip) in a single atomic step.
type Store interface {
	// Take records one request against key and returns the resulting state.
	Take(ctx context.Context, key string, cfg Config) (State, error)

	// Reset clears all limiter state for key.
	Reset(ctx context.Context, key string) error

	// Close releases store resources.
	Close() error
}
