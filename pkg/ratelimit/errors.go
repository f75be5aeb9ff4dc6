package ratelimit

import "errors"

var (
	// ErrInvalidConfig indicates a non-positive window, quota, or block duration.
	ErrInvalidConfig = errors.New("invalid rate limit configuration")

	// ErrKeyRequired indicates an empty rate limit key.
	ErrKeyRequired = errors.New("rate limit key is required")

	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
