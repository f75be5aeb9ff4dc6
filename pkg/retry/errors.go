package retry

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned by BreakerDo when the breaker rejects the call
// without attempting the operation.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.err)
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent marks an error as non-retryable: the executor returns it on
// first occurrence regardless of policy. Use for validation and
// authorization failures where repeating the call cannot help.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err carries the Permanent marker.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return fmt.Sprintf("transient: %v", e.err)
}

func (e *transientError) Unwrap() error {
	return e.err
}

// Transient marks an error as explicitly retryable, for collaborators whose
// error types the policy predicates cannot inspect.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err carries the Transient marker.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
