package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Critical is the payment-operation policy: a generous attempt budget with
// long delays, retrying connection and rate-limit style failures but never
// validation errors.
func Critical() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    60 * time.Second,
		Multiplier:  2,
		RetryIf:     RetryablePayment,
	}
}

// Important is the database-operation policy used on the subscription
// lookup path.
func Important() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2,
		RetryIf:     RetryableDatabase,
	}
}

// Standard is the default policy for everything else.
func Standard() Config {
	return Config{
		MaxAttempts: 2,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  1.5,
	}
}

// RetryablePayment classifies billing provider failures: everything is
// retried except errors marked Permanent. The provider wrapper marks
// validation and authorization failures Permanent, so connection drops and
// rate limits get the full attempt budget while a malformed request is
// surfaced on the first try.
func RetryablePayment(err error) bool {
	return !IsPermanent(err)
}

// RetryableDatabase classifies lookup failures: connection errors, timeouts,
// and transient postgres SQLSTATE classes are retried; constraint and syntax
// errors are not, repeating those cannot succeed.
func RetryableDatabase(err error) bool {
	if IsPermanent(err) {
		return false
	}
	if IsTransient(err) || isConnectionError(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	return true
}

// isTransientSQLState reports postgres error codes worth retrying:
// class 08 (connection exceptions), 53300 (too many connections),
// 57P0x (server shutdown/crash), 40001/40P01 (serialization, deadlock).
func isTransientSQLState(code string) bool {
	if len(code) >= 2 && code[:2] == "08" {
		return true
	}
	switch code {
	case "53300", "57P01", "57P02", "57P03", "40001", "40P01":
		return true
	}
	return false
}

func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
