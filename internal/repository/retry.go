package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"gorm.io/gorm"
)

// ErrUnavailable marks reads that kept failing transiently after all
// retry attempts. It survives service-layer wrapping, so errors.Is
// matches it all the way up at the HTTP boundary.
var ErrUnavailable = errors.New("store unavailable")

// Read queries against the hosted store can fail transiently (connection
// drops, failovers). Reads are idempotent, so they are retried a small
// number of times with exponential backoff. Writes are never retried here:
// re-submitting a non-idempotent write has to stay a caller decision.
const (
	maxReadAttempts = 3
	retryBaseDelay  = 100 * time.Millisecond
)

// isTransient reports whether an error is worth retrying. Record-level
// outcomes and caller cancellation are not.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// withReadRetry runs fn up to maxReadAttempts times, backing off between
// transient failures. Non-transient errors are returned as-is so callers
// can still unwrap record-level outcomes; exhausted retries are tagged
// with ErrUnavailable.
func withReadRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 0; attempt < maxReadAttempts; attempt++ {
		if err = fn(); !isTransient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrUnavailable, maxReadAttempts, err)
}
