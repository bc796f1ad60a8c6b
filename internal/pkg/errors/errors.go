package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrValidation is a generic sentinel for malformed input, rejected before any write.
	ErrValidation = errors.New("invalid input")
	// ErrRateLimited is the sentinel for cooldown violations; prefer RateLimitedError
	// so callers can surface the remaining window.
	ErrRateLimited = errors.New("rate limited")
	// ErrConflict means an atomic merge could not apply after bounded retries.
	ErrConflict = errors.New("conflict")
	// ErrStorage wraps durable-store failures not remediable by this layer.
	ErrStorage = errors.New("storage failure")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
)

// RateLimitedError reports a confirmation attempt inside its cooldown window.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

func Storagef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrStorage}, args...)...)
}
