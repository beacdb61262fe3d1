// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Provider errors.
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrUnexpectedStatus    = errors.New("unexpected status from provider")

	// Input errors.
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidRole      = errors.New("invalid chat role")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// StatusError reports a non-success HTTP status from an upstream provider.
// 429 and 5xx responses are retryable.
func StatusError(provider string, status int, body string) error {
	err := fmt.Errorf("%w: %s returned %d: %s", ErrUnexpectedStatus, provider, status, Truncate(body, 200))
	if status == 429 {
		return &RetryableError{Err: fmt.Errorf("%w: %w", ErrRateLimit, err), Retryable: true}
	}
	return &RetryableError{Err: err, Retryable: status >= 500}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
