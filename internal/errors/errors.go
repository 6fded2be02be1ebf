// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated caller doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrTooManyRequests indicates a quota was exhausted for the current window.
	ErrTooManyRequests = errors.New("too many requests")

	// ErrIntegrity indicates stored data could not be trusted (e.g., it failed authentication
	// during decryption). It requires operator attention and must not be retried.
	ErrIntegrity = errors.New("integrity violation")
)

// RateLimitError reports a denied admission together with the configured limit, so callers can
// back off correctly. It matches ErrTooManyRequests with errors.Is.
type RateLimitError struct {
	// Limit is the number of calls allowed per Window.
	Limit int
	// Window is the width of the rolling window the limit applies to.
	Window time.Duration
	// RetryAfter is the time until the next call would be admitted.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (%d requests/%s)", e.Limit, windowUnit(e.Window))
}

// Unwrap returns ErrTooManyRequests.
func (e *RateLimitError) Unwrap() error {
	return ErrTooManyRequests
}

func windowUnit(window time.Duration) string {
	if window == time.Hour {
		return "hour"
	}
	return window.String()
}

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
