package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard auth service
var (
	// Authentication errors (401/403 class) - force a logout with reason
	// session_expired rather than leaving stale state
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session errors
	ErrNoSession      = errors.New("no session")
	ErrSessionExpired = errors.New("session expired")

	// Transport errors - eligible for bounded retry
	ErrRateLimited = errors.New("rate limited")
	ErrTimeout     = errors.New("request timeout")
	ErrConnection  = errors.New("connection failed")

	// Response errors - never retried
	ErrMalformedResponse = errors.New("invalid server response")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
