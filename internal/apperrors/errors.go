// Package apperrors defines the sentinel errors shared across services and handlers.
package apperrors

import "errors"

var (
	// ErrValidation is returned when request input is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned for unknown users and wrong passwords alike,
	// so callers cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBanned is returned when a banned user attempts to log in.
	ErrBanned = errors.New("account banned")
	// ErrUnauthenticated is returned when a token is missing, malformed or expired.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when an authenticated caller lacks ownership or role.
	ErrForbidden = errors.New("permission denied")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("already exists")
)
