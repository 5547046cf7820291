package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist (or is not
	// visible to the caller).
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrInsufficientCredits indicates a debit larger than the stored balance.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrNotConfigured indicates the persistent store is absent and the
	// operation cannot be performed in degraded mode.
	ErrNotConfigured = errors.New("store not configured")
)
