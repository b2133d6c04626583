package store

import "errors"

var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
	// ErrStale means the record moved to another interviewer between read and lock.
	// Callers may retry.
	ErrStale = errors.New("stale record")
)
