package store

import "errors"

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert or update violates a unique
	// index (username, email). Detected from the index violation itself
	// rather than a pre-check, so concurrent creates cannot race past it.
	ErrDuplicate = errors.New("duplicate value for unique field")
)
