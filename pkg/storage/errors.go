package storage

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible to the given owner.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a uniqueness constraint is violated:
	// a duplicate email, or a duplicate (owner, name) list pair.
	ErrConflict = errors.New("record already exists")
)
