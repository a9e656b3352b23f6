package model

import "errors"

// Error taxonomy shared by all packages. Wrap with fmt.Errorf("...: %w", ...)
// and test with errors.Is.
var (
	// ErrUnauthorized means no valid owner context was supplied.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means a referenced item or parent is absent or not
	// owned by the caller.
	ErrNotFound = errors.New("item not found")

	// ErrValidation means a required field is missing or wrong for the kind.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidHierarchy means a parent/child kind combination is illegal.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrConflict means an overlapping mutation is in flight for the same
	// sibling group; the caller should refetch and retry.
	ErrConflict = errors.New("conflicting operation in flight")

	// ErrStorage wraps an opaque failure of the underlying store.
	ErrStorage = errors.New("storage failure")
)
