package progress

import "errors"

var (
	// ErrNotFound is returned for node IDs that are not in the catalog.
	ErrNotFound = errors.New("node not found")

	// ErrLocked is returned when unlocking a node whose requirements are
	// not all mastered.
	ErrLocked = errors.New("node is locked")

	// ErrUnauthenticated is returned when an operation has no user context.
	ErrUnauthenticated = errors.New("unauthenticated: no user")

	// ErrPersistence wraps failures of the progress store.
	ErrPersistence = errors.New("progress store failure")
)
