package state

import "errors"

// Sentinel errors for the store.
var (
	// ErrInvalidPath is returned when a write path is empty, malformed, or
	// the wildcard.
	ErrInvalidPath = errors.New("invalid store path")
)
