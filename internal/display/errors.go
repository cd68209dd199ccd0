package display

import "errors"

var (
	// ErrNilWriter is returned when a text presenter has no destination.
	ErrNilWriter = errors.New("display writer is nil")

	// ErrClosed is returned when presenting on a closed presenter.
	ErrClosed = errors.New("display is closed")
)
