// Package display presents the live tree on an output device. The text
// presenter serializes frames to a writer for headless runs; the terminal
// presenter paints them with tcell and adapts terminal input into runtime
// events.
package display

import "github.com/dshills/squall/internal/dom"

// Presenter renders the live tree to an output device.
type Presenter interface {
	// Present paints the subtree rooted at root as one frame.
	Present(root *dom.Node) error

	// Close releases the output device. Close is idempotent.
	Close() error
}

// EventKind discriminates presenter input events.
type EventKind int

const (
	EventNone EventKind = iota

	// EventKey is a printable key press; Rune carries the character, with
	// enter delivered as '\n'.
	EventKey

	// EventResize reports the new device size in Width and Height.
	EventResize

	// EventInterrupt asks the consumer to stop, from escape or ctrl-c.
	EventInterrupt
)

// Event is one input event from an interactive presenter.
type Event struct {
	Kind   EventKind
	Rune   rune
	Width  int
	Height int
}
