package boundary

import (
	"github.com/joeycumines/logiface"

	"github.com/dshills/squall/internal/event"
	"github.com/dshills/squall/internal/snapshot"
)

// DefaultHistoryLimit bounds the failure history when WithHistoryLimit is
// not given.
const DefaultHistoryLimit = 10

// CatchFunc observes every captured failure.
type CatchFunc func(rec Record)

// FallbackFunc renders the substitute subtree shown once retries are
// exhausted. Returning nil falls back to the built-in output for the
// boundary's mode.
type FallbackFunc func(rec Record) *snapshot.Node

// ChildErrorFunc decides whether a failure escalated from a descendant
// boundary is handled here. Returning true stops the escalation and
// re-renders this boundary's instance.
type ChildErrorFunc func(err error, child *Boundary) bool

// Option configures a Boundary.
type Option func(*Boundary)

// WithMaxRetries sets how many times a failed render path is synchronously
// re-attempted before the fallback renders. Zero, the default, disables
// retries.
func WithMaxRetries(n int) Option {
	return func(b *Boundary) {
		if n >= 0 {
			b.maxRetries = n
		}
	}
}

// WithHistoryLimit bounds the retained failure history. Zero or negative
// keeps every record.
func WithHistoryLimit(n int) Option {
	return func(b *Boundary) { b.historyLimit = n }
}

// WithMode sets the fallback detail mode.
func WithMode(m Mode) Option {
	return func(b *Boundary) { b.mode = m }
}

// WithFallback sets a custom fallback renderer.
func WithFallback(fn FallbackFunc) Option {
	return func(b *Boundary) { b.fallback = fn }
}

// WithCatch registers a hook invoked for every captured failure, before any
// retry of it runs.
func WithCatch(fn CatchFunc) Option {
	return func(b *Boundary) { b.catch = fn }
}

// WithOnChildError registers the hook consulted when a descendant boundary
// escalates a failure; see ChildErrorFunc.
func WithOnChildError(fn ChildErrorFunc) Option {
	return func(b *Boundary) { b.onChildError = fn }
}

// WithParent links the boundary beneath parent for escalation.
func WithParent(parent *Boundary) Option {
	return func(b *Boundary) { b.parent = parent }
}

// WithBus overrides the bus ErrorEvent is emitted on. The default is the
// wrapped instance's bus.
func WithBus(bus *event.Bus) Option {
	return func(b *Boundary) {
		if bus != nil {
			b.bus = bus
		}
	}
}

// WithLogger overrides the logger. The default is the wrapped instance's
// logger.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(b *Boundary) { b.logger = logger }
}
