package dom

import "errors"

// Sentinel errors for the live tree.
var (
	// ErrHostOwned is returned when claiming a host already held by another
	// instance.
	ErrHostOwned = errors.New("host is owned by another instance")

	// ErrNilSnapshot is returned when building from a nil snapshot.
	ErrNilSnapshot = errors.New("snapshot is nil")

	// ErrHandlerPanic is returned when an event handler panics.
	ErrHandlerPanic = errors.New("event handler panicked")
)

// HandlerPanicError wraps a panic raised by an event handler.
type HandlerPanicError struct {
	// Event is the event name being dispatched.
	Event string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *HandlerPanicError) Error() string {
	return "handler panic dispatching " + e.Event
}

// Is allows errors.Is to match HandlerPanicError with ErrHandlerPanic.
func (e *HandlerPanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
