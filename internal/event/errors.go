package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidEvent is returned when an event name is empty.
	ErrInvalidEvent = errors.New("invalid event name")

	// ErrInvalidSubscription is returned when a subscription is nil.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound is returned when removing a subscription the
	// bus no longer holds.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
