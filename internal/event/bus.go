// Package event provides the synchronous pub/sub event bus.
//
// Delivery is synchronous and in registration order, against a snapshot of
// the subscriber list taken at emit time: handlers registered during a
// delivery pass do not receive the event that triggered them. A panicking
// handler is recovered, logged, and counted; later handlers still run.
package event

import (
	"runtime/debug"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// Bus is a named-event pub/sub bus with owner-based bulk cleanup.
type Bus struct {
	registry *registry

	logger *logiface.Logger[logiface.Event]

	// Stats
	eventsEmitted   atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerPanics   atomic.Uint64
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return func(b *Bus) { b.logger = l }
}

// New creates a new event bus.
func New(opts ...Option) *Bus {
	b := &Bus{registry: newRegistry()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers a handler for the named event.
func (b *Bus) On(name string, h Handler, opts ...SubscribeOption) (*Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	if name == "" {
		return nil, ErrInvalidEvent
	}

	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	sub := newSubscription(name, h, cfg)
	b.registry.add(sub)
	return sub, nil
}

// Once registers a handler that is delivered at most once and removed after
// its first delivery. Cancelling the subscription first prevents any
// delivery.
func (b *Bus) Once(name string, h Handler, opts ...SubscribeOption) (*Subscription, error) {
	return b.On(name, h, append(opts, withOnce())...)
}

// Off cancels and removes a subscription.
func (b *Bus) Off(sub *Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()
	if !b.registry.remove(sub) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Emit synchronously delivers the payload to every handler registered for
// name, in registration order.
func (b *Bus) Emit(name string, payload any) error {
	if name == "" {
		return ErrInvalidEvent
	}

	b.eventsEmitted.Add(1)
	for _, sub := range b.registry.snapshot(name) {
		if !sub.Active() {
			continue
		}
		if sub.once && sub.consumed.Swap(true) {
			continue
		}
		b.invoke(sub, payload)
		if sub.once {
			sub.Cancel()
			b.registry.remove(sub)
		}
	}
	return nil
}

func (b *Bus) invoke(sub *Subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			b.logger.Err().
				Str("event", sub.name).
				Str("subscription", sub.id).
				Any("panic", r).
				Str("stack", string(debug.Stack())).
				Log("event handler panic")
		}
	}()
	sub.handler(payload)
	b.eventsDelivered.Add(1)
}

// CleanupOwner removes every subscription registered with the given owner
// and returns the number removed.
func (b *Bus) CleanupOwner(owner string) int {
	if owner == "" {
		return 0
	}
	return b.registry.removeOwner(owner)
}

// Stats reports bus counters.
type Stats struct {
	EventsEmitted       uint64
	EventsDelivered     uint64
	HandlerPanics       uint64
	ActiveSubscriptions int
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsEmitted:       b.eventsEmitted.Load(),
		EventsDelivered:     b.eventsDelivered.Load(),
		HandlerPanics:       b.handlerPanics.Load(),
		ActiveSubscriptions: b.registry.countActive(),
	}
}

// Reset cancels all subscriptions and zeroes the counters.
func (b *Bus) Reset() {
	b.registry.reset()
	b.eventsEmitted.Store(0)
	b.eventsDelivered.Store(0)
	b.handlerPanics.Store(0)
}
