package event

import (
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// Handler consumes an event payload.
type Handler func(payload any)

// Subscription is an active handler registration.
type Subscription struct {
	id      string
	name    string
	handler Handler
	owner   string
	once    bool

	cancelled atomic.Bool
	consumed  atomic.Bool
}

func newSubscription(name string, h Handler, cfg subscribeConfig) *Subscription {
	return &Subscription{
		id:      ulid.Make().String(),
		name:    name,
		handler: h,
		owner:   cfg.owner,
		once:    cfg.once,
	}
}

// ID returns the unique subscription id.
func (s *Subscription) ID() string { return s.id }

// Name returns the event name the subscription listens to.
func (s *Subscription) Name() string { return s.name }

// Owner returns the owner tag, or empty.
func (s *Subscription) Owner() string { return s.owner }

// Cancel deactivates the subscription immediately. A cancelled subscription
// receives no further deliveries even if it is still registered.
func (s *Subscription) Cancel() {
	s.cancelled.Store(true)
}

// Active reports whether the subscription can still receive deliveries.
func (s *Subscription) Active() bool {
	return !s.cancelled.Load()
}
