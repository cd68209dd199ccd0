package event

import "sync"

// registry stores subscriptions by event name, preserving registration
// order within each name.
type registry struct {
	mu     sync.RWMutex
	byName map[string][]*Subscription
}

func newRegistry() *registry {
	return &registry{byName: make(map[string][]*Subscription)}
}

func (r *registry) add(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[sub.name] = append(r.byName[sub.name], sub)
}

// snapshot copies the current subscriber list for an event name. Deliveries
// iterate the copy so registrations during a pass do not join it.
func (r *registry) snapshot(name string) []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.byName[name]
	if len(subs) == 0 {
		return nil
	}
	out := make([]*Subscription, len(subs))
	copy(out, subs)
	return out
}

func (r *registry) remove(sub *Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.byName[sub.name]
	for i, candidate := range subs {
		if candidate == sub {
			r.byName[sub.name] = append(subs[:i], subs[i+1:]...)
			if len(r.byName[sub.name]) == 0 {
				delete(r.byName, sub.name)
			}
			return true
		}
	}
	return false
}

func (r *registry) removeOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int
	for name, subs := range r.byName {
		kept := subs[:0]
		for _, sub := range subs {
			if sub.owner == owner {
				sub.Cancel()
				removed++
				continue
			}
			kept = append(kept, sub)
		}
		if len(kept) == 0 {
			delete(r.byName, name)
		} else {
			r.byName[name] = kept
		}
	}
	return removed
}

func (r *registry) countActive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int
	for _, subs := range r.byName {
		for _, sub := range subs {
			if sub.Active() {
				n++
			}
		}
	}
	return n
}

func (r *registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, subs := range r.byName {
		for _, sub := range subs {
			sub.Cancel()
		}
	}
	r.byName = make(map[string][]*Subscription)
}
