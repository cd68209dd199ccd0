// Package state provides the path-addressable reactive store.
//
// The store is backed by a JSON document: reads resolve through gjson and
// writes rewrite the document through sjson. Values therefore carry document
// semantics regardless of what was written: numbers surface as float64,
// objects as map[string]any, arrays as []any.
//
// Writes notify subscribers synchronously, in subscription insertion order.
// A subscription matches a write when its path equals the written path, is a
// strict segment prefix of it, or is the wildcard "*".
package state

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/squall/internal/state/path"
)

const emptyDocument = "{}"

// Subscriber is called when a matching path changes.
type Subscriber func(change Change)

type subscription struct {
	id        uint64
	path      path.Path
	fn        Subscriber
	owner     string
	cancelled atomic.Bool
}

// Store is a reactive value store backed by a JSON document.
type Store struct {
	mu     sync.Mutex
	doc    []byte
	subs   []*subscription
	nextID uint64

	logger *logiface.Logger[logiface.Event]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{doc: []byte(emptyDocument)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize replaces the entire document with the marshaled value. It does
// not notify subscribers; it is the seeding step before components attach.
// A nil value restores the empty document.
func (s *Store) Initialize(v any) error {
	doc := []byte(emptyDocument)
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("state: initialize: %w", err)
		}
		doc = b
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// Get returns the value at the dot path, or nil when the path does not
// exist. An empty path returns the whole document.
func (s *Store) Get(p string) any {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()

	if p == "" {
		return gjson.ParseBytes(doc).Value()
	}
	res := gjson.GetBytes(doc, p)
	if !res.Exists() {
		return nil
	}
	return res.Value()
}

// Result returns the raw gjson result at the dot path, for typed access
// without re-assertion. An empty path parses the whole document.
func (s *Store) Result(p string) gjson.Result {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()

	if p == "" {
		return gjson.ParseBytes(doc)
	}
	return gjson.GetBytes(doc, p)
}

// Set writes a value at the dot path, creating intermediate objects as
// needed, then synchronously notifies matching subscribers in insertion
// order. Subscribers added during the notification pass are not invoked for
// it.
func (s *Store) Set(p string, v any) error {
	pp := path.Path(p)
	if !pp.IsValid() || pp.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	s.mu.Lock()
	old := gjson.GetBytes(s.doc, p)
	doc, err := sjson.SetBytes(s.doc, p, v)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("state: set %s: %w", p, err)
	}
	s.doc = doc
	value := gjson.GetBytes(s.doc, p).Value()
	matched := s.matchLocked(pp)
	s.mu.Unlock()

	var oldValue any
	if old.Exists() {
		oldValue = old.Value()
	}

	s.logger.Debug().
		Str("path", p).
		Int("subscribers", len(matched)).
		Log("store set")

	s.deliver(matched, Change{Path: p, Op: OpSet, Value: value, OldValue: oldValue})
	return nil
}

// Delete removes the value at the dot path and notifies matching
// subscribers. Deleting a missing path is a no-op.
func (s *Store) Delete(p string) error {
	pp := path.Path(p)
	if !pp.IsValid() || pp.IsWildcard() {
		return fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}

	s.mu.Lock()
	old := gjson.GetBytes(s.doc, p)
	if !old.Exists() {
		s.mu.Unlock()
		return nil
	}
	doc, err := sjson.DeleteBytes(s.doc, p)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("state: delete %s: %w", p, err)
	}
	s.doc = doc
	matched := s.matchLocked(pp)
	s.mu.Unlock()

	s.logger.Debug().
		Str("path", p).
		Int("subscribers", len(matched)).
		Log("store delete")

	s.deliver(matched, Change{Path: p, Op: OpDelete, OldValue: old.Value()})
	return nil
}

// Subscribe registers fn for changes matching the dot path (exact, strict
// prefix, or the wildcard "*"). The returned function removes the
// subscription and is safe to call more than once.
func (s *Store) Subscribe(p string, fn Subscriber, opts ...SubscribeOption) func() {
	if fn == nil {
		return func() {}
	}
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s.mu.Lock()
	s.nextID++
	sub := &subscription{id: s.nextID, path: path.Path(p), fn: fn, owner: cfg.owner}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() { s.remove(sub) }
}

// CleanupOwner removes every subscription registered with the given owner
// and returns the number removed.
func (s *Store) CleanupOwner(owner string) int {
	if owner == "" {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.subs[:0]
	var removed int
	for _, sub := range s.subs {
		if sub.owner == owner {
			sub.cancelled.Store(true)
			removed++
			continue
		}
		kept = append(kept, sub)
	}
	s.subs = kept
	return removed
}

// SubscriptionCount returns the number of active subscriptions.
func (s *Store) SubscriptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Document returns a copy of the backing JSON document.
func (s *Store) Document() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.doc...)
}

// Reset restores the empty document and drops all subscriptions.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = []byte(emptyDocument)
	for _, sub := range s.subs {
		sub.cancelled.Store(true)
	}
	s.subs = nil
}

func (s *Store) remove(sub *subscription) {
	if sub.cancelled.Swap(true) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, candidate := range s.subs {
		if candidate == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// matchLocked snapshots the subscriptions matching a written path, in
// insertion order. Callers must hold s.mu.
func (s *Store) matchLocked(written path.Path) []*subscription {
	var matched []*subscription
	for _, sub := range s.subs {
		if sub.path.Matches(written) {
			matched = append(matched, sub)
		}
	}
	return matched
}

// deliver invokes subscribers outside the lock, skipping any removed since
// the snapshot was taken.
func (s *Store) deliver(subs []*subscription, change Change) {
	for _, sub := range subs {
		if sub.cancelled.Load() {
			continue
		}
		sub.fn(change)
	}
}
