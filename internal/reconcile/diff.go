// Package reconcile diffs live trees against rendered snapshots and applies
// the resulting patches.
//
// A diff never mutates structure by itself; it returns an ordered patch
// list whose indexes are valid at application time, so applying the list
// front to back reproduces the snapshot exactly. The one in-place effect of
// a diff is refreshing event handlers on paired nodes, which does not alter
// the rendered tree.
//
// Sibling groups are reconciled positionally unless every member carries a
// key, in which case vanished keys are removed, surviving nodes are kept in
// place when they fall on a longest increasing subsequence of their old
// positions, and the rest are moved. A pure reorder of n children therefore
// costs exactly n minus the subsequence length moves, and moved nodes keep
// their identity along with any state living beneath them.
package reconcile

import (
	"fmt"

	"github.com/joeycumines/logiface"

	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/snapshot"
)

// Reconciler computes and applies patch lists.
type Reconciler struct {
	trackMoves bool
	lastMoves  []Patch
	logger     *logiface.Logger[logiface.Event]
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithMoveTracking records the move patches of each diff for inspection
// through Moves.
func WithMoveTracking() Option {
	return func(r *Reconciler) { r.trackMoves = true }
}

// WithLogger sets the logger. Diffs log at debug level.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// New returns a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Diff compares the live subtree rooted at live against next and returns
// the patches that transform one into the other. The live tree is not
// restructured; only paired handlers are refreshed in place.
func (r *Reconciler) Diff(live *dom.Node, next *snapshot.Node) ([]Patch, error) {
	if live == nil {
		return nil, ErrNilLive
	}
	if next == nil {
		return nil, ErrNilSnapshot
	}

	patches, err := r.diffNode(live, next)
	if err != nil {
		return nil, err
	}

	if r.trackMoves {
		r.lastMoves = r.lastMoves[:0]
		for _, p := range patches {
			if p.Op == OpMove {
				r.lastMoves = append(r.lastMoves, p)
			}
		}
	}
	r.logger.Debug().
		Int("patches", len(patches)).
		Log("diff complete")
	return patches, nil
}

// Moves returns the move patches recorded by the most recent Diff. It
// returns nil unless the Reconciler was built with WithMoveTracking.
func (r *Reconciler) Moves() []Patch {
	if !r.trackMoves {
		return nil
	}
	moves := make([]Patch, len(r.lastMoves))
	copy(moves, r.lastMoves)
	return moves
}

func (r *Reconciler) diffNode(live *dom.Node, next *snapshot.Node) ([]Patch, error) {
	if !sameNode(live, next) {
		return []Patch{{Op: OpReplace, Target: live, Node: next}}, nil
	}

	switch next.Kind {
	case snapshot.KindText:
		if live.Text() != next.Text {
			return []Patch{{Op: OpUpdateText, Target: live, Text: next.Text}}, nil
		}
		return nil, nil
	case snapshot.KindMount:
		// The attached child instance owns everything beneath the
		// placeholder; its own update cycle reconciles that subtree.
		return nil, nil
	}

	var patches []Patch
	if delta, changed := attrDelta(live, next); changed {
		patches = append(patches, Patch{Op: OpUpdateAttrs, Target: live, Attrs: delta})
	}
	live.SetHandlers(next.Handlers)

	children, err := r.diffChildren(live, next)
	if err != nil {
		return nil, err
	}
	return append(patches, children...), nil
}

// sameNode reports whether live and next describe the same node identity.
// A mismatch replaces the whole subtree.
func sameNode(live *dom.Node, next *snapshot.Node) bool {
	return live.Kind() == next.Kind && live.Tag() == next.Tag && live.Key() == next.Key
}

func (r *Reconciler) diffChildren(live *dom.Node, next *snapshot.Node) ([]Patch, error) {
	liveKids := live.Children()
	nextKids := next.Children

	liveKeyed, err := groupKeyed(len(liveKids), func(i int) string { return liveKids[i].Key() })
	if err != nil {
		return nil, fmt.Errorf("%w: live children of <%s>", err, live.Tag())
	}
	nextKeyed, err := groupKeyed(len(nextKids), func(i int) string { return nextKids[i].Key })
	if err != nil {
		return nil, fmt.Errorf("%w: children of <%s>", err, next.Tag)
	}

	bothKeyed := (liveKeyed || len(liveKids) == 0) && (nextKeyed || len(nextKids) == 0)
	if bothKeyed && (liveKeyed || nextKeyed) {
		return r.diffKeyed(live, liveKids, nextKids)
	}
	return r.diffPositional(live, liveKids, nextKids)
}

// groupKeyed reports whether every member of a sibling group carries a key.
func groupKeyed(n int, key func(int) string) (bool, error) {
	if n == 0 {
		return false, nil
	}
	keyed := key(0) != ""
	for i := 1; i < n; i++ {
		if (key(i) != "") != keyed {
			return false, ErrMixedKeys
		}
	}
	return keyed, nil
}

// diffPositional pairs children by position: the common prefix recurses,
// surplus live children are removed and surplus snapshot children added.
func (r *Reconciler) diffPositional(parent *dom.Node, liveKids []*dom.Node, nextKids []*snapshot.Node) ([]Patch, error) {
	var patches []Patch
	common := min(len(liveKids), len(nextKids))
	for i := 0; i < common; i++ {
		sub, err := r.diffNode(liveKids[i], nextKids[i])
		if err != nil {
			return nil, err
		}
		patches = append(patches, sub...)
	}
	for i := common; i < len(liveKids); i++ {
		patches = append(patches, Patch{Op: OpRemove, Target: liveKids[i]})
	}
	for i := common; i < len(nextKids); i++ {
		patches = append(patches, Patch{Op: OpAdd, Parent: parent, Node: nextKids[i], Index: i})
	}
	return patches, nil
}

// attrDelta computes the attribute changes turning live into next.
func attrDelta(live *dom.Node, next *snapshot.Node) (AttrDelta, bool) {
	var delta AttrDelta
	for _, a := range next.Attrs {
		if v, ok := live.AttrValue(a.Name); !ok || v != a.Value {
			delta.Set = append(delta.Set, a)
		}
	}
	for _, a := range live.Attrs() {
		if _, ok := next.AttrValue(a.Name); !ok {
			delta.Remove = append(delta.Remove, a.Name)
		}
	}
	return delta, len(delta.Set) > 0 || len(delta.Remove) > 0
}
