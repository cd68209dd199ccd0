package reconcile

import (
	"fmt"
	"slices"

	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/snapshot"
)

// diffKeyed reconciles a fully keyed sibling group. Vanished keys are
// removed first. A descending pass over the new order then inserts new keys
// and moves survivors that fall off the longest increasing subsequence of
// their old positions; a key slice mirrors the child list as the emitted
// patches would leave it, so every index is correct when its patch applies.
// Surviving pairs recurse once the structure is settled.
func (r *Reconciler) diffKeyed(parent *dom.Node, liveKids []*dom.Node, nextKids []*snapshot.Node) ([]Patch, error) {
	oldIndex := make(map[string]int, len(liveKids))
	for i, kid := range liveKids {
		if _, dup := oldIndex[kid.Key()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, kid.Key())
		}
		oldIndex[kid.Key()] = i
	}
	newIndex := make(map[string]int, len(nextKids))
	for j, kid := range nextKids {
		if _, dup := newIndex[kid.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, kid.Key)
		}
		newIndex[kid.Key] = j
	}

	var patches []Patch

	sim := make([]string, 0, len(liveKids))
	for _, kid := range liveKids {
		if _, ok := newIndex[kid.Key()]; !ok {
			patches = append(patches, Patch{Op: OpRemove, Target: kid})
			continue
		}
		sim = append(sim, kid.Key())
	}

	// Old positions of surviving keys in new order; -1 marks an insertion.
	oldPos := make([]int, len(nextKids))
	for j, kid := range nextKids {
		if i, ok := oldIndex[kid.Key]; ok {
			oldPos[j] = i
		} else {
			oldPos[j] = -1
		}
	}
	stable := stablePositions(oldPos)

	// Each processed key becomes the anchor for the one before it: a node
	// placed or confirmed in this pass ends up immediately left of the
	// previous anchor.
	anchor := ""
	for j := len(nextKids) - 1; j >= 0; j-- {
		key := nextKids[j].Key
		switch {
		case oldPos[j] < 0:
			at := anchorIndex(sim, anchor)
			patches = append(patches, Patch{Op: OpAdd, Parent: parent, Node: nextKids[j], Index: at})
			sim = slices.Insert(sim, at, key)
		case stable[j]:
			// Already ordered relative to the rest of the stable set.
		default:
			from := slices.Index(sim, key)
			sim = slices.Delete(sim, from, from+1)
			at := anchorIndex(sim, anchor)
			patches = append(patches, Patch{Op: OpMove, Target: liveKids[oldPos[j]], Index: at})
			sim = slices.Insert(sim, at, key)
		}
		anchor = key
	}

	for j, kid := range nextKids {
		if i, ok := oldIndex[kid.Key]; ok {
			sub, err := r.diffNode(liveKids[i], nextKids[j])
			if err != nil {
				return nil, err
			}
			patches = append(patches, sub...)
		}
	}
	return patches, nil
}

// anchorIndex returns the insertion index immediately before anchor, or the
// end of the group when there is no anchor yet.
func anchorIndex(sim []string, anchor string) int {
	if anchor == "" {
		return len(sim)
	}
	if i := slices.Index(sim, anchor); i >= 0 {
		return i
	}
	return len(sim)
}
