package reconcile

import (
	"fmt"

	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/snapshot"
)

// Op identifies a patch operation.
type Op int

const (
	// OpAdd inserts a subtree built from Node under Parent at Index.
	OpAdd Op = iota

	// OpRemove detaches Target from its parent.
	OpRemove

	// OpReplace swaps Target for a subtree built from Node, in place.
	OpReplace

	// OpUpdateAttrs applies Attrs to Target.
	OpUpdateAttrs

	// OpUpdateText replaces Target's text content with Text.
	OpUpdateText

	// OpMove reinserts Target among its siblings at Index.
	OpMove
)

// String returns the op name.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpReplace:
		return "replace"
	case OpUpdateAttrs:
		return "update-attrs"
	case OpUpdateText:
		return "update-text"
	case OpMove:
		return "move"
	default:
		return "unknown"
	}
}

// AttrDelta lists attribute changes. Removals are explicit: names in Remove
// are deleted, attributes in Set are written, everything else is untouched.
type AttrDelta struct {
	Set    []snapshot.Attribute
	Remove []string
}

// Patch is one mutation of the live tree. The fields consulted depend on Op:
//
//	OpAdd         Parent, Node, Index
//	OpRemove      Target
//	OpReplace     Target, Node
//	OpUpdateAttrs Target, Attrs
//	OpUpdateText  Target, Text
//	OpMove        Target, Index
//
// Index is the child index at application time: applying a patch list in
// order reproduces the rendered snapshot exactly.
type Patch struct {
	Op     Op
	Target *dom.Node
	Parent *dom.Node
	Node   *snapshot.Node
	Index  int
	Attrs  AttrDelta
	Text   string
}

// String returns a compact debug form.
func (p Patch) String() string {
	switch p.Op {
	case OpAdd:
		return fmt.Sprintf("add[%d] %s", p.Index, p.Node)
	case OpRemove:
		return "remove " + describeTarget(p.Target)
	case OpReplace:
		return fmt.Sprintf("replace %s with %s", describeTarget(p.Target), p.Node)
	case OpUpdateAttrs:
		return fmt.Sprintf("update-attrs %s set=%d remove=%d", describeTarget(p.Target), len(p.Attrs.Set), len(p.Attrs.Remove))
	case OpUpdateText:
		return fmt.Sprintf("update-text %s %q", describeTarget(p.Target), p.Text)
	case OpMove:
		return fmt.Sprintf("move[%d] %s", p.Index, describeTarget(p.Target))
	default:
		return "unknown"
	}
}

func describeTarget(n *dom.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Key() != "" {
		return fmt.Sprintf("<%s key=%q>", n.Tag(), n.Key())
	}
	if n.Kind() == snapshot.KindText {
		return fmt.Sprintf("%q", n.Text())
	}
	return "<" + n.Tag() + ">"
}
