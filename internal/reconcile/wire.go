package reconcile

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/snapshot"
)

// WireAttr is one attribute crossing the wire.
type WireAttr struct {
	Name  string `msgpack:"n"`
	Value string `msgpack:"v"`
}

// WireNode is a subtree crossing the wire. Handlers never cross; behavior
// stays on the producing side.
type WireNode struct {
	Kind     int         `msgpack:"k"`
	Tag      string      `msgpack:"t,omitempty"`
	Key      string      `msgpack:"key,omitempty"`
	Text     string      `msgpack:"x,omitempty"`
	Attrs    []WireAttr  `msgpack:"a,omitempty"`
	Children []*WireNode `msgpack:"c,omitempty"`
}

// WirePatch is one patch in route form. Route addresses the target (the
// parent, for adds) as child indexes walked from the root of the receiving
// tree.
type WirePatch struct {
	Op     Op         `msgpack:"op"`
	Route  []int      `msgpack:"r,omitempty"`
	Index  int        `msgpack:"i,omitempty"`
	Text   string     `msgpack:"x,omitempty"`
	Set    []WireAttr `msgpack:"s,omitempty"`
	Remove []string   `msgpack:"d,omitempty"`
	Node   *WireNode  `msgpack:"n,omitempty"`
}

// EncodePatches writes patches to w as a stream of msgpack frames and
// applies each one to the local tree as it is encoded. Routes are computed
// against the tree as the preceding patches left it, so a consumer replaying
// the frames in order stays in lockstep. It replaces Apply for a streamed
// pass; do not apply the same list again.
func EncodePatches(w io.Writer, root *dom.Node, patches []Patch) error {
	enc := msgpack.NewEncoder(w)
	for i := range patches {
		wp, err := toWire(root, &patches[i])
		if err != nil {
			return err
		}
		if err := enc.Encode(wp); err != nil {
			return fmt.Errorf("encode %s: %w", patches[i].Op, err)
		}
		if err := applyPatch(&patches[i]); err != nil {
			return fmt.Errorf("apply %s: %w", patches[i].Op, err)
		}
	}
	return nil
}

// DecodePatches reads msgpack frames from r until EOF.
func DecodePatches(r io.Reader) ([]WirePatch, error) {
	dec := msgpack.NewDecoder(r)
	var patches []WirePatch
	for {
		var wp WirePatch
		if err := dec.Decode(&wp); err != nil {
			if errors.Is(err, io.EOF) {
				return patches, nil
			}
			return nil, fmt.Errorf("decode patch: %w", err)
		}
		patches = append(patches, wp)
	}
}

// ApplyWire replays one decoded patch against a consumer tree. Replaying a
// stream in order on a tree equal to the producer's starting tree leaves
// both trees equal.
func ApplyWire(root *dom.Node, wp WirePatch) error {
	target, err := resolveRoute(root, wp.Route)
	if err != nil {
		return err
	}

	switch wp.Op {
	case OpAdd:
		n, err := dom.Build(fromWireNode(wp.Node))
		if err != nil {
			return err
		}
		target.InsertChildAt(wp.Index, n)

	case OpRemove:
		target.Detach()

	case OpReplace:
		parent := target.Parent()
		if parent == nil {
			return ErrDetachedTarget
		}
		n, err := dom.Build(fromWireNode(wp.Node))
		if err != nil {
			return err
		}
		idx := parent.ChildIndex(target)
		target.Detach()
		parent.InsertChildAt(idx, n)

	case OpUpdateAttrs:
		for _, a := range wp.Set {
			target.SetAttr(a.Name, a.Value)
		}
		for _, name := range wp.Remove {
			target.RemoveAttr(name)
		}

	case OpUpdateText:
		target.SetText(wp.Text)

	case OpMove:
		parent := target.Parent()
		if parent == nil {
			return ErrDetachedTarget
		}
		parent.RemoveChildAt(parent.ChildIndex(target))
		parent.InsertChildAt(wp.Index, target)

	default:
		return fmt.Errorf("%w: %d", ErrUnknownOp, int(wp.Op))
	}
	return nil
}

func toWire(root *dom.Node, p *Patch) (*WirePatch, error) {
	wp := &WirePatch{Op: p.Op, Index: p.Index, Text: p.Text}

	addr := p.Target
	if p.Op == OpAdd {
		addr = p.Parent
	}
	route, err := routeTo(root, addr)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", p.Op, err)
	}
	wp.Route = route

	switch p.Op {
	case OpAdd, OpReplace:
		wp.Node = toWireNode(p.Node)
	case OpUpdateAttrs:
		for _, a := range p.Attrs.Set {
			wp.Set = append(wp.Set, WireAttr{Name: a.Name, Value: a.Value})
		}
		wp.Remove = p.Attrs.Remove
	}
	return wp, nil
}

// routeTo returns the child-index path from root down to n.
func routeTo(root, n *dom.Node) ([]int, error) {
	if n == nil {
		return nil, ErrNilTarget
	}
	var route []int
	for cur := n; cur != root; {
		parent := cur.Parent()
		if parent == nil {
			return nil, fmt.Errorf("%w: node not under root", ErrBadRoute)
		}
		route = append(route, parent.ChildIndex(cur))
		cur = parent
	}
	slices.Reverse(route)
	return route, nil
}

func resolveRoute(root *dom.Node, route []int) (*dom.Node, error) {
	n := root
	for _, idx := range route {
		n = n.Child(idx)
		if n == nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRoute, route)
		}
	}
	return n, nil
}

func toWireNode(sn *snapshot.Node) *WireNode {
	if sn == nil {
		return nil
	}
	wn := &WireNode{Kind: int(sn.Kind), Tag: sn.Tag, Key: sn.Key, Text: sn.Text}
	for _, a := range sn.Attrs {
		wn.Attrs = append(wn.Attrs, WireAttr{Name: a.Name, Value: a.Value})
	}
	for _, c := range sn.Children {
		wn.Children = append(wn.Children, toWireNode(c))
	}
	return wn
}

func fromWireNode(wn *WireNode) *snapshot.Node {
	if wn == nil {
		return nil
	}
	sn := &snapshot.Node{Kind: snapshot.Kind(wn.Kind), Tag: wn.Tag, Key: wn.Key, Text: wn.Text}
	for _, a := range wn.Attrs {
		sn.Attrs = append(sn.Attrs, snapshot.Attribute{Name: a.Name, Value: a.Value})
	}
	for _, c := range wn.Children {
		sn.Children = append(sn.Children, fromWireNode(c))
	}
	return sn
}
