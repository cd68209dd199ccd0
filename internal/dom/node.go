// Package dom maintains the live document tree that reconciliation mutates.
//
// Live nodes expose primitive mutators (insert, remove, set attribute, set
// text) that the reconciler drives when applying patches. Nodes are not safe
// for concurrent use; the runtime mutates the tree only from frame callbacks
// and synchronous update passes.
package dom

import (
	"fmt"
	"runtime/debug"

	"github.com/dshills/squall/internal/snapshot"
)

// Node is one node of the live tree.
type Node struct {
	kind     snapshot.Kind
	tag      string
	key      string
	text     string
	attrs    []snapshot.Attribute
	handlers map[string]snapshot.Handler
	children []*Node
	parent   *Node

	// owner is the id of the component instance that claimed this node as
	// its host. Empty when unclaimed.
	owner string
}

// Kind returns the node kind.
func (n *Node) Kind() snapshot.Kind { return n.kind }

// Tag returns the element tag. Empty for text and mount nodes.
func (n *Node) Tag() string { return n.tag }

// Key returns the reconciliation key, if any.
func (n *Node) Key() string { return n.key }

// Text returns the text content of a text node.
func (n *Node) Text() string { return n.text }

// Parent returns the parent node, or nil for a detached or root node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child list. Callers must not mutate the returned
// slice; use the mutator methods instead.
func (n *Node) Children() []*Node { return n.children }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the child at index i, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// ChildIndex returns the index of c among the node's children, or -1.
func (n *Node) ChildIndex(c *Node) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

// Attrs returns the ordered attribute list. Callers must not mutate it.
func (n *Node) Attrs() []snapshot.Attribute { return n.attrs }

// AttrValue returns the value of the named attribute.
func (n *Node) AttrValue(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, overwriting in place when the name exists.
func (n *Node) SetAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, snapshot.Attribute{Name: name, Value: value})
}

// RemoveAttr removes the named attribute. Missing names are a no-op.
func (n *Node) RemoveAttr(name string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// SetText replaces the text content.
func (n *Node) SetText(s string) { n.text = s }

// Handlers returns the node's event handlers.
func (n *Node) Handlers() map[string]snapshot.Handler { return n.handlers }

// SetHandlers replaces the node's event handlers wholesale.
func (n *Node) SetHandlers(handlers map[string]snapshot.Handler) {
	n.handlers = handlers
}

// AppendChild adds c as the last child, detaching it from any previous
// parent first.
func (n *Node) AppendChild(c *Node) {
	if c == nil {
		return
	}
	c.Detach()
	c.parent = n
	n.children = append(n.children, c)
}

// InsertChildAt inserts c at index i, detaching it from any previous parent
// first. The index is clamped to the valid range.
func (n *Node) InsertChildAt(i int, c *Node) {
	if c == nil {
		return
	}
	c.Detach()
	if i < 0 {
		i = 0
	}
	if i >= len(n.children) {
		c.parent = n
		n.children = append(n.children, c)
		return
	}
	c.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// RemoveChildAt removes and returns the child at index i, or nil when out of
// range. The removed subtree stays intact.
func (n *Node) RemoveChildAt(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	c := n.children[i]
	n.children = append(n.children[:i], n.children[i+1:]...)
	c.parent = nil
	return c
}

// Detach removes the node from its parent. Detaching a parentless node is a
// no-op.
func (n *Node) Detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := p.ChildIndex(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// Claim marks the node as the exclusive host of owner. Claiming an
// already-claimed node fails with ErrHostOwned unless the owner matches.
func (n *Node) Claim(owner string) error {
	if n.owner != "" && n.owner != owner {
		return fmt.Errorf("%w: held by %s", ErrHostOwned, n.owner)
	}
	n.owner = owner
	return nil
}

// Release clears the host claim if held by owner.
func (n *Node) Release(owner string) {
	if n.owner == owner {
		n.owner = ""
	}
}

// Owner returns the id of the claiming instance, or empty.
func (n *Node) Owner() string { return n.owner }

// Fire invokes the node's handler for event, recovering a panic into the
// returned error. A missing handler is a no-op.
func (n *Node) Fire(event string, payload any) (err error) {
	h, ok := n.handlers[event]
	if !ok || h == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerPanicError{
				Event: event,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()
	h(payload)
	return nil
}
