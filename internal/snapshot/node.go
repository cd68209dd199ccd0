// Package snapshot defines the immutable tree descriptions produced by
// component renders.
//
// A snapshot is a value description of what a subtree should look like. The
// runtime diffs snapshots against the live tree and mutates the live tree to
// match; the snapshot itself is never mutated after the render that produced
// it returns.
package snapshot

import (
	"fmt"
	"strings"
)

// Kind identifies the node variant.
type Kind int

const (
	// KindElement is a named element with attributes and children.
	KindElement Kind = iota

	// KindText is a leaf carrying text content.
	KindText

	// KindMount is a placeholder for a mounted child component. Mount nodes
	// are leaves here; the component runtime attaches the child beneath the
	// corresponding live node after patches apply.
	KindMount
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindMount:
		return "mount"
	default:
		return "unknown"
	}
}

// Attribute is a single named attribute. Attribute order within a node is
// preserved for deterministic serialization.
type Attribute struct {
	Name  string
	Value string
}

// Handler consumes an event payload dispatched to a node.
type Handler func(payload any)

// Node describes one node of a rendered tree.
type Node struct {
	Kind     Kind
	Tag      string
	Key      string
	Text     string
	Attrs    []Attribute
	Children []*Node
	Handlers map[string]Handler

	// Mount is the component-layer payload of a KindMount node. It is opaque
	// to this package.
	Mount any
}

// AttrValue returns the value of the named attribute.
func (n *Node) AttrValue(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the node. Handler functions and mount payloads
// are shared between the original and the copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Kind:  n.Kind,
		Tag:   n.Tag,
		Key:   n.Key,
		Text:  n.Text,
		Mount: n.Mount,
	}
	if len(n.Attrs) > 0 {
		c.Attrs = make([]Attribute, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	if len(n.Handlers) > 0 {
		c.Handlers = make(map[string]Handler, len(n.Handlers))
		for name, h := range n.Handlers {
			c.Handlers[name] = h
		}
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Equal reports structural equality: kind, tag, key, text, attributes, and
// children. Attributes compare by name, not position; attribute order only
// affects serialization. Handlers and mount payloads are ignored; they do
// not affect the rendered tree.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind || n.Tag != other.Tag || n.Key != other.Key || n.Text != other.Text {
		return false
	}
	if len(n.Attrs) != len(other.Attrs) || len(n.Children) != len(other.Children) {
		return false
	}
	for _, a := range n.Attrs {
		if v, ok := other.AttrValue(a.Name); !ok || v != a.Value {
			return false
		}
	}
	for i, child := range n.Children {
		if !child.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// String returns a compact debug form of the subtree.
func (n *Node) String() string {
	var b strings.Builder
	n.writeString(&b)
	return b.String()
}

func (n *Node) writeString(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case KindText:
		fmt.Fprintf(b, "%q", n.Text)
	case KindMount:
		b.WriteString("<mount")
		if n.Key != "" {
			fmt.Fprintf(b, " key=%q", n.Key)
		}
		b.WriteString("/>")
	default:
		b.WriteString("<" + n.Tag)
		if n.Key != "" {
			fmt.Fprintf(b, " key=%q", n.Key)
		}
		for _, a := range n.Attrs {
			fmt.Fprintf(b, " %s=%q", a.Name, a.Value)
		}
		b.WriteString(">")
		for _, c := range n.Children {
			c.writeString(b)
		}
		b.WriteString("</" + n.Tag + ">")
	}
}
