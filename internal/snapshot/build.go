package snapshot

// Part is one piece of an element under construction. Parts are applied in
// order by El; a *Node part appends itself as a child.
type Part interface {
	applyTo(n *Node)
}

// partFunc adapts a function to the Part interface.
type partFunc func(*Node)

func (f partFunc) applyTo(n *Node) { f(n) }

func (n *Node) applyTo(parent *Node) {
	if n == nil {
		return
	}
	parent.Children = append(parent.Children, n)
}

// El builds an element node, applying parts in order. Nil parts are skipped.
func El(tag string, parts ...Part) *Node {
	n := &Node{Kind: KindElement, Tag: tag}
	for _, p := range parts {
		if p != nil {
			p.applyTo(n)
		}
	}
	return n
}

// Text builds a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Attr sets a named attribute. Repeating a name overwrites the value in
// place, keeping the original position.
func Attr(name, value string) Part {
	return partFunc(func(n *Node) {
		for i := range n.Attrs {
			if n.Attrs[i].Name == name {
				n.Attrs[i].Value = value
				return
			}
		}
		n.Attrs = append(n.Attrs, Attribute{Name: name, Value: value})
	})
}

// Key marks the node for keyed reconciliation within its sibling group.
func Key(k string) Part {
	return partFunc(func(n *Node) { n.Key = k })
}

// On registers an event handler on the node. Repeating an event name
// replaces the handler.
func On(event string, fn Handler) Part {
	return partFunc(func(n *Node) {
		if n.Handlers == nil {
			n.Handlers = make(map[string]Handler)
		}
		n.Handlers[event] = fn
	})
}
