package dom

import "github.com/dshills/squall/internal/snapshot"

// NewHost creates a detached element node suitable as a mount host.
func NewHost(tag string) *Node {
	return &Node{kind: snapshot.KindElement, tag: tag}
}

// Build constructs a live subtree mirroring the snapshot. Mount nodes become
// empty placeholder nodes; the component runtime attaches the child instance
// beneath them afterwards.
func Build(sn *snapshot.Node) (*Node, error) {
	if sn == nil {
		return nil, ErrNilSnapshot
	}
	switch sn.Kind {
	case snapshot.KindText:
		return &Node{kind: snapshot.KindText, key: sn.Key, text: sn.Text}, nil
	case snapshot.KindMount:
		return &Node{kind: snapshot.KindMount, key: sn.Key}, nil
	}

	n := &Node{kind: snapshot.KindElement, tag: sn.Tag, key: sn.Key}
	if len(sn.Attrs) > 0 {
		n.attrs = make([]snapshot.Attribute, len(sn.Attrs))
		copy(n.attrs, sn.Attrs)
	}
	if len(sn.Handlers) > 0 {
		n.handlers = make(map[string]snapshot.Handler, len(sn.Handlers))
		for name, h := range sn.Handlers {
			n.handlers[name] = h
		}
	}
	for _, child := range sn.Children {
		c, err := Build(child)
		if err != nil {
			return nil, err
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n, nil
}

// Snapshot projects the live subtree back into a snapshot description.
// Handlers are not carried; snapshot equality ignores them.
func (n *Node) Snapshot() *snapshot.Node {
	if n == nil {
		return nil
	}
	sn := &snapshot.Node{
		Kind: n.kind,
		Tag:  n.tag,
		Key:  n.key,
		Text: n.text,
	}
	if len(n.attrs) > 0 {
		sn.Attrs = make([]snapshot.Attribute, len(n.attrs))
		copy(sn.Attrs, n.attrs)
	}
	for _, c := range n.children {
		sn.Children = append(sn.Children, c.Snapshot())
	}
	return sn
}
