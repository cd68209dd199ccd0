package dom

import (
	"html"
	"io"
	"strings"

	"github.com/dshills/squall/internal/snapshot"
)

// voidTags are elements serialized without a closing tag.
var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true,
}

// blockTags are elements that end a line in plain-text rendering.
var blockTags = map[string]bool{
	"div": true, "p": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "pre": true,
	"section": true, "header": true, "footer": true, "br": true,
}

// WriteHTML serializes the subtree as HTML, preserving attribute order.
func (n *Node) WriteHTML(w io.Writer) error {
	var b strings.Builder
	n.writeHTML(&b)
	_, err := io.WriteString(w, b.String())
	return err
}

// HTML returns the subtree serialized as HTML.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n == nil {
		return
	}
	switch n.kind {
	case snapshot.KindText:
		b.WriteString(html.EscapeString(n.text))
		return
	case snapshot.KindMount:
		// Placeholders serialize as their contents; the wrapper is a
		// runtime artifact, not document structure.
		for _, c := range n.children {
			c.writeHTML(b)
		}
		return
	}

	b.WriteString("<")
	b.WriteString(n.tag)
	for _, a := range n.attrs {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteString(`"`)
	}
	if voidTags[n.tag] && len(n.children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
	for _, c := range n.children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteString(">")
}

// PlainText returns the concatenated text content of the subtree. Block
// elements end their line.
func (n *Node) PlainText() string {
	var b strings.Builder
	n.writePlainText(&b)
	return strings.TrimRight(b.String(), "\n")
}

func (n *Node) writePlainText(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.kind == snapshot.KindText {
		b.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.writePlainText(b)
	}
	if blockTags[n.tag] && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
}
