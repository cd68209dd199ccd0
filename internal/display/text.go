package display

import (
	"io"

	"github.com/dshills/squall/internal/dom"
)

// Text writes each presented frame to an io.Writer. Frames are emitted as
// HTML by default, or as the tree's plain-text projection with
// WithPlainText.
type Text struct {
	w     io.Writer
	plain bool
	sep   string
}

var _ Presenter = (*Text)(nil)

// TextOption configures a Text presenter.
type TextOption func(*Text)

// WithPlainText emits the tree's text content instead of HTML markup.
func WithPlainText() TextOption {
	return func(t *Text) {
		t.plain = true
	}
}

// WithFrameSeparator sets the string written after each frame. The default
// is a single newline.
func WithFrameSeparator(sep string) TextOption {
	return func(t *Text) {
		t.sep = sep
	}
}

// NewText creates a presenter that writes frames to w.
func NewText(w io.Writer, opts ...TextOption) *Text {
	t := &Text{w: w, sep: "\n"}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Present serializes root and writes it to the destination followed by the
// frame separator.
func (t *Text) Present(root *dom.Node) error {
	if t.w == nil {
		return ErrNilWriter
	}
	out := root.HTML()
	if t.plain {
		out = root.PlainText()
	}
	if _, err := io.WriteString(t.w, out); err != nil {
		return err
	}
	_, err := io.WriteString(t.w, t.sep)
	return err
}

// Close is a no-op for the text presenter.
func (t *Text) Close() error {
	return nil
}
