package display

import (
	"strings"
	"testing"

	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/snapshot"
)

func buildTree(t *testing.T) *dom.Node {
	t.Helper()
	root, err := dom.Build(snapshot.El("div",
		snapshot.Attr("class", "frame"),
		snapshot.El("p", snapshot.Text("hello")),
		snapshot.El("p", snapshot.Text("world")),
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return root
}

func TestText_PresentHTML(t *testing.T) {
	var buf strings.Builder
	p := NewText(&buf)
	if err := p.Present(buildTree(t)); err != nil {
		t.Fatalf("Present: %v", err)
	}
	got := buf.String()
	want := `<div class="frame"><p>hello</p><p>world</p></div>` + "\n"
	if got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
}

func TestText_PresentPlain(t *testing.T) {
	var buf strings.Builder
	p := NewText(&buf, WithPlainText())
	if err := p.Present(buildTree(t)); err != nil {
		t.Fatalf("Present: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("frame = %q, want both lines of text", got)
	}
	if strings.Contains(got, "<div") {
		t.Errorf("frame = %q, want no markup in plain mode", got)
	}
}

func TestText_FrameSeparator(t *testing.T) {
	var buf strings.Builder
	p := NewText(&buf, WithFrameSeparator("\n---\n"))
	root := buildTree(t)
	for i := 0; i < 2; i++ {
		if err := p.Present(root); err != nil {
			t.Fatalf("Present %d: %v", i, err)
		}
	}
	if got := strings.Count(buf.String(), "\n---\n"); got != 2 {
		t.Errorf("separator count = %d, want 2", got)
	}
}

func TestText_NilWriter(t *testing.T) {
	p := NewText(nil)
	if err := p.Present(buildTree(t)); err != ErrNilWriter {
		t.Errorf("Present err = %v, want ErrNilWriter", err)
	}
}

func TestText_NilRoot(t *testing.T) {
	var buf strings.Builder
	p := NewText(&buf)
	if err := p.Present(nil); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if got := buf.String(); got != "\n" {
		t.Errorf("frame = %q, want bare separator for empty tree", got)
	}
}

func TestText_Close(t *testing.T) {
	p := NewText(&strings.Builder{})
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
