package reconcile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/snapshot"
)

// replay round-trips a diff through the wire codec: the producer tree is
// patched by EncodePatches, the consumer replays the decoded frames.
func replay(t *testing.T, producer, consumer *dom.Node, next *snapshot.Node) {
	t.Helper()

	patches, err := New().Diff(producer, next)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodePatches(&buf, producer, patches); err != nil {
		t.Fatalf("EncodePatches: %v", err)
	}

	decoded, err := DecodePatches(&buf)
	if err != nil {
		t.Fatalf("DecodePatches: %v", err)
	}
	for _, wp := range decoded {
		if err := ApplyWire(consumer, wp); err != nil {
			t.Fatalf("ApplyWire(%v): %v", wp, err)
		}
	}
}

func TestWire_RoundTrip(t *testing.T) {
	initial := snapshot.El("div",
		snapshot.Attr("class", "app"),
		snapshot.El("h1", snapshot.Text("Title")),
		snapshot.El("ul",
			snapshot.El("li", snapshot.Text("one")),
			snapshot.El("li", snapshot.Text("two")),
		),
	)
	producer := mustBuild(t, initial)
	consumer := mustBuild(t, initial)

	next := snapshot.El("div",
		snapshot.Attr("class", "app dark"),
		snapshot.El("h1", snapshot.Text("New Title")),
		snapshot.El("ul",
			snapshot.El("li", snapshot.Text("one")),
			snapshot.El("li", snapshot.Text("two")),
			snapshot.El("li", snapshot.Text("three")),
		),
	)
	replay(t, producer, consumer, next)

	if !producer.Snapshot().Equal(next) {
		t.Errorf("producer:\n got %s\nwant %s", producer.Snapshot(), next)
	}
	if !consumer.Snapshot().Equal(producer.Snapshot()) {
		t.Errorf("consumer diverged:\n got %s\nwant %s", consumer.Snapshot(), producer.Snapshot())
	}
	if got, want := consumer.HTML(), producer.HTML(); got != want {
		t.Errorf("consumer HTML = %s, want %s", got, want)
	}
}

func TestWire_KeyedMoves(t *testing.T) {
	initial := keyedList("a", "b", "c", "d")
	producer := mustBuild(t, initial)
	consumer := mustBuild(t, initial)

	next := keyedList("d", "b", "a", "c")
	replay(t, producer, consumer, next)

	if got := keyOrder(consumer); !sameKeys(got, []string{"d", "b", "a", "c"}) {
		t.Errorf("consumer order = %v, want [d b a c]", got)
	}
	if !consumer.Snapshot().Equal(producer.Snapshot()) {
		t.Errorf("consumer diverged:\n got %s\nwant %s", consumer.Snapshot(), producer.Snapshot())
	}
}

func TestWire_StructuralChurn(t *testing.T) {
	initial := snapshot.El("div",
		snapshot.El("ul",
			snapshot.El("li", snapshot.Key("a"), snapshot.Text("a")),
			snapshot.El("li", snapshot.Key("b"), snapshot.Text("b")),
			snapshot.El("li", snapshot.Key("c"), snapshot.Text("c")),
		),
		snapshot.El("p", snapshot.Text("footer")),
	)
	producer := mustBuild(t, initial)
	consumer := mustBuild(t, initial)

	next := snapshot.El("div",
		snapshot.El("ul",
			snapshot.El("li", snapshot.Key("c"), snapshot.Text("c!")),
			snapshot.El("li", snapshot.Key("x"), snapshot.Text("x")),
			snapshot.El("li", snapshot.Key("a"), snapshot.Text("a")),
		),
		snapshot.El("p", snapshot.Attr("class", "muted"), snapshot.Text("footer")),
	)
	replay(t, producer, consumer, next)

	if !producer.Snapshot().Equal(next) {
		t.Errorf("producer:\n got %s\nwant %s", producer.Snapshot(), next)
	}
	if !consumer.Snapshot().Equal(producer.Snapshot()) {
		t.Errorf("consumer diverged:\n got %s\nwant %s", consumer.Snapshot(), producer.Snapshot())
	}
}

func TestWire_PatchEncoding(t *testing.T) {
	live := mustBuild(t, snapshot.El("div",
		snapshot.El("h1", snapshot.Text("a")),
		snapshot.El("p", snapshot.Text("b")),
	))

	patches, err := New().Diff(live, snapshot.El("div",
		snapshot.El("h1", snapshot.Text("a")),
		snapshot.El("p", snapshot.Text("changed")),
	))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodePatches(&buf, live, patches); err != nil {
		t.Fatalf("EncodePatches: %v", err)
	}
	decoded, err := DecodePatches(&buf)
	if err != nil {
		t.Fatalf("DecodePatches: %v", err)
	}

	want := []WirePatch{{Op: OpUpdateText, Route: []int{1, 0}, Text: "changed"}}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("decoded patches mismatch (-want +got):\n%s", diff)
	}
}

func TestWire_DecodeEmpty(t *testing.T) {
	decoded, err := DecodePatches(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("DecodePatches: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("decoded = %v, want none", decoded)
	}
}

func TestWire_TargetOutsideRoot(t *testing.T) {
	root := mustBuild(t, snapshot.El("div"))
	stray := mustBuild(t, snapshot.El("p", snapshot.Text("stray")))

	var buf bytes.Buffer
	err := EncodePatches(&buf, root, []Patch{{Op: OpUpdateText, Target: stray.Child(0), Text: "x"}})
	if !errors.Is(err, ErrBadRoute) {
		t.Errorf("EncodePatches = %v, want ErrBadRoute", err)
	}
}

func TestWire_BadRouteOnApply(t *testing.T) {
	root := mustBuild(t, snapshot.El("div"))
	err := ApplyWire(root, WirePatch{Op: OpUpdateText, Route: []int{5}, Text: "x"})
	if !errors.Is(err, ErrBadRoute) {
		t.Errorf("ApplyWire = %v, want ErrBadRoute", err)
	}
}
