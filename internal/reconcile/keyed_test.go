package reconcile

import (
	"errors"
	"testing"

	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/snapshot"
)

func keyedList(keys ...string) *snapshot.Node {
	parts := make([]snapshot.Part, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, snapshot.El("li", snapshot.Key(k), snapshot.Text(k)))
	}
	return snapshot.El("ul", parts...)
}

func keyOrder(parent *dom.Node) []string {
	keys := make([]string, 0, parent.ChildCount())
	for _, kid := range parent.Children() {
		keys = append(keys, kid.Key())
	}
	return keys
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiffKeyed_Reorder(t *testing.T) {
	cases := []struct {
		name   string
		before []string
		after  []string
		moves  int
	}{
		{"identity", []string{"a", "b", "c"}, []string{"a", "b", "c"}, 0},
		{"swap", []string{"a", "b"}, []string{"b", "a"}, 1},
		{"rotate", []string{"a", "b", "c"}, []string{"c", "a", "b"}, 1},
		{"block rotate", []string{"a", "b", "c", "d"}, []string{"c", "d", "a", "b"}, 2},
		{"reverse", []string{"a", "b", "c", "d", "e"}, []string{"e", "d", "c", "b", "a"}, 4},
		{"single hop", []string{"a", "b", "c", "d"}, []string{"a", "c", "d", "b"}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			live := mustBuild(t, keyedList(tc.before...))
			patches := diffApply(t, New(), live, keyedList(tc.after...))

			counts := countOps(patches)
			if counts[OpMove] != tc.moves {
				t.Errorf("moves = %d, want %d (patches: %v)", counts[OpMove], tc.moves, patches)
			}
			if len(patches) != tc.moves {
				t.Errorf("patches = %v, want moves only", patches)
			}
			if got := keyOrder(live); !sameKeys(got, tc.after) {
				t.Errorf("order = %v, want %v", got, tc.after)
			}
		})
	}
}

func TestDiffKeyed_PreservesIdentity(t *testing.T) {
	live := mustBuild(t, keyedList("a", "b", "c", "d"))

	byKey := make(map[string]*dom.Node)
	for _, kid := range live.Children() {
		byKey[kid.Key()] = kid
	}

	diffApply(t, New(), live, keyedList("d", "b", "a", "c"))

	for _, kid := range live.Children() {
		if byKey[kid.Key()] != kid {
			t.Errorf("key %q: node identity lost across move", kid.Key())
		}
	}
}

func TestDiffKeyed_RemoveAddReorder(t *testing.T) {
	live := mustBuild(t, keyedList("a", "b", "c", "d"))
	next := keyedList("d", "x", "a")

	patches := diffApply(t, New(), live, next)

	counts := countOps(patches)
	if counts[OpRemove] != 2 || counts[OpAdd] != 1 || counts[OpMove] != 1 {
		t.Fatalf("patches = %v, want 2 removes, 1 add, 1 move", patches)
	}
	if patches[0].Op != OpRemove || patches[1].Op != OpRemove {
		t.Errorf("patches = %v, want removes first", patches)
	}
	if got := keyOrder(live); !sameKeys(got, []string{"d", "x", "a"}) {
		t.Errorf("order = %v, want [d x a]", got)
	}
	if !live.Snapshot().Equal(next) {
		t.Errorf("after apply:\n got %s\nwant %s", live.Snapshot(), next)
	}
}

func TestDiffKeyed_EmptyToFull(t *testing.T) {
	live := mustBuild(t, keyedList())
	next := keyedList("a", "b", "c")

	patches := diffApply(t, New(), live, next)
	if counts := countOps(patches); counts[OpAdd] != 3 || len(patches) != 3 {
		t.Fatalf("patches = %v, want three adds", patches)
	}
	if got := keyOrder(live); !sameKeys(got, []string{"a", "b", "c"}) {
		t.Errorf("order = %v, want [a b c]", got)
	}
}

func TestDiffKeyed_FullToEmpty(t *testing.T) {
	live := mustBuild(t, keyedList("a", "b"))

	patches := diffApply(t, New(), live, keyedList())
	if counts := countOps(patches); counts[OpRemove] != 2 || len(patches) != 2 {
		t.Fatalf("patches = %v, want two removes", patches)
	}
	if live.ChildCount() != 0 {
		t.Errorf("children = %d, want 0", live.ChildCount())
	}
}

func TestDiffKeyed_ContentUpdate(t *testing.T) {
	live := mustBuild(t, keyedList("a", "b"))
	next := snapshot.El("ul",
		snapshot.El("li", snapshot.Key("b"), snapshot.Text("b updated")),
		snapshot.El("li", snapshot.Key("a"), snapshot.Text("a")),
	)

	patches := diffApply(t, New(), live, next)

	counts := countOps(patches)
	if counts[OpMove] != 1 || counts[OpUpdateText] != 1 || len(patches) != 2 {
		t.Fatalf("patches = %v, want one move and one update-text", patches)
	}
	if !live.Snapshot().Equal(next) {
		t.Errorf("after apply:\n got %s\nwant %s", live.Snapshot(), next)
	}
}

func TestDiffKeyed_SubtreeRidesMove(t *testing.T) {
	item := func(key, note string) *snapshot.Node {
		return snapshot.El("li", snapshot.Key(key),
			snapshot.El("span", snapshot.Text(key)),
			snapshot.El("em", snapshot.Text(note)),
		)
	}
	live := mustBuild(t, snapshot.El("ul", item("a", "first"), item("b", "second")))
	grandchild := live.Child(1).Child(1)

	next := snapshot.El("ul", item("b", "second"), item("a", "first"))
	diffApply(t, New(), live, next)

	if live.Child(0).Child(1) != grandchild {
		t.Error("grandchild identity lost; subtree should ride its parent's move")
	}
	if !live.Snapshot().Equal(next) {
		t.Errorf("after apply:\n got %s\nwant %s", live.Snapshot(), next)
	}
}

func TestDiffKeyed_DuplicateKey(t *testing.T) {
	t.Run("in snapshot", func(t *testing.T) {
		live := mustBuild(t, keyedList("a", "b"))
		next := keyedList("a", "a")
		if _, err := New().Diff(live, next); !errors.Is(err, ErrDuplicateKey) {
			t.Errorf("Diff = %v, want ErrDuplicateKey", err)
		}
	})

	t.Run("in live tree", func(t *testing.T) {
		live := mustBuild(t, keyedList("a", "a"))
		next := keyedList("a", "b")
		if _, err := New().Diff(live, next); !errors.Is(err, ErrDuplicateKey) {
			t.Errorf("Diff = %v, want ErrDuplicateKey", err)
		}
	})
}

func TestDiffKeyed_ApplyReproduces(t *testing.T) {
	transitions := [][2][]string{
		{{"a", "b", "c"}, {"c", "b", "a"}},
		{{"a", "b", "c", "d", "e"}, {"b", "d", "a", "e", "c"}},
		{{"a", "b", "c"}, {"x", "y", "z"}},
		{{"a"}, {"b", "a", "c"}},
		{{"a", "b", "c", "d"}, {"d", "c"}},
		{{"a", "b", "c", "d", "e", "f"}, {"f", "a", "x", "d", "b"}},
	}

	for _, tr := range transitions {
		before, after := tr[0], tr[1]
		live := mustBuild(t, keyedList(before...))
		next := keyedList(after...)
		diffApply(t, New(), live, next)
		if got := keyOrder(live); !sameKeys(got, after) {
			t.Errorf("%v -> %v: order = %v", before, after, got)
		}
		if !live.Snapshot().Equal(next) {
			t.Errorf("%v -> %v: tree mismatch:\n got %s\nwant %s", before, after, live.Snapshot(), next)
		}
	}
}

func TestReconciler_MoveTracking(t *testing.T) {
	r := New(WithMoveTracking())
	live := mustBuild(t, keyedList("a", "b", "c"))

	patches, err := r.Diff(live, keyedList("c", "a", "b"))
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	moves := r.Moves()
	if len(moves) != 1 || moves[0].Op != OpMove {
		t.Fatalf("Moves() = %v, want one move", moves)
	}
	if moves[0].Target.Key() != "c" {
		t.Errorf("moved key = %q, want %q", moves[0].Target.Key(), "c")
	}
	if err := Apply(patches); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// A clean diff resets the record.
	if _, err := r.Diff(live, keyedList("c", "a", "b")); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if moves := r.Moves(); len(moves) != 0 {
		t.Errorf("Moves() after clean diff = %v, want none", moves)
	}
}

func TestReconciler_MovesWithoutTracking(t *testing.T) {
	r := New()
	live := mustBuild(t, keyedList("a", "b"))
	if _, err := r.Diff(live, keyedList("b", "a")); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if r.Moves() != nil {
		t.Error("Moves() without tracking should be nil")
	}
}
