package state

import (
	"errors"
	"reflect"
	"testing"
)

func TestStore_SetGet(t *testing.T) {
	s := New()

	if err := s.Set("count", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Numbers carry document semantics: always float64.
	if got := s.Get("count"); got != float64(1) {
		t.Errorf("Get(count) = %v (%T), want float64(1)", got, got)
	}
}

func TestStore_NestedSet(t *testing.T) {
	s := New()

	if err := s.Set("user.profile.name", "Ada"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := s.Get("user.profile.name"); got != "Ada" {
		t.Errorf("Get(user.profile.name) = %v, want 'Ada'", got)
	}

	want := map[string]any{"profile": map[string]any{"name": "Ada"}}
	if got := s.Get("user"); !reflect.DeepEqual(got, want) {
		t.Errorf("Get(user) = %v, want %v", got, want)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := New()
	if got := s.Get("nope.not.here"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
}

func TestStore_GetWholeDocument(t *testing.T) {
	s := New()
	if err := s.Set("a", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	want := map[string]any{"a": true}
	if got := s.Get(""); !reflect.DeepEqual(got, want) {
		t.Errorf("Get(\"\") = %v, want %v", got, want)
	}
}

func TestStore_SetInvalidPath(t *testing.T) {
	s := New()
	for _, p := range []string{"", "*", ".a", "a..b"} {
		if err := s.Set(p, 1); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Set(%q) error = %v, want ErrInvalidPath", p, err)
		}
	}
}

func TestStore_SetUnmarshalable(t *testing.T) {
	s := New()
	if err := s.Set("bad", make(chan int)); err == nil {
		t.Error("Set(chan) should fail")
	}
}

func TestStore_Initialize(t *testing.T) {
	s := New()

	var notified bool
	s.Subscribe("*", func(Change) { notified = true })

	if err := s.Initialize(map[string]any{"count": 5, "user": map[string]any{"name": "Ada"}}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if notified {
		t.Error("Initialize must not notify subscribers")
	}
	if got := s.Get("count"); got != float64(5) {
		t.Errorf("Get(count) = %v, want 5", got)
	}

	// A second call fully replaces the document.
	if err := s.Initialize(map[string]any{"other": true}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := s.Get("count"); got != nil {
		t.Errorf("Get(count) after replace = %v, want nil", got)
	}
}

func TestStore_SubscribeMatching(t *testing.T) {
	s := New()

	var exact, prefix, wildcard, other int
	s.Subscribe("user.name", func(Change) { exact++ })
	s.Subscribe("user", func(Change) { prefix++ })
	s.Subscribe("*", func(Change) { wildcard++ })
	s.Subscribe("settings", func(Change) { other++ })

	if err := s.Set("user.name", "Ada"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if exact != 1 {
		t.Errorf("exact subscriber ran %d times, want 1", exact)
	}
	if prefix != 1 {
		t.Errorf("prefix subscriber ran %d times, want 1", prefix)
	}
	if wildcard != 1 {
		t.Errorf("wildcard subscriber ran %d times, want 1", wildcard)
	}
	if other != 0 {
		t.Errorf("unrelated subscriber ran %d times, want 0", other)
	}

	// Writing the parent does not notify the narrower child subscription.
	if err := s.Set("user", map[string]any{"name": "Grace"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if exact != 1 {
		t.Errorf("child subscriber ran %d times after parent write, want 1", exact)
	}
	if prefix != 2 {
		t.Errorf("prefix subscriber ran %d times, want 2", prefix)
	}
}

func TestStore_NotificationOrder(t *testing.T) {
	s := New()

	var order []string
	s.Subscribe("count", func(Change) { order = append(order, "first") })
	s.Subscribe("*", func(Change) { order = append(order, "second") })
	s.Subscribe("count", func(Change) { order = append(order, "third") })

	if err := s.Set("count", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("delivery order = %v, want %v", order, want)
	}
}

func TestStore_SubscriberAddedDuringNotify(t *testing.T) {
	s := New()

	var late int
	s.Subscribe("count", func(Change) {
		s.Subscribe("count", func(Change) { late++ })
	})

	if err := s.Set("count", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if late != 0 {
		t.Errorf("late subscriber ran %d times in its own pass, want 0", late)
	}

	if err := s.Set("count", 2); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if late != 1 {
		t.Errorf("late subscriber ran %d times on next write, want 1", late)
	}
}

func TestStore_ChangePayload(t *testing.T) {
	s := New()

	var got Change
	s.Subscribe("count", func(c Change) { got = c })

	if err := s.Set("count", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got.Path != "count" || got.Op != OpSet {
		t.Errorf("Change = %+v, want Path=count Op=set", got)
	}
	if got.Value != float64(1) {
		t.Errorf("Value = %v (%T), want float64(1)", got.Value, got.Value)
	}
	if got.OldValue != nil {
		t.Errorf("OldValue = %v, want nil on first write", got.OldValue)
	}

	if err := s.Set("count", 2); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got.OldValue != float64(1) {
		t.Errorf("OldValue = %v, want float64(1)", got.OldValue)
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	if err := s.Set("user.name", "Ada"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got Change
	var count int
	s.Subscribe("user.name", func(c Change) { got = c; count++ })

	if err := s.Delete("user.name"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got.Op != OpDelete {
		t.Errorf("Op = %v, want delete", got.Op)
	}
	if got.OldValue != "Ada" {
		t.Errorf("OldValue = %v, want 'Ada'", got.OldValue)
	}
	if got.Value != nil {
		t.Errorf("Value = %v, want nil", got.Value)
	}
	if s.Get("user.name") != nil {
		t.Error("value still present after delete")
	}

	// Deleting a missing path neither errors nor notifies.
	if err := s.Delete("user.name"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
	if count != 1 {
		t.Errorf("subscriber ran %d times, want 1", count)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New()

	var count int
	unsub := s.Subscribe("count", func(Change) { count++ })

	if err := s.Set("count", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	unsub()
	unsub() // idempotent
	if err := s.Set("count", 2); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if count != 1 {
		t.Errorf("subscriber ran %d times, want 1", count)
	}
	if s.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", s.SubscriptionCount())
	}
}

func TestStore_CleanupOwner(t *testing.T) {
	s := New()

	var mine, theirs int
	s.Subscribe("a", func(Change) { mine++ }, WithOwner("inst-1"))
	s.Subscribe("b", func(Change) { mine++ }, WithOwner("inst-1"))
	s.Subscribe("a", func(Change) { theirs++ }, WithOwner("inst-2"))

	if removed := s.CleanupOwner("inst-1"); removed != 2 {
		t.Errorf("CleanupOwner() = %d, want 2", removed)
	}

	if err := s.Set("a", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if mine != 0 {
		t.Errorf("cleaned-up subscriber ran %d times", mine)
	}
	if theirs != 1 {
		t.Errorf("surviving subscriber ran %d times, want 1", theirs)
	}

	if removed := s.CleanupOwner(""); removed != 0 {
		t.Errorf("CleanupOwner(\"\") = %d, want 0", removed)
	}
}

func TestStore_ArrayAccess(t *testing.T) {
	s := New()
	if err := s.Set("todos", []string{"first", "second"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.Get("todos.1"); got != "second" {
		t.Errorf("Get(todos.1) = %v, want 'second'", got)
	}
	if got := s.Result("todos.#").Int(); got != 2 {
		t.Errorf("Result(todos.#) = %d, want 2", got)
	}
}

func TestStore_Reset(t *testing.T) {
	s := New()
	var count int
	s.Subscribe("*", func(Change) { count++ })
	if err := s.Set("a", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	s.Reset()

	if got := s.Get("a"); got != nil {
		t.Errorf("Get(a) after reset = %v, want nil", got)
	}
	if err := s.Set("a", 2); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if count != 1 {
		t.Errorf("old subscriber ran %d times, want 1", count)
	}
}

func TestDefault(t *testing.T) {
	ResetDefault()
	defer ResetDefault()

	if Default() != Default() {
		t.Error("Default() is not stable")
	}

	if err := Default().Set("x", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	ResetDefault()
	if got := Default().Get("x"); got != nil {
		t.Errorf("value survived ResetDefault: %v", got)
	}
}
