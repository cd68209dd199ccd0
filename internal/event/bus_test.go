package event

import (
	"errors"
	"reflect"
	"testing"
)

func TestBus_OnEmit(t *testing.T) {
	b := New()

	var got any
	if _, err := b.On("click", func(p any) { got = p }); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if err := b.Emit("click", 42); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if got != 42 {
		t.Errorf("handler received %v, want 42", got)
	}
}

func TestBus_On_Validation(t *testing.T) {
	b := New()

	if _, err := b.On("click", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("On(nil handler) error = %v, want ErrNilHandler", err)
	}
	if _, err := b.On("", func(any) {}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("On(empty name) error = %v, want ErrInvalidEvent", err)
	}
	if err := b.Emit("", nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Emit(empty name) error = %v, want ErrInvalidEvent", err)
	}
}

func TestBus_DeliveryOrder(t *testing.T) {
	b := New()

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		if _, err := b.On("tick", func(any) { order = append(order, i) }); err != nil {
			t.Fatalf("On() error = %v", err)
		}
	}

	if err := b.Emit("tick", nil); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if want := []int{1, 2, 3}; !reflect.DeepEqual(order, want) {
		t.Errorf("delivery order = %v, want %v", order, want)
	}
}

func TestBus_EmitNoSubscribers(t *testing.T) {
	b := New()
	if err := b.Emit("nobody", nil); err != nil {
		t.Errorf("Emit() error = %v", err)
	}
}

func TestBus_Off(t *testing.T) {
	b := New()

	var count int
	sub, err := b.On("click", func(any) { count++ })
	if err != nil {
		t.Fatalf("On() error = %v", err)
	}

	if err := b.Off(sub); err != nil {
		t.Fatalf("Off() error = %v", err)
	}
	if err := b.Emit("click", nil); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if count != 0 {
		t.Errorf("removed handler ran %d times", count)
	}

	if err := b.Off(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Off() error = %v, want ErrSubscriptionNotFound", err)
	}
	if err := b.Off(nil); !errors.Is(err, ErrInvalidSubscription) {
		t.Errorf("Off(nil) error = %v, want ErrInvalidSubscription", err)
	}
}

func TestBus_Once(t *testing.T) {
	b := New()

	var count int
	if _, err := b.Once("load", func(any) { count++ }); err != nil {
		t.Fatalf("Once() error = %v", err)
	}

	_ = b.Emit("load", nil)
	_ = b.Emit("load", nil)

	if count != 1 {
		t.Errorf("once handler ran %d times, want 1", count)
	}
	if got := b.Stats().ActiveSubscriptions; got != 0 {
		t.Errorf("ActiveSubscriptions = %d, want 0 after once delivery", got)
	}
}

func TestBus_Once_CancelledBeforeEmit(t *testing.T) {
	b := New()

	var count int
	sub, err := b.Once("load", func(any) { count++ })
	if err != nil {
		t.Fatalf("Once() error = %v", err)
	}

	if err := b.Off(sub); err != nil {
		t.Fatalf("Off() error = %v", err)
	}
	_ = b.Emit("load", nil)

	if count != 0 {
		t.Errorf("cancelled once handler ran %d times", count)
	}
}

func TestBus_PanicIsolation(t *testing.T) {
	b := New()

	var second bool
	if _, err := b.On("boom", func(any) { panic("first handler") }); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if _, err := b.On("boom", func(any) { second = true }); err != nil {
		t.Fatalf("On() error = %v", err)
	}

	if err := b.Emit("boom", nil); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if !second {
		t.Error("second handler did not run after first panicked")
	}

	stats := b.Stats()
	if stats.HandlerPanics != 1 {
		t.Errorf("HandlerPanics = %d, want 1", stats.HandlerPanics)
	}
	if stats.EventsDelivered != 1 {
		t.Errorf("EventsDelivered = %d, want 1", stats.EventsDelivered)
	}
}

func TestBus_SubscribeDuringEmit(t *testing.T) {
	b := New()

	var late int
	if _, err := b.On("tick", func(any) {
		_, _ = b.On("tick", func(any) { late++ })
	}); err != nil {
		t.Fatalf("On() error = %v", err)
	}

	_ = b.Emit("tick", nil)
	if late != 0 {
		t.Errorf("late handler ran %d times in its own pass, want 0", late)
	}

	_ = b.Emit("tick", nil)
	if late != 1 {
		t.Errorf("late handler ran %d times on second emit, want 1", late)
	}
}

func TestBus_CleanupOwner(t *testing.T) {
	b := New()

	var mine, theirs int
	if _, err := b.On("a", func(any) { mine++ }, WithOwner("inst-1")); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if _, err := b.On("b", func(any) { mine++ }, WithOwner("inst-1")); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if _, err := b.On("a", func(any) { theirs++ }, WithOwner("inst-2")); err != nil {
		t.Fatalf("On() error = %v", err)
	}

	if removed := b.CleanupOwner("inst-1"); removed != 2 {
		t.Errorf("CleanupOwner() = %d, want 2", removed)
	}
	_ = b.Emit("a", nil)
	_ = b.Emit("b", nil)

	if mine != 0 {
		t.Errorf("cleaned-up handlers ran %d times", mine)
	}
	if theirs != 1 {
		t.Errorf("surviving handler ran %d times, want 1", theirs)
	}
	if removed := b.CleanupOwner(""); removed != 0 {
		t.Errorf("CleanupOwner(\"\") = %d, want 0", removed)
	}
}

func TestBus_Stats(t *testing.T) {
	b := New()

	if _, err := b.On("e", func(any) {}); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	_ = b.Emit("e", nil)
	_ = b.Emit("e", nil)

	stats := b.Stats()
	if stats.EventsEmitted != 2 {
		t.Errorf("EventsEmitted = %d, want 2", stats.EventsEmitted)
	}
	if stats.EventsDelivered != 2 {
		t.Errorf("EventsDelivered = %d, want 2", stats.EventsDelivered)
	}
	if stats.ActiveSubscriptions != 1 {
		t.Errorf("ActiveSubscriptions = %d, want 1", stats.ActiveSubscriptions)
	}

	b.Reset()
	if got := b.Stats(); got != (Stats{}) {
		t.Errorf("Stats after Reset = %+v, want zero", got)
	}
}

func TestDefault(t *testing.T) {
	ResetDefault()
	defer ResetDefault()

	if Default() != Default() {
		t.Error("Default() is not stable")
	}

	var count int
	if _, err := Default().On("x", func(any) { count++ }); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	ResetDefault()
	_ = Default().Emit("x", nil)
	if count != 0 {
		t.Errorf("subscription survived ResetDefault: ran %d times", count)
	}
}
