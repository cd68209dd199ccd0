package component

import (
	"github.com/joeycumines/logiface"

	"github.com/dshills/squall/internal/event"
	"github.com/dshills/squall/internal/reconcile"
	"github.com/dshills/squall/internal/state"
)

// SkipMode selects the props comparison used to skip redundant re-renders.
type SkipMode int

const (
	// SkipNone re-renders on every SetProps.
	SkipNone SkipMode = iota

	// SkipShallow skips when prop values are identical under ==.
	SkipShallow

	// SkipDeep skips when props are deeply equal.
	SkipDeep
)

// Option configures an Instance.
type Option func(*Instance)

// WithProps sets the initial props.
func WithProps(props map[string]any) Option {
	return func(inst *Instance) {
		if props != nil {
			inst.props = props
		}
	}
}

// WithStatePaths subscribes the instance to store paths at attach; any
// change to a matching path schedules a re-render.
func WithStatePaths(paths ...string) Option {
	return func(inst *Instance) { inst.statePaths = append(inst.statePaths, paths...) }
}

// WithStore sets the state store.
func WithStore(store *state.Store) Option {
	return func(inst *Instance) {
		if store != nil {
			inst.store = store
		}
	}
}

// WithBus sets the event bus.
func WithBus(bus *event.Bus) Option {
	return func(inst *Instance) {
		if bus != nil {
			inst.bus = bus
		}
	}
}

// WithReconciler sets the reconciler.
func WithReconciler(rec *reconcile.Reconciler) Option {
	return func(inst *Instance) {
		if rec != nil {
			inst.rec = rec
		}
	}
}

// WithScheduler batches patch application and re-renders onto frames from
// sched. Without a scheduler the instance applies everything synchronously.
func WithScheduler(sched reconcile.Scheduler) Option {
	return func(inst *Instance) { inst.sched = sched }
}

// WithLogger sets the logger.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(inst *Instance) { inst.logger = logger }
}

// WithSkip sets the props skip policy.
func WithSkip(mode SkipMode) Option {
	return func(inst *Instance) { inst.skip = mode }
}

// WithRecoverHook installs the recovery hook at construction; see
// SetRecoverHook.
func WithRecoverHook(fn func(Phase, error) bool) Option {
	return func(inst *Instance) { inst.recoverHook = fn }
}
