// Package component runs the attach/update/destroy lifecycle that turns
// Component render output into live tree mutations.
//
// An Instance owns a host node exclusively, renders its Component into a
// snapshot, and reconciles the snapshot against the live subtree beneath the
// host. State subscriptions and a frame scheduler drive re-renders; child
// components mount beneath keyed placeholder nodes and run their own
// instances.
package component

import (
	"github.com/dshills/squall/internal/event"
	"github.com/dshills/squall/internal/snapshot"
	"github.com/dshills/squall/internal/state"
)

// Component produces a snapshot describing its subtree. Render must return
// a complete description on every call; the runtime decides what actually
// changes in the live tree.
type Component interface {
	Render(ctx *RenderContext) *snapshot.Node
}

// Func adapts a render function to the Component interface.
type Func func(ctx *RenderContext) *snapshot.Node

// Render implements Component.
func (f Func) Render(ctx *RenderContext) *snapshot.Node { return f(ctx) }

// RenderSkipper lets a component veto a props-driven re-render.
// ShouldSkipRender receives the previous and incoming props; returning true
// keeps the current output. It takes precedence over the instance's skip
// mode.
type RenderSkipper interface {
	ShouldSkipRender(prev, next map[string]any) bool
}

// StateSubscriber declares store paths the instance subscribes to at
// attach, as an alternative to WithStatePaths for components mounted as
// children.
type StateSubscriber interface {
	StatePaths() []string
}

// RenderContext is the single argument to Render. Props, state access, and
// the bus stay valid for the life of the instance, so event handlers may
// capture the context. Memo is only valid while Render is on the stack.
type RenderContext struct {
	inst  *Instance
	props map[string]any
}

// Props returns the props of the render that produced this context. The map
// must be treated as read-only.
func (c *RenderContext) Props() map[string]any { return c.props }

// Prop returns one prop value, or nil.
func (c *RenderContext) Prop(name string) any { return c.props[name] }

// State reads a store path. Missing paths return nil.
func (c *RenderContext) State(path string) any { return c.inst.store.Get(path) }

// SetState writes a store path. Subscribed instances, this one included,
// re-render on their next scheduled update.
func (c *RenderContext) SetState(path string, value any) error {
	return c.inst.store.Set(path, value)
}

// DeleteState removes a store path.
func (c *RenderContext) DeleteState(path string) error {
	return c.inst.store.Delete(path)
}

// Local returns the instance-local UI value stored under key. Local state
// never touches the store; it belongs to this instance alone.
func (c *RenderContext) Local(key string) any { return c.inst.Local(key) }

// SetLocal stores an instance-local UI value and schedules a re-render.
func (c *RenderContext) SetLocal(key string, value any) { c.inst.SetLocal(key, value) }

// Store returns the backing state store.
func (c *RenderContext) Store() *state.Store { return c.inst.store }

// Bus returns the event bus.
func (c *RenderContext) Bus() *event.Bus { return c.inst.bus }

// Emit publishes an event on the bus.
func (c *RenderContext) Emit(name string, payload any) error {
	return c.inst.bus.Emit(name, payload)
}

// Memo returns the value cached under key while deps stay equal, calling
// compute otherwise. Only valid during Render.
func (c *RenderContext) Memo(key string, deps []any, compute func() any) any {
	return c.inst.memoize(key, deps, compute)
}

// Defer schedules fn for the next frame; see Instance.Defer.
func (c *RenderContext) Defer(fn func()) { c.inst.Defer(fn) }

// Invalidate schedules a re-render without a state change, for handlers
// that mutate data the store does not track.
func (c *RenderContext) Invalidate() { c.inst.scheduleUpdate() }

// childSpec carries a child declaration from render to mount.
type childSpec struct {
	build func() Component
	props map[string]any
}

// Child declares a mounted child component. The returned node is a leaf
// placeholder in the parent's tree; once patches apply, the runtime attaches
// a child instance beneath the matching live node. The key identifies the
// child across renders, and because moves preserve node identity, reordering
// keys moves the whole child subtree without tearing it down. Child keys
// must be unique within one component's output.
func Child(key string, build func() Component, props map[string]any) *snapshot.Node {
	return &snapshot.Node{
		Kind:  snapshot.KindMount,
		Key:   key,
		Mount: &childSpec{build: build, props: props},
	}
}
