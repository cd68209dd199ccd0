package component

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/logiface"
	"github.com/oklog/ulid/v2"

	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/event"
	"github.com/dshills/squall/internal/reconcile"
	"github.com/dshills/squall/internal/snapshot"
	"github.com/dshills/squall/internal/state"
)

// maxSyncRedraws bounds back-to-back re-renders when no frame scheduler is
// configured, so a render that writes its own state cannot spin forever.
const maxSyncRedraws = 64

type lifecycle int

const (
	stateCreated lifecycle = iota
	stateAttached
	stateDestroyed
)

// Instance binds one Component to one host node and drives its lifecycle.
//
// Lock order is parent before child: an instance may call into its children
// while holding its own lock, never the reverse.
type Instance struct {
	id   string
	comp Component

	mu         sync.Mutex
	life       lifecycle
	host       *dom.Node
	props      map[string]any
	children   map[string]*Instance
	memo       map[string]memoEntry
	statePaths []string

	store   *state.Store
	bus     *event.Bus
	rec     *reconcile.Reconciler
	batcher *reconcile.Batcher
	sched   reconcile.Scheduler
	logger  *logiface.Logger[logiface.Event]

	skip        SkipMode
	recoverHook func(Phase, error) bool
	commitHook  func()

	// Instance-local UI state, under its own lock so render code can read
	// it while the instance lock is held.
	localMu sync.Mutex
	local   map[string]any

	// Deferred callbacks queue here when no scheduler exists; they run
	// once the instance lock is free.
	deferMu  sync.Mutex
	deferred []func()

	updateQueued atomic.Bool
	renders      atomic.Uint64
}

// New returns an unattached instance for comp. Without WithStore or WithBus
// the instance uses the process-wide defaults.
func New(comp Component, opts ...Option) *Instance {
	inst := &Instance{
		id:       ulid.Make().String(),
		comp:     comp,
		props:    map[string]any{},
		children: make(map[string]*Instance),
	}
	for _, opt := range opts {
		opt(inst)
	}
	if sp, ok := comp.(StateSubscriber); ok {
		inst.statePaths = append(inst.statePaths, sp.StatePaths()...)
	}
	if inst.store == nil {
		inst.store = state.Default()
	}
	if inst.bus == nil {
		inst.bus = event.Default()
	}
	if inst.rec == nil {
		inst.rec = reconcile.New()
	}
	if inst.sched != nil {
		inst.batcher = reconcile.NewBatcher(inst.sched,
			reconcile.WithOnError(func(err error) {
				// Flush may run under this instance's lock; report on a
				// fresh frame to keep the recovery path re-entrant safe.
				inst.sched.Request(func() { inst.dispatchError(PhaseUpdate, err) })
			}),
			reconcile.WithBatcherLogger(inst.logger),
		)
	}
	return inst
}

// ID returns the instance's unique id. It doubles as the owner tag for
// store and bus subscriptions.
func (inst *Instance) ID() string { return inst.id }

// Store returns the state store the instance reads from and subscribes on.
func (inst *Instance) Store() *state.Store { return inst.store }

// Bus returns the event bus the instance publishes on.
func (inst *Instance) Bus() *event.Bus { return inst.bus }

// Logger returns the instance's logger, which may be nil.
func (inst *Instance) Logger() *logiface.Logger[logiface.Event] { return inst.logger }

// Attached reports whether the instance currently holds a host.
func (inst *Instance) Attached() bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.life == stateAttached
}

// Destroyed reports whether the instance has been destroyed.
func (inst *Instance) Destroyed() bool {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.life == stateDestroyed
}

// Host returns the host node, or nil before attach and after destroy.
func (inst *Instance) Host() *dom.Node {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.host
}

// Props returns the current props. The map must be treated as read-only.
func (inst *Instance) Props() map[string]any {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.props
}

// Renders returns how many renders have completed.
func (inst *Instance) Renders() uint64 { return inst.renders.Load() }

// ChildKeys returns the keys of currently mounted children, sorted.
func (inst *Instance) ChildKeys() []string {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	keys := make([]string, 0, len(inst.children))
	for key := range inst.children {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// SetRecoverHook routes asynchronous failures (scheduled updates, event
// handlers, deferred callbacks) to fn. Returning true absorbs the error;
// otherwise it is logged. Error boundaries install themselves here. Children
// created after the call inherit fn.
func (inst *Instance) SetRecoverHook(fn func(Phase, error) bool) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.recoverHook = fn
}

// SetCommitHook registers fn to run after every render pass that completes
// without error. fn must not call back into the instance; error boundaries
// use it to observe recovery.
func (inst *Instance) SetCommitHook(fn func()) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.commitHook = fn
}

func (inst *Instance) commitLocked() {
	if inst.commitHook != nil {
		inst.commitHook()
	}
}

// Attach claims host, renders, and builds the live subtree beneath it. The
// host must not be held by another instance; state paths registered with
// WithStatePaths are subscribed on success. Attaching an instance that is
// already attached, or was destroyed, is a no-op.
func (inst *Instance) Attach(host *dom.Node) error {
	inst.mu.Lock()
	err := inst.attachLocked(host)
	if err == nil && inst.sched == nil {
		err = inst.drainUpdatesLocked()
	}
	inst.mu.Unlock()
	inst.runDeferred()
	return err
}

func (inst *Instance) attachLocked(host *dom.Node) error {
	if inst.life != stateCreated {
		return nil
	}
	if inst.comp == nil {
		return ErrNilComponent
	}
	if host == nil {
		return ErrNilHost
	}
	if err := host.Claim(inst.id); err != nil {
		return err
	}

	sn, err := inst.renderLocked()
	if err != nil {
		host.Release(inst.id)
		return err
	}
	root, err := dom.Build(sn)
	if err != nil {
		host.Release(inst.id)
		return err
	}

	// The host carries exactly one child: the instance's root.
	for host.ChildCount() > 0 {
		host.RemoveChildAt(0)
	}
	host.AppendChild(root)

	inst.host = host
	inst.life = stateAttached
	for _, p := range inst.statePaths {
		inst.subscribePathLocked(p)
	}
	inst.logger.Debug().
		Str("instance", inst.id).
		Log("instance attached")

	if err := inst.syncChildrenLocked(sn); err != nil {
		return err
	}
	inst.commitLocked()
	return nil
}

// Update re-renders and patches the live subtree. With a scheduler the
// patches are batched onto the next frame; without one they apply now.
// Updating an unattached or destroyed instance is a no-op.
func (inst *Instance) Update() error {
	inst.mu.Lock()
	err := inst.updateLocked()
	if err == nil && inst.sched == nil {
		err = inst.drainUpdatesLocked()
	}
	inst.mu.Unlock()
	inst.runDeferred()
	return err
}

// SetProps replaces the instance's props and re-renders unless the skip
// policy deems them equivalent. Props set before attach take effect at
// attach.
func (inst *Instance) SetProps(props map[string]any) error {
	inst.mu.Lock()
	err := inst.setPropsLocked(props)
	inst.mu.Unlock()
	inst.runDeferred()
	return err
}

func (inst *Instance) setPropsLocked(props map[string]any) error {
	if inst.life == stateDestroyed {
		return nil
	}
	skip := inst.shouldSkip(inst.props, props)
	inst.props = props
	if skip || inst.life != stateAttached {
		return nil
	}
	if err := inst.updateLocked(); err != nil {
		return err
	}
	if inst.sched == nil {
		return inst.drainUpdatesLocked()
	}
	return nil
}

// Destroy tears down children, cancels subscriptions, clears the rendered
// output, and releases the host. Destroy is idempotent.
func (inst *Instance) Destroy() error {
	inst.mu.Lock()
	err := inst.destroyLocked()
	inst.mu.Unlock()
	inst.runDeferred()
	return err
}

// Local returns the instance-local UI value stored under key. Local state
// is private to the instance, invisible to the store, and vanishes at
// destroy.
func (inst *Instance) Local(key string) any {
	inst.localMu.Lock()
	defer inst.localMu.Unlock()
	return inst.local[key]
}

// SetLocal stores an instance-local UI value and schedules a re-render.
func (inst *Instance) SetLocal(key string, value any) {
	inst.localMu.Lock()
	if inst.local == nil {
		inst.local = make(map[string]any)
	}
	inst.local[key] = value
	inst.localMu.Unlock()
	inst.scheduleUpdate()
}

// SubscribeToState re-renders the instance whenever path changes. The
// subscription lives until the instance is destroyed; on a destroyed
// instance the call does nothing.
func (inst *Instance) SubscribeToState(path string) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.life == stateDestroyed {
		return
	}
	inst.subscribePathLocked(path)
}

// Defer schedules fn for the next frame. Without a scheduler it runs once
// the current attach or update, if any, finishes. Panics route through the
// recovery hook.
func (inst *Instance) Defer(fn func()) {
	if fn == nil {
		return
	}
	run := func() {
		defer func() {
			if r := recover(); r != nil {
				inst.dispatchError(PhaseAsync, fmt.Errorf("deferred callback panic: %v", r))
			}
		}()
		fn()
	}
	if inst.sched != nil {
		inst.sched.Request(run)
		return
	}
	inst.deferMu.Lock()
	inst.deferred = append(inst.deferred, run)
	inst.deferMu.Unlock()
	if inst.mu.TryLock() {
		inst.mu.Unlock()
		inst.runDeferred()
	}
}

// runDeferred drains the no-scheduler deferral queue. Never called with the
// instance lock held.
func (inst *Instance) runDeferred() {
	for {
		inst.deferMu.Lock()
		fns := inst.deferred
		inst.deferred = nil
		inst.deferMu.Unlock()
		if len(fns) == 0 {
			return
		}
		for _, fn := range fns {
			fn()
		}
	}
}

func (inst *Instance) subscribePathLocked(path string) {
	inst.store.Subscribe(path, func(state.Change) {
		inst.scheduleUpdate()
	}, state.WithOwner(inst.id))
}

// scheduleUpdate coalesces re-render requests. With a scheduler, one frame
// callback is queued at a time; without one, the update runs immediately
// unless another update already holds the lock, in which case that update
// drains the flag before returning.
func (inst *Instance) scheduleUpdate() {
	if !inst.updateQueued.CompareAndSwap(false, true) {
		return
	}
	if inst.sched != nil {
		inst.sched.Request(func() {
			if !inst.updateQueued.Swap(false) {
				return
			}
			inst.mu.Lock()
			err := inst.updateLocked()
			inst.mu.Unlock()
			if err != nil {
				inst.dispatchError(PhaseUpdate, err)
			}
		})
		return
	}
	if inst.mu.TryLock() {
		err := inst.drainUpdatesLocked()
		inst.mu.Unlock()
		inst.runDeferred()
		if err != nil {
			inst.dispatchError(PhaseUpdate, err)
		}
	}
}

// drainUpdatesLocked runs queued updates until the flag stays clear.
func (inst *Instance) drainUpdatesLocked() error {
	for i := 0; i < maxSyncRedraws; i++ {
		if !inst.updateQueued.Swap(false) {
			return nil
		}
		if err := inst.updateLocked(); err != nil {
			return err
		}
	}
	inst.logger.Warning().
		Str("instance", inst.id).
		Log("update loop did not settle")
	return nil
}

func (inst *Instance) updateLocked() error {
	if inst.life != stateAttached {
		return nil
	}

	if inst.batcher != nil {
		// The live tree must be current before diffing against it;
		// pending patches from an earlier update would be diffed twice.
		inst.batcher.Flush()
	}

	sn, err := inst.renderLocked()
	if err != nil {
		return err
	}
	patches, err := inst.rec.Diff(inst.host.Child(0), sn)
	if err != nil {
		return err
	}

	if inst.batcher == nil {
		if err := reconcile.Apply(patches); err != nil {
			return err
		}
		if err := inst.syncChildrenLocked(sn); err != nil {
			return err
		}
		inst.commitLocked()
		return nil
	}

	inst.batcher.Enqueue(patches)
	// Queued behind the batcher's flush, so placeholders exist by the time
	// children sync.
	inst.sched.Request(func() {
		inst.mu.Lock()
		var err error
		if inst.life == stateAttached {
			err = inst.syncChildrenLocked(sn)
		}
		inst.mu.Unlock()
		if err != nil {
			inst.dispatchError(PhaseUpdate, err)
		}
	})
	inst.commitLocked()
	return nil
}

// renderLocked produces the next finalized snapshot. Render panics become
// errors.
func (inst *Instance) renderLocked() (sn *snapshot.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()
	out := inst.comp.Render(&RenderContext{inst: inst, props: inst.props})
	if out == nil {
		return nil, ErrNilRender
	}
	inst.renders.Add(1)
	return inst.finalize(out), nil
}

// finalize copies the rendered tree, wrapping handlers so their panics
// route through the recovery path instead of the caller of Fire.
func (inst *Instance) finalize(sn *snapshot.Node) *snapshot.Node {
	out := &snapshot.Node{
		Kind:  sn.Kind,
		Tag:   sn.Tag,
		Key:   sn.Key,
		Text:  sn.Text,
		Mount: sn.Mount,
	}
	if len(sn.Attrs) > 0 {
		out.Attrs = make([]snapshot.Attribute, len(sn.Attrs))
		copy(out.Attrs, sn.Attrs)
	}
	if len(sn.Handlers) > 0 {
		out.Handlers = make(map[string]snapshot.Handler, len(sn.Handlers))
		for name, h := range sn.Handlers {
			out.Handlers[name] = inst.wrapHandler(name, h)
		}
	}
	if len(sn.Children) > 0 {
		out.Children = make([]*snapshot.Node, len(sn.Children))
		for i, c := range sn.Children {
			out.Children[i] = inst.finalize(c)
		}
	}
	return out
}

func (inst *Instance) wrapHandler(name string, h snapshot.Handler) snapshot.Handler {
	return func(payload any) {
		defer func() {
			if r := recover(); r != nil {
				inst.dispatchError(PhaseEvent, fmt.Errorf("handler %q panic: %v", name, r))
			}
		}()
		h(payload)
	}
}

// dispatchError routes an asynchronous failure through the recovery hook.
// Must not be called with the instance lock held.
func (inst *Instance) dispatchError(phase Phase, err error) {
	inst.mu.Lock()
	hook := inst.recoverHook
	inst.mu.Unlock()
	if hook != nil && hook(phase, err) {
		return
	}
	inst.logger.Err().
		Str("instance", inst.id).
		Str("phase", phase.String()).
		Err(err).
		Log("unhandled component error")
}

func (inst *Instance) shouldSkip(prev, next map[string]any) bool {
	if rs, ok := inst.comp.(RenderSkipper); ok {
		return rs.ShouldSkipRender(prev, next)
	}
	switch inst.skip {
	case SkipShallow:
		return shallowEqual(prev, next)
	case SkipDeep:
		return deepEqual(prev, next)
	}
	return false
}

func (inst *Instance) destroyLocked() error {
	if inst.life == stateDestroyed {
		return nil
	}
	attached := inst.life == stateAttached
	inst.life = stateDestroyed

	for key, child := range inst.children {
		if err := child.Destroy(); err != nil {
			inst.logger.Warning().
				Str("instance", inst.id).
				Str("child", key).
				Err(err).
				Log("child destroy failed")
		}
		delete(inst.children, key)
	}

	inst.store.CleanupOwner(inst.id)
	inst.bus.CleanupOwner(inst.id)
	inst.memo = nil
	inst.localMu.Lock()
	inst.local = nil
	inst.localMu.Unlock()

	if attached && inst.host != nil {
		for inst.host.ChildCount() > 0 {
			inst.host.RemoveChildAt(0)
		}
		inst.host.Release(inst.id)
	}
	inst.host = nil
	inst.logger.Debug().
		Str("instance", inst.id).
		Log("instance destroyed")
	return nil
}

// mountPoint is one child declaration in document order.
type mountPoint struct {
	key  string
	spec *childSpec
}

// syncChildrenLocked aligns mounted child instances with the mount nodes of
// the latest render: vanished keys destroy their child, surviving keys get
// the new props, and new keys attach a fresh instance beneath the matching
// live placeholder.
func (inst *Instance) syncChildrenLocked(sn *snapshot.Node) error {
	var mounts []mountPoint
	seen := make(map[string]bool)
	if err := collectMounts(sn, &mounts, seen); err != nil {
		return err
	}

	placeholders := make(map[string]*dom.Node)
	if root := inst.host.Child(0); root != nil {
		collectPlaceholders(root, placeholders)
	}

	for key, child := range inst.children {
		if !seen[key] {
			if err := child.Destroy(); err != nil {
				inst.logger.Warning().
					Str("instance", inst.id).
					Str("child", key).
					Err(err).
					Log("child destroy failed")
			}
			delete(inst.children, key)
		}
	}

	for _, m := range mounts {
		ph, ok := placeholders[m.key]
		if !ok {
			// The placeholder's patch has not applied yet; the sync queued
			// behind that flush picks it up.
			continue
		}
		if child, ok := inst.children[m.key]; ok {
			if child.Host() == ph {
				if err := child.SetProps(m.spec.props); err != nil {
					return fmt.Errorf("child %q: %w", m.key, err)
				}
				continue
			}
			// The placeholder was rebuilt, so the child's subtree hangs off a
			// detached node. Remount it fresh at the new placeholder.
			if err := child.Destroy(); err != nil {
				inst.logger.Warning().
					Str("instance", inst.id).
					Str("child", m.key).
					Err(err).
					Log("child destroy failed")
			}
			delete(inst.children, m.key)
		}

		comp, err := buildChild(m.spec)
		if err != nil {
			return fmt.Errorf("child %q: %w", m.key, err)
		}
		child := New(comp,
			WithProps(m.spec.props),
			WithStore(inst.store),
			WithBus(inst.bus),
			WithScheduler(inst.sched),
			WithLogger(inst.logger),
			WithSkip(inst.skip),
		)
		child.SetRecoverHook(inst.recoverHook)
		if err := child.Attach(ph); err != nil {
			return fmt.Errorf("child %q: %w", m.key, err)
		}
		inst.children[m.key] = child
	}
	return nil
}

func buildChild(spec *childSpec) (comp Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("child build panic: %v", r)
		}
	}()
	if spec.build == nil {
		return nil, ErrNilComponent
	}
	return spec.build(), nil
}

// collectMounts gathers mount declarations in document order. Mount nodes
// are leaves; the walk never crosses into a child's subtree.
func collectMounts(sn *snapshot.Node, out *[]mountPoint, seen map[string]bool) error {
	if sn.Kind == snapshot.KindMount {
		spec, ok := sn.Mount.(*childSpec)
		if !ok {
			return nil
		}
		if seen[sn.Key] {
			return fmt.Errorf("%w: %q", ErrDuplicateChildKey, sn.Key)
		}
		seen[sn.Key] = true
		*out = append(*out, mountPoint{key: sn.Key, spec: spec})
		return nil
	}
	for _, c := range sn.Children {
		if err := collectMounts(c, out, seen); err != nil {
			return err
		}
	}
	return nil
}

// collectPlaceholders maps mount keys to live placeholder nodes, stopping
// at each placeholder: what hangs beneath belongs to the child instance.
func collectPlaceholders(n *dom.Node, out map[string]*dom.Node) {
	if n.Kind() == snapshot.KindMount {
		out[n.Key()] = n
		return
	}
	for _, c := range n.Children() {
		collectPlaceholders(c, out)
	}
}
