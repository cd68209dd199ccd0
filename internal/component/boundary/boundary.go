// Package boundary decorates component instances with failure capture,
// bounded synchronous retry, fallback rendering, and escalation to parent
// boundaries.
//
// A Boundary wraps one Instance and mirrors its lifecycle API. Failures in
// the render path (attach and update) run the retry-then-fallback sequence;
// failures in event handlers and deferred callbacks are recorded and
// reported without touching the current output, since the triggering
// operation already recovered at its call site.
package boundary

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/joeycumines/logiface"

	"github.com/dshills/squall/internal/component"
	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/event"
	"github.com/dshills/squall/internal/snapshot"
)

// Boundary supervises one wrapped instance. All methods are safe for
// concurrent use.
type Boundary struct {
	inst   *component.Instance
	parent *Boundary

	maxRetries   int
	historyLimit int
	mode         Mode
	fallback     FallbackFunc
	catch        CatchFunc
	onChildError ChildErrorFunc

	bus    *event.Bus
	logger *logiface.Logger[logiface.Event]

	mu        sync.Mutex
	host      *dom.Node
	current   *Record
	history   []Record
	showing   bool
	destroyed bool
}

// Wrap supervises inst. The boundary installs itself as the instance's
// recovery hook, so failures from scheduled updates, event handlers, and
// deferred callbacks route here as well.
func Wrap(inst *component.Instance, opts ...Option) *Boundary {
	b := &Boundary{
		inst:         inst,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(b)
	}
	if inst != nil {
		if b.bus == nil {
			b.bus = inst.Bus()
		}
		if b.logger == nil {
			b.logger = inst.Logger()
		}
		inst.SetRecoverHook(b.recover)
		inst.SetCommitHook(b.clearRecord)
	}
	return b
}

// Instance returns the wrapped instance.
func (b *Boundary) Instance() *component.Instance { return b.inst }

// Parent returns the boundary failures escalate to, or nil.
func (b *Boundary) Parent() *Boundary { return b.parent }

// LastError returns the active failure record. ok is false once a render
// has succeeded since the last failure.
func (b *Boundary) LastError() (rec Record, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Record{}, false
	}
	return *b.current, true
}

// History returns a copy of the retained failure records, oldest first.
func (b *Boundary) History() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.history))
	copy(out, b.history)
	return out
}

// ShowingFallback reports whether the host currently displays fallback
// output instead of the instance's own.
func (b *Boundary) ShowingFallback() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showing
}

// Attach attaches the wrapped instance to host under supervision. When the
// attach still fails after the retry budget, the fallback renders into host
// and the original error returns; the mount is then live in its degraded
// form.
func (b *Boundary) Attach(host *dom.Node) error {
	if b.inst == nil {
		return ErrNilInstance
	}
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return nil
	}
	b.host = host
	b.mu.Unlock()
	return b.guard(component.PhaseAttach, func() error { return b.inst.Attach(host) })
}

// Update re-renders the wrapped instance under supervision.
func (b *Boundary) Update() error {
	if b.inst == nil {
		return ErrNilInstance
	}
	if b.isDestroyed() {
		return nil
	}
	return b.guard(component.PhaseUpdate, func() error { return b.inst.Update() })
}

// SetProps forwards new props to the wrapped instance under supervision.
func (b *Boundary) SetProps(props map[string]any) error {
	if b.inst == nil {
		return ErrNilInstance
	}
	if b.isDestroyed() {
		return nil
	}
	return b.guard(component.PhaseUpdate, func() error { return b.inst.SetProps(props) })
}

// Destroy tears down the wrapped instance and any fallback output. Like the
// instance's own Destroy it is idempotent and terminal.
func (b *Boundary) Destroy() error {
	if b.inst == nil {
		return ErrNilInstance
	}
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return nil
	}
	b.destroyed = true
	host, showing := b.host, b.showing
	b.host = nil
	b.showing = false
	b.mu.Unlock()

	err := safely(func() error { return b.inst.Destroy() })
	if showing && host != nil {
		// The fallback subtree belongs to the boundary, not the instance, so
		// the instance's teardown left it in place.
		for host.ChildCount() > 0 {
			host.RemoveChildAt(0)
		}
		host.Release(b.inst.ID())
	}
	if err != nil {
		rec := b.capture(component.PhaseDestroy, err)
		b.notify(rec)
		b.escalate(err)
		return err
	}
	return nil
}

func (b *Boundary) isDestroyed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyed
}

// guard runs one render-path call and, on failure, the full capture, retry,
// fallback, and escalation sequence. Only a call that really rendered clears
// the active record; lifecycle no-ops and skipped re-renders leave it be.
func (b *Boundary) guard(phase component.Phase, fn func() error) error {
	before := b.inst.Renders()
	err := safely(fn)
	if err == nil {
		if b.inst.Renders() != before {
			b.clearRecord()
		}
		return nil
	}
	return b.fail(phase, err, fn)
}

// recover is the wrapped instance's recovery hook. It always reports the
// failure handled; what handling means depends on the phase.
func (b *Boundary) recover(phase component.Phase, err error) bool {
	if b.isDestroyed() {
		b.logger.Debug().
			Str("instance", b.inst.ID()).
			Err(err).
			Log("failure after boundary destroy dropped")
		return true
	}
	switch phase {
	case component.PhaseEvent, component.PhaseAsync:
		// Local recovery: the call site already contained the failure and
		// the current output stands.
		rec := b.capture(phase, err)
		b.notify(rec)
	default:
		b.fail(phase, err, func() error { return b.inst.Update() })
	}
	return true
}

func (b *Boundary) fail(phase component.Phase, err error, retry func() error) error {
	rec := b.capture(phase, err)
	b.notify(rec)

	if !renderPhase(phase) {
		b.escalate(err)
		return err
	}

	attempts := 0
	for b.nextRetry() {
		attempts++
		rerr := safely(retry)
		if rerr == nil {
			b.clearRecord()
			b.logger.Info().
				Str("instance", b.inst.ID()).
				Int("retries", attempts).
				Log("component recovered by retry")
			return nil
		}
		rec = b.capture(phase, rerr)
		b.notify(rec)
	}

	b.renderFallback(rec)
	b.escalate(err)
	return err
}

// renderPhase reports whether phase has a render path a retry can
// re-attempt.
func renderPhase(phase component.Phase) bool {
	switch phase {
	case component.PhaseRender, component.PhaseAttach, component.PhaseUpdate:
		return true
	}
	return false
}

// nextRetry consumes one unit of the retry budget for the active failure.
func (b *Boundary) nextRetry() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || b.current.Retries >= b.maxRetries {
		return false
	}
	b.current.Retries++
	return true
}

func (b *Boundary) capture(phase component.Phase, err error) Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec := Record{
		Phase: phase,
		Err:   err,
		Stack: string(debug.Stack()),
		Time:  time.Now(),
	}
	if b.current != nil {
		rec.Retries = b.current.Retries
	}
	b.current = &rec
	b.history = append(b.history, rec)
	if b.historyLimit > 0 && len(b.history) > b.historyLimit {
		b.history = b.history[1:]
	}
	return rec
}

// clearRecord runs after every successful render pass, directly and via the
// instance's commit hook.
func (b *Boundary) clearRecord() {
	b.mu.Lock()
	b.current = nil
	b.showing = false
	b.mu.Unlock()
}

func (b *Boundary) notify(rec Record) {
	if b.catch != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Warning().
						Str("instance", b.inst.ID()).
						Any("panic", r).
						Log("catch hook panicked")
				}
			}()
			b.catch(rec)
		}()
	}
	if b.bus != nil {
		if err := b.bus.Emit(ErrorEvent, ErrorPayload{Instance: b.inst.ID(), Record: rec}); err != nil {
			b.logger.Warning().
				Str("instance", b.inst.ID()).
				Err(err).
				Log("error event emit failed")
		}
	}
	b.logger.Warning().
		Str("instance", b.inst.ID()).
		Str("phase", rec.Phase.String()).
		Int("retries", rec.Retries).
		Err(rec.Err).
		Log("component failure captured")
}

// renderFallback swaps the host contents for the fallback subtree. Sibling
// subtrees under other hosts are untouched.
func (b *Boundary) renderFallback(rec Record) {
	b.mu.Lock()
	host := b.host
	destroyed := b.destroyed
	b.mu.Unlock()
	if host == nil || destroyed {
		return
	}

	root, err := dom.Build(b.buildFallback(rec))
	if err != nil {
		b.logger.Err().
			Str("instance", b.inst.ID()).
			Err(err).
			Log("fallback build failed")
		return
	}
	// After a failed attach the host is unclaimed; after a failed update it
	// is already claimed by the wrapped instance. A host held by anyone else
	// is left alone.
	if err := host.Claim(b.inst.ID()); err != nil {
		b.logger.Err().
			Str("instance", b.inst.ID()).
			Err(err).
			Log("fallback host unavailable")
		return
	}
	for host.ChildCount() > 0 {
		host.RemoveChildAt(0)
	}
	host.AppendChild(root)

	b.mu.Lock()
	b.showing = true
	b.mu.Unlock()
	b.logger.Info().
		Str("instance", b.inst.ID()).
		Str("mode", b.mode.String()).
		Log("fallback rendered")
}

func (b *Boundary) buildFallback(rec Record) *snapshot.Node {
	if b.fallback != nil {
		if sn := b.userFallback(rec); sn != nil {
			return sn
		}
	}
	return defaultFallback(b.mode, rec)
}

func (b *Boundary) userFallback(rec Record) (sn *snapshot.Node) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warning().
				Str("instance", b.inst.ID()).
				Any("panic", r).
				Log("fallback renderer panicked")
			sn = nil
		}
	}()
	return b.fallback(rec)
}

// escalate walks the parent chain until an ancestor's OnChildError hook
// reports the failure handled; that ancestor then re-renders. When a chain
// exists but nobody handles the failure, it is logged as unhandled at the
// root.
func (b *Boundary) escalate(err error) {
	if b.parent == nil {
		return
	}
	for p := b.parent; p != nil; p = p.parent {
		if p.handleChildError(err, b) {
			return
		}
	}
	b.logger.Err().
		Str("instance", b.inst.ID()).
		Err(err).
		Log("component error unhandled at root")
}

// handleChildError consults the boundary's OnChildError hook for a failure
// that originated in the descendant boundary origin.
func (b *Boundary) handleChildError(err error, origin *Boundary) bool {
	if b.isDestroyed() || b.onChildError == nil {
		return false
	}
	handled := func() (h bool) {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Warning().
					Str("instance", b.inst.ID()).
					Any("panic", r).
					Log("child error hook panicked")
				h = false
			}
		}()
		return b.onChildError(err, origin)
	}()
	if !handled {
		return false
	}
	if uerr := b.Update(); uerr != nil {
		b.logger.Warning().
			Str("instance", b.inst.ID()).
			Err(uerr).
			Log("re-render after handling child error failed")
	}
	return true
}

// safely converts a panic out of fn into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
