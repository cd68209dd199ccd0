// Package app provides the runtime context and coordination for Squall
// applications. It wires the state store, the event bus, and the frame
// queue together and manages the lifecycle of root component mounts.
package app

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/joeycumines/logiface"

	"github.com/dshills/squall/internal/component"
	"github.com/dshills/squall/internal/component/boundary"
	"github.com/dshills/squall/internal/dom"
	"github.com/dshills/squall/internal/event"
	"github.com/dshills/squall/internal/state"
)

// App is the composition root of a Squall runtime. Each App owns a fresh
// store, bus, and frame queue unless Options substitutes shared ones, so
// tests run isolated runtimes side by side instead of resetting the package
// defaults.
type App struct {
	// Core infrastructure
	store  *state.Store
	bus    *event.Bus
	frames *Frames
	logger *logiface.Logger[logiface.Event]

	// Ownership of infrastructure created by New; shared pieces from
	// Options are left alone at Shutdown.
	ownsStore bool
	ownsBus   bool

	interval time.Duration

	// State
	mu    sync.Mutex
	roots []*Root
	down  bool
}

// Options configures an App.
type Options struct {
	// LogLevel sets logging verbosity: disabled, error, warn, info, debug,
	// trace. Empty means info.
	LogLevel string

	// LogWriter receives JSON log lines. Defaults to os.Stderr.
	LogWriter io.Writer

	// Logger overrides LogLevel and LogWriter with a prebuilt logger.
	Logger *logiface.Logger[logiface.Event]

	// Store substitutes a shared state store for the fresh default.
	Store *state.Store

	// Bus substitutes a shared event bus for the fresh default.
	Bus *event.Bus

	// Frames substitutes a shared frame queue for the fresh default.
	Frames *Frames

	// FrameInterval paces Run. Zero means DefaultFrameInterval.
	FrameInterval time.Duration
}

// New creates an App with the given options.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(ParseLevel(opts.LogLevel), opts.LogWriter)
	}

	a := &App{
		store:    opts.Store,
		bus:      opts.Bus,
		frames:   opts.Frames,
		logger:   logger,
		interval: opts.FrameInterval,
	}
	if a.store == nil {
		a.store = state.New(state.WithLogger(logger))
		a.ownsStore = true
	}
	if a.bus == nil {
		a.bus = event.New(event.WithLogger(logger))
		a.ownsBus = true
	}
	if a.frames == nil {
		a.frames = NewFrames(WithFramesLogger(logger))
	}
	return a
}

// Store returns the app's state store.
func (a *App) Store() *state.Store { return a.store }

// Bus returns the app's event bus.
func (a *App) Bus() *event.Bus { return a.bus }

// Frames returns the app's frame queue.
func (a *App) Frames() *Frames { return a.frames }

// Logger returns the app's logger.
func (a *App) Logger() *logiface.Logger[logiface.Event] { return a.logger }

// Roots returns the currently mounted roots.
func (a *App) Roots() []*Root {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Root, len(a.roots))
	copy(out, a.roots)
	return out
}

// Root is one mounted component tree, supervised by its error boundary.
type Root struct {
	app *App
	bnd *boundary.Boundary
}

// Instance returns the root's component instance.
func (r *Root) Instance() *component.Instance { return r.bnd.Instance() }

// Boundary returns the root's error boundary.
func (r *Root) Boundary() *boundary.Boundary { return r.bnd }

// Update re-renders the root.
func (r *Root) Update() error { return r.bnd.Update() }

// SetProps forwards new props to the root component.
func (r *Root) SetProps(props map[string]any) error { return r.bnd.SetProps(props) }

// Destroy unmounts the root and drops it from the app.
func (r *Root) Destroy() error {
	err := r.bnd.Destroy()
	r.app.forget(r)
	return err
}

// MountOption adjusts one root mount.
type MountOption func(*mountConfig)

type mountConfig struct {
	comp []component.Option
	bnd  []boundary.Option
}

// WithProps sets the root component's initial props.
func WithProps(props map[string]any) MountOption {
	return func(c *mountConfig) { c.comp = append(c.comp, component.WithProps(props)) }
}

// WithStatePaths subscribes the root to store paths; changes schedule a
// re-render on the next frame.
func WithStatePaths(paths ...string) MountOption {
	return func(c *mountConfig) { c.comp = append(c.comp, component.WithStatePaths(paths...)) }
}

// WithSkip sets the root's props skip policy.
func WithSkip(mode component.SkipMode) MountOption {
	return func(c *mountConfig) { c.comp = append(c.comp, component.WithSkip(mode)) }
}

// WithComponentOptions appends raw instance options for the root.
func WithComponentOptions(opts ...component.Option) MountOption {
	return func(c *mountConfig) { c.comp = append(c.comp, opts...) }
}

// WithBoundary appends error-boundary options for the root's wrapper, such
// as boundary.WithMaxRetries or boundary.WithFallback.
func WithBoundary(opts ...boundary.Option) MountOption {
	return func(c *mountConfig) { c.bnd = append(c.bnd, opts...) }
}

// Mount attaches comp to host under a fresh error boundary and tracks the
// root until Shutdown. A first render that fails past its retry budget
// still mounts: the boundary's fallback output is live and the failure is
// logged rather than returned. Wiring failures that leave nothing mounted,
// like a nil or already-owned host, fail the mount.
func (a *App) Mount(host *dom.Node, comp component.Component, opts ...MountOption) (*Root, error) {
	a.mu.Lock()
	if a.down {
		a.mu.Unlock()
		return nil, ErrShutdown
	}
	a.mu.Unlock()

	var cfg mountConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	inst := component.New(comp, append([]component.Option{
		component.WithStore(a.store),
		component.WithBus(a.bus),
		component.WithScheduler(a.frames),
		component.WithLogger(a.logger),
	}, cfg.comp...)...)
	bnd := boundary.Wrap(inst, append([]boundary.Option{
		boundary.WithBus(a.bus),
		boundary.WithLogger(a.logger),
	}, cfg.bnd...)...)

	if err := bnd.Attach(host); err != nil {
		if !bnd.ShowingFallback() {
			return nil, err
		}
		a.logger.Warning().
			Str("instance", inst.ID()).
			Err(err).
			Log("root mounted degraded")
	}

	root := &Root{app: a, bnd: bnd}
	a.mu.Lock()
	a.roots = append(a.roots, root)
	a.mu.Unlock()

	a.logger.Debug().
		Str("instance", inst.ID()).
		Log("root mounted")
	return root, nil
}

func (a *App) forget(r *Root) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.roots = slices.DeleteFunc(a.roots, func(x *Root) bool { return x == r })
}

// Run drives the frame loop until ctx is cancelled; see Frames.Run.
func (a *App) Run(ctx context.Context) error {
	return a.frames.Run(ctx, a.interval)
}

// Shutdown destroys every root, drains the frame queue, and resets the
// store and bus the app created itself. Shared infrastructure passed in via
// Options is left alone. Shutdown is idempotent; Mount afterwards returns
// ErrShutdown.
func (a *App) Shutdown() {
	a.mu.Lock()
	if a.down {
		a.mu.Unlock()
		return
	}
	a.down = true
	roots := a.roots
	a.roots = nil
	a.mu.Unlock()

	for _, r := range roots {
		if err := r.bnd.Destroy(); err != nil {
			a.logger.Warning().
				Err(err).
				Log("root destroy failed")
		}
	}
	a.frames.Flush()
	if a.ownsStore {
		a.store.Reset()
	}
	if a.ownsBus {
		a.bus.Reset()
	}
	a.logger.Info().
		Int("roots", len(roots)).
		Log("app shut down")
}
