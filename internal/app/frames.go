package app

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
)

// DefaultFrameInterval paces Run when the caller does not pick an interval,
// close to 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// maxFlushPasses bounds one flush so callbacks that keep requeuing work
// cannot wedge the frame loop.
const maxFlushPasses = 1024

// Frames is the cooperative deferral point of the runtime: work requested
// here runs on the next frame. It satisfies reconcile.Scheduler, so
// instances constructed with a scheduler batch patch application and
// re-renders onto frames.
type Frames struct {
	mu    sync.Mutex
	queue []func()

	logger  *logiface.Logger[logiface.Event]
	running atomic.Bool
}

// FramesOption configures a Frames queue.
type FramesOption func(*Frames)

// WithFramesLogger sets the logger. A nil logger disables logging.
func WithFramesLogger(l *logiface.Logger[logiface.Event]) FramesOption {
	return func(f *Frames) { f.logger = l }
}

// NewFrames returns an empty frame queue.
func NewFrames(opts ...FramesOption) *Frames {
	f := &Frames{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Request enqueues fn for the next flush. Nil callbacks are ignored.
func (f *Frames) Request(fn func()) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.queue = append(f.queue, fn)
	f.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (f *Frames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Flush runs the queue to exhaustion: callbacks requested while the flush
// runs execute in the same call, in request order. A panicking callback is
// logged and the flush continues.
func (f *Frames) Flush() {
	for pass := 0; pass < maxFlushPasses; pass++ {
		f.mu.Lock()
		fns := f.queue
		f.queue = nil
		f.mu.Unlock()
		if len(fns) == 0 {
			return
		}
		for _, fn := range fns {
			f.runOne(fn)
		}
	}
	f.logger.Warning().
		Int("passes", maxFlushPasses).
		Log("frame queue did not settle")
}

func (f *Frames) runOne(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Err().
				Any("panic", r).
				Str("stack", string(debug.Stack())).
				Log("frame callback panic")
		}
	}()
	fn()
}

// Run flushes the queue on every tick until ctx is cancelled, then drains
// whatever was queued before the cancellation and returns nil. Only one Run
// may be active at a time.
func (f *Frames) Run(ctx context.Context, interval time.Duration) error {
	if !f.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer f.running.Store(false)

	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.Flush()
			return nil
		case <-ticker.C:
			f.Flush()
		}
	}
}
