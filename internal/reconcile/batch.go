package reconcile

import (
	"sync"

	"github.com/joeycumines/logiface"
)

// Scheduler defers work to a later frame.
type Scheduler interface {
	Request(fn func())
}

// Batcher coalesces patch lists and applies them together on the next
// frame. Batching changes timing only, never the logical result: lists
// apply in enqueue order, exactly once.
type Batcher struct {
	mu        sync.Mutex
	queue     [][]Patch
	scheduled bool

	sched   Scheduler
	onError func(error)
	logger  *logiface.Logger[logiface.Event]
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher)

// WithOnError routes apply failures during a flush to fn instead of the
// logger. A failed list stops at the failing patch; later lists still run.
func WithOnError(fn func(error)) BatcherOption {
	return func(b *Batcher) { b.onError = fn }
}

// WithBatcherLogger sets the logger.
func WithBatcherLogger(logger *logiface.Logger[logiface.Event]) BatcherOption {
	return func(b *Batcher) { b.logger = logger }
}

// NewBatcher returns a Batcher applying patches on frames requested from
// sched. A nil sched leaves flushing to explicit Flush calls.
func NewBatcher(sched Scheduler, opts ...BatcherOption) *Batcher {
	b := &Batcher{sched: sched}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enqueue queues a patch list for the next flush. Empty lists are dropped.
// The first list queued after a flush requests a frame; further lists ride
// along.
func (b *Batcher) Enqueue(patches []Patch) {
	if len(patches) == 0 {
		return
	}
	b.mu.Lock()
	b.queue = append(b.queue, patches)
	request := !b.scheduled && b.sched != nil
	if request {
		b.scheduled = true
	}
	b.mu.Unlock()

	if request {
		b.sched.Request(b.Flush)
	}
}

// Flush applies every queued list now, in enqueue order. Lists enqueued
// during the flush wait for the next frame.
func (b *Batcher) Flush() {
	b.mu.Lock()
	queue := b.queue
	b.queue = nil
	b.scheduled = false
	b.mu.Unlock()

	for _, patches := range queue {
		if err := Apply(patches); err != nil {
			if b.onError != nil {
				b.onError(err)
				continue
			}
			b.logger.Err().
				Err(err).
				Log("batched apply failed")
		}
	}
}

// Len returns the number of queued patch lists.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
