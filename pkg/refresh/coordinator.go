// Package refresh guards a field's loads: at most one load runs at a time,
// readiness is signalled once, and the deferred value restore is tracked so
// only one is ever outstanding.
package refresh

import (
	"sync"

	"github.com/goliatone/go-choices/pkg/model"
)

// Coordinator is the single-flight state machine of one field. It is safe for
// concurrent use.
type Coordinator struct {
	mu        sync.Mutex
	state     model.LoadState
	ready     chan struct{}
	readyOnce sync.Once
	waiters   []func()
	scheduler Scheduler
	pending   *task
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithScheduler sets the scheduler used for deferred work.
func WithScheduler(scheduler Scheduler) Option {
	return func(c *Coordinator) {
		if scheduler != nil {
			c.scheduler = scheduler
		}
	}
}

// New returns an idle coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		state:     model.StateIdle,
		ready:     make(chan struct{}),
		scheduler: TimerScheduler{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Begin moves the coordinator into Loading. It returns false, leaving the
// state untouched, when a load is already in flight; such requests are
// dropped rather than queued.
func (c *Coordinator) Begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == model.StateLoading {
		return false
	}
	c.state = model.StateLoading
	return true
}

// Settle marks the in-flight load as finished.
func (c *Coordinator) Settle() {
	c.mu.Lock()
	c.state = model.StateReady
	c.mu.Unlock()
}

// State returns the current load state.
func (c *Coordinator) State() model.LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether a load is in flight.
func (c *Coordinator) Loading() bool {
	return c.State() == model.StateLoading
}

// MarkReady resolves readiness. Only the first call has an effect; it reports
// whether this call was the one that resolved it.
func (c *Coordinator) MarkReady() bool {
	resolved := false
	c.readyOnce.Do(func() {
		resolved = true
		c.mu.Lock()
		waiters := c.waiters
		c.waiters = nil
		close(c.ready)
		c.mu.Unlock()
		for _, fn := range waiters {
			fn()
		}
	})
	return resolved
}

// Ready returns a channel closed once readiness resolves.
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// IsReady reports whether readiness has resolved.
func (c *Coordinator) IsReady() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// WhenReady runs fn once readiness resolves, immediately when it already has.
func (c *Coordinator) WhenReady(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	select {
	case <-c.ready:
		c.mu.Unlock()
		fn()
		return
	default:
	}
	c.waiters = append(c.waiters, fn)
	c.mu.Unlock()
}

// Defer schedules fn on the next tick, cancelling any restore still pending
// from an earlier cycle.
func (c *Coordinator) Defer(fn func()) {
	c.mu.Lock()
	c.cancelPendingLocked()
	t := &task{}
	c.pending = t
	c.mu.Unlock()

	cancel := c.scheduler.Schedule(func() {
		c.mu.Lock()
		if t.done {
			c.mu.Unlock()
			return
		}
		t.done = true
		if c.pending == t {
			c.pending = nil
		}
		c.mu.Unlock()
		fn()
	})

	c.mu.Lock()
	if !t.done {
		t.cancel = cancel
	}
	c.mu.Unlock()
}

// CancelPending cancels the outstanding deferred restore, if any.
func (c *Coordinator) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
}

// HasPending reports whether a deferred restore is outstanding.
func (c *Coordinator) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

func (c *Coordinator) cancelPendingLocked() {
	if c.pending == nil {
		return
	}
	c.pending.done = true
	if c.pending.cancel != nil {
		c.pending.cancel()
	}
	c.pending = nil
}

// task is one deferred callback; done is set once it ran or was cancelled.
type task struct {
	cancel CancelFunc
	done   bool
}
