package refresh

import (
	"sync"
	"time"
)

// CancelFunc cancels a scheduled callback. Calling it after the callback ran,
// or more than once, is a no-op.
type CancelFunc func()

// Scheduler runs callbacks on a later tick.
type Scheduler interface {
	Schedule(fn func()) CancelFunc
}

// TimerScheduler runs callbacks on their own goroutine after Delay.
type TimerScheduler struct {
	Delay time.Duration
}

// Schedule implements Scheduler.
func (s TimerScheduler) Schedule(fn func()) CancelFunc {
	timer := time.AfterFunc(s.Delay, fn)
	return func() {
		timer.Stop()
	}
}

// ImmediateScheduler runs callbacks synchronously inside Schedule.
type ImmediateScheduler struct{}

// Schedule implements Scheduler.
func (ImmediateScheduler) Schedule(fn func()) CancelFunc {
	fn()
	return func() {}
}

// ManualScheduler queues callbacks until Flush is called. It lets tests
// observe the state between a refresh and its deferred restore.
type ManualScheduler struct {
	mu     sync.Mutex
	nextID int
	queue  []scheduled
}

type scheduled struct {
	id int
	fn func()
}

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(fn func()) CancelFunc {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.queue = append(s.queue, scheduled{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.queue {
			if entry.id == id {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				return
			}
		}
	}
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush runs every queued callback in scheduling order and returns how many
// ran. Callbacks scheduled while flushing run in the same call.
func (s *ManualScheduler) Flush() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return ran
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		next.fn()
		ran++
	}
}
