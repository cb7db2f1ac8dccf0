package refresh

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-choices/pkg/model"
)

func TestCoordinator_SingleFlight(t *testing.T) {
	c := New()
	if c.State() != model.StateIdle {
		t.Fatalf("expected idle coordinator")
	}
	if !c.Begin() {
		t.Fatalf("expected first begin to succeed")
	}
	if c.Begin() {
		t.Fatalf("expected overlapping begin to be dropped")
	}
	c.Settle()
	if c.State() != model.StateReady {
		t.Fatalf("expected ready after settle, got %s", c.State())
	}
	if !c.Begin() {
		t.Fatalf("expected begin after settle to succeed")
	}
}

func TestCoordinator_ConcurrentBegin(t *testing.T) {
	c := New()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Begin() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins.Load())
	}
}

func TestCoordinator_ReadyOnce(t *testing.T) {
	c := New()
	var calls []string
	c.WhenReady(func() { calls = append(calls, "before") })
	if c.IsReady() {
		t.Fatalf("expected not ready")
	}

	if !c.MarkReady() {
		t.Fatalf("expected first MarkReady to resolve")
	}
	if c.MarkReady() {
		t.Fatalf("expected second MarkReady to be a no-op")
	}
	select {
	case <-c.Ready():
	default:
		t.Fatalf("expected ready channel to be closed")
	}

	c.WhenReady(func() { calls = append(calls, "after") })
	if len(calls) != 2 || calls[0] != "before" || calls[1] != "after" {
		t.Fatalf("unexpected waiter calls %v", calls)
	}
}

func TestCoordinator_DeferKeepsOneOutstanding(t *testing.T) {
	scheduler := NewManualScheduler()
	c := New(WithScheduler(scheduler))

	var ran []int
	c.Defer(func() { ran = append(ran, 1) })
	c.Defer(func() { ran = append(ran, 2) })

	if scheduler.Pending() != 1 {
		t.Fatalf("expected earlier restore to be cancelled, %d pending", scheduler.Pending())
	}
	if !c.HasPending() {
		t.Fatalf("expected a pending restore")
	}
	scheduler.Flush()
	if len(ran) != 1 || ran[0] != 2 {
		t.Fatalf("expected only the latest restore to run, got %v", ran)
	}
	if c.HasPending() {
		t.Fatalf("expected nothing pending after flush")
	}

	c.Defer(func() { ran = append(ran, 3) })
	c.CancelPending()
	scheduler.Flush()
	if len(ran) != 1 {
		t.Fatalf("expected cancelled restore not to run, got %v", ran)
	}
}

func TestCoordinator_DeferImmediate(t *testing.T) {
	c := New(WithScheduler(ImmediateScheduler{}))
	ran := false
	c.Defer(func() {
		ran = true
		c.Settle()
	})
	if !ran {
		t.Fatalf("expected immediate scheduler to run inline")
	}
	if c.HasPending() {
		t.Fatalf("expected no pending restore")
	}
}

func TestTimerScheduler(t *testing.T) {
	done := make(chan struct{})
	TimerScheduler{}.Schedule(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timer callback did not run")
	}

	var fired atomic.Bool
	cancel := TimerScheduler{Delay: 50 * time.Millisecond}.Schedule(func() { fired.Store(true) })
	cancel()
	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Fatalf("expected cancelled timer not to fire")
	}
}
