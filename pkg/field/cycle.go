package field

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-choices/pkg/events"
	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/source"
)

// ErrClosed is returned by loads requested after Close.
var ErrClosed = errors.New("field: closed")

type loadPlan struct {
	trigger model.Trigger
	clear   bool
	search  string
	url     string
}

// load runs one pass of the refresh cycle:
//
//  1. when plan.clear is set the stored value is snapshotted and cleared;
//  2. the source is loaded for the current window;
//  3. the option set is reconciled against the value that will be visible
//     once the pass completes;
//  4. the snapshot is restored on the next tick unless ClearOnRefresh is
//     set or the value was written meanwhile, and the pass settles in that
//     tick.
//
// A failed load restores the snapshot and the pagination window at once and
// keeps the previous option set.
func (f *Field) load(ctx context.Context, plan loadPlan) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if plan.trigger == model.TriggerLoadMore && !f.pager.HasMore() {
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	if !f.coord.Begin() {
		f.logger.Debug("load dropped, another load is in flight", "trigger", plan.trigger)
		return nil
	}

	var (
		snapshot any
		hadValue bool
		cleared  uint64
	)
	if plan.clear {
		snapshot, hadValue = f.record.Get(f.cfg.Key)
		if hadValue {
			f.record.SetFrom(f.id, f.cfg.Key, f.cfg.EmptyValue())
			cleared = f.record.Version(f.cfg.Key)
		}
	}
	restore := hadValue && !f.cfg.ClearOnRefresh

	f.mu.Lock()
	window := f.pager.Save()
	switch plan.trigger {
	case model.TriggerLoadMore:
		if !f.pager.Advance() {
			f.mu.Unlock()
			f.coord.Settle()
			return nil
		}
	case model.TriggerSearch:
		f.pager.Search(plan.search)
		f.pager.Reset()
	default:
		f.pager.Reset()
	}
	req := f.pager.Request(plan.trigger)
	req.URL = plan.url
	f.mu.Unlock()

	env := source.Env{Data: f.record.Data(), Submission: f.record.Submission()}
	result, err := f.loader.Load(ctx, req, env)
	if err != nil {
		f.mu.Lock()
		f.pager.Restore(window)
		f.mu.Unlock()
		if restore {
			f.restoreValue(snapshot, cleared)
		}
		f.settle(ctx, plan.trigger, false)
		return fmt.Errorf("field: %s: load: %w", f.cfg.Key, err)
	}

	value := snapshot
	if !restore {
		value = f.Value()
	}

	f.mu.Lock()
	if result.Skipped {
		if req.Append {
			f.pager.Rewind()
		}
	} else {
		if req.Append {
			f.loaded = append(f.loaded, result.Items...)
		} else {
			f.loaded = result.Items
		}
		f.pager.Observe(len(result.Items))
	}
	f.items, _ = f.reconciler.Ensure(value, f.loaded)
	f.mu.Unlock()

	if !restore {
		f.settle(ctx, plan.trigger, !result.Skipped)
		return nil
	}
	tick := context.WithoutCancel(ctx)
	f.coord.Defer(func() {
		f.restoreValue(snapshot, cleared)
		f.settle(tick, plan.trigger, !result.Skipped)
	})
	return nil
}

// restoreValue puts the snapshot back unless the value was written by
// someone else after the cycle cleared it. A newer value is kept and the
// option set is reconciled against it instead.
func (f *Field) restoreValue(snapshot any, cleared uint64) {
	if f.record.Version(f.cfg.Key) == cleared {
		f.record.SetFrom(f.id, f.cfg.Key, snapshot)
		return
	}
	current := f.Value()
	f.logger.Debug("value changed during refresh, keeping it", "value", current)
	f.mu.Lock()
	f.items, _ = f.reconciler.Ensure(current, f.loaded)
	f.mu.Unlock()
}

// settle ends the pass, publishes the loaded event and resolves readiness.
func (f *Field) settle(ctx context.Context, trigger model.Trigger, loaded bool) {
	f.coord.Settle()

	f.mu.Lock()
	count := len(f.items)
	f.mu.Unlock()

	if loaded {
		f.emit(ctx, events.Loaded, trigger, count)
	}
	if f.coord.MarkReady() {
		f.emit(ctx, events.Ready, trigger, count)
	}
}
