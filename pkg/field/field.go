// Package field runs the option engine of a single choice field: it loads the
// option set from the configured source, keeps the stored value selectable,
// pages through remote and embedded results and refreshes when the field's
// dependencies change.
package field

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-choices/pkg/accessor"
	"github.com/goliatone/go-choices/pkg/events"
	"github.com/goliatone/go-choices/pkg/interpolate"
	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/paging"
	"github.com/goliatone/go-choices/pkg/reconcile"
	"github.com/goliatone/go-choices/pkg/refresh"
	"github.com/goliatone/go-choices/pkg/source"
	"github.com/goliatone/go-choices/pkg/watch"
)

// Field is one choice field bound to a record. All methods are safe for
// concurrent use. At most one load runs at a time; loads requested while one
// is in flight are dropped.
type Field struct {
	id         string
	cfg        model.FieldConfig
	logger     *slog.Logger
	record     *watch.Record
	loader     source.Loader
	accessor   accessor.Accessor
	reconciler reconcile.Reconciler
	renderer   *interpolate.Renderer
	coord      *refresh.Coordinator
	hooks      events.Hooks

	lifetime context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	pager   *paging.Controller
	loaded  []any
	items   []any
	watcher *watch.Watcher
	started bool
	closed  bool
}

// New validates cfg and builds a field. The field does nothing until Start.
func New(cfg model.FieldConfig, opts ...Option) (*Field, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.record == nil {
		o.record = watch.NewRecord(nil, nil)
	}
	logger := o.logger.With("field", cfg.Key)

	loader := o.loader
	if loader == nil {
		var err error
		loader, err = source.New(cfg, append(o.sourceOptions(), source.WithLogger(logger))...)
		if err != nil {
			return nil, fmt.Errorf("field: %s: %w", cfg.Key, err)
		}
	}

	acc := accessor.New(cfg, accessor.WithLogger(logger))
	var coordOpts []refresh.Option
	if o.scheduler != nil {
		coordOpts = append(coordOpts, refresh.WithScheduler(o.scheduler))
	}
	lifetime, cancel := context.WithCancel(context.Background())

	return &Field{
		id:         o.id,
		cfg:        cfg,
		logger:     logger,
		record:     o.record,
		loader:     loader,
		accessor:   acc,
		reconciler: reconcile.New(cfg, acc),
		renderer:   o.renderer,
		coord:      refresh.New(coordOpts...),
		hooks:      o.hooks,
		lifetime:   lifetime,
		cancel:     cancel,
		pager:      paging.New(cfg.Source, cfg.Limit),
	}, nil
}

// ID returns the instance id of the field.
func (f *Field) ID() string { return f.id }

// Key returns the record key the field stores its value under.
func (f *Field) Key() string { return f.cfg.Key }

// Config returns the normalised configuration.
func (f *Field) Config() model.FieldConfig { return f.cfg }

// Record returns the record the field is bound to.
func (f *Field) Record() *watch.Record { return f.record }

// Start attaches the dependency watcher and performs the initial load. It
// runs once; later calls return nil.
func (f *Field) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started || f.closed {
		f.mu.Unlock()
		return nil
	}
	f.started = true
	f.watcher = watch.Watch(f.record, f.cfg, f.id, watch.Handlers{
		OnDependency: f.onDependency,
		OnValue:      f.onValue,
	})
	f.mu.Unlock()

	return f.load(ctx, loadPlan{trigger: model.TriggerInitial})
}

// Refresh reloads the option set from the first page. Unless ClearOnRefresh
// is set the stored value is restored on the next tick.
func (f *Field) Refresh(ctx context.Context) error {
	return f.load(ctx, loadPlan{trigger: model.TriggerRefresh, clear: true})
}

// Search reloads the option set for text, restarting from the first page. A
// non-empty url overrides the configured remote URL for this load.
func (f *Field) Search(ctx context.Context, text, url string) error {
	return f.load(ctx, loadPlan{trigger: model.TriggerSearch, search: text, url: url})
}

// LoadMore appends the next page. It is a no-op when the source is not
// paginated, the last page was short, or a load is in flight.
func (f *Field) LoadMore(ctx context.Context) error {
	return f.load(ctx, loadPlan{trigger: model.TriggerLoadMore})
}

// LoadPages walks the remaining pages of the source until it is exhausted or
// at least maxItems loaded options are available, and returns the loaded
// options without placeholders. A non-positive maxItems walks every page.
func (f *Field) LoadPages(ctx context.Context, maxItems int) ([]any, error) {
	if !f.cfg.Source.Paginated() || f.cfg.Limit <= 0 {
		return f.loadedCopy(0, -1), nil
	}
	items, err := paging.Collect(ctx, f.cfg.Limit, maxItems, func(ctx context.Context, offset, limit int) ([]any, error) {
		if offset > 0 {
			if err := f.LoadMore(ctx); err != nil {
				return nil, err
			}
		}
		return f.loadedCopy(offset, limit), nil
	})
	if err != nil {
		return items, fmt.Errorf("field: %s: pages: %w", f.cfg.Key, err)
	}
	return items, nil
}

// loadedCopy returns loaded options [offset, offset+limit). A negative limit
// reads to the end.
func (f *Field) loadedCopy(offset, limit int) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset >= len(f.loaded) {
		return []any{}
	}
	end := len(f.loaded)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	out, _ := deepcopy.Copy(f.loaded[offset:end]).([]any)
	return out
}

// Items returns a copy of the current option set.
func (f *Field) Items() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, _ := deepcopy.Copy(f.items).([]any)
	if out == nil {
		out = []any{}
	}
	return out
}

// Page returns the pagination window.
func (f *Field) Page() model.PaginationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pager.State()
}

// State returns the load state.
func (f *Field) State() model.LoadState {
	return f.coord.State()
}

// Ready is closed once the first load settles.
func (f *Field) Ready() <-chan struct{} {
	return f.coord.Ready()
}

// WhenReady runs fn once the first load settled.
func (f *Field) WhenReady(fn func()) {
	f.coord.WhenReady(fn)
}

// Value returns the stored value of the field.
func (f *Field) Value() any {
	value, _ := f.record.Get(f.cfg.Key)
	return value
}

// SetValue stores value as the field's own write.
func (f *Field) SetValue(value any) bool {
	return f.record.SetFrom(f.id, f.cfg.Key, value)
}

// SelectValue returns the value item contributes to the stored value.
func (f *Field) SelectValue(item any) (any, bool) {
	return f.accessor.SelectValue(item)
}

// ItemValue returns the canonical value of item.
func (f *Field) ItemValue(item any) any {
	return f.accessor.ItemValue(item)
}

// ItemLabel returns the label of item.
func (f *Field) ItemLabel(item any) any {
	return f.accessor.ItemLabel(item)
}

// DisplayText renders the visible text of item with the configured template.
func (f *Field) DisplayText(item any) string {
	text, err := f.renderer.DisplayText(f.cfg.Template, item)
	if err != nil {
		f.logger.Warn("display template failed", "error", err)
		text = ""
	}
	if text == "" {
		if label := f.accessor.ItemLabel(item); label != nil {
			return fmt.Sprint(label)
		}
	}
	return text
}

// Close detaches the watcher, cancels watcher-triggered loads and drops any
// pending value restore.
func (f *Field) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	watcher := f.watcher
	f.watcher = nil
	f.mu.Unlock()

	if watcher != nil {
		watcher.Close()
	}
	f.coord.CancelPending()
	f.cancel()
}

func (f *Field) onDependency(change watch.Change) {
	if err := f.Refresh(f.lifetime); err != nil {
		f.logger.Warn("dependency refresh failed", "dependency", change.Key, "error", err)
	}
}

// onValue makes a value prefilled from outside selectable without reloading
// the source.
func (f *Field) onValue(any) {
	f.coord.WhenReady(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			return
		}
		f.items, _ = f.reconciler.Ensure(f.Value(), f.loaded)
	})
}

func (f *Field) emit(ctx context.Context, name string, trigger model.Trigger, count int) {
	if !f.hooks.Enabled() {
		return
	}
	err := f.hooks.Notify(ctx, events.Event{
		Name:     name,
		FieldKey: f.cfg.Key,
		FieldID:  f.id,
		Widget:   string(f.cfg.Widget),
		Source:   string(f.cfg.Source),
		Trigger:  string(trigger),
		Items:    count,
	})
	if err != nil {
		f.logger.Warn("event hook failed", "event", name, "error", err)
	}
}
