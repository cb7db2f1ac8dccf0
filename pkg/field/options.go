package field

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-choices/pkg/events"
	"github.com/goliatone/go-choices/pkg/fetch"
	"github.com/goliatone/go-choices/pkg/interpolate"
	"github.com/goliatone/go-choices/pkg/refresh"
	"github.com/goliatone/go-choices/pkg/source"
	"github.com/goliatone/go-choices/pkg/transform"
	"github.com/goliatone/go-choices/pkg/watch"
)

type options struct {
	id        string
	logger    *slog.Logger
	record    *watch.Record
	hooks     events.Hooks
	scheduler refresh.Scheduler
	loader    source.Loader
	renderer  *interpolate.Renderer
	client    *fetch.Client
	evaluator transform.Evaluator
	cache     transform.ProgramCache
}

// Option configures a Field or a Form.
type Option func(*options)

// WithID sets the instance id used as the origin of the field's own writes.
// A random id is generated when unset.
func WithID(id string) Option {
	return func(o *options) {
		o.id = strings.TrimSpace(id)
	}
}

// WithLogger routes diagnostics of the field and its components to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecord binds the field to a shared form record.
func WithRecord(record *watch.Record) Option {
	return func(o *options) {
		if record != nil {
			o.record = record
		}
	}
}

// WithHooks appends event hooks.
func WithHooks(hooks ...events.Hook) Option {
	return func(o *options) {
		for _, hook := range hooks {
			if hook != nil {
				o.hooks = append(o.hooks, hook)
			}
		}
	}
}

// WithScheduler sets the scheduler of the deferred value restore.
func WithScheduler(scheduler refresh.Scheduler) Option {
	return func(o *options) {
		if scheduler != nil {
			o.scheduler = scheduler
		}
	}
}

// WithLoader replaces the loader built from the field configuration.
func WithLoader(loader source.Loader) Option {
	return func(o *options) {
		if loader != nil {
			o.loader = loader
		}
	}
}

// WithRenderer shares a template renderer.
func WithRenderer(renderer *interpolate.Renderer) Option {
	return func(o *options) {
		if renderer != nil {
			o.renderer = renderer
		}
	}
}

// WithClient shares the HTTP client of remote sources.
func WithClient(client *fetch.Client) Option {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

// WithEvaluator overrides the transform evaluator.
func WithEvaluator(evaluator transform.Evaluator) Option {
	return func(o *options) {
		if evaluator != nil {
			o.evaluator = evaluator
		}
	}
}

// WithProgramCache shares compiled transform programs.
func WithProgramCache(cache transform.ProgramCache) Option {
	return func(o *options) {
		if cache != nil {
			o.cache = cache
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.renderer == nil {
		o.renderer = interpolate.Default()
	}
	return o
}

func (o options) sourceOptions() []source.Option {
	out := []source.Option{
		source.WithLogger(o.logger),
		source.WithRenderer(o.renderer),
	}
	if o.client != nil {
		out = append(out, source.WithClient(o.client))
	}
	if o.evaluator != nil {
		out = append(out, source.WithEvaluator(o.evaluator))
	}
	if o.cache != nil {
		out = append(out, source.WithProgramCache(o.cache))
	}
	return out
}
