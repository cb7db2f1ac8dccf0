// Package source loads the option items of a field from its configured
// source: a static list, embedded JSON, a transform expression or a remote
// query.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-choices/pkg/fetch"
	"github.com/goliatone/go-choices/pkg/interpolate"
	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/transform"
)

// Env is the record state visible to a load. Data holds the live values of
// the form the field belongs to; Submission holds the persisted submission
// data. Loaders never mutate either map.
type Env struct {
	Data       map[string]any
	Submission map[string]any
}

// Result is the outcome of a single load.
type Result struct {
	// Items is the page returned by the source. Callers own the slice.
	Items []any
	// Skipped reports that the source declined to run, for instance a remote
	// search with no text. Items is nil when Skipped is set.
	Skipped bool
	// URL is the request URL of remote loads.
	URL string
}

// Loader produces the option items of one field.
type Loader interface {
	Kind() model.SourceKind
	Load(ctx context.Context, req model.LoadRequest, env Env) (Result, error)
}

type options struct {
	logger    *slog.Logger
	renderer  *interpolate.Renderer
	client    *fetch.Client
	evaluator transform.Evaluator
	cache     transform.ProgramCache
}

// Option configures the loaders built by New.
type Option func(*options)

// WithLogger routes loader diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRenderer sets the template renderer used for display text, remote URLs
// and filter fragments.
func WithRenderer(renderer *interpolate.Renderer) Option {
	return func(o *options) {
		if renderer != nil {
			o.renderer = renderer
		}
	}
}

// WithClient sets the HTTP client of remote loaders.
func WithClient(client *fetch.Client) Option {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

// WithEvaluator overrides the evaluator of transform loaders. Without it the
// evaluator is chosen from the configured engine.
func WithEvaluator(evaluator transform.Evaluator) Option {
	return func(o *options) {
		o.evaluator = evaluator
	}
}

// WithProgramCache shares compiled transform programs across loaders.
func WithProgramCache(cache transform.ProgramCache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// New builds the loader for cfg. cfg is expected to be normalised and valid.
func New(cfg model.FieldConfig, opts ...Option) (Loader, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.renderer == nil {
		o.renderer = interpolate.Default()
	}

	switch cfg.Source {
	case model.SourceStatic:
		return newStatic(cfg), nil
	case model.SourceEmbedded:
		return newEmbedded(cfg, o), nil
	case model.SourceTransform:
		return newTransform(cfg, o)
	case model.SourceRemote:
		return newRemote(cfg, o), nil
	default:
		return nil, fmt.Errorf("source: unsupported source kind %q", cfg.Source)
	}
}

func cloneItems(items []any) []any {
	if items == nil {
		return []any{}
	}
	out, ok := deepcopy.Copy(items).([]any)
	if !ok {
		return []any{}
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out, ok := deepcopy.Copy(in).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return out
}
