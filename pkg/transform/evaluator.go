// Package transform evaluates the expressions of transform sources. Every
// engine is sandboxed: expressions see only the `data` and `row` bindings and
// cannot reach the host process.
package transform

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// ErrUnknownEngine is returned by New for unsupported engine names.
var ErrUnknownEngine = errors.New("transform: unknown engine")

// ErrJSUnavailable is returned by New when the js engine was not compiled in.
var ErrJSUnavailable = errors.New("transform: js engine requires the js_eval build tag")

// Env holds the bindings visible to an expression. Callers pass deep copies;
// evaluators never write back.
type Env struct {
	Data map[string]any
	Row  map[string]any
}

func (e Env) bindings() map[string]any {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	row := e.Row
	if row == nil {
		row = map[string]any{}
	}
	return map[string]any{"data": data, "row": row}
}

// Evaluator runs one expression against an Env.
type Evaluator interface {
	Engine() string
	Evaluate(ctx context.Context, expression string, env Env) (any, error)
}

type config struct {
	cache   ProgramCache
	timeout time.Duration
}

// Option configures an evaluator.
type Option func(*config)

// WithProgramCache stores compiled programs in cache keyed by expression.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithTimeout bounds a single evaluation. Only engines that can interrupt a
// running program honour it.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := config{timeout: time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// New returns the evaluator for engine. The empty name selects expr.
func New(engine string, opts ...Option) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(opts...), nil
	case EngineCEL:
		return NewCELEvaluator(opts...), nil
	case EngineJS:
		evaluator := NewJSEvaluator(opts...)
		if evaluator == nil {
			return nil, ErrJSUnavailable
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Values coerces an evaluation result into an option sequence. Nil yields an
// empty sequence; any slice or array is copied element by element.
func Values(result any) ([]any, error) {
	switch typed := result.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return typed, nil
	}
	rv := reflect.ValueOf(result)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("transform: expected a list of values, got %T", result)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
