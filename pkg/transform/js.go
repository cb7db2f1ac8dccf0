//go:build js_eval

package transform

import (
	"context"
	"time"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache   ProgramCache
	timeout time.Duration
}

// NewJSEvaluator constructs an Evaluator backed by goja. Scripts use the
// legacy statement form: they assign the option list to `values`, which starts
// as an empty array. Each evaluation gets a fresh runtime that is interrupted
// when ctx ends or the configured timeout elapses.
func NewJSEvaluator(opts ...Option) Evaluator {
	cfg := applyOptions(opts)
	return &jsEvaluator{cache: cfg.cache, timeout: cfg.timeout}
}

func (e *jsEvaluator) Engine() string {
	return EngineJS
}

func (e *jsEvaluator) Evaluate(ctx context.Context, expression string, env Env) (any, error) {
	if expression == "" {
		return nil, wrapEvaluationError(EngineJS, expression, errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError(EngineJS, expression, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	for key, value := range env.bindings() {
		if err := vm.Set(key, value); err != nil {
			return nil, wrapEvaluationError(EngineJS, expression, err)
		}
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, wrapEvaluationError(EngineJS, expression, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	key := cacheKey(EngineJS, expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapScript(expression), false)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func wrapScript(script string) string {
	return "(function(){ var values = [];\n" + script + "\n;return values; })()"
}
