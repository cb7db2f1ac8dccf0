package transform

import (
	"context"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

type exprEvaluator struct {
	cache ProgramCache
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr. Programs
// are compiled once per expression when a cache is configured.
func NewExprEvaluator(opts ...Option) Evaluator {
	cfg := applyOptions(opts)
	return &exprEvaluator{cache: cfg.cache}
}

func (e *exprEvaluator) Engine() string {
	return EngineExpr
}

func (e *exprEvaluator) Evaluate(ctx context.Context, expression string, env Env) (any, error) {
	if expression == "" {
		return nil, wrapEvaluationError(EngineExpr, expression, errEmptyExpression)
	}
	if err := ctx.Err(); err != nil {
		return nil, wrapEvaluationError(EngineExpr, expression, err)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env.bindings())
	if err != nil {
		return nil, wrapEvaluationError(EngineExpr, expression, err)
	}
	return result, nil
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	key := cacheKey(EngineExpr, expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(Env{}.bindings()),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, wrapEvaluationError(EngineExpr, expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}
