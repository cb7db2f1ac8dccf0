package transform

import (
	"context"
	"fmt"
	"reflect"
	"time"

	celgo "github.com/google/cel-go/cel"
	"google.golang.org/protobuf/types/known/structpb"
)

var jsonValueType = reflect.TypeOf(&structpb.Value{})

type celEvaluator struct {
	cache   ProgramCache
	timeout time.Duration
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. `data` and `row`
// are declared as dynamic values; the result is converted to plain Go values
// through its JSON representation.
func NewCELEvaluator(opts ...Option) Evaluator {
	cfg := applyOptions(opts)
	return &celEvaluator{cache: cfg.cache, timeout: cfg.timeout}
}

func (e *celEvaluator) Engine() string {
	return EngineCEL
}

func (e *celEvaluator) Evaluate(ctx context.Context, expression string, env Env) (any, error) {
	if expression == "" {
		return nil, wrapEvaluationError(EngineCEL, expression, errEmptyExpression)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, _, err := program.ContextEval(ctx, env.bindings())
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, err)
	}
	native, err := out.ConvertToNative(jsonValueType)
	if err != nil {
		return nil, wrapEvaluationError(EngineCEL, expression, fmt.Errorf("convert result: %w", err))
	}
	value, ok := native.(*structpb.Value)
	if !ok {
		return nil, wrapEvaluationError(EngineCEL, expression, fmt.Errorf("unexpected result type %T", native))
	}
	return value.AsInterface(), nil
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	key := cacheKey(EngineCEL, expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := celgo.NewEnv(
		celgo.Variable("data", celgo.DynType),
		celgo.Variable("row", celgo.DynType),
	)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast, celgo.InterruptCheckFrequency(64))
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}
