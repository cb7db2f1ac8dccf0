package source

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/transform"
)

type transformLoader struct {
	key        string
	expression string
	evaluator  transform.Evaluator
	logger     *slog.Logger
}

func newTransform(cfg model.FieldConfig, o options) (*transformLoader, error) {
	evaluator := o.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = transform.New(cfg.Transform.Engine, transform.WithProgramCache(o.cache))
		if err != nil {
			return nil, err
		}
	}
	return &transformLoader{
		key:        cfg.Key,
		expression: cfg.Transform.Expression,
		evaluator:  evaluator,
		logger:     o.logger,
	}, nil
}

func (l *transformLoader) Kind() model.SourceKind {
	return model.SourceTransform
}

// Load evaluates the expression with `data` bound to a copy of the submission
// and `row` bound to a copy of the live data. Evaluation failures degrade to
// an empty list and are logged, never returned.
func (l *transformLoader) Load(ctx context.Context, _ model.LoadRequest, env Env) (Result, error) {
	result, err := l.evaluator.Evaluate(ctx, l.expression, transform.Env{
		Data: cloneMap(env.Submission),
		Row:  cloneMap(env.Data),
	})
	if err != nil {
		l.logger.Warn("transform evaluation failed",
			"field", l.key,
			"source", string(model.SourceTransform),
			"engine", l.evaluator.Engine(),
			"error", err,
		)
		return Result{Items: []any{}}, nil
	}
	values, err := transform.Values(result)
	if err != nil {
		l.logger.Warn("transform returned no list",
			"field", l.key,
			"source", string(model.SourceTransform),
			"error", err,
		)
		return Result{Items: []any{}}, nil
	}
	return Result{Items: values}, nil
}
