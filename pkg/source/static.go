package source

import (
	"context"

	"github.com/goliatone/go-choices/pkg/model"
)

type staticLoader struct {
	values []any
}

func newStatic(cfg model.FieldConfig) *staticLoader {
	return &staticLoader{values: cloneItems(cfg.Static.Values)}
}

func (l *staticLoader) Kind() model.SourceKind {
	return model.SourceStatic
}

// Load returns the configured values; search and paging are ignored.
func (l *staticLoader) Load(_ context.Context, _ model.LoadRequest, _ Env) (Result, error) {
	return Result{Items: cloneItems(l.values)}, nil
}
