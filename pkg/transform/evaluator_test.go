package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleEnv() Env {
	return Env{
		Data: map[string]any{
			"items": []any{
				map[string]any{"name": "a", "active": true},
				map[string]any{"name": "b", "active": false},
			},
		},
		Row: map[string]any{"x": 1},
	}
}

func TestExprEvaluator(t *testing.T) {
	evaluator := NewExprEvaluator()

	got, err := evaluator.Evaluate(context.Background(), `map(filter(data.items, {.active}), {.name})`, sampleEnv())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	values, err := Values(got)
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if diff := cmp.Diff([]any{"a"}, values); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	got, err = evaluator.Evaluate(context.Background(), `[row.x, "two"]`, sampleEnv())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if diff := cmp.Diff([]any{1, "two"}, got); diff != "" {
		t.Fatalf("row binding mismatch (-want +got):\n%s", diff)
	}
}

func TestExprEvaluator_Errors(t *testing.T) {
	evaluator := NewExprEvaluator()

	_, err := evaluator.Evaluate(context.Background(), "", Env{})
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || !errors.Is(err, errEmptyExpression) {
		t.Fatalf("expected empty expression error, got %v", err)
	}

	_, err = evaluator.Evaluate(context.Background(), "data.items[", sampleEnv())
	if !errors.As(err, &evalErr) || evalErr.Engine != EngineExpr {
		t.Fatalf("expected expr compile error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := evaluator.Evaluate(ctx, "[1]", Env{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestCELEvaluator(t *testing.T) {
	evaluator := NewCELEvaluator()

	got, err := evaluator.Evaluate(context.Background(), `data.items.filter(i, i.active).map(i, i.name)`, sampleEnv())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if diff := cmp.Diff([]any{"a"}, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	got, err = evaluator.Evaluate(context.Background(), `[row.x, 2]`, sampleEnv())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if diff := cmp.Diff([]any{float64(1), float64(2)}, got); diff != "" {
		t.Fatalf("numeric result mismatch (-want +got):\n%s", diff)
	}

	if _, err := evaluator.Evaluate(context.Background(), "data.(", sampleEnv()); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestProgramCache(t *testing.T) {
	cache := NewLRUCache(2)
	evaluator := NewExprEvaluator(WithProgramCache(cache))

	for i := 0; i < 2; i++ {
		if _, err := evaluator.Evaluate(context.Background(), "[1, 2]", Env{}); err != nil {
			t.Fatalf("evaluate: %v", err)
		}
	}
	if _, ok := cache.Get(cacheKey(EngineExpr, "[1, 2]")); !ok {
		t.Fatalf("expected compiled program to be cached")
	}

	cache.Set("a", 1)
	cache.Set("b", 2)
	if _, ok := cache.Get(cacheKey(EngineExpr, "[1, 2]")); ok {
		t.Fatalf("expected least recently used program to be evicted")
	}
}

func TestNew(t *testing.T) {
	for _, engine := range []string{"", "expr", " CEL "} {
		if _, err := New(engine); err != nil {
			t.Fatalf("engine %q: %v", engine, err)
		}
	}
	if _, err := New("lua"); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestValues(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    []any
		wantErr bool
	}{
		{name: "nil", in: nil, want: []any{}},
		{name: "any slice", in: []any{1, "a"}, want: []any{1, "a"}},
		{name: "typed slice", in: []string{"a", "b"}, want: []any{"a", "b"}},
		{name: "scalar", in: "a", wantErr: true},
		{name: "map", in: map[string]any{"a": 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Values(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
