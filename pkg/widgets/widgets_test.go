package widgets

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-choices/pkg/field"
	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/watch"
)

func colors() model.FieldConfig {
	return model.FieldConfig{
		Key:    "color",
		Source: model.SourceStatic,
		Static: model.StaticSource{Values: []any{
			map[string]any{"value": "r", "label": "Red"},
			map[string]any{"value": "g", "label": "Green"},
			map[string]any{"value": "b", "label": "Blue"},
		}},
	}
}

func startField(t *testing.T, cfg model.FieldConfig, record *watch.Record) *field.Field {
	t.Helper()
	f, err := field.New(cfg, field.WithRecord(record))
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	t.Cleanup(f.Close)
	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return f
}

func TestRadio_ChoicesAndSelect(t *testing.T) {
	record := watch.NewRecord(nil, nil)
	radio := NewRadio(startField(t, colors(), record))

	if !radio.Select("g") {
		t.Fatalf("expected select to find the choice")
	}
	if radio.Select("missing") {
		t.Fatalf("expected unknown key to be rejected")
	}

	got := radio.Choices()
	want := []Choice{
		{Key: "r", Value: "r", Label: "Red"},
		{Key: "g", Value: "g", Label: "Green", Checked: true},
		{Key: "b", Value: "b", Label: "Blue"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected choices (-want +got):\n%s", diff)
	}
}

func TestRadioTableView(t *testing.T) {
	cfg := colors()
	if got := RadioTableView(cfg, "b"); got != "Blue" {
		t.Fatalf("expected label, got %q", got)
	}
	if got := RadioTableView(cfg, "x"); got != "x" {
		t.Fatalf("expected raw value for unknown option, got %q", got)
	}
	if got := RadioTableView(cfg, nil); got != "" {
		t.Fatalf("expected empty view for nil, got %q", got)
	}
}

func TestSelectBoxes_ModelAndToggle(t *testing.T) {
	cfg := colors()
	cfg.Widget = model.WidgetSelectBoxes
	record := watch.NewRecord(nil, nil)
	boxes := NewSelectBoxes(startField(t, cfg, record))

	if !boxes.Init() {
		t.Fatalf("expected init to store the model")
	}
	if boxes.Init() {
		t.Fatalf("expected init to keep an existing value")
	}
	if !boxes.IsEmpty() {
		t.Fatalf("expected all false flags to be empty")
	}

	boxes.Toggle("r")
	boxes.Toggle("b")
	boxes.Toggle("b")

	want := map[string]bool{"r": true, "g": false, "b": false}
	if diff := cmp.Diff(want, boxes.Model()); diff != "" {
		t.Fatalf("unexpected model (-want +got):\n%s", diff)
	}
	if boxes.IsEmpty() {
		t.Fatalf("expected a checked flag")
	}

	checked := 0
	for _, choice := range boxes.Choices() {
		if choice.Checked {
			checked++
			if choice.Key != "r" {
				t.Fatalf("unexpected checked choice %q", choice.Key)
			}
		}
	}
	if checked != 1 {
		t.Fatalf("expected one checked choice, got %d", checked)
	}
}

func TestSelectBoxes_KeepsStoredUnknownKeys(t *testing.T) {
	cfg := colors()
	cfg.Widget = model.WidgetSelectBoxes
	record := watch.NewRecord(map[string]any{"color": map[string]any{"purple": true}}, nil)
	boxes := NewSelectBoxes(startField(t, cfg, record))

	flags := boxes.Model()
	if !flags["purple"] || flags["r"] {
		t.Fatalf("unexpected model %v", flags)
	}
}

func TestSelectBoxesTableView(t *testing.T) {
	cfg := colors()
	value := map[string]any{"r": true, "g": false, "b": true, "x": true}
	if got := SelectBoxesTableView(cfg, value); got != "Blue, Red, x" {
		t.Fatalf("unexpected table view %q", got)
	}

	embedded := model.FieldConfig{
		Key:           "size",
		Source:        model.SourceEmbedded,
		ValueProperty: "id",
		Embedded:      model.EmbeddedSource{JSON: `[{"id":"s","label":"Small"},{"id":"l","label":"Large"}]`},
	}
	if got := SelectBoxesTableView(embedded, []any{"l", "s"}); got != "Large, Small" {
		t.Fatalf("unexpected embedded table view %q", got)
	}
	if got := SelectBoxesTableView(embedded, nil); got != "" {
		t.Fatalf("expected empty view, got %q", got)
	}
}

func TestIsEmptySelection(t *testing.T) {
	cases := map[string]struct {
		value any
		want  bool
	}{
		"nil":       {value: nil, want: true},
		"all false": {value: map[string]bool{"a": false}, want: true},
		"one true":  {value: map[string]any{"a": false, "b": true}, want: false},
		"not a map": {value: "a", want: true},
	}
	for name, tc := range cases {
		if got := IsEmptySelection(tc.value); got != tc.want {
			t.Fatalf("%s: want %v, got %v", name, tc.want, got)
		}
	}
}
