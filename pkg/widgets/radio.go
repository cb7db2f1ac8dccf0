package widgets

import (
	"fmt"

	"github.com/goliatone/go-choices/pkg/field"
	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/reconcile"
)

// Radio is a single choice widget.
type Radio struct {
	field *field.Field
}

// NewRadio wraps f.
func NewRadio(f *field.Field) *Radio {
	return &Radio{field: f}
}

// Field returns the underlying field.
func (r *Radio) Field() *field.Field { return r.field }

// Choices lists the options with the stored value checked.
func (r *Radio) Choices() []Choice {
	current := r.field.Value()
	return choices(r.field, func(_ string, value any) bool {
		return !reconcile.IsEmpty(current) && reconcile.Equal(value, current)
	})
}

// Select stores the value of the choice with the given key.
func (r *Radio) Select(key string) bool {
	for _, choice := range r.Choices() {
		if choice.Key == key {
			r.field.SetValue(choice.Value)
			return true
		}
	}
	return false
}

// TableView renders value the way a submission table shows it.
func (r *Radio) TableView(value any) string {
	return RadioTableView(r.field.Config(), value)
}

// RadioTableView resolves value to the label of the matching static option.
// Other sources, and values with no match, render the value itself.
func RadioTableView(cfg model.FieldConfig, value any) string {
	if value == nil {
		return ""
	}
	if cfg.Source == model.SourceStatic || cfg.Source == "" {
		for _, item := range cfg.Static.Values {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if reconcile.Equal(entry["value"], value) {
				return fmt.Sprint(entry["label"])
			}
		}
	}
	return fmt.Sprint(value)
}
