// Package accessor extracts the canonical value and display label of an option
// item according to a field's configured property paths.
package accessor

import (
	"log/slog"
	"math"

	"github.com/goliatone/go-choices/pkg/dotpath"
	"github.com/goliatone/go-choices/pkg/model"
)

// Accessor reads option items for one field.
type Accessor struct {
	field         string
	kind          model.SourceKind
	valueProperty string
	labelProperty string
	logger        *slog.Logger
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithLogger routes accessor diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Accessor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New builds an Accessor from a normalised field configuration.
func New(cfg model.FieldConfig, opts ...Option) Accessor {
	a := Accessor{
		field:         cfg.Key,
		kind:          cfg.Source,
		valueProperty: cfg.ValueProperty,
		labelProperty: cfg.LabelProperty,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&a)
		}
	}
	return a
}

// SelectValue returns the value an item contributes to the stored field value.
// Static items always expose their `value` property. Other sources use the
// configured value property path. Without one they fall back to the item's
// own `value` property, else the raw item. The
// boolean is false when the item is nil or the path does not resolve; the
// latter also logs a diagnostic.
func (a Accessor) SelectValue(item any) (any, bool) {
	if item == nil {
		return nil, false
	}
	if a.kind == model.SourceStatic {
		return dotpath.Get(item, "value")
	}
	if a.valueProperty == "" {
		if value, ok := dotpath.Get(item, "value"); ok {
			return value, true
		}
		return item, true
	}
	value, ok := dotpath.Get(item, a.valueProperty)
	if !ok {
		a.logger.Warn("cannot find value property within select",
			"field", a.field,
			"valueProperty", a.valueProperty,
		)
		return nil, false
	}
	return value, true
}

// ItemValue returns the value used to key an item when rendering: the value
// property, then the item's own `value`, then the item itself. Empty-ish
// results fall through to the next candidate.
func (a Accessor) ItemValue(item any) any {
	return pick(item, a.valueProperty, "value")
}

// ItemLabel returns the display label of an item following the same fallback
// chain as ItemValue with the label property and `label`.
func (a Accessor) ItemLabel(item any) any {
	return pick(item, a.labelProperty, "label")
}

// Placeholder synthesises an item whose SelectValue is value. With a value
// property configured the value is nested under that path.
func (a Accessor) Placeholder(value any) any {
	if a.kind == model.SourceStatic {
		return map[string]any{"value": value, "label": value}
	}
	if a.valueProperty == "" {
		return value
	}
	item := map[string]any{}
	if err := dotpath.Set(item, a.valueProperty, value); err != nil {
		return value
	}
	return item
}

func pick(item any, property, fallback string) any {
	if property != "" {
		if value, ok := dotpath.Get(item, property); ok && Truthy(value) {
			return value
		}
	}
	if value, ok := dotpath.Get(item, fallback); ok && Truthy(value) {
		return value
	}
	return item
}

// Truthy mirrors the loose truthiness used by form hosts: nil, false, zero
// numbers, NaN, and the empty string are falsy; everything else is truthy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	default:
		return true
	}
}
