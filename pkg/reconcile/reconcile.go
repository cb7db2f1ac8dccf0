// Package reconcile keeps a field's stored value selectable: whenever the value
// is missing from the loaded option set a placeholder item is appended.
package reconcile

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-choices/pkg/accessor"
	"github.com/goliatone/go-choices/pkg/model"
)

// Reconciler matches stored values against option items for one field.
type Reconciler struct {
	accessor accessor.Accessor
	widget   model.Widget
	multiple bool
	rawItems bool
}

// New builds a Reconciler that reads items through acc.
func New(cfg model.FieldConfig, acc accessor.Accessor) Reconciler {
	return Reconciler{
		accessor: acc,
		widget:   cfg.Widget,
		multiple: cfg.Multiple,
		rawItems: cfg.Source != model.SourceStatic && cfg.ValueProperty == "",
	}
}

// Ensure returns items extended with a placeholder for every part of value
// that no item selects. Empty values leave items untouched. The input slice is
// never modified; added reports whether a new slice was built.
//
// A list value of a multiple field is reconciled element by element; on a
// single value field the list is one value. For select boxes a map value holds
// one flag per option and every key whose flag is set is reconciled.
func (r Reconciler) Ensure(value any, items []any) ([]any, bool) {
	if IsEmpty(value) {
		return items, false
	}

	var missing []any
	switch typed := value.(type) {
	case []any:
		if !r.multiple {
			if !r.Contains(items, typed) {
				missing = append(missing, typed)
			}
			break
		}
		for _, element := range typed {
			if !IsEmpty(element) && !r.Contains(items, element) && !containsEqual(missing, element) {
				missing = append(missing, element)
			}
		}
	case map[string]any:
		if r.widget != model.WidgetSelectBoxes {
			if !r.Contains(items, typed) {
				missing = append(missing, typed)
			}
			break
		}
		for _, key := range sortedKeys(typed) {
			if !accessor.Truthy(typed[key]) || r.containsKey(items, key) {
				continue
			}
			missing = append(missing, key)
		}
	default:
		if !r.Contains(items, value) {
			missing = append(missing, value)
		}
	}

	if len(missing) == 0 {
		return items, false
	}
	out := make([]any, 0, len(items)+len(missing))
	out = append(out, items...)
	for _, value := range missing {
		out = append(out, r.accessor.Placeholder(value))
	}
	return out, true
}

// Contains reports whether some item selects value. Without a value property
// an item equal to value also matches, since placeholders are then the value
// itself.
func (r Reconciler) Contains(items []any, value any) bool {
	for _, item := range items {
		selected, ok := r.accessor.SelectValue(item)
		if ok && Equal(selected, value) {
			return true
		}
		if r.rawItems && Equal(item, value) {
			return true
		}
	}
	return false
}

// containsKey matches a select boxes flag key against the rendered item
// values, which are the keys the flags map is built from.
func (r Reconciler) containsKey(items []any, key string) bool {
	for _, item := range items {
		if fmt.Sprint(r.accessor.ItemValue(item)) == key {
			return true
		}
		if selected, ok := r.accessor.SelectValue(item); ok && fmt.Sprint(selected) == key {
			return true
		}
	}
	return false
}

func containsEqual(values []any, value any) bool {
	for _, candidate := range values {
		if Equal(candidate, value) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether value counts as unset: nil, the empty string,
// false, numeric zero, and empty lists or maps.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	case json.Number:
		f, err := typed.Float64()
		return err == nil && f == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	default:
		return !accessor.Truthy(value)
	}
}

var equalOptions = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmpopts.EquateNaNs(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// Equal compares two decoded values structurally. Numbers compare by value
// regardless of their Go type, so int 5 equals float64 5.
func Equal(a, b any) bool {
	return cmp.Equal(normalize(a), normalize(b), equalOptions...)
}

func normalize(value any) any {
	switch typed := value.(type) {
	case nil, string, bool, float64:
		return typed
	case json.Number:
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case []any:
		out := make([]any, len(typed))
		for i, element := range typed {
			out[i] = normalize(element)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, element := range typed {
			out[key] = normalize(element)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32:
		return rv.Float()
	}
	return value
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
