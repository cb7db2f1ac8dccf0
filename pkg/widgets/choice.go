package widgets

import (
	"fmt"

	"github.com/goliatone/go-choices/pkg/field"
)

// Choice is one selectable option as a widget presents it.
type Choice struct {
	Key     string
	Value   any
	Label   string
	Checked bool
}

// choices projects the field's current items. checked reports whether the
// choice with the given key and value is selected.
func choices(f *field.Field, checked func(key string, value any) bool) []Choice {
	items := f.Items()
	out := make([]Choice, 0, len(items))
	for _, item := range items {
		value, ok := f.SelectValue(item)
		if !ok {
			value = f.ItemValue(item)
		}
		key := fmt.Sprint(f.ItemValue(item))
		out = append(out, Choice{
			Key:     key,
			Value:   value,
			Label:   f.DisplayText(item),
			Checked: checked(key, value),
		})
	}
	return out
}
