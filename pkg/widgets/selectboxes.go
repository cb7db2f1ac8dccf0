package widgets

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-choices/pkg/accessor"
	"github.com/goliatone/go-choices/pkg/dotpath"
	"github.com/goliatone/go-choices/pkg/field"
	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/source"
)

// SelectBoxes is a multiple choice widget whose value maps every option key
// to a checked flag.
type SelectBoxes struct {
	field *field.Field
}

// NewSelectBoxes wraps f.
func NewSelectBoxes(f *field.Field) *SelectBoxes {
	return &SelectBoxes{field: f}
}

// Field returns the underlying field.
func (s *SelectBoxes) Field() *field.Field { return s.field }

// Model returns one flag per option, taken from the stored value when it
// has one and false otherwise. Stored keys with no matching option are kept.
func (s *SelectBoxes) Model() map[string]bool {
	stored := Flags(s.field.Value())
	flags := make(map[string]bool, len(stored))
	for key, checked := range stored {
		flags[key] = checked
	}
	for _, item := range s.field.Items() {
		key := fmt.Sprint(s.field.ItemValue(item))
		if _, ok := flags[key]; !ok {
			flags[key] = false
		}
	}
	return flags
}

// Init stores the option model as the field value when none is stored yet.
func (s *SelectBoxes) Init() bool {
	if _, ok := s.field.Value().(map[string]any); ok {
		return false
	}
	if _, ok := s.field.Value().(map[string]bool); ok {
		return false
	}
	return s.field.SetValue(s.Model())
}

// Choices lists the options with their flags.
func (s *SelectBoxes) Choices() []Choice {
	flags := Flags(s.field.Value())
	return choices(s.field, func(key string, _ any) bool {
		return flags[key]
	})
}

// Toggle flips the flag of key and stores the result.
func (s *SelectBoxes) Toggle(key string) bool {
	flags := s.Model()
	flags[key] = !flags[key]
	return s.field.SetValue(flags)
}

// IsEmpty reports whether the stored value has no checked flag.
func (s *SelectBoxes) IsEmpty() bool {
	return IsEmptySelection(s.field.Value())
}

// TableView renders value the way a submission table shows it.
func (s *SelectBoxes) TableView(value any) string {
	return SelectBoxesTableView(s.field.Config(), value)
}

// IsEmptySelection reports whether value checks no option.
func IsEmptySelection(value any) bool {
	for _, checked := range Flags(value) {
		if checked {
			return false
		}
	}
	return true
}

// Flags reads a select boxes value. Values are truthy checked.
func Flags(value any) map[string]bool {
	out := map[string]bool{}
	switch typed := value.(type) {
	case map[string]bool:
		for key, checked := range typed {
			out[key] = checked
		}
	case map[string]any:
		for key, checked := range typed {
			out[key] = accessor.Truthy(checked)
		}
	}
	return out
}

// SelectBoxesTableView lists the labels of the checked options, joined with
// ", ". Static options resolve by their value and embedded options by the
// value property; other keys render as they are.
func SelectBoxesTableView(cfg model.FieldConfig, value any) string {
	var keys []string
	switch typed := value.(type) {
	case nil:
		return ""
	case map[string]bool, map[string]any:
		for key, checked := range Flags(typed) {
			if checked {
				keys = append(keys, key)
			}
		}
		slices.Sort(keys)
	case []any:
		for _, entry := range typed {
			keys = append(keys, fmt.Sprint(entry))
		}
	default:
		keys = []string{fmt.Sprint(typed)}
	}

	lookup := tableItems(cfg)
	labels := make([]string, 0, len(keys))
	for _, key := range keys {
		if label, ok := lookup[key]; ok {
			labels = append(labels, label)
			continue
		}
		labels = append(labels, key)
	}
	return strings.Join(labels, ", ")
}

func tableItems(cfg model.FieldConfig) map[string]string {
	out := map[string]string{}
	acc := accessor.New(cfg)
	switch cfg.Source {
	case model.SourceStatic, "":
		for _, item := range cfg.Static.Values {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out[fmt.Sprint(entry["value"])] = fmt.Sprint(entry["label"])
		}
	case model.SourceEmbedded:
		if cfg.ValueProperty == "" {
			return out
		}
		items, err := source.EmbeddedItems(cfg)
		if err != nil {
			return out
		}
		for _, item := range items {
			value, ok := dotpath.Get(item, cfg.ValueProperty)
			if !ok {
				continue
			}
			out[fmt.Sprint(value)] = fmt.Sprint(acc.ItemLabel(item))
		}
	}
	return out
}
