package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-choices/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetRadio       = string(model.WidgetRadio)
	WidgetSelectBoxes = string(model.WidgetSelectBoxes)
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(cfg model.FieldConfig) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for field configurations based on the explicit
// widget setting or registered matchers. Higher priority wins; ties fall back
// to registration order. An empty registry never resolves a widget.
type Registry struct {
	mu       sync.RWMutex
	rules    []rule
	defaults map[string]model.FieldConfig
}

// NewRegistry constructs a registry with the radio and select boxes widgets
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence. Callers should avoid duplicate names; the
// latest registration wins during resolution.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// SetDefaults records the settings applied to fields of the named widget
// that leave them unset.
func (r *Registry) SetDefaults(name string, defaults model.FieldConfig) {
	if r == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.defaults == nil {
		r.defaults = make(map[string]model.FieldConfig)
	}
	r.defaults[trimmed] = defaults
}

// Defaults returns the default settings of the named widget.
func (r *Registry) Defaults(name string) (model.FieldConfig, bool) {
	if r == nil {
		return model.FieldConfig{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.defaults[strings.TrimSpace(name)]
	return cfg, ok
}

// Resolve returns the widget name for a field. An explicit widget setting is
// honoured before matcher evaluation.
func (r *Registry) Resolve(cfg model.FieldConfig) (string, bool) {
	if explicit := strings.TrimSpace(string(cfg.Widget)); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(cfg) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate resolves the widget of every configuration and fills the settings
// the widget defaults provide. The input slice is not modified.
func (r *Registry) Decorate(configs []model.FieldConfig) []model.FieldConfig {
	if len(configs) == 0 {
		return configs
	}
	decorated := make([]model.FieldConfig, len(configs))
	for idx, cfg := range configs {
		decorated[idx] = r.decorate(cfg)
	}
	return decorated
}

func (r *Registry) decorate(cfg model.FieldConfig) model.FieldConfig {
	name, ok := r.Resolve(cfg)
	if !ok || name == "" {
		return cfg
	}
	cfg.Widget = model.Widget(name)

	defaults, ok := r.Defaults(name)
	if !ok {
		return cfg
	}
	if cfg.Source == "" {
		cfg.Source = defaults.Source
	}
	if cfg.Template == "" {
		cfg.Template = defaults.Template
	}
	if cfg.FilterMode == "" {
		cfg.FilterMode = defaults.FilterMode
	}
	if cfg.Limit == 0 {
		cfg.Limit = defaults.Limit
	}
	return cfg
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSelectBoxes, 90, func(cfg model.FieldConfig) bool {
		return cfg.Multiple
	})
	r.Register(WidgetRadio, 10, func(model.FieldConfig) bool {
		return true
	})

	r.SetDefaults(WidgetRadio, model.FieldConfig{Source: model.SourceStatic})
	r.SetDefaults(WidgetSelectBoxes, model.FieldConfig{Source: model.SourceStatic})
}
