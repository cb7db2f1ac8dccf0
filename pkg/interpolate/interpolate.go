// Package interpolate renders the small templates found in field settings:
// display templates for option items, remote URLs and filter fragments. It
// wraps pongo2, whose `{{ path.to.value }}` syntax matches the settings
// format, and strips markup from rendered display text.
package interpolate

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultTemplate renders an option's label when a field declares no
// template of its own.
const DefaultTemplate = "<span>{{ item.label }}</span>"

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy
)

// Renderer compiles and caches templates. It is safe for concurrent use.
type Renderer struct {
	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

// New constructs an empty Renderer.
func New() *Renderer {
	return &Renderer{templates: make(map[string]*pongo2.Template)}
}

var defaultRenderer = New()

// Default returns the process-wide renderer shared by loaders that were not
// given one explicitly.
func Default() *Renderer {
	return defaultRenderer
}

// Render executes tpl against vars. Output is not HTML-escaped. Strings that
// carry no template markup are returned unchanged.
func (r *Renderer) Render(tpl string, vars map[string]any) (string, error) {
	if r == nil {
		return "", errors.New("interpolate: renderer is nil")
	}
	if !IsTemplate(tpl) {
		return tpl, nil
	}
	compiled, err := r.compile(tpl)
	if err != nil {
		return "", err
	}
	ctx := make(pongo2.Context, len(vars))
	for key, value := range vars {
		ctx[key] = value
	}
	out, err := compiled.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("interpolate: execute template: %w", err)
	}
	return out, nil
}

// DisplayText renders the visible text of an option item: tpl (or
// DefaultTemplate) is executed with the item bound to `item`, then every tag is
// removed and entities are decoded.
func (r *Renderer) DisplayText(tpl string, item any) (string, error) {
	if strings.TrimSpace(tpl) == "" {
		tpl = DefaultTemplate
	}
	rendered, err := r.Render(tpl, map[string]any{"item": item})
	if err != nil {
		return "", err
	}
	return StripTags(rendered), nil
}

func (r *Renderer) compile(tpl string) (*pongo2.Template, error) {
	r.mu.RLock()
	if compiled, ok := r.templates[tpl]; ok {
		r.mu.RUnlock()
		return compiled, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if compiled, ok := r.templates[tpl]; ok {
		return compiled, nil
	}
	compiled, err := pongo2.FromString("{% autoescape off %}" + tpl + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("interpolate: parse template %q: %w", tpl, err)
	}
	r.templates[tpl] = compiled
	return compiled, nil
}

// IsTemplate reports whether s contains pongo2 markup.
func IsTemplate(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

// StripTags removes every HTML element from s and decodes entities, leaving
// the text a user would see.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	cleaned := stripSanitizer().Sanitize(s)
	return html.UnescapeString(cleaned)
}

func stripSanitizer() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}
