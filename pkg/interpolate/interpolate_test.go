package interpolate

import (
	"testing"
)

func TestRender(t *testing.T) {
	r := New()
	vars := map[string]any{
		"data":       map[string]any{"country": "fr", "tags": []any{"a", "b"}},
		"formioBase": "https://api.example.com",
	}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{name: "plain", tpl: "/states?limit=10", want: "/states?limit=10"},
		{name: "nested value", tpl: "/states?country={{ data.country }}", want: "/states?country=fr"},
		{name: "base url", tpl: "{{ formioBase }}/project", want: "https://api.example.com/project"},
		{name: "missing value renders empty", tpl: "{{ data.missing }}", want: ""},
		{name: "no escaping", tpl: "{{ formioBase }}?a=1&b=2", want: "https://api.example.com?a=1&b=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.tpl, vars)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRender_CachesTemplates(t *testing.T) {
	r := New()
	for i := 0; i < 3; i++ {
		if _, err := r.Render("{{ item }}", map[string]any{"item": i}); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	if len(r.templates) != 1 {
		t.Fatalf("expected one cached template, got %d", len(r.templates))
	}
}

func TestRender_InvalidTemplate(t *testing.T) {
	if _, err := New().Render("{{ item.", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDisplayText(t *testing.T) {
	r := New()

	got, err := r.DisplayText("", map[string]any{"label": "<b>Two</b> &amp; more"})
	if err != nil {
		t.Fatalf("display text: %v", err)
	}
	if got != "Two & more" {
		t.Fatalf("expected stripped label, got %q", got)
	}

	got, err = r.DisplayText("<em>{{ item.l }}</em> ({{ item.code }})", map[string]any{"l": "Three", "code": "T"})
	if err != nil {
		t.Fatalf("display text: %v", err)
	}
	if got != "Three (T)" {
		t.Fatalf("expected custom template text, got %q", got)
	}
}

func TestStripTags(t *testing.T) {
	for in, want := range map[string]string{
		"plain":                      "plain",
		"<span>One</span>":           "One",
		"<a href=\"#\">x</a> &lt; y": "x < y",
	} {
		if got := StripTags(in); got != want {
			t.Fatalf("strip %q: expected %q, got %q", in, want, got)
		}
	}
}
