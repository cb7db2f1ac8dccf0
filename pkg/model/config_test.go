package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize_AppliesDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   FieldConfig
		want FieldConfig
	}{
		{
			name: "embedded limit",
			in:   FieldConfig{Key: " color ", Source: "Embedded"},
			want: FieldConfig{Key: "color", Source: SourceEmbedded, Widget: WidgetRadio, Limit: DefaultEmbeddedLimit},
		},
		{
			name: "remote limit and mode",
			in:   FieldConfig{Key: "owner", Source: SourceRemote, Remote: RemoteSource{URL: " /users "}},
			want: FieldConfig{
				Key:    "owner",
				Source: SourceRemote,
				Widget: WidgetRadio,
				Limit:  DefaultRemoteLimit,
				Remote: RemoteSource{URL: "/users", Mode: RemoteModeURL},
			},
		},
		{
			name: "transform engine",
			in:   FieldConfig{Key: "tags", Source: SourceTransform, Widget: "SelectBoxes", Transform: TransformSource{Expression: "[1]"}},
			want: FieldConfig{
				Key:       "tags",
				Source:    SourceTransform,
				Widget:    WidgetSelectBoxes,
				Transform: TransformSource{Expression: "[1]", Engine: DefaultTransformEngine},
			},
		},
		{
			name: "explicit limit kept",
			in:   FieldConfig{Key: "k", Source: SourceEmbedded, Limit: 5},
			want: FieldConfig{Key: "k", Source: SourceEmbedded, Widget: WidgetRadio, Limit: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_ClonesCollections(t *testing.T) {
	values := []any{map[string]any{"value": "a", "label": "A"}}
	headers := map[string]string{"X-Tenant": "one"}
	cfg := FieldConfig{
		Key:    "k",
		Source: SourceStatic,
		Static: StaticSource{Values: values},
		Remote: RemoteSource{Headers: headers},
	}.Normalize()

	values[0].(map[string]any)["value"] = "mutated"
	headers["X-Tenant"] = "two"

	if got := cfg.Static.Values[0].(map[string]any)["value"]; got != "a" {
		t.Fatalf("expected cloned static values, got %v", got)
	}
	if got := cfg.Remote.Headers["X-Tenant"]; got != "one" {
		t.Fatalf("expected cloned headers, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     FieldConfig
		wantErr bool
	}{
		{name: "static ok", cfg: FieldConfig{Key: "k", Source: SourceStatic}},
		{name: "missing key", cfg: FieldConfig{Source: SourceStatic}, wantErr: true},
		{name: "unknown source", cfg: FieldConfig{Key: "k", Source: "ftp"}, wantErr: true},
		{name: "transform without expression", cfg: FieldConfig{Key: "k", Source: SourceTransform}, wantErr: true},
		{name: "remote without url", cfg: FieldConfig{Key: "k", Source: SourceRemote}, wantErr: true},
		{name: "resource without id", cfg: FieldConfig{Key: "k", Source: SourceRemote, Remote: RemoteSource{Mode: RemoteModeResource}}, wantErr: true},
		{name: "resource ok", cfg: FieldConfig{Key: "k", Source: SourceRemote, Remote: RemoteSource{Mode: RemoteModeResource, Resource: "abc"}}},
		{name: "bad filter mode", cfg: FieldConfig{Key: "k", Source: SourceEmbedded, FilterMode: "fuzzy"}, wantErr: true},
		{name: "self refresh", cfg: FieldConfig{Key: "k", Source: SourceStatic, RefreshOn: "k"}, wantErr: true},
		{name: "negative limit", cfg: FieldConfig{Key: "k", Source: SourceEmbedded, Limit: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSourceKind_Paginated(t *testing.T) {
	for kind, want := range map[SourceKind]bool{
		SourceStatic:    false,
		SourceEmbedded:  true,
		SourceTransform: false,
		SourceRemote:    true,
	} {
		if got := kind.Paginated(); got != want {
			t.Fatalf("%s: expected %v, got %v", kind, want, got)
		}
	}
}

func TestEmptyValue(t *testing.T) {
	if got := (FieldConfig{}).EmptyValue(); got != "" {
		t.Fatalf("expected empty string, got %#v", got)
	}
	got := (FieldConfig{Multiple: true}).EmptyValue()
	if diff := cmp.Diff([]any{}, got); diff != "" {
		t.Fatalf("unexpected multiple empty value (-want +got):\n%s", diff)
	}
}
