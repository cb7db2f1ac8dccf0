package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-choices/components/optionsapi"
)

const fieldsDoc = `
components:
  - key: color
    type: radio
    label: Color
    dataSrc: values
    data:
      values:
        - {label: Red, value: r}
        - {label: Green, value: g}
  - key: sizes
    type: selectboxes
    dataSrc: values
    data:
      values:
        - {label: Small, value: s}
        - {label: Large, value: l}
`

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{}
	err := a.command("test", &out, io.Discard).Run(context.Background(), append([]string{"choices"}, args...))
	return out.String(), err
}

func TestLoadCommand(t *testing.T) {
	path := writeDoc(t, "fields.yaml", fieldsDoc)

	out, err := run(t, "load", "--config", path, "--field", "color", "--set", "color=\"g\"")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var views []fieldView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(views) != 1 || views[0].Key != "color" || views[0].Value != "g" {
		t.Fatalf("unexpected views %+v", views)
	}
	want := []optionView{
		{Value: "r", Label: "Red", Text: "Red"},
		{Value: "g", Label: "Green", Text: "Green"},
	}
	if diff := cmp.Diff(want, views[0].Options); diff != "" {
		t.Fatalf("unexpected options (-want +got):\n%s", diff)
	}
}

func TestLoadCommand_YAMLAndUnknownField(t *testing.T) {
	path := writeDoc(t, "fields.yaml", fieldsDoc)

	out, err := run(t, "load", "--config", path, "-o", "yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(out, "key: sizes") || !strings.Contains(out, "text: Large") {
		t.Fatalf("unexpected yaml output:\n%s", out)
	}

	if _, err := run(t, "load", "--config", path, "--field", "missing"); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

const pagedDoc = `
components:
  - key: letter
    type: radio
    dataSrc: json
    limit: 2
    data:
      json: '[{"value":"a","label":"A"},{"value":"b","label":"B"},{"value":"c","label":"C"},{"value":"d","label":"D"},{"value":"e","label":"E"}]'
`

func TestLoadCommand_AllPages(t *testing.T) {
	path := writeDoc(t, "paged.yaml", pagedDoc)

	tests := []struct {
		name        string
		args        []string
		wantOptions int
		wantMore    bool
	}{
		{name: "first page only", args: nil, wantOptions: 2, wantMore: true},
		{name: "every page", args: []string{"--all"}, wantOptions: 5, wantMore: false},
		{name: "capped", args: []string{"--all", "--max", "3"}, wantOptions: 4, wantMore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"load", "--config", path, "--field", "letter"}, tt.args...)
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			var views []fieldView
			if err := json.Unmarshal([]byte(out), &views); err != nil {
				t.Fatalf("decode output: %v\n%s", err, out)
			}
			if len(views) != 1 {
				t.Fatalf("expected one field, got %d", len(views))
			}
			if got := len(views[0].Options); got != tt.wantOptions {
				t.Fatalf("expected %d options, got %d", tt.wantOptions, got)
			}
			if views[0].Page.HasMore != tt.wantMore {
				t.Fatalf("expected hasMore=%v, got %v", tt.wantMore, views[0].Page.HasMore)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	good := writeDoc(t, "good.yaml", fieldsDoc)
	bad := writeDoc(t, "bad.yaml", "components:\n  - key: x\n    dataSrc: nope\n")

	out, err := run(t, "validate", good)
	if err != nil || !strings.Contains(out, "2 fields ok") {
		t.Fatalf("expected valid document, got %v:\n%s", err, out)
	}
	out, err = run(t, "validate", good, bad)
	if err == nil || !strings.Contains(out, bad+":") {
		t.Fatalf("expected invalid document report, got %v:\n%s", err, out)
	}
}

func TestPromptField(t *testing.T) {
	a := &app{}
	form, err := a.buildForm(writeDoc(t, "fields.yaml", fieldsDoc), nil)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	defer form.Close()
	if err := form.LoadAll(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	answers := map[string]any{"Color": 1, "sizes": []int{0, 1}}
	ask := func(p survey.Prompt, response any, _ ...survey.AskOpt) error {
		switch prompt := p.(type) {
		case *survey.Select:
			*(response.(*int)) = answers[prompt.Message].(int)
		case *survey.MultiSelect:
			*(response.(*[]int)) = answers[prompt.Message].([]int)
		}
		return nil
	}
	for _, f := range form.Fields() {
		if err := promptField(f, ask); err != nil {
			t.Fatalf("prompt %s: %v", f.Key(), err)
		}
	}

	want := map[string]any{
		"color": "g",
		"sizes": map[string]bool{"s": true, "l": true},
	}
	if diff := cmp.Diff(want, form.Record().Data()); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestParseAssignments(t *testing.T) {
	data, err := parseAssignments([]string{"n=5", "name=Austin", "tags=[\"a\"]"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]any{"n": float64(5), "name": "Austin", "tags": []any{"a"}}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
	if _, err := parseAssignments([]string{"novalue"}); err == nil {
		t.Fatalf("expected invalid assignment error")
	}
}

func TestNewRouter(t *testing.T) {
	a := &app{}
	records := writeDoc(t, "cities.txt", "tor|Toronto\naus|Austin\n")
	loaded, err := readRecords(records)
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	router, pattern, err := newRouter(a.log(), optionsapi.WithRecords(loaded))
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + pattern + "?q=to")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var payload struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0]["value"] != "tor" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	health, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	_ = health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("expected healthy server, got %d", health.StatusCode)
	}
}

func TestLoggerConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := loggerConfig{level: "debug", format: "json"}
	logger, err := cfg.Configure(&buf, "s3cr3t")
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	logger.Info("request", "Authorization", "Bearer s3cr3t", "url", "https://x?token=s3cr3t")
	if strings.Contains(buf.String(), "s3cr3t") {
		t.Fatalf("expected secret to be redacted: %s", buf.String())
	}

	if _, err := (&loggerConfig{level: "loud"}).Configure(io.Discard); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if _, err := (&loggerConfig{level: "info", format: "xml"}).Configure(io.Discard); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeDoc(t, "test.env", "CHOICES_TEST_VALUE=from-file\n")
	t.Setenv("CHOICES_TEST_VALUE", "")
	os.Unsetenv("CHOICES_TEST_VALUE")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := os.Getenv("CHOICES_TEST_VALUE"); got != "from-file" {
		t.Fatalf("expected value from env file, got %q", got)
	}
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for a missing explicit env file")
	}
}
