package optionsapi

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadLines_DedupesSortsAndIgnoresComments(t *testing.T) {
	input := strings.NewReader(`
# Comment
ny|New York
fr|France
ny|Duplicate

UTC
`)

	records, err := LoadLines(input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []map[string]any{
		{"value": "fr", "label": "France"},
		{"value": "ny", "label": "New York"},
		{"value": "UTC", "label": "UTC"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestLoadRecords(t *testing.T) {
	records, err := LoadRecords(strings.NewReader(`[{"value":1,"label":"One"},null,{"value":2}]`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 2 || records[1]["value"] != float64(2) {
		t.Fatalf("unexpected records: %#v", records)
	}

	if _, err := LoadRecords(strings.NewReader(`{"value":1}`)); err == nil {
		t.Fatalf("expected error for a non-array document")
	}
	if _, err := LoadRecords(nil); err == nil {
		t.Fatalf("expected error for a nil reader")
	}
}

func TestSearch_PrefixBeforeContains(t *testing.T) {
	records := []map[string]any{
		{"label": "x/a/b"},
		{"label": "a/b"},
		{"label": "c/d"},
		{"label": "A/B/c"},
	}
	opts := NewOptions()

	results := Search(records, Query{Text: "a/b", Limit: 10}, opts)
	if diff := cmp.Diff([]string{"a/b", "A/B/c", "x/a/b"}, labels(results)); diff != "" {
		t.Fatalf("unexpected ordering (-want +got):\n%s", diff)
	}
}

func TestSearch_DefaultLimitApplied(t *testing.T) {
	records := []map[string]any{{"label": "a"}, {"label": "b"}, {"label": "c"}, {"label": "d"}}
	opts := NewOptions(WithDefaultLimit(2), WithMaxLimit(3))

	if results := Search(records, Query{}, opts); len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %#v", len(results), results)
	}
}
