package optionsapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type handlerResponse struct {
	Data []map[string]any `json:"data"`
}

func cities() []map[string]any {
	return []map[string]any{
		{"value": "tor", "label": "Toronto", "country": "ca", "meta": map[string]any{"population": 2.7}},
		{"value": "mtl", "label": "Montreal", "country": "ca", "meta": map[string]any{"population": 1.7}},
		{"value": "aus", "label": "Austin", "country": "us", "meta": map[string]any{"population": 0.9}},
		{"value": "bos", "label": "Boston", "country": "us", "meta": map[string]any{"population": 0.6}},
	}
}

func serve(t *testing.T, h http.Handler, target string) handlerResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := strings.TrimSpace(res.Header.Get("Content-Type")); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	var payload handlerResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func labels(records []map[string]any) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record["label"].(string))
	}
	return out
}

func TestNewHandler_EmptyQueryReturnsAllRecords(t *testing.T) {
	h := NewHandler(WithRecords(cities()))

	payload := serve(t, h, "/api/options")
	if diff := cmp.Diff([]string{"Toronto", "Montreal", "Austin", "Boston"}, labels(payload.Data)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestNewHandler_EmptySearchNoneReturnsEmptyDataArray(t *testing.T) {
	h := NewHandler(WithRecords(cities()), WithEmptySearchMode(EmptySearchNone))

	payload := serve(t, h, "/api/options")
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestNewHandler_LimitAndSkip(t *testing.T) {
	h := NewHandler(WithRecords(cities()), WithMaxLimit(3))

	payload := serve(t, h, "/api/options?limit=10&skip=1")
	if diff := cmp.Diff([]string{"Montreal", "Austin", "Boston"}, labels(payload.Data)); diff != "" {
		t.Fatalf("unexpected page (-want +got):\n%s", diff)
	}

	payload = serve(t, h, "/api/options?limit=2&skip=3")
	if diff := cmp.Diff([]string{"Boston"}, labels(payload.Data)); diff != "" {
		t.Fatalf("unexpected last page (-want +got):\n%s", diff)
	}

	payload = serve(t, h, "/api/options?skip=9")
	if len(payload.Data) != 0 {
		t.Fatalf("expected empty page past the end, got %#v", payload.Data)
	}
}

func TestNewHandler_SearchFiltersAndProjection(t *testing.T) {
	h := NewHandler(WithRecords(cities()))

	payload := serve(t, h, "/api/options?q=TO&select=value,meta.population")
	want := []map[string]any{
		{"value": "tor", "meta": map[string]any{"population": 2.7}},
		{"value": "bos", "meta": map[string]any{"population": 0.6}},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("unexpected search result (-want +got):\n%s", diff)
	}

	payload = serve(t, h, "/api/options?country=us")
	if diff := cmp.Diff([]string{"Austin", "Boston"}, labels(payload.Data)); diff != "" {
		t.Fatalf("unexpected filtered result (-want +got):\n%s", diff)
	}
}

func TestNewHandler_CustomSearchParamAndFields(t *testing.T) {
	h := NewHandler(
		WithRecords(cities()),
		WithSearchParam("search"),
		WithSearchFields("value"),
	)

	payload := serve(t, h, "/api/options?search=mt")
	if diff := cmp.Diff([]string{"Montreal"}, labels(payload.Data)); diff != "" {
		t.Fatalf("unexpected payload (-want +got):\n%s", diff)
	}
}

func TestNewHandler_GuardRejects(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "denial status", err: Denial{Status: http.StatusUnauthorized}, want: http.StatusUnauthorized},
		{name: "wrapped denial", err: fmt.Errorf("token expired: %w", Denial{Status: http.StatusUnauthorized}), want: http.StatusUnauthorized},
		{name: "denial without status", err: Denial{Reason: errors.New("no tenant")}, want: http.StatusForbidden},
		{name: "denial with success status", err: Denial{Status: http.StatusOK}, want: http.StatusForbidden},
		{name: "plain error", err: errors.New("nope"), want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(
				WithRecords(cities()),
				WithGuard(func(r *http.Request) error { return tt.err }),
			)

			req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestDenial_Error(t *testing.T) {
	reason := errors.New("no tenant")
	denial := Denial{Status: http.StatusUnauthorized, Reason: reason}
	if !errors.Is(denial, reason) {
		t.Fatalf("expected the reason to be reachable")
	}
	if got := denial.Error(); got != "optionsapi: denied: no tenant" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := (Denial{}).Error(); got != "optionsapi: forbidden" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestNewHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(WithRecords(cities()))

	req := httptest.NewRequest(http.MethodPost, "/api/options", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}
}

func TestNewHandler_NegativeLimitReturnsEmptyDataArray(t *testing.T) {
	h := NewHandler(WithRecords(cities()))

	payload := serve(t, h, "/api/options?limit=-1")
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}
