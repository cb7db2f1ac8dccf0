package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHooksNotifyFanOut(t *testing.T) {
	first := &CaptureHook{}
	second := &CaptureHook{}
	hooks := Hooks{first, nil, second}

	err := hooks.Notify(context.Background(), Event{
		Name:     "  " + Loaded + " ",
		FieldKey: " city ",
		Metadata: map[string]any{"source": "url"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, hook := range []*CaptureHook{first, second} {
		got := hook.Events()
		if len(got) != 1 {
			t.Fatalf("expected one event, got %d", len(got))
		}
		if got[0].Name != Loaded || got[0].FieldKey != "city" {
			t.Fatalf("expected normalized event, got %+v", got[0])
		}
		if got[0].ID == "" {
			t.Fatalf("expected generated id")
		}
		if got[0].OccurredAt.IsZero() {
			t.Fatalf("expected timestamp")
		}
	}
	if first.Events()[0].ID != second.Events()[0].ID {
		t.Fatalf("expected hooks to share the normalized event")
	}
}

func TestHooksNotifyDropsIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	if err := hooks.Notify(context.Background(), Event{Name: Loaded}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := hooks.Notify(context.Background(), Event{FieldKey: "city"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(capture.Events()); n != 0 {
		t.Fatalf("expected incomplete events to be dropped, got %d", n)
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	ok := &CaptureHook{}
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { return errA }),
		ok,
		&CaptureHook{Err: errB},
	}

	err := hooks.Notify(context.Background(), Event{Name: Ready, FieldKey: "city"})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if ok.Count(Ready) != 1 {
		t.Fatalf("expected healthy hook to still receive the event")
	}
}

func TestNormalizeEventKeepsExplicitValues(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	meta := map[string]any{"k": "v"}
	event := NormalizeEvent(Event{ID: "evt-1", Name: Ready, FieldKey: "city", OccurredAt: at, Metadata: meta})

	if event.ID != "evt-1" || !event.OccurredAt.Equal(at) {
		t.Fatalf("expected explicit values to survive, got %+v", event)
	}
	meta["k"] = "changed"
	if event.Metadata["k"] != "v" {
		t.Fatalf("expected metadata to be cloned")
	}
}

func TestCaptureHookCountAndReset(t *testing.T) {
	capture := &CaptureHook{}
	ctx := context.Background()
	_ = capture.Notify(ctx, Event{Name: Loaded, FieldKey: "a"})
	_ = capture.Notify(ctx, Event{Name: Loaded, FieldKey: "a"})
	_ = capture.Notify(ctx, Event{Name: Ready, FieldKey: "a"})

	if capture.Count(Loaded) != 2 || capture.Count(Ready) != 1 {
		t.Fatalf("unexpected counts %d/%d", capture.Count(Loaded), capture.Count(Ready))
	}
	capture.Reset()
	if len(capture.Events()) != 0 {
		t.Fatalf("expected reset to drop events")
	}
}

func TestHookFuncNil(t *testing.T) {
	var fn HookFunc
	if err := fn.Notify(context.Background(), Event{}); err != nil {
		t.Fatalf("expected nil hook func to be a no-op, got %v", err)
	}
	if (Hooks{}).Enabled() {
		t.Fatalf("expected empty hooks to be disabled")
	}
	if !(Hooks{LogHook(nil)}).Enabled() {
		t.Fatalf("expected hooks to be enabled")
	}
}
