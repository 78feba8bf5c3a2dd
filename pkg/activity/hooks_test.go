package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " binding.flushed ",
		ActorID:    " actor ",
		UserID:     " user ",
		TenantID:   " tenant ",
		ObjectType: " binding ",
		ObjectID:   " 42 ",
		Channel:    " bindings ",
		Path:       " app.todos ",
		Metadata:   meta,
	}

	normalized := NormalizeEvent(evt)
	if normalized.Verb != "binding.flushed" || normalized.ObjectType != "binding" || normalized.ObjectID != "42" {
		t.Fatalf("expected trimmed identity fields, got %+v", normalized)
	}
	if normalized.ActorID != "actor" || normalized.UserID != "user" || normalized.TenantID != "tenant" {
		t.Fatalf("expected trimmed principal fields, got %+v", normalized)
	}
	if normalized.Channel != "bindings" || normalized.Path != "app.todos" {
		t.Fatalf("expected trimmed channel and path, got %+v", normalized)
	}
	if normalized.OccurredAt.IsZero() {
		t.Fatal("expected a defaulted timestamp")
	}

	meta["k"] = "mutated"
	if normalized.Metadata["k"] != "v" {
		t.Fatal("expected metadata to be cloned")
	}
}

func TestHooksNotifyFanOut(t *testing.T) {
	first := &CaptureHook{}
	second := &CaptureHook{}
	hooks := Hooks{first, nil, second}

	if !hooks.Enabled() {
		t.Fatal("expected hooks to be enabled")
	}

	evt := Event{Verb: VerbBound, ObjectType: "binding", ObjectID: "b1"}
	if err := hooks.Notify(context.Background(), evt); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(first.Events) != 1 || len(second.Events) != 1 {
		t.Fatalf("expected both hooks notified, got %d and %d", len(first.Events), len(second.Events))
	}
}

func TestHooksNotifySkipsIncompleteEvents(t *testing.T) {
	hook := &CaptureHook{}
	hooks := Hooks{hook}

	for _, evt := range []Event{
		{},
		{Verb: VerbBound},
		{Verb: VerbBound, ObjectType: "binding"},
	} {
		if err := hooks.Notify(context.Background(), evt); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if len(hook.Events) != 0 {
		t.Fatalf("expected incomplete events to be dropped, got %d", len(hook.Events))
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	failure := errors.New("sink down")
	failing := &CaptureHook{Err: failure}
	healthy := &CaptureHook{}
	hooks := Hooks{failing, healthy}

	err := hooks.Notify(context.Background(), Event{Verb: VerbBound, ObjectType: "binding", ObjectID: "b1"})
	if !errors.Is(err, failure) {
		t.Fatalf("expected the hook error to surface, got %v", err)
	}
	if len(healthy.Events) != 1 {
		t.Fatal("expected the healthy hook to still be notified")
	}
}

func TestHookFuncNilSafe(t *testing.T) {
	var fn HookFunc
	if err := fn.Notify(context.Background(), Event{}); err != nil {
		t.Fatalf("expected nil func to be a no-op, got %v", err)
	}

	called := false
	fn = func(context.Context, Event) error {
		called = true
		return nil
	}
	if err := fn.Notify(context.Background(), Event{}); err != nil || !called {
		t.Fatalf("expected dispatch, called=%v err=%v", called, err)
	}
}

func TestHooksNotifyPreservesTimestamp(t *testing.T) {
	hook := &CaptureHook{}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	err := Hooks{hook}.Notify(context.Background(), Event{
		Verb:       VerbFlushed,
		ObjectType: "binding",
		ObjectID:   "b1",
		OccurredAt: now,
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if hook.Events[0].OccurredAt != now {
		t.Fatalf("expected the supplied timestamp, got %v", hook.Events[0].OccurredAt)
	}
}
