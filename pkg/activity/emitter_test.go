package activity

import (
	"context"
	"testing"
)

func TestEmitterAppliesDefaults(t *testing.T) {
	hook := &CaptureHook{}
	emitter := NewEmitter(Hooks{hook}, Config{
		Enabled:  true,
		ActorID:  "system",
		TenantID: "tenant-1",
	})

	if !emitter.Enabled() {
		t.Fatal("expected emitter to be enabled")
	}

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbBound,
		ObjectType: "binding",
		ObjectID:   "b1",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hook.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(hook.Events))
	}
	evt := hook.Events[0]
	if evt.Channel != "bindings" {
		t.Fatalf("expected the default channel, got %q", evt.Channel)
	}
	if evt.ActorID != "system" || evt.TenantID != "tenant-1" {
		t.Fatalf("expected configured principals, got %+v", evt)
	}
}

func TestEmitterDoesNotOverrideEventFields(t *testing.T) {
	hook := &CaptureHook{}
	emitter := NewEmitter(Hooks{hook}, Config{
		Enabled: true,
		Channel: "custom",
		ActorID: "system",
	})

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbFlushed,
		ObjectType: "binding",
		ObjectID:   "b1",
		Channel:    "explicit",
		ActorID:    "caller",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	evt := hook.Events[0]
	if evt.Channel != "explicit" || evt.ActorID != "caller" {
		t.Fatalf("expected the event's own fields to win, got %+v", evt)
	}
}

func TestEmitterDisabled(t *testing.T) {
	hook := &CaptureHook{}

	disabled := NewEmitter(Hooks{hook}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatal("expected disabled emitter")
	}
	if err := disabled.Emit(context.Background(), Event{Verb: VerbBound, ObjectType: "binding", ObjectID: "b1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hook.Events) != 0 {
		t.Fatal("expected no events while disabled")
	}

	hookless := NewEmitter(nil, Config{Enabled: true})
	if hookless.Enabled() {
		t.Fatal("expected emitter without hooks to stay disabled")
	}
}
