package activity

import (
	"strings"
	"time"
)

// Binding lifecycle verbs emitted by the engine.
const (
	VerbBound       = "binding.bound"
	VerbFlushed     = "binding.flushed"
	VerbDeactivated = "binding.deactivated"
)

// BindingEventInput describes the common fields for binding lifecycle events.
type BindingEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	Path       string
	Value      any
	Present    bool
	OccurredAt time.Time
}

// BuildBoundEvent constructs a normalized activity event for binding activation.
func BuildBoundEvent(input BindingEventInput) Event {
	return buildBindingEvent(VerbBound, input)
}

// BuildFlushedEvent constructs a normalized activity event for a binding flush.
func BuildFlushedEvent(input BindingEventInput) Event {
	return buildBindingEvent(VerbFlushed, input)
}

// BuildDeactivatedEvent constructs a normalized activity event for binding deactivation.
func BuildDeactivatedEvent(input BindingEventInput) Event {
	return buildBindingEvent(VerbDeactivated, input)
}

func buildBindingEvent(verb string, input BindingEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if verb == VerbFlushed {
		metadata = ensureMetadata(metadata)
		metadata["present"] = input.Present
		if input.Value != nil {
			metadata["value"] = input.Value
		}
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Path)
	}
	if objectID == "" {
		objectID = "binding"
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: "binding",
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Path:       strings.TrimSpace(input.Path),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
