package bind

import (
	"github.com/goliatone/go-bindings/pkg/activity"
	"github.com/google/uuid"
)

// Update carries a binding's freshly resolved terminal value to its target.
// Present is false when the chain broke somewhere along the path; delivering
// the absent value is how "the object went away" reaches downstream code.
type Update struct {
	Path    string
	Value   any
	Present bool
}

// Target receives coalesced updates at the end of a turn.
type Target func(Update)

// BindOption configures a single binding.
type BindOption func(*bindConfig)

type bindConfig struct {
	root      any
	transform string
	metadata  map[string]any
}

func applyBindOptions(opts []BindOption) bindConfig {
	cfg := bindConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRoot resolves the binding's path against an explicit local root instead
// of the registry. The registry still serves as fallback when the root lacks
// the first segment.
func WithRoot(root any) BindOption {
	return func(cfg *bindConfig) {
		cfg.root = root
	}
}

// WithTransform applies an expression to the resolved terminal value before
// each delivery, compiled with the engine's evaluator. The expression sees
// value, path, and present.
func WithTransform(expr string) BindOption {
	return func(cfg *bindConfig) {
		cfg.transform = expr
	}
}

// WithMetadata attaches arbitrary metadata to the binding, surfaced on
// activity events and transform contexts.
func WithMetadata(metadata map[string]any) BindOption {
	return func(cfg *bindConfig) {
		if len(metadata) == 0 {
			return
		}
		md := make(map[string]any, len(metadata))
		for key, value := range metadata {
			md[key] = value
		}
		cfg.metadata = md
	}
}

type bindingState int

const (
	stateInactive bindingState = iota
	stateActive
	stateDirty
)

// pathListener records one observer registration held by a binding. index is
// the segment the registration reports on; its owner is the resolved value
// of the path's proper prefix before that segment.
type pathListener struct {
	owner Observable
	token Token
	index int
}

// Binding keeps a target in sync with a path's terminal value. At any
// instant its listener set covers exactly the non-nil intermediate objects
// reachable by resolving the path's proper prefixes against the current
// root; mutations re-wire only the suffix from the changed segment onward.
type Binding struct {
	id       string
	engine   *Engine
	path     Path
	root     any
	target   Target
	metadata map[string]any

	transform       CompiledRule
	transformEngine string

	state     bindingState
	listeners []pathListener
	value     any
	present   bool
	reason    Reason
	segment   string
}

func newBinding(e *Engine, path Path, cfg bindConfig, target Target) *Binding {
	return &Binding{
		id:       uuid.NewString(),
		engine:   e,
		path:     path,
		root:     cfg.root,
		target:   target,
		metadata: cfg.metadata,
	}
}

// ID returns the binding's unique identifier.
func (b *Binding) ID() string { return b.id }

// Path returns the binding's dotted path.
func (b *Binding) Path() string { return b.path.String() }

// Active reports whether the binding still holds listener registrations.
func (b *Binding) Active() bool { return b.state != stateInactive }

// Dirty reports whether the binding awaits a flush.
func (b *Binding) Dirty() bool { return b.state == stateDirty }

// Value returns the currently resolved terminal value and whether it is
// present.
func (b *Binding) Value() (any, bool) { return b.value, b.present }

// Reason returns why the last resolution stopped short, ReasonNone when it
// did not.
func (b *Binding) Reason() Reason { return b.reason }

func (b *Binding) failedSegment() string { return b.segment }

// activate resolves the full path once and registers a listener on every
// traversable intermediate object.
func (b *Binding) activate() {
	b.state = stateActive
	segments := b.path.segments
	if len(segments) == 0 {
		b.value = b.root
		b.present = true
		return
	}
	start, next, short := resolveFirst(segments[0], b.root, b.engine.registry, nil)
	if short != nil {
		b.setAbsent(short.Reason, short.Segment)
		return
	}
	// next is 0 when walking from the local root itself, 1 when the registry
	// supplied the first segment's value (the registry is not observable).
	b.rewire(next, start)
}

// segmentChanged handles a raw notification that the value of segment index
// changed identity: listeners past it are stale, the suffix re-resolves from
// the new value, and the binding is queued for the next flush.
func (b *Binding) segmentChanged(index int, value any) {
	if b.state == stateInactive {
		return
	}
	b.rewire(index+1, value)
	b.markDirty()
}

// rewire drops listeners for segments at index from onward, then re-walks
// the path suffix with owner as the entity supplying segment from,
// re-registering listeners and recomputing the terminal value. Listeners on
// the unaffected prefix are left untouched.
func (b *Binding) rewire(from int, owner any) {
	b.dropListenersFrom(from)
	segments := b.path.segments
	current := owner
	for i := from; i < len(segments); i++ {
		segment := segments[i]
		if current == nil {
			b.setAbsent(ReasonBrokenChain, segment)
			return
		}
		acc, ok := current.(Accessor)
		if !ok {
			b.setAbsent(ReasonNotTraversable, segment)
			return
		}
		b.listen(i, current)
		value, err := acc.Get(segment)
		if err != nil {
			b.setAbsent(ReasonBrokenChain, segment)
			return
		}
		current = value
	}
	b.value = current
	b.present = true
	b.reason = ReasonNone
	b.segment = ""
}

func (b *Binding) setAbsent(reason Reason, segment string) {
	b.value = nil
	b.present = false
	b.reason = reason
	b.segment = segment
}

// listen registers an observer for segment index on owner. Owners that are
// traversable but not observable contribute no notifications; stale owners
// are swallowed.
func (b *Binding) listen(index int, owner any) {
	obs, ok := owner.(Observable)
	if !ok {
		return
	}
	idx := index
	token, err := obs.AddObserver(b.path.segments[index], func(mut Mutation) {
		b.segmentChanged(idx, mut.Value)
	})
	if err != nil {
		return
	}
	b.listeners = append(b.listeners, pathListener{owner: obs, token: token, index: index})
}

// dropListenersFrom unregisters every listener for segment indexes >= from.
// Stale owners have already torn their observer lists down; removal errors
// are swallowed.
func (b *Binding) dropListenersFrom(from int) {
	if len(b.listeners) == 0 {
		return
	}
	kept := b.listeners[:0]
	for _, l := range b.listeners {
		if l.index < from {
			kept = append(kept, l)
			continue
		}
		_ = l.owner.RemoveObserver(l.token)
	}
	b.listeners = kept
}

// markDirty queues the binding for the next flush. Enqueuing an already
// dirty binding is a no-op.
func (b *Binding) markDirty() {
	if b.state != stateActive {
		return
	}
	b.state = stateDirty
	b.engine.enqueue(b)
}

// flush delivers the current terminal value to the target, applying the
// transform when configured. A failing transform is reported to the logger
// and the untransformed value delivered; no error aborts the flush of other
// pending bindings.
func (b *Binding) flush() error {
	b.state = stateActive
	update := Update{Path: b.path.String(), Value: b.value, Present: b.present}
	var err error
	if b.transform != nil {
		out, evalErr := b.transform.Evaluate(EvalContext{
			Value:    b.value,
			Path:     b.path.String(),
			Present:  b.present,
			Metadata: b.metadata,
		})
		if evalErr != nil {
			err = wrapEvaluationError(b.transformEngine, "", b.path.String(), evalErr)
		} else {
			update.Value = out
		}
	}
	b.target(update)
	return err
}

// Deactivate unregisters every listener and removes the binding from the
// pending-flush set. Safe to call at any point, including from within a
// flush callback; a deactivated binding accepts no further transitions.
func (b *Binding) Deactivate() {
	if b.state == stateInactive {
		return
	}
	b.dropListenersFrom(0)
	b.state = stateInactive
	b.engine.emit(activity.BuildDeactivatedEvent(b.engine.eventInput(b)))
}
