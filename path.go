package bind

import (
	"fmt"
	"strings"
)

// Path is a dot-delimited property path. It is parsed once at construction
// and never re-parsed for the lifetime of a binding.
type Path struct {
	raw      string
	segments []string
}

// ParsePath splits raw on "." into ordered segments. The empty string parses
// to the empty path, which resolves to the root itself.
func ParsePath(raw string) Path {
	if raw == "" {
		return Path{}
	}
	return Path{raw: raw, segments: strings.Split(raw, ".")}
}

// String returns the original dotted form.
func (p Path) String() string { return p.raw }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool { return len(p.segments) == 0 }

// Segments returns a copy of the parsed segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// Reason classifies why a resolution stopped short of its final segment.
// BrokenChain and NotTraversable are expected terminal states, not errors:
// the value is simply absent.
type Reason int

const (
	// ReasonNone means the walk reached the final segment.
	ReasonNone Reason = iota
	// ReasonUnresolvedRoot means the first segment named no registered root
	// and no local root was supplied.
	ReasonUnresolvedRoot
	// ReasonBrokenChain means an intermediate value was nil.
	ReasonBrokenChain
	// ReasonNotTraversable means an intermediate value lacked the accessor
	// protocol while segments remained.
	ReasonNotTraversable
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonUnresolvedRoot:
		return "unresolved-root"
	case ReasonBrokenChain:
		return "broken-chain"
	case ReasonNotTraversable:
		return "not-traversable"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of walking a path. Found reports whether the
// walk reached the final segment; when it did not, Reason and Segment name
// the failure point and Value is nil. Owner is the entity that supplied the
// final segment's value, nil when the value came straight from the registry
// or the walk stopped short.
type Resolution struct {
	Value   any
	Owner   any
	Found   bool
	Reason  Reason
	Segment string
}

// Absent reports whether the resolution collapsed to an absent value.
func (r Resolution) Absent() bool { return !r.Found }

// resolveSegments walks segments from root. A nil root consults reg for the
// first segment; an explicit root is tried first and reg serves as fallback
// when the root lacks the key. tr, when non-nil, accumulates per-segment
// provenance.
func resolveSegments(segments []string, root any, reg *Registry, tr *Trace) Resolution {
	if len(segments) == 0 {
		return Resolution{Value: root, Found: true}
	}

	current, next, short := resolveFirst(segments[0], root, reg, tr)
	if short != nil {
		return *short
	}
	owner := current

	for i := next; i < len(segments); i++ {
		segment := segments[i]
		if current == nil {
			return fail(tr, ReasonBrokenChain, segment)
		}
		acc, ok := current.(Accessor)
		if !ok {
			return fail(tr, ReasonNotTraversable, segment)
		}
		value, err := acc.Get(segment)
		if err != nil {
			// Stale owners collapse the chain rather than raising.
			return fail(tr, ReasonBrokenChain, segment)
		}
		traceStep(tr, segment, current, value)
		owner = current
		current = value
	}
	return Resolution{Value: current, Owner: owner, Found: true}
}

// resolveFirst applies the first-segment strategy: registry-only when no
// local root is supplied, local-first with registry fallback otherwise. It
// returns the value the remaining walk continues from along with the index
// of the next segment; a non-nil Resolution short-circuits the walk.
func resolveFirst(segment string, root any, reg *Registry, tr *Trace) (any, int, *Resolution) {
	if root == nil {
		value, ok := lookupRoot(reg, segment)
		if !ok {
			res := fail(tr, ReasonUnresolvedRoot, segment)
			return nil, 0, &res
		}
		traceStep(tr, segment, nil, value)
		return value, 1, nil
	}

	acc, isAccessor := root.(Accessor)
	if isAccessor && acc.Has(segment) {
		return root, 0, nil
	}
	if value, ok := lookupRoot(reg, segment); ok {
		traceStep(tr, segment, nil, value)
		return value, 1, nil
	}
	if isAccessor {
		// Local root without the key and no registry entry: the property is
		// simply absent on the local root.
		return root, 0, nil
	}
	res := fail(tr, ReasonNotTraversable, segment)
	return nil, 0, &res
}

func lookupRoot(reg *Registry, name string) (any, bool) {
	if reg == nil {
		return nil, false
	}
	return reg.Lookup(name)
}

func fail(tr *Trace, reason Reason, segment string) Resolution {
	if tr != nil {
		tr.Steps = append(tr.Steps, Step{Segment: segment, Reason: reason.String()})
	}
	return Resolution{Reason: reason, Segment: segment}
}

func traceStep(tr *Trace, segment string, owner, value any) {
	if tr == nil {
		return
	}
	entry := Step{Segment: segment, Found: true, Value: value}
	if owner == nil {
		entry.Owner = "registry"
	} else {
		entry.Owner = fmt.Sprintf("%T", owner)
	}
	tr.Steps = append(tr.Steps, entry)
}
