package bind

import "errors"

var (
	// ErrStaleReference indicates an operation against an entity that has
	// already been destroyed. Cleanup paths swallow it; explicit Get/Set
	// calls surface it to the caller.
	ErrStaleReference = errors.New("bind: stale reference")

	// ErrUnresolvedRoot indicates a path's first segment named no registered
	// root and no local root was supplied. The binding is still created and
	// resolves to an absent value.
	ErrUnresolvedRoot = errors.New("bind: unresolved root")

	// ErrNoEvaluator indicates a transform was requested but no evaluator
	// could be constructed.
	ErrNoEvaluator = errors.New("bind: evaluator not configured")
)
