package bind

import "github.com/google/uuid"

// Accessor is the property protocol an entity implements to participate in
// path traversal. Get returns the named property, nil when absent. Has
// reports whether the property exists, which the resolver uses to decide
// first-segment precedence between a local root and the registry.
type Accessor interface {
	Get(name string) (any, error)
	Has(name string) bool
	Set(name string, value any) error
}

// Observable extends Accessor with per-property change notification. Set must
// notify registered observers for the property before returning; coalescing
// across a turn is the engine's job, not the entity's.
type Observable interface {
	Accessor
	AddObserver(name string, fn Observer) (Token, error)
	RemoveObserver(token Token) error
}

// Mutation describes a single property change on an Observable.
type Mutation struct {
	Name  string
	Value any
	Owner Observable
}

// Observer receives property mutations.
type Observer func(Mutation)

// Token identifies one observer registration on one property.
type Token struct {
	name string
	id   string
}

func newToken(name string) Token {
	return Token{name: name, id: uuid.NewString()}
}

// Name returns the observed property name.
func (t Token) Name() string { return t.name }

// IsZero reports whether the token represents no registration.
func (t Token) IsZero() bool { return t.id == "" }
