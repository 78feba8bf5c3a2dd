package bind

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-bindings/layering"
)

// Object is the canonical map-backed Observable. Nested Objects form a
// traversable graph; see ObjectFromMap for building one from raw data.
//
// Objects follow the single run-loop model: they are not safe for concurrent
// use. The Registry is the only type in this package that is.
type Object struct {
	props     map[string]any
	observers map[string][]observerEntry
	destroyed bool
}

type observerEntry struct {
	id string
	fn Observer
}

// ObjectOption configures Object construction.
type ObjectOption func(*objectConfig)

type objectConfig struct {
	props    map[string]any
	defaults []map[string]any
}

// WithProperties seeds the object with an initial property map. The map is
// deep copied so the caller's reference stays detached.
func WithProperties(props map[string]any) ObjectOption {
	return func(cfg *objectConfig) {
		cfg.props = props
	}
}

// WithObjectDefaults layers a defaults map under the seeded properties.
// Repeated use stacks defaults weakest-last.
func WithObjectDefaults(defaults map[string]any) ObjectOption {
	return func(cfg *objectConfig) {
		if len(defaults) == 0 {
			return
		}
		cfg.defaults = append(cfg.defaults, defaults)
	}
}

// NewObject constructs an empty observable object, optionally seeded with
// properties layered over defaults.
func NewObject(opts ...ObjectOption) *Object {
	cfg := objectConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	layers := make([]map[string]any, 0, len(cfg.defaults)+1)
	if cfg.props != nil {
		layers = append(layers, cfg.props)
	}
	layers = append(layers, cfg.defaults...)
	props := layering.MergeProperties(layers...)
	if props == nil {
		props = map[string]any{}
	}
	return &Object{props: props}
}

// ObjectFromMap builds an Object graph from raw data, converting nested
// map[string]any values into nested Objects so every level is traversable
// and observable.
func ObjectFromMap(src map[string]any) *Object {
	o := NewObject()
	for key, value := range src {
		if nested, ok := value.(map[string]any); ok {
			o.props[key] = ObjectFromMap(nested)
			continue
		}
		o.props[key] = value
	}
	return o
}

// Get returns the named property, nil when absent.
func (o *Object) Get(name string) (any, error) {
	if o.destroyed {
		return nil, fmt.Errorf("%w: get %q", ErrStaleReference, name)
	}
	return o.props[name], nil
}

// Has reports whether the property exists. A destroyed object has nothing.
func (o *Object) Has(name string) bool {
	if o.destroyed {
		return false
	}
	_, ok := o.props[name]
	return ok
}

// Set stores the property and synchronously notifies observers registered
// for it.
func (o *Object) Set(name string, value any) error {
	if o.destroyed {
		return fmt.Errorf("%w: set %q", ErrStaleReference, name)
	}
	o.props[name] = value
	o.notify(Mutation{Name: name, Value: value, Owner: o})
	return nil
}

// AddObserver registers fn for changes to the named property.
func (o *Object) AddObserver(name string, fn Observer) (Token, error) {
	if o.destroyed {
		return Token{}, fmt.Errorf("%w: observe %q", ErrStaleReference, name)
	}
	if fn == nil {
		return Token{}, fmt.Errorf("bind: observer for %q must not be nil", name)
	}
	if o.observers == nil {
		o.observers = map[string][]observerEntry{}
	}
	token := newToken(name)
	o.observers[name] = append(o.observers[name], observerEntry{id: token.id, fn: fn})
	return token, nil
}

// RemoveObserver drops the registration identified by token. Removing a zero
// or unknown token is a no-op.
func (o *Object) RemoveObserver(token Token) error {
	if o.destroyed {
		return fmt.Errorf("%w: unobserve %q", ErrStaleReference, token.name)
	}
	if token.IsZero() {
		return nil
	}
	entries := o.observers[token.name]
	for i, entry := range entries {
		if entry.id != token.id {
			continue
		}
		entries = append(entries[:i], entries[i+1:]...)
		if len(entries) == 0 {
			delete(o.observers, token.name)
		} else {
			o.observers[token.name] = entries
		}
		break
	}
	return nil
}

func (o *Object) notify(mut Mutation) {
	entries := o.observers[mut.Name]
	if len(entries) == 0 {
		return
	}
	// Observers may register or remove observers mid-dispatch; iterate a
	// snapshot so the list stays stable for this mutation.
	snapshot := make([]observerEntry, len(entries))
	copy(snapshot, entries)
	for _, entry := range snapshot {
		entry.fn(mut)
	}
}

// Keys returns the property names sorted alphabetically.
func (o *Object) Keys() []string {
	if o.destroyed {
		return nil
	}
	keys := make([]string, 0, len(o.props))
	for key := range o.props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot deep copies the object graph back into raw property maps, the
// inverse of ObjectFromMap. Destroyed objects snapshot to nil.
func (o *Object) Snapshot() map[string]any {
	if o.destroyed {
		return nil
	}
	out := make(map[string]any, len(o.props))
	for key, value := range o.props {
		if nested, ok := value.(*Object); ok {
			out[key] = nested.Snapshot()
			continue
		}
		out[key] = value
	}
	return out
}

// Destroy revokes the object. Every subsequent protocol operation fails with
// ErrStaleReference and no further notifications are delivered.
func (o *Object) Destroy() {
	o.destroyed = true
	o.props = nil
	o.observers = nil
}

// Destroyed reports whether Destroy has been called.
func (o *Object) Destroyed() bool {
	return o.destroyed
}
