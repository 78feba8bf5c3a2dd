package bind

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps top-level names to root objects. It is the sole shared
// mutable resource in the package: Register is atomic with respect to
// concurrent Lookup calls, and lookups never mutate state.
type Registry struct {
	mu    sync.RWMutex
	roots map[string]any
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{roots: make(map[string]any)}
}

// Register associates name with root, overwriting any prior mapping.
func (r *Registry) Register(name string, root any) error {
	if name == "" {
		return fmt.Errorf("bind: root name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roots == nil {
		r.roots = make(map[string]any)
	}
	r.roots[name] = root
	return nil
}

// Lookup returns the root registered under name. It never traverses beyond
// the single top-level name.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	root, ok := r.roots[name]
	return root, ok
}

// Names returns registered root names sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.roots))
	for name := range r.roots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered roots.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roots)
}
