package query

import (
	"fmt"
	"sync"

	"github.com/andybalholm/cascadia"
)

var selectorCache = struct {
	mu       sync.RWMutex
	compiled map[string]cascadia.Selector
}{compiled: map[string]cascadia.Selector{}}

// compileSelector compiles a CSS selector, serving repeated selectors from a
// process-wide cache. cascadia.Selector satisfies goquery.Matcher, so the
// cached value is usable with goquery's *Matcher methods directly.
func compileSelector(selector string) (cascadia.Selector, error) {
	selectorCache.mu.RLock()
	compiled, ok := selectorCache.compiled[selector]
	selectorCache.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("query: invalid selector %q: %w", selector, err)
	}

	selectorCache.mu.Lock()
	selectorCache.compiled[selector] = compiled
	selectorCache.mu.Unlock()
	return compiled, nil
}
