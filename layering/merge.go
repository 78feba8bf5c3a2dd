// Package layering merges property maps ordered from strongest to weakest,
// producing the effective property set for an observable object graph.
package layering

// MergeProperties composes property maps ordered from strongest to weakest,
// returning a new map that keeps keys from stronger layers while filling any
// missing keys from weaker ones. Nested maps are merged recursively; every
// other value kind is taken wholesale from the strongest layer that defines
// the key. The inputs are never mutated.
func MergeProperties(layers ...map[string]any) map[string]any {
	if len(layers) == 0 {
		return nil
	}

	merged := CloneProperties(layers[len(layers)-1])
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeMaps(layers[i], merged)
	}
	return merged
}

func mergeMaps(strong, weak map[string]any) map[string]any {
	if strong == nil {
		return weak
	}
	if weak == nil {
		return CloneProperties(strong)
	}

	out := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		out[key] = value
	}
	for key, value := range strong {
		existing, ok := out[key]
		if !ok {
			out[key] = cloneValue(value)
			continue
		}
		strongMap, strongIsMap := value.(map[string]any)
		weakMap, weakIsMap := existing.(map[string]any)
		if strongIsMap && weakIsMap {
			out[key] = mergeMaps(strongMap, weakMap)
			continue
		}
		out[key] = cloneValue(value)
	}
	return out
}

// CloneProperties deep copies a property map. Nested maps and slices are
// copied; every other value is carried over as-is.
func CloneProperties(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneProperties(typed)
	case []any:
		out := make([]any, len(typed))
		for i, element := range typed {
			out[i] = cloneValue(element)
		}
		return out
	default:
		return value
	}
}
