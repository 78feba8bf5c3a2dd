package bind

import (
	"fmt"
	"sort"
	"strings"
)

// PropertyDescriptor describes one property path reachable from a root,
// the shape design tooling consumes to decide what a widget exposes for
// editing. Observable reports whether the owning entity accepts observers.
type PropertyDescriptor struct {
	Path       string
	Type       string
	Observable bool
}

// Describe enumerates property descriptors for every leaf reachable from
// root, paths sorted by construction (object keys are walked
// alphabetically). Plain maps are traversed but flagged as unobservable.
func Describe(root any) []PropertyDescriptor {
	return describeValue(root, "")
}

func describeValue(value any, prefix string) []PropertyDescriptor {
	switch typed := value.(type) {
	case *Object:
		keys := typed.Keys()
		if len(keys) == 0 {
			if prefix == "" {
				return nil
			}
			return []PropertyDescriptor{{Path: prefix, Type: "object", Observable: true}}
		}
		var fields []PropertyDescriptor
		for _, key := range keys {
			child, err := typed.Get(key)
			if err != nil {
				continue
			}
			fields = append(fields, describeChild(child, joinPath(prefix, key), true)...)
		}
		return fields
	case map[string]any:
		if len(typed) == 0 {
			if prefix == "" {
				return nil
			}
			return []PropertyDescriptor{{Path: prefix, Type: "map[string]any", Observable: false}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []PropertyDescriptor
		for _, key := range keys {
			fields = append(fields, describeChild(typed[key], joinPath(prefix, key), false)...)
		}
		return fields
	default:
		if prefix == "" {
			return nil
		}
		return []PropertyDescriptor{{Path: prefix, Type: typeName(typed), Observable: false}}
	}
}

func describeChild(value any, path string, ownerObservable bool) []PropertyDescriptor {
	switch value.(type) {
	case *Object, map[string]any:
		return describeValue(value, path)
	default:
		return []PropertyDescriptor{{
			Path:       path,
			Type:       typeName(value),
			Observable: ownerObservable,
		}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
