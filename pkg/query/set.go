package query

import "github.com/PuerkitoBio/goquery"

// Set decorates a goquery selection with the enumerable and class-toggling
// operations views use. All element iteration goes through this type; the
// underlying selection is never mutated structurally.
type Set struct {
	selection *goquery.Selection
}

// Len reports how many elements matched.
func (s *Set) Len() int {
	return s.selection.Length()
}

// At returns the element at index i, or nil when out of range.
func (s *Set) At(i int) *Element {
	if i < 0 || i >= s.selection.Length() {
		return nil
	}
	return &Element{selection: s.selection.Eq(i)}
}

// First returns the first matched element, or nil for an empty set.
func (s *Set) First() *Element {
	return s.At(0)
}

// Each invokes fn for every matched element in document order.
func (s *Set) Each(fn func(int, *Element)) *Set {
	s.selection.Each(func(i int, sel *goquery.Selection) {
		fn(i, &Element{selection: sel})
	})
	return s
}

// Filter returns the subset of elements for which keep returns true.
func (s *Set) Filter(keep func(*Element) bool) *Set {
	filtered := s.selection.FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return keep(&Element{selection: sel})
	})
	return &Set{selection: filtered}
}

// Map collects fn's result for every matched element.
func (s *Set) Map(fn func(*Element) any) []any {
	out := make([]any, 0, s.selection.Length())
	s.Each(func(_ int, el *Element) {
		out = append(out, fn(el))
	})
	return out
}

// Any reports whether fn returns true for at least one element.
func (s *Set) Any(fn func(*Element) bool) bool {
	found := false
	s.Each(func(_ int, el *Element) {
		if !found && fn(el) {
			found = true
		}
	})
	return found
}

// All reports whether fn returns true for every element. An empty set
// vacuously satisfies All.
func (s *Set) All(fn func(*Element) bool) bool {
	ok := true
	s.Each(func(_ int, el *Element) {
		if ok && !fn(el) {
			ok = false
		}
	})
	return ok
}

// Visible returns the subset of elements currently visible.
func (s *Set) Visible() *Set {
	return s.Filter(func(el *Element) bool { return el.Visible() })
}

// AddClass adds the class to every matched element.
func (s *Set) AddClass(class string) *Set {
	s.selection.AddClass(class)
	return s
}

// RemoveClass removes the class from every matched element.
func (s *Set) RemoveClass(class string) *Set {
	s.selection.RemoveClass(class)
	return s
}

// ToggleClass toggles the class on every matched element.
func (s *Set) ToggleClass(class string) *Set {
	s.selection.ToggleClass(class)
	return s
}

// HasClass reports whether any matched element carries the class.
func (s *Set) HasClass(class string) bool {
	return s.selection.HasClass(class)
}
