// Package query adapts a third-party selector engine into the small surface
// the binding layer's views consume: selector matching, class toggling,
// visibility testing, and view lookup from a matched element.
//
// Selector matching is delegated entirely to cascadia via goquery; this
// package compiles selectors once, caches them, and decorates the resulting
// selections with enumerable operations. It never mutates the underlying
// library's object model.
package query
