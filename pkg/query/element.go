package query

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ViewIDAttr marks the rendered root element of a view. ViewID walks up from
// a matched element to the closest carrier of this attribute.
const ViewIDAttr = "data-view-id"

// Element is a single matched element.
type Element struct {
	selection *goquery.Selection
}

// Attr returns the value of a named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	return e.selection.Attr(name)
}

// Text returns the combined text contents of the element and its descendants.
func (e *Element) Text() string {
	return e.selection.Text()
}

// AddClass adds the class to the element.
func (e *Element) AddClass(class string) *Element {
	e.selection.AddClass(class)
	return e
}

// RemoveClass removes the class from the element.
func (e *Element) RemoveClass(class string) *Element {
	e.selection.RemoveClass(class)
	return e
}

// ToggleClass toggles the class on the element.
func (e *Element) ToggleClass(class string) *Element {
	e.selection.ToggleClass(class)
	return e
}

// HasClass reports whether the element carries the class.
func (e *Element) HasClass(class string) bool {
	return e.selection.HasClass(class)
}

// Visible reports whether the element and all of its ancestors are visible.
// An element is hidden by inline display:none or visibility:hidden, by the
// hidden attribute, or by aria-hidden="true".
func (e *Element) Visible() bool {
	for node := e.Node(); node != nil; node = node.Parent {
		if node.Type != html.ElementNode {
			continue
		}
		if nodeHidden(node) {
			return false
		}
	}
	return true
}

// ViewID returns the view identifier owning this element, found on the
// closest ancestor (or the element itself) carrying the data-view-id
// attribute.
func (e *Element) ViewID() (string, bool) {
	matcher, err := compileSelector("[" + ViewIDAttr + "]")
	if err != nil {
		return "", false
	}
	owner := e.selection.ClosestMatcher(matcher)
	if owner.Length() == 0 {
		return "", false
	}
	return owner.Attr(ViewIDAttr)
}

// Node exposes the underlying parsed node for callers that need to drop down
// to the html package.
func (e *Element) Node() *html.Node {
	if e.selection.Length() == 0 {
		return nil
	}
	return e.selection.Get(0)
}

func nodeHidden(node *html.Node) bool {
	for _, attr := range node.Attr {
		switch attr.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(strings.TrimSpace(attr.Val), "true") {
				return true
			}
		case "style":
			if styleHidden(attr.Val) {
				return true
			}
		}
	}
	return false
}

func styleHidden(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.ToLower(strings.TrimSpace(value))
		if name == "display" && value == "none" {
			return true
		}
		if name == "visibility" && value == "hidden" {
			return true
		}
	}
	return false
}
