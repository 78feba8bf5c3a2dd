package query

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed HTML document and is the entry point for selector
// queries.
type Document struct {
	doc *goquery.Document
}

// FromReader parses an HTML document from r.
func FromReader(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// FromString parses an HTML document from markup.
func FromString(markup string) (*Document, error) {
	return FromReader(strings.NewReader(markup))
}

// Select matches selector against the whole document.
func (d *Document) Select(selector string) (*Set, error) {
	matcher, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	return &Set{selection: d.doc.FindMatcher(matcher)}, nil
}

// SelectFrom matches selector within scope only. A nil scope behaves like
// Select.
func (d *Document) SelectFrom(selector string, scope *Element) (*Set, error) {
	if scope == nil {
		return d.Select(selector)
	}
	matcher, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	return &Set{selection: scope.selection.FindMatcher(matcher)}, nil
}
