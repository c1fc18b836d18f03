package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Document is an immutable, queryable snapshot of one normalized HTML page.
// It is constructed once per analysis request and never mutated, so a single
// Document is safe to share across concurrent reads.
type Document struct {
	html      string
	truncated bool
	doc       *goquery.Document
}

// New normalizes rawHTML (truncating at budget characters, see Normalize) and
// parses the result into a queryable tree.
func New(rawHTML string, budget int) (*Document, error) {
	normalized, truncated := Normalize(rawHTML, budget)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(normalized))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{
		html:      normalized,
		truncated: truncated,
		doc:       doc,
	}, nil
}

// HTML returns the normalized markup the document was built from.
func (d *Document) HTML() string {
	return d.html
}

// Truncated reports whether the markup was cut at the character budget.
func (d *Document) Truncated() bool {
	return d.truncated
}

// Root returns the root selection of the parsed tree.
func (d *Document) Root() *goquery.Selection {
	return d.doc.Selection
}

// Select compiles the selector and returns every matching element.
//
// goquery's Find panics on selectors that fail to parse, and AI-proposed
// selectors frequently do; compiling through cascadia turns bad syntax into a
// normal error the caller can discard per-candidate.
func (d *Document) Select(selector string) (*goquery.Selection, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return d.doc.FindMatcher(matcher), nil
}

// Count returns how many elements the selector matches, or an error when the
// selector does not parse.
func (d *Document) Count(selector string) (int, error) {
	sel, err := d.Select(selector)
	if err != nil {
		return 0, err
	}
	return sel.Length(), nil
}
