package selector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/dom"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

const productPage = `<html><body>
<div id="main-content">
  <div class="product-grid css-9x8y7z">
    <div class="product-card" data-testid="product-tile">
      <h3 class="product-card__title">Widget</h3>
      <span class="price price--sale">$19.99</span>
      <button class="btn btn--primary add-to-cart" role="button" aria-label="Add Widget to cart">Add to cart</button>
    </div>
    <div class="product-card">
      <h3 class="product-card__title">Gadget</h3>
      <span class="price">$29.99</span>
      <button class="btn btn--primary add-to-cart">Add to cart</button>
    </div>
  </div>
</div>
</body></html>`

func mustDoc(t *testing.T, html string) *dom.Document {
	t.Helper()
	doc, err := dom.New(html, 0)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func selectOne(t *testing.T, doc *dom.Document, selector string) *goquery.Selection {
	t.Helper()
	sel, err := doc.Select(selector)
	if err != nil {
		t.Fatalf("select %q: %v", selector, err)
	}
	if sel.Length() == 0 {
		t.Fatalf("select %q: no matches", selector)
	}
	return sel.First()
}

func TestGenerate_StrategyOrder(t *testing.T) {
	doc := mustDoc(t, productPage)
	g := NewGenerator(doc)

	tile := selectOne(t, doc, `[data-testid="product-tile"]`)
	cands := g.Generate(tile)

	if len(cands) == 0 {
		t.Fatal("expected candidates, got none")
	}
	if cands[0].Strategy != models.StrategyDataAttr {
		t.Errorf("first strategy = %s, want %s", cands[0].Strategy, models.StrategyDataAttr)
	}
	if cands[0].Selector != `[data-testid="product-tile"]` {
		t.Errorf("first selector = %q", cands[0].Selector)
	}
	last := cands[len(cands)-1]
	if last.Strategy != models.StrategyIndexedPath {
		t.Errorf("last strategy = %s, want %s", last.Strategy, models.StrategyIndexedPath)
	}
	if !strings.Contains(last.Selector, ":nth-child(") {
		t.Errorf("indexed path %q missing :nth-child", last.Selector)
	}
}

func TestGenerate_AriaAndRole(t *testing.T) {
	doc := mustDoc(t, productPage)
	g := NewGenerator(doc)

	btn := selectOne(t, doc, `button[aria-label]`)
	cands := g.Generate(btn)

	have := make(map[string]bool, len(cands))
	for _, c := range cands {
		have[c.Selector] = true
	}
	for _, want := range []string{
		`button[role="button"]`,
		`button[aria-label="Add Widget to cart"]`,
	} {
		if !have[want] {
			t.Errorf("missing candidate %q", want)
		}
	}
}

func TestGenerate_FiltersUnstableClasses(t *testing.T) {
	doc := mustDoc(t, productPage)
	g := NewGenerator(doc)

	grid := selectOne(t, doc, `.product-grid`)
	for _, c := range g.Generate(grid) {
		if strings.Contains(c.Selector, "css-9x8y7z") {
			t.Errorf("generated selector carries unstable class: %q", c.Selector)
		}
	}
}

func TestGenerate_IndexedPathStopsAtStableID(t *testing.T) {
	doc := mustDoc(t, productPage)
	g := NewGenerator(doc)

	title := selectOne(t, doc, `.product-card__title`)
	cands := g.Generate(title)

	var indexed string
	for _, c := range cands {
		if c.Strategy == models.StrategyIndexedPath {
			indexed = c.Selector
		}
	}
	if !strings.HasPrefix(indexed, "#main-content > ") {
		t.Errorf("indexed path %q does not anchor at stable id", indexed)
	}
}

func TestFirstUnique(t *testing.T) {
	doc := mustDoc(t, productPage)
	g := NewGenerator(doc)

	// "btn" and "btn--primary" match both buttons; only the aria-label
	// candidate is unique.
	btn := selectOne(t, doc, `button[aria-label]`)
	cands := g.Generate(btn)

	best, ok := g.FirstUnique(cands)
	if !ok {
		t.Fatal("expected a unique candidate")
	}
	v := NewValidator(doc)
	if res := v.Validate(best.Selector); !res.Works {
		t.Errorf("FirstUnique returned %q which matches %d elements", best.Selector, res.MatchCount)
	}
}

func TestFirstUnique_NoneUnique(t *testing.T) {
	doc := mustDoc(t, `<html><body><ul><li class="item">a</li><li class="item">b</li></ul></body></html>`)
	g := NewGenerator(doc)

	cands := []models.CandidateSelector{
		{Selector: ".item", Strategy: models.StrategySemanticClass},
		{Selector: "li", Strategy: models.StrategyStructuralParent},
	}
	if _, ok := g.FirstUnique(cands); ok {
		t.Error("expected no unique candidate")
	}
}

func TestCSSEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"product-card", "product-card"},
		{"a:b", `a\:b`},
		{"x/y", `x\/y`},
	}
	for _, tt := range tests {
		if got := cssEscape(tt.in); got != tt.want {
			t.Errorf("cssEscape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
