package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/ai"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/dom"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/selector"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// validateAgainst re-checks a resolved selector on a fresh parse of the page.
func validateAgainst(t *testing.T, html, sel string) models.ValidationResult {
	t.Helper()
	doc, err := dom.New(html, 0)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return selector.NewValidator(doc).Validate(sel)
}

// onePoint asserts the resolution produced exactly one injection point.
func onePoint(t *testing.T, points []*models.InjectionPoint, err error) *models.InjectionPoint {
	t.Helper()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("points = %d, want 1", len(points))
	}
	return points[0]
}

const storePage = `<html><body>
<div id="main-content">
  <div class="product-grid">
    <div class="product-card" data-testid="product-tile">
      <h3 class="product-card__title">Widget</h3>
      <span class="price">$19.99</span>
      <button class="btn add-to-cart" aria-label="Add Widget to cart">Add to cart</button>
    </div>
    <div class="product-card">
      <h3 class="product-card__title">Gadget</h3>
      <span class="price price--sale">$29.99</span>
      <button class="btn add-to-cart">Buy Now</button>
    </div>
  </div>
</div>
</body></html>`

// stubCompleter replays a scripted completion or error.
type stubCompleter struct {
	completion ai.Completion
	err        error
	calls      int
}

func (s *stubCompleter) Locate(_ context.Context, _ ai.LocateRequest) (ai.Completion, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.completion, nil
}

func page(html string) *models.Page {
	return &models.Page{URL: "https://shop.example/p/1", HTML: html, StatusCode: 200}
}

func TestResolve_AISelectorAccepted(t *testing.T) {
	stub := &stubCompleter{completion: &ai.ElementFound{
		CSSSelector: `[data-testid="product-tile"]`,
		ElementText: "Widget",
		Confidence:  0.9,
		Reasoning:   "first product card",
	}}
	r := New(Options{Completer: stub})

	points, err := r.Resolve(context.Background(), page(storePage), "Add ratings to the first product card")
	point := onePoint(t, points, err)
	if point.Selector != `[data-testid="product-tile"]` {
		t.Errorf("Selector = %q", point.Selector)
	}
	if point.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want shape score 0.95", point.Confidence)
	}
	if len(point.AlternativeSelectors) == 0 {
		t.Error("expected backup selectors")
	}
	for _, alt := range point.AlternativeSelectors {
		if alt == point.Selector {
			t.Error("primary selector repeated in alternatives")
		}
	}
	if point.InsertionStrategy.Method == "" {
		t.Error("insertion strategy missing")
	}
}

func TestResolve_BrokenAISelectorRepairedByText(t *testing.T) {
	// Selector invented by the model matches nothing; element_text recovers.
	stub := &stubCompleter{completion: &ai.ElementFound{
		CSSSelector: ".hero__title-wrap h3",
		ElementText: "Widget",
		Confidence:  0.8,
	}}
	r := New(Options{Completer: stub})

	points, err := r.Resolve(context.Background(), page(storePage), "Emphasize the Widget product title")
	point := onePoint(t, points, err)
	res := validateAgainst(t, storePage, point.Selector)
	if !res.Works {
		t.Errorf("repaired selector %q matches %d elements", point.Selector, res.MatchCount)
	}
}

func TestResolve_AmbiguousAISelectorFallsToAlternative(t *testing.T) {
	stub := &stubCompleter{completion: &ai.ElementFound{
		CSSSelector:          ".product-card", // matches two cards
		AlternativeSelectors: []string{`[data-testid="product-tile"]`},
		ElementText:          "Widget",
	}}
	r := New(Options{Completer: stub})

	points, err := r.Resolve(context.Background(), page(storePage), "Highlight the product card")
	point := onePoint(t, points, err)
	if point.Selector != `[data-testid="product-tile"]` {
		t.Errorf("Selector = %q, want the unique alternative", point.Selector)
	}
}

func TestResolve_QuotedPhraseWithoutAI(t *testing.T) {
	r := New(Options{}) // no completer

	points, err := r.Resolve(context.Background(), page(storePage), `Make the "Buy Now" button green`)
	point := onePoint(t, points, err)
	res := validateAgainst(t, storePage, point.Selector)
	if !res.Works {
		t.Errorf("selector %q matches %d elements", point.Selector, res.MatchCount)
	}
	if point.Type != models.ElementButton {
		t.Errorf("Type = %s, want button", point.Type)
	}
}

func TestResolve_AIErrorFallsBack(t *testing.T) {
	stub := &stubCompleter{err: errors.New("429 rate limited")}
	r := New(Options{Completer: stub})

	points, err := r.Resolve(context.Background(), page(storePage), `Reword the "Add to cart" label`)
	point := onePoint(t, points, err)
	if stub.calls != 1 {
		t.Errorf("completer calls = %d, want 1", stub.calls)
	}
	if point.Selector == "" {
		t.Fatal("expected a resolved point from the text tier")
	}
}

func TestResolve_NotFoundRecoveredByText(t *testing.T) {
	// The model gives up on an element that is plainly in the document; the
	// text tier picks it up from the hypothesis wording before any guessing.
	const cardPage = `<html><body><div class="card"><h3 class="card__heading">Widget</h3></div></body></html>`
	stub := &stubCompleter{completion: &ai.ElementNotFound{
		NotFound: true,
		Reason:   "could not locate a widget title",
	}}
	r := New(Options{Completer: stub})

	points, err := r.Resolve(context.Background(), page(cardPage), "make the Widget title bolder")
	point := onePoint(t, points, err)
	if point.Selector != "h3.card__heading" {
		t.Errorf("Selector = %q, want h3.card__heading via text match", point.Selector)
	}
	// Text-located targets carry real selector confidence, not the
	// structural-guess cap.
	if point.Confidence <= 0.5 {
		t.Errorf("Confidence = %v, want a text-tier score above the structural cap", point.Confidence)
	}
}

func TestResolve_NotFoundFallsThroughToStructural(t *testing.T) {
	// No visible text on the page relates to this hypothesis, so after the
	// model's not-found the text tier misses too and the structural guess
	// answers, capped.
	stub := &stubCompleter{completion: &ai.ElementNotFound{
		NotFound: true,
		Reason:   "page has no reviews section",
	}}
	r := New(Options{Completer: stub})

	points, err := r.Resolve(context.Background(), page(storePage), "Add star ratings to product cards")
	point := onePoint(t, points, err)
	if point.Confidence > 0.5 {
		t.Errorf("structural guess confidence = %v, want <= 0.5", point.Confidence)
	}
	res := validateAgainst(t, storePage, point.Selector)
	if !res.Works {
		t.Errorf("structural selector %q matches %d elements", point.Selector, res.MatchCount)
	}
}

func TestResolve_NoElementFoundIsEmptyResult(t *testing.T) {
	r := New(Options{})

	points, err := r.Resolve(context.Background(), page(`<html><body><p>hello</p></body></html>`),
		"Move the pricing toggle above the fold")
	if err != nil {
		t.Fatalf("Resolve: %v, want empty result without error", err)
	}
	if points == nil {
		t.Fatal("points is nil, want an empty slice that serializes to []")
	}
	if len(points) != 0 {
		t.Errorf("points = %d, want 0", len(points))
	}
}

func TestResolve_EmptyHTML(t *testing.T) {
	r := New(Options{})

	_, err := r.Resolve(context.Background(), page("   "), "Add ratings")
	var re *ResolutionError
	if !errors.As(err, &re) || re.Code != ErrCodeNoDocument {
		t.Fatalf("err = %v, want NO_DOCUMENT", err)
	}
}

func TestResolve_ContextCancellation(t *testing.T) {
	stub := &stubCompleter{err: context.Canceled}
	r := New(Options{Completer: stub})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Resolve(ctx, page(storePage), "Add ratings"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
