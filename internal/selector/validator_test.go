package selector

import (
	"strings"
	"testing"
)

func TestValidate_MatchCounts(t *testing.T) {
	doc := mustDoc(t, productPage)
	v := NewValidator(doc)

	tests := []struct {
		name      string
		selector  string
		wantCount int
		wantWorks bool
	}{
		{"unique data attr", `[data-testid="product-tile"]`, 1, true},
		{"unique id", "#main-content", 1, true},
		{"ambiguous class", ".product-card", 2, false},
		{"no match", ".does-not-exist", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.selector)
			if res.MatchCount != tt.wantCount {
				t.Errorf("MatchCount = %d, want %d", res.MatchCount, tt.wantCount)
			}
			if res.Works != tt.wantWorks {
				t.Errorf("Works = %v, want %v", res.Works, tt.wantWorks)
			}
		})
	}
}

func TestValidate_MalformedSelector(t *testing.T) {
	doc := mustDoc(t, productPage)
	v := NewValidator(doc)

	res := v.Validate("div[[[")
	if res.Works {
		t.Error("malformed selector reported as working")
	}
	if res.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", res.Confidence)
	}
	if !strings.Contains(res.Reason, "malformed") {
		t.Errorf("Reason = %q, want malformed selector reason", res.Reason)
	}
}

func TestValidate_ConfidenceRanking(t *testing.T) {
	doc := mustDoc(t, productPage)
	v := NewValidator(doc)

	dataAttr := v.Validate(`[data-testid="product-tile"]`)
	aria := v.Validate(`button[aria-label="Add Widget to cart"]`)
	id := v.Validate("#main-content")

	if !(dataAttr.Confidence > aria.Confidence && aria.Confidence > id.Confidence) {
		t.Errorf("ranking broken: data=%v aria=%v id=%v",
			dataAttr.Confidence, aria.Confidence, id.Confidence)
	}
}

func TestValidate_AmbiguousScoresLow(t *testing.T) {
	doc := mustDoc(t, productPage)
	v := NewValidator(doc)

	res := v.Validate(".product-card")
	if res.Confidence != 0.3 {
		t.Errorf("Confidence = %v, want 0.3", res.Confidence)
	}
	if !strings.Contains(res.Reason, "matches 2 elements") {
		t.Errorf("Reason = %q", res.Reason)
	}
}

func TestValidate_NthChildCapped(t *testing.T) {
	doc := mustDoc(t, productPage)
	v := NewValidator(doc)

	// Unique, but positional: any sibling insertion invalidates it.
	res := v.Validate(".product-grid > div:nth-child(1) > h3")
	if !res.Works {
		t.Fatalf("expected unique match, got %d", res.MatchCount)
	}
	if res.Confidence > 0.3 {
		t.Errorf("Confidence = %v, want <= 0.3 for positional selector", res.Confidence)
	}
}

func TestValidate_GeneratedTokenCapped(t *testing.T) {
	doc := mustDoc(t, productPage)
	v := NewValidator(doc)

	res := v.Validate(".css-9x8y7z")
	if !res.Works {
		t.Fatalf("expected unique match, got %d", res.MatchCount)
	}
	if res.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1 for generated class", res.Confidence)
	}
	if !strings.Contains(res.Reason, "generated token") {
		t.Errorf("Reason = %q", res.Reason)
	}
}

func TestShapeScore(t *testing.T) {
	tests := []struct {
		selector string
		want     float64
	}{
		{`[data-testid="x"]`, 0.95},
		{`button[role="button"]`, 0.9},
		{`nav[aria-label="Main"]`, 0.9},
		{"#main-content", 0.85},
		{`button:contains("Add to cart")`, 0.6},
		{".product-card", 0.8},
		{".product-card .price", 0.8},
		{".a .b .c", 0.7},
		{".a .b .c .d", 0.4},
		{"div > div > div > span > b", 0.4},
		{"button", 0.5},
	}
	for _, tt := range tests {
		got, label := shapeScore(tt.selector)
		if got != tt.want {
			t.Errorf("shapeScore(%q) = %v, want %v", tt.selector, got, tt.want)
		}
		if label == "" {
			t.Errorf("shapeScore(%q) returned no label", tt.selector)
		}
	}
}

func TestValidate_UniqueMatchCarriesReason(t *testing.T) {
	doc := mustDoc(t, productPage)
	v := NewValidator(doc)

	tests := []struct {
		selector   string
		wantReason string
	}{
		{`[data-testid="product-tile"]`, "data attribute"},
		{"#main-content", "stable id"},
	}
	for _, tt := range tests {
		res := v.Validate(tt.selector)
		if !res.Works {
			t.Fatalf("%q: expected unique match, got %d", tt.selector, res.MatchCount)
		}
		if res.Reason != tt.wantReason {
			t.Errorf("Validate(%q).Reason = %q, want %q", tt.selector, res.Reason, tt.wantReason)
		}
	}
}

func TestValidate_AmbiguousGeneratedTokenCapped(t *testing.T) {
	// The cap applies whether or not the selector is unique: a generated
	// class matching two elements is still disposable, not a 0.3 region.
	doc := mustDoc(t, `<html><body>
<div class="css-1q2w3e">a</div>
<div class="css-1q2w3e">b</div>
</body></html>`)
	v := NewValidator(doc)

	res := v.Validate(".css-1q2w3e")
	if res.Works {
		t.Fatal("ambiguous selector reported as working")
	}
	if res.MatchCount != 2 {
		t.Fatalf("MatchCount = %d, want 2", res.MatchCount)
	}
	if res.Confidence > 0.1 {
		t.Errorf("Confidence = %v, want <= 0.1 for generated class", res.Confidence)
	}
	if !strings.Contains(res.Reason, "generated token") {
		t.Errorf("Reason = %q", res.Reason)
	}
}
