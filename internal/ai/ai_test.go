package ai

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode_ElementFound(t *testing.T) {
	raw := `{"css_selector": ".product-card__title", "element_text": "Widget", "section_context": "product grid", "confidence": 0.9, "reasoning": "title of the first product card", "alternative_selectors": ["h3.product-card__title"]}`

	c, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	found, ok := c.(*ElementFound)
	if !ok {
		t.Fatalf("completion type = %T, want *ElementFound", c)
	}
	if found.CSSSelector != ".product-card__title" {
		t.Errorf("CSSSelector = %q", found.CSSSelector)
	}
	if len(found.AlternativeSelectors) != 1 {
		t.Errorf("AlternativeSelectors = %v", found.AlternativeSelectors)
	}
}

func TestDecode_NotFound(t *testing.T) {
	raw := `{"NOT_FOUND": true, "reason": "page has no reviews section", "suggestions": ["product title", "price"]}`

	c, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	nf, ok := c.(*ElementNotFound)
	if !ok {
		t.Fatalf("completion type = %T, want *ElementNotFound", c)
	}
	if nf.Reason == "" || len(nf.Suggestions) != 2 {
		t.Errorf("decoded miss incomplete: %+v", nf)
	}
}

func TestDecode_CodeFences(t *testing.T) {
	raw := "```json\n{\"css_selector\": \"#hero\", \"confidence\": 0.8}\n```"

	c, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if found := c.(*ElementFound); found.CSSSelector != "#hero" {
		t.Errorf("CSSSelector = %q", found.CSSSelector)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "The element you want is the title."},
		{"wrong shape", `{"selector": ".x"}`},
		{"empty selector", `{"css_selector": ""}`},
		{"truncated json", `{"css_selector": ".x", "confi`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.raw); !errors.Is(err, ErrMalformedCompletion) {
				t.Errorf("err = %v, want ErrMalformedCompletion", err)
			}
		})
	}
}

func TestBuildUserPrompt_TruncationNote(t *testing.T) {
	with := buildUserPrompt(LocateRequest{
		Hypothesis: "Add ratings",
		URL:        "https://shop.example/p/1",
		HTML:       "<div><h1>Widget</h1></div>",
		Truncated:  true,
	})
	if !strings.Contains(with, "truncated") {
		t.Error("truncated snapshot not called out in prompt")
	}

	without := buildUserPrompt(LocateRequest{
		Hypothesis: "Add ratings",
		URL:        "https://shop.example/p/1",
		HTML:       "<div><h1>Widget</h1></div>",
	})
	if strings.Contains(without, "truncated") {
		t.Error("truncation note present for a complete snapshot")
	}
	if !strings.Contains(without, "HYPOTHESIS: Add ratings") {
		t.Error("hypothesis missing from prompt")
	}
}

func TestPageOutline(t *testing.T) {
	out := pageOutline("<h1>Catalog</h1><h2>Widgets</h2><p>Fine widgets here.</p>")
	if !strings.Contains(out, "Catalog") || !strings.Contains(out, "Widgets") {
		t.Errorf("outline missing headings: %q", out)
	}
}
