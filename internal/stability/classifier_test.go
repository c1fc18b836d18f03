package stability

import "testing"

func TestIsStable_GeneratedIdentifiers(t *testing.T) {
	tests := []struct {
		value string
		kind  Kind
	}{
		{"12345", KindID},
		{"deadbeef01", KindID},
		{"a1b2c3d4-e5f6-7a8b-9c0d-e1f2a3b4c5d6", KindID},
		{"product-9928374655012", KindID},
		{"ember123", KindID},
		{"react-select-2-input", KindID},
		{"downshift-0-item-3", KindID},
		{"mui-34127", KindID},
		{"headlessui-menu-button-12", KindID},
		{"radix-popper-41", KindID},
		{"css-1q2w3e", KindClass},
		{"sc-bdVaJa", KindClass},
		{"jsx-382912", KindClass},
		{"svelte-1x8r4kz", KindClass},
		{"template--25767798276440__header", KindID},
		{"shopify-section-template--19283746550123__main", KindID},
		{"x", KindClass},
		{"ab", KindClass},
		{"", KindClass},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if IsStable(tt.value, tt.kind) {
				t.Errorf("IsStable(%q, %q) = true, want false", tt.value, tt.kind)
			}
		})
	}
}

func TestIsStable_AuthoredIdentifiers(t *testing.T) {
	tests := []struct {
		value string
		kind  Kind
	}{
		{"product-card", KindClass},
		{"card__heading", KindClass},
		{"btn--primary", KindClass},
		{"price", KindClass},
		{"col-md-6", KindClass},
		{"add-to-cart", KindID},
		{"main-navigation", KindID},
		{"hero", KindID},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if !IsStable(tt.value, tt.kind) {
				t.Errorf("IsStable(%q, %q) = false, want true", tt.value, tt.kind)
			}
		})
	}
}

func TestIsStable_UnstableTakesPrecedence(t *testing.T) {
	// Matches the kebab convention, but the trailing digit run marks it
	// as a template artifact.
	if IsStable("section-1928374655012", KindID) {
		t.Error("Trailing digit run should win over kebab shape")
	}
}

func TestUnstableToken(t *testing.T) {
	tests := []struct {
		selector string
		token    string
		found    bool
	}{
		{"#template--25767798276440__header", "template--25767798276440__header", true},
		{"div.product-card h3.card__heading", "", false},
		{".sc-bdVaJa .price", "sc-bdVaJa", true},
		{"button[data-testid=\"buy\"]", "", false},
		{"li.item:nth-child(3)", "", false},
		{"#hero .css-1q2w3e", "css-1q2w3e", true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			token, found := UnstableToken(tt.selector)
			if found != tt.found || token != tt.token {
				t.Errorf("UnstableToken(%q) = (%q, %v), want (%q, %v)",
					tt.selector, token, found, tt.token, tt.found)
			}
		})
	}
}
