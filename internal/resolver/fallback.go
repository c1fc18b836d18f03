package resolver

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/dom"
)

var quotedPhraseRe = regexp.MustCompile(`"([^"]{3,})"|'([^']{3,})'|“([^”]{3,})”`)

// findByText locates a target element by its visible text. Sources are
// tried in order of specificity: the text the AI attributed to the element,
// phrases the hypothesis quotes, and finally leaf elements whose text the
// hypothesis contains. Ties go to the first element in document order.
func findByText(doc *dom.Document, hypothesis, seedText string) (*goquery.Selection, string) {
	if seed := strings.TrimSpace(seedText); seed != "" {
		if el := exactTextMatch(doc, seed); el != nil {
			return el, "ai element text"
		}
	}

	for _, m := range quotedPhraseRe.FindAllStringSubmatch(hypothesis, -1) {
		phrase := m[1] + m[2] + m[3] // exactly one group is non-empty
		if el := exactTextMatch(doc, strings.TrimSpace(phrase)); el != nil {
			return el, "quoted phrase"
		}
	}

	if el := leafTextScan(doc, hypothesis); el != nil {
		return el, "leaf text"
	}
	return nil, ""
}

// exactTextMatch finds the deepest element whose trimmed text equals want.
// Ancestors of a matching element carry the same text, so matches with an
// equally-texted child are skipped to land on the element itself.
func exactTextMatch(doc *dom.Document, want string) *goquery.Selection {
	var found *goquery.Selection
	doc.Root().Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) != want {
			return true
		}
		deeper := false
		sel.Children().Each(func(_ int, child *goquery.Selection) {
			if strings.TrimSpace(child.Text()) == want {
				deeper = true
			}
		})
		if deeper {
			return true
		}
		found = sel
		return false
	})
	return found
}

// leafTextScan finds near-leaf elements whose visible text appears inside
// the hypothesis. The longest matching text wins: "Add to cart" beats
// "cart" when the hypothesis mentions the full button label.
func leafTextScan(doc *dom.Document, hypothesis string) *goquery.Selection {
	h := strings.ToLower(hypothesis)
	var best *goquery.Selection
	bestLen := 0

	doc.Root().Find("*").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 3 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if len(text) < 3 || len(text) > 80 {
			return
		}
		if !strings.Contains(h, strings.ToLower(text)) {
			return
		}
		// An ancestor repeats its only child's text; land on the child.
		deeper := false
		sel.Children().Each(func(_ int, child *goquery.Selection) {
			if strings.TrimSpace(child.Text()) == text {
				deeper = true
			}
		})
		if deeper {
			return
		}
		if len(text) > bestLen {
			best = sel
			bestLen = len(text)
		}
	})
	return best
}
