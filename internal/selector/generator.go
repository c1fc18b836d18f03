// Package selector turns resolved DOM nodes into ranked CSS selector
// candidates and validates arbitrary selectors against a document snapshot.
package selector

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/dom"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/stability"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// Test-hook attributes, checked verbatim and first: they are put on elements
// specifically to survive template re-renders and localization.
var dataAttrs = []string{"data-testid", "data-test", "data-cy", "data-qa", "data-id"}

// Raw weights assigned by generation strategy. The validator re-scores every
// selector by shape afterwards; these only order candidates before validation.
const (
	weightDataAttr   = 0.95
	weightRole       = 0.9
	weightAria       = 0.9
	weightID         = 0.85
	weightClass      = 0.8
	weightStructural = 0.5
	weightSoleTag    = 0.45
	weightIndexed    = 0.3
)

// Generator produces candidate selectors for elements of one document.
type Generator struct {
	doc *dom.Document
}

// NewGenerator creates a Generator bound to the given document snapshot.
func NewGenerator(doc *dom.Document) *Generator {
	return &Generator{doc: doc}
}

// Generate emits every candidate selector for the element, in strict strategy
// precedence: data-attributes, role, aria-label, stable id, stable class
// combinations, ancestor-scoped, sole-sibling tag, and finally the indexed
// full path. The last strategy always succeeds, so the result is never empty.
func (g *Generator) Generate(sel *goquery.Selection) []models.CandidateSelector {
	if sel == nil || sel.Length() == 0 {
		return nil
	}

	var out []models.CandidateSelector
	seen := make(map[string]struct{})
	add := func(selector string, strategy models.SelectorStrategy, weight float64) {
		if selector == "" {
			return
		}
		if _, ok := seen[selector]; ok {
			return
		}
		seen[selector] = struct{}{}
		out = append(out, models.CandidateSelector{
			Selector: selector,
			Strategy: strategy,
			Weight:   weight,
		})
	}

	tag := goquery.NodeName(sel)

	// 1. Test-hook data attributes.
	for _, attr := range dataAttrs {
		if v, ok := sel.Attr(attr); ok && v != "" {
			add(fmt.Sprintf(`[%s=%q]`, attr, v), models.StrategyDataAttr, weightDataAttr)
		}
	}

	// 2./3. ARIA landmarks.
	if v, ok := sel.Attr("role"); ok && v != "" {
		add(fmt.Sprintf(`%s[role=%q]`, tag, v), models.StrategyRole, weightRole)
	}
	if v, ok := sel.Attr("aria-label"); ok && v != "" {
		add(fmt.Sprintf(`%s[aria-label=%q]`, tag, v), models.StrategyAriaLabel, weightAria)
	}

	// 4. Author-written id.
	if id, ok := sel.Attr("id"); ok && stability.IsStable(id, stability.KindID) {
		add("#"+cssEscape(id), models.StrategyID, weightID)
	}

	// 5. Stable class combinations. Unstable classes are filtered before
	// combining, never padded back in.
	stable := stableClasses(sel)
	for _, c := range stable {
		add(tag+"."+cssEscape(c), models.StrategySemanticClass, weightClass)
	}
	if len(stable) >= 2 {
		add(tag+"."+cssEscape(stable[0])+"."+cssEscape(stable[1]), models.StrategySemanticClass, weightClass)
	}
	if len(stable) == 3 {
		add(tag+"."+cssEscape(stable[0])+"."+cssEscape(stable[1])+"."+cssEscape(stable[2]),
			models.StrategySemanticClass, weightClass)
	}

	// 6. Ancestor-scoped descendant selectors.
	own := ""
	if len(stable) > 0 {
		own = stable[0]
	}
	ancestor := sel.Parent()
	for depth := 0; depth < 2 && ancestor.Length() > 0; depth++ {
		anc := stableClasses(ancestor)
		if len(anc) > 0 {
			scoped := "." + cssEscape(anc[0]) + " " + tag
			add(scoped, models.StrategyStructuralParent, weightStructural)
			if own != "" {
				add("."+cssEscape(anc[0])+" "+tag+"."+cssEscape(own),
					models.StrategyStructuralParent, weightStructural)
			}
		}
		ancestor = ancestor.Parent()
	}

	// 7. Sole sibling of its type: the bare tag is meaningful inside an
	// already-scoped ancestor context.
	if parent := sel.Parent(); parent.Length() > 0 && parent.ChildrenFiltered(tag).Length() == 1 {
		add(tag, models.StrategyStructuralParent, weightSoleTag)
	}

	// 8. Indexed full path, the selector of last resort.
	add(g.indexedPath(sel), models.StrategyIndexedPath, weightIndexed)

	return out
}

// FirstUnique runs the candidates through the validator in generation order
// and returns the first one that matches exactly one element. The boolean is
// false when no candidate is unique.
func (g *Generator) FirstUnique(candidates []models.CandidateSelector) (models.CandidateSelector, bool) {
	v := NewValidator(g.doc)
	for _, c := range candidates {
		res := v.Validate(c.Selector)
		if res.Works {
			return c, true
		}
		log.Debug().
			Str("selector", c.Selector).
			Str("strategy", string(c.Strategy)).
			Int("matches", res.MatchCount).
			Msg("candidate rejected")
	}
	return models.CandidateSelector{}, false
}

// indexedPath builds a "tag:nth-child(n)" chain from the nearest stable-id
// ancestor (or body) down to the element. nth-child indexes count all element
// siblings, matching CSS semantics.
func (g *Generator) indexedPath(sel *goquery.Selection) string {
	var parts []string
	cur := sel
	for cur.Length() > 0 {
		tag := goquery.NodeName(cur)
		if tag == "body" || tag == "html" {
			break
		}
		if id, ok := cur.Attr("id"); ok && stability.IsStable(id, stability.KindID) && cur != sel {
			parts = append([]string{"#" + cssEscape(id)}, parts...)
			return strings.Join(parts, " > ")
		}
		parts = append([]string{fmt.Sprintf("%s:nth-child(%d)", tag, elementIndex(cur))}, parts...)
		cur = cur.Parent()
	}
	if len(parts) == 0 {
		return goquery.NodeName(sel)
	}
	return strings.Join(parts, " > ")
}

// elementIndex returns the 1-based position of sel among its element
// siblings, matching :nth-child semantics (all element nodes count, text and
// comment nodes do not).
func elementIndex(sel *goquery.Selection) int {
	node := sel.Get(0)
	idx := 1
	for s := node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			idx++
		}
	}
	return idx
}

// stableClasses returns the element's classes that pass the stability
// classifier, preserving attribute order.
func stableClasses(sel *goquery.Selection) []string {
	raw, ok := sel.Attr("class")
	if !ok {
		return nil
	}
	var out []string
	for _, c := range strings.Fields(raw) {
		if stability.IsStable(c, stability.KindClass) {
			out = append(out, c)
		}
	}
	return out
}

// cssEscape escapes the characters that would change the meaning of an
// identifier inside a selector. Covers the tokens real class and id
// attributes contain; full CSS.escape is not needed for authored names.
func cssEscape(ident string) string {
	var b strings.Builder
	for _, r := range ident {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteString(`\` + string(r))
		}
	}
	return b.String()
}
