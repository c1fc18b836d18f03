// Package planner maps change hypotheses onto DOM anchor points and
// recommends how new markup should be attached to them.
package planner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/dom"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/selector"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// Category keywords, matched case-insensitively against the hypothesis.
// Precedence when several categories match: rating beats button beats badge
// beats replacement. "Add star ratings to the buy button area" is a rating
// change that happens to mention a button.
var categoryKeywords = []struct {
	category models.ChangeCategory
	words    []string
}{
	{models.CategoryRating, []string{"rating", "review", "star", "testimonial", "social proof"}},
	{models.CategoryButton, []string{"button", "cta", "call to action", "add to cart", "buy now", "checkout"}},
	{models.CategoryBadge, []string{"badge", "label", "tag", "sale", "discount", "urgency", "stock"}},
	{models.CategoryReplacement, []string{"replace", "rewrite", "reword", "swap"}},
}

// Categorize classifies a hypothesis into a change category by keyword.
func Categorize(hypothesis string) models.ChangeCategory {
	h := strings.ToLower(hypothesis)
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(h, w) {
				return ck.category
			}
		}
	}
	return models.CategoryGeneric
}

// Plan recommends an insertion method and anchor for placing the change
// described by the hypothesis relative to the resolved target. It never
// fails: when no category-specific anchor exists the generic append plan is
// returned.
func Plan(doc *dom.Document, target *goquery.Selection, targetSelector, hypothesis string) models.InsertionStrategy {
	category := Categorize(hypothesis)
	log.Debug().
		Str("category", string(category)).
		Str("target", targetSelector).
		Msg("planning insertion")

	switch category {
	case models.CategoryRating:
		return planRating(doc, target, targetSelector)
	case models.CategoryButton:
		return planButton(doc, target, targetSelector)
	case models.CategoryBadge:
		return planBadge(doc, target, targetSelector)
	case models.CategoryReplacement:
		return models.InsertionStrategy{
			Method:         models.InsertReplace,
			TargetSelector: targetSelector,
			Reasoning:      "hypothesis rewords existing content, so the element itself is swapped out",
			Example:        `element.outerHTML = newHTML`,
			Fallbacks: []models.InsertionStrategy{
				fallbackPlan(models.InsertBefore, targetSelector,
					"show the new copy above the original when replacement is too risky"),
				fallbackPlan(models.InsertAfter, targetSelector,
					"show the new copy under the original"),
			},
		}
	}
	return genericPlan(targetSelector)
}

// fallbackPlan builds a secondary strategy. Fallbacks never nest further.
func fallbackPlan(method models.InsertionMethod, targetSelector, reasoning string) models.InsertionStrategy {
	return models.InsertionStrategy{
		Method:         method,
		TargetSelector: targetSelector,
		Reasoning:      reasoning,
	}
}

// planRating places rating markup directly under the product title when one
// is inside the target, otherwise before the price, otherwise prepends.
func planRating(doc *dom.Document, target *goquery.Selection, targetSelector string) models.InsertionStrategy {
	if title := target.Find("h1,h2,h3,h4").First(); title.Length() > 0 {
		if anchor, ok := uniqueWithin(doc, title); ok {
			return models.InsertionStrategy{
				Method:         models.InsertAfter,
				TargetSelector: anchor,
				Reasoning:      "ratings read naturally under the product title",
				Example:        `title.insertAdjacentHTML("afterend", ratingHTML)`,
				Fallbacks: []models.InsertionStrategy{
					fallbackPlan(models.InsertPrepend, targetSelector,
						"prepend into the container when the title anchor disappears"),
				},
			}
		}
	}
	if price := target.Find(`[class*="price"]`).First(); price.Length() > 0 {
		if anchor, ok := uniqueWithin(doc, price); ok {
			return models.InsertionStrategy{
				Method:         models.InsertBefore,
				TargetSelector: anchor,
				Reasoning:      "no title inside the target, so ratings sit above the price",
				Example:        `price.insertAdjacentHTML("beforebegin", ratingHTML)`,
				Fallbacks: []models.InsertionStrategy{
					fallbackPlan(models.InsertPrepend, targetSelector,
						"prepend into the container when the price anchor disappears"),
				},
			}
		}
	}
	return models.InsertionStrategy{
		Method:         models.InsertPrepend,
		TargetSelector: targetSelector,
		Reasoning:      "no title or price anchor found inside the target container",
		Example:        `target.insertAdjacentHTML("afterbegin", ratingHTML)`,
		Fallbacks: []models.InsertionStrategy{
			fallbackPlan(models.InsertAppend, targetSelector,
				"append at the container end when the top is visually crowded"),
		},
	}
}

// planButton puts new call-to-action elements next to the existing button so
// they share its visual grouping.
func planButton(doc *dom.Document, target *goquery.Selection, targetSelector string) models.InsertionStrategy {
	if !isClickable(target) {
		return models.InsertionStrategy{
			Method:         models.InsertAppend,
			TargetSelector: targetSelector,
			Reasoning:      "target is a container, so the call-to-action is appended inside it",
			Example:        `target.insertAdjacentHTML("beforeend", ctaHTML)`,
			Fallbacks: []models.InsertionStrategy{
				fallbackPlan(models.InsertPrepend, targetSelector,
					"lead the container with the call-to-action instead"),
				fallbackPlan(models.InsertBefore, targetSelector,
					"place the call-to-action just above the container"),
			},
		}
	}
	return models.InsertionStrategy{
		Method:         models.InsertAfter,
		TargetSelector: targetSelector,
		Reasoning:      "new call-to-action sits directly after the existing button",
		Example:        `target.insertAdjacentHTML("afterend", ctaHTML)`,
		Fallbacks: []models.InsertionStrategy{
			fallbackPlan(models.InsertBefore, targetSelector,
				"place the call-to-action just above the existing button"),
			fallbackPlan(models.InsertAppend, targetSelector,
				"last resort: nest the call-to-action inside the button's element"),
		},
	}
}

// planBadge overlays badges on the target container; badges are absolutely
// positioned so they prepend inside the nearest positioned ancestor.
func planBadge(doc *dom.Document, target *goquery.Selection, targetSelector string) models.InsertionStrategy {
	return models.InsertionStrategy{
		Method:         models.InsertPrepend,
		TargetSelector: targetSelector,
		Reasoning:      "badges overlay the container corner, so they are prepended for stacking",
		Example:        `target.insertAdjacentHTML("afterbegin", badgeHTML)`,
		Fallbacks: []models.InsertionStrategy{
			fallbackPlan(models.InsertBefore, targetSelector,
				"sit the badge above the container when overlay styling is unavailable"),
		},
	}
}

func genericPlan(targetSelector string) models.InsertionStrategy {
	return models.InsertionStrategy{
		Method:         models.InsertAppend,
		TargetSelector: targetSelector,
		Reasoning:      "no category-specific placement applies, appending inside the target",
		Example:        `target.insertAdjacentHTML("beforeend", newHTML)`,
		Fallbacks: []models.InsertionStrategy{
			fallbackPlan(models.InsertAfter, targetSelector,
				"place the markup right after the target"),
			fallbackPlan(models.InsertBefore, targetSelector,
				"place the markup right before the target"),
		},
	}
}

// Anchors searches the document for elements a category of change naturally
// attaches to, for hypotheses the AI could not pin to a specific element.
// The result is empty when the category has no structural signature.
func Anchors(doc *dom.Document, category models.ChangeCategory) []*goquery.Selection {
	var searches []string
	switch category {
	case models.CategoryRating:
		searches = []string{
			`[class*="product"]`, `[class*="card"]`, `[class*="item"]`,
			`[class*="info"]`, `[class*="content"]`,
			"h1", "h2", "h3", "h4",
		}
	case models.CategoryButton:
		searches = []string{
			"button", `[role="button"]`, `a[class*="btn"]`,
			`[class*="cta"]`, `input[type="submit"]`,
		}
	case models.CategoryBadge:
		searches = []string{`[class*="price"]`, "h1", "h2", "h3"}
	default:
		return nil
	}

	var out []*goquery.Selection
	for _, s := range searches {
		matches, err := doc.Select(s)
		if err != nil {
			continue
		}
		matches.Each(func(_ int, m *goquery.Selection) {
			out = append(out, m)
		})
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// uniqueWithin generates a unique selector for an element found while
// planning. Planner anchors are best effort, so ambiguity means skip.
func uniqueWithin(doc *dom.Document, sel *goquery.Selection) (string, bool) {
	g := selector.NewGenerator(doc)
	best, ok := g.FirstUnique(g.Generate(sel))
	if !ok {
		return "", false
	}
	return best.Selector, true
}

func isClickable(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "button", "a", "input":
		return true
	}
	if role, ok := sel.Attr("role"); ok && role == "button" {
		return true
	}
	return false
}
