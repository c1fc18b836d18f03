package selector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/dom"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/stability"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// Validator checks selectors against one document snapshot and assigns a
// confidence score from the selector's shape. Confidence ranks candidates
// relative to each other; it is not a calibrated probability.
type Validator struct {
	doc *dom.Document
}

// NewValidator creates a Validator bound to the given document.
func NewValidator(doc *dom.Document) *Validator {
	return &Validator{doc: doc}
}

var (
	dataAttrShapeRe = regexp.MustCompile(`\[data-[a-z-]+[=\]]`)
	ariaShapeRe     = regexp.MustCompile(`\[(?:role|aria-[a-z-]+)=`)
	idShapeRe       = regexp.MustCompile(`#([A-Za-z_][\w-]*)`)
	classShapeRe    = regexp.MustCompile(`\.([A-Za-z_][\w-]*)`)
)

// Validate compiles and runs the selector, then scores it. A selector that
// fails to compile or matches zero elements scores 0; one that matches more
// than one element scores 0.3 since it still identifies a region. Exactly one
// match is scored by shape, then capped for fragile positional or generated
// tokens.
func (v *Validator) Validate(selector string) models.ValidationResult {
	res := models.ValidationResult{Selector: selector}

	n, err := v.doc.Count(selector)
	if err != nil {
		res.Reason = "malformed selector: " + err.Error()
		return res
	}
	res.MatchCount = n

	switch {
	case n == 0:
		res.Reason = "no match"
		return res
	case n > 1:
		res.Confidence = 0.3
		res.Reason = fmt.Sprintf("matches %d elements, expected 1", n)
		// A generated token is disposable no matter how many elements the
		// selector happens to match today.
		if tok, found := stability.UnstableToken(selector); found {
			res.Confidence = min(res.Confidence, 0.1)
			res.Reason = "contains generated token " + tok
		}
		return res
	}

	res.Works = true
	res.Confidence, res.Reason = shapeScore(selector)

	// Positional selectors break on any sibling insertion, whatever else
	// the selector carries.
	if strings.Contains(selector, ":nth-child(") {
		res.Confidence = min(res.Confidence, 0.3)
		res.Reason = "positional path"
	}
	if tok, found := stability.UnstableToken(selector); found {
		res.Confidence = min(res.Confidence, 0.1)
		res.Reason = "contains generated token " + tok
	}
	return res
}

// shapeScore rates a uniquely-matching selector by the strongest feature it
// carries, in decreasing order of resilience to re-renders. The label reports
// which feature won.
func shapeScore(selector string) (float64, string) {
	if dataAttrShapeRe.MatchString(selector) {
		return 0.95, "data attribute"
	}
	if ariaShapeRe.MatchString(selector) {
		return 0.9, "aria attribute"
	}
	if m := idShapeRe.FindStringSubmatch(selector); m != nil {
		if stability.IsStable(m[1], stability.KindID) {
			return 0.85, "stable id"
		}
		return 0.1, "unstable id"
	}
	// Text-dependent selectors break under copy edits and localization.
	if strings.Contains(selector, ":contains(") {
		return 0.6, "text-dependent"
	}

	classes := classShapeRe.FindAllString(selector, -1)
	compounds := strings.Count(selector, ">") + len(strings.Fields(selector))
	switch {
	case len(classes) > 3 || compounds > 4:
		return 0.4, "complex chain"
	case len(classes) >= 1 && len(classes) <= 2:
		return 0.8, "semantic classes"
	case len(classes) == 3:
		return 0.7, "semantic classes"
	}
	// Bare tag or attribute-free structural selector.
	return 0.5, "bare tag"
}
