package resolver

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/ai"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/dom"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/planner"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/selector"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// state tracks which resolution tier is running. Tiers only move forward:
// a failed AI locate falls through to text matching, text matching to the
// structural guess, and the structural guess to the not-found terminal.
type state int

const (
	stateAI state = iota
	stateTextMatch
	stateStructural
	stateNotFound
)

func (s state) String() string {
	switch s {
	case stateAI:
		return "ai"
	case stateTextMatch:
		return "text-match"
	case stateStructural:
		return "structural"
	default:
		return "not-found"
	}
}

// Structural guesses are anchored on page shape alone, so their confidence
// never exceeds this cap regardless of selector quality.
const structuralConfidenceCap = 0.5

// Options configures a Resolver.
type Options struct {
	// Completer is the AI element locator; nil disables the AI tier.
	Completer ai.Completer
	// DocumentCharBudget bounds normalized HTML sent to the model.
	DocumentCharBudget int
	// MaxAlternatives caps backup selectors on each injection point.
	MaxAlternatives int
}

// Resolver maps change hypotheses to injection points on fetched pages.
type Resolver struct {
	completer ai.Completer
	budget    int
	maxAlts   int
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	maxAlts := opts.MaxAlternatives
	if maxAlts <= 0 {
		maxAlts = 5
	}
	return &Resolver{
		completer: opts.Completer,
		budget:    opts.DocumentCharBudget,
		maxAlts:   maxAlts,
	}
}

// Resolve finds the element the hypothesis targets on the page and plans the
// insertion. Resolution failures below the document level never error: the
// pipeline degrades through its tiers, and when all of them miss the result
// is an empty slice, not an error. Only an unusable document and context
// cancellation propagate.
func (r *Resolver) Resolve(ctx context.Context, page *models.Page, hypothesis string) ([]*models.InjectionPoint, error) {
	if page == nil || strings.TrimSpace(page.HTML) == "" {
		return nil, NewResolutionError(ErrCodeNoDocument, "empty page HTML", ErrNoDocument)
	}
	doc, err := dom.New(page.HTML, r.budget)
	if err != nil {
		return nil, NewResolutionError(ErrCodeNoDocument, "parse page HTML", err)
	}

	st := stateAI
	if r.completer == nil {
		st = stateTextMatch
	}

	var seedText string // element_text from an AI reply whose selectors all failed
	for {
		log.Debug().
			Str("state", st.String()).
			Str("url", page.URL).
			Msg("resolution tier")

		switch st {
		case stateAI:
			point, next, err := r.aiTier(ctx, doc, page, hypothesis, &seedText)
			if err != nil {
				return nil, err
			}
			if point != nil {
				return []*models.InjectionPoint{point}, nil
			}
			st = next

		case stateTextMatch:
			if point := r.textTier(doc, page, hypothesis, seedText); point != nil {
				return []*models.InjectionPoint{point}, nil
			}
			st = stateStructural

		case stateStructural:
			if point := r.structuralTier(doc, page, hypothesis); point != nil {
				return []*models.InjectionPoint{point}, nil
			}
			st = stateNotFound

		case stateNotFound:
			// Every tier missed. That is a valid outcome, not a failure.
			log.Info().
				Str("code", string(ErrCodeNoElementFound)).
				Str("url", page.URL).
				Msg("hypothesis matched no element")
			return []*models.InjectionPoint{}, nil
		}
	}
}

// aiTier asks the model for a selector and validates its answer. The tier
// trusts the model about WHICH element, never about whether the selector
// works: every selector it returns is checked against the document.
func (r *Resolver) aiTier(ctx context.Context, doc *dom.Document, page *models.Page, hypothesis string, seedText *string) (*models.InjectionPoint, state, error) {
	comp, err := r.completer.Locate(ctx, ai.LocateRequest{
		Hypothesis: hypothesis,
		URL:        page.URL,
		HTML:       doc.HTML(),
		Truncated:  doc.Truncated(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, stateNotFound, err
		}
		log.Warn().Err(err).Str("url", page.URL).Msg("ai locate failed, falling back")
		return nil, stateTextMatch, nil
	}

	switch c := comp.(type) {
	case *ai.ElementNotFound:
		// The model may simply have missed it in a truncated or noisy
		// document; text recovery gets its own look before the guess tiers.
		log.Debug().Str("reason", c.Reason).Msg("ai reports element absent")
		return nil, stateTextMatch, nil

	case *ai.ElementFound:
		v := selector.NewValidator(doc)
		for _, s := range append([]string{c.CSSSelector}, c.AlternativeSelectors...) {
			res := v.Validate(s)
			if !res.Works {
				log.Debug().Str("selector", s).Str("reason", res.Reason).Msg("ai selector rejected")
				continue
			}
			target, selErr := doc.Select(s)
			if selErr != nil {
				continue
			}
			return r.accept(doc, target.First(), page, hypothesis, acceptance{
				selector:   s,
				confidence: res.Confidence,
				reasoning:  c.Reasoning,
				aiAlts:     c.AlternativeSelectors,
			}), stateNotFound, nil
		}
		// Every AI selector failed, but the model told us what the element
		// says. Text matching can recover from that.
		*seedText = c.ElementText
		return nil, stateTextMatch, nil
	}
	return nil, stateTextMatch, nil
}

// textTier locates the element by its visible text and regenerates a
// selector from the DOM node itself.
func (r *Resolver) textTier(doc *dom.Document, page *models.Page, hypothesis, seedText string) *models.InjectionPoint {
	target, how := findByText(doc, hypothesis, seedText)
	if target == nil {
		return nil
	}

	g := selector.NewGenerator(doc)
	best, ok := g.FirstUnique(g.Generate(target))
	if !ok {
		return nil
	}
	res := selector.NewValidator(doc).Validate(best.Selector)
	return r.accept(doc, target, page, hypothesis, acceptance{
		selector:   best.Selector,
		confidence: res.Confidence,
		reasoning:  "located by visible text (" + how + ")",
	})
}

// structuralTier guesses an anchor from the hypothesis category and the page
// shape. Confidence is capped since nothing confirmed the specific element.
func (r *Resolver) structuralTier(doc *dom.Document, page *models.Page, hypothesis string) *models.InjectionPoint {
	category := planner.Categorize(hypothesis)
	anchors := planner.Anchors(doc, category)
	if len(anchors) == 0 {
		return nil
	}

	g := selector.NewGenerator(doc)
	v := selector.NewValidator(doc)
	for _, anchor := range anchors {
		best, ok := g.FirstUnique(g.Generate(anchor))
		if !ok {
			continue
		}
		res := v.Validate(best.Selector)
		return r.accept(doc, anchor, page, hypothesis, acceptance{
			selector:   best.Selector,
			confidence: min(res.Confidence, structuralConfidenceCap),
			reasoning:  "structural guess for a " + string(category) + " change",
		})
	}
	return nil
}

// acceptance carries tier-specific fields into injection point assembly.
type acceptance struct {
	selector   string
	confidence float64
	reasoning  string
	aiAlts     []string
}

// accept builds the full injection point for a confirmed target: backup
// selectors, element type, insertion plan, and layout context.
func (r *Resolver) accept(doc *dom.Document, target *goquery.Selection, page *models.Page, hypothesis string, a acceptance) *models.InjectionPoint {
	log.Debug().
		Str("selector", a.selector).
		Float64("confidence", a.confidence).
		Str("url", page.URL).
		Msg("hypothesis resolved")

	strat := planner.Plan(doc, target, a.selector, hypothesis)
	return &models.InjectionPoint{
		Selector:             a.selector,
		Type:                 guessElementType(target),
		Confidence:           a.confidence,
		AlternativeSelectors: r.alternatives(doc, target, a.selector, a.aiAlts),
		Reasoning:            a.reasoning,
		Hypothesis:           hypothesis,
		URL:                  page.URL,
		InsertionStrategy:    &strat,
		ElementContext:       elementContext(target),
	}
}

// alternatives collects backup selectors for the target: regenerated
// candidates plus any AI suggestions, each revalidated for uniqueness,
// ordered by confidence, primary excluded.
func (r *Resolver) alternatives(doc *dom.Document, target *goquery.Selection, primary string, aiAlts []string) []string {
	g := selector.NewGenerator(doc)
	v := selector.NewValidator(doc)

	seen := map[string]struct{}{primary: {}}
	var scored []models.ValidationResult
	consider := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		if res := v.Validate(s); res.Works {
			scored = append(scored, res)
		}
	}

	for _, c := range g.Generate(target) {
		consider(c.Selector)
	}
	for _, s := range aiAlts {
		consider(s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})
	if len(scored) > r.maxAlts {
		scored = scored[:r.maxAlts]
	}
	out := make([]string, len(scored))
	for i, res := range scored {
		out[i] = res.Selector
	}
	return out
}

// guessElementType assigns a semantic role from tag, attributes, and text.
func guessElementType(sel *goquery.Selection) models.ElementType {
	tag := goquery.NodeName(sel)
	switch tag {
	case "button":
		return models.ElementButton
	case "img", "picture", "svg":
		return models.ElementImage
	case "form", "input", "select", "textarea":
		return models.ElementForm
	case "nav":
		return models.ElementNavigation
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return models.ElementTitle
	}
	if role, ok := sel.Attr("role"); ok && role == "button" {
		return models.ElementButton
	}
	if tag == "a" {
		return models.ElementButton
	}
	class, _ := sel.Attr("class")
	text := strings.TrimSpace(sel.Text())
	if strings.Contains(strings.ToLower(class), "price") || startsWithCurrency(text) {
		return models.ElementPrice
	}
	switch tag {
	case "div", "section", "article", "ul", "ol", "main", "aside", "header", "footer":
		return models.ElementContainer
	}
	if tag == "p" && len(text) > 80 {
		return models.ElementDescription
	}
	return models.ElementText
}

func startsWithCurrency(text string) bool {
	for _, prefix := range []string{"$", "€", "£", "¥"} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// elementContext captures layout hints downstream variant generators need.
func elementContext(sel *goquery.Selection) *models.ElementContext {
	ec := &models.ElementContext{ParentLayout: "block"}

	if parent := sel.Parent(); parent.Length() > 0 {
		class, _ := parent.Attr("class")
		lower := strings.ToLower(class)
		switch {
		case strings.Contains(lower, "grid"):
			ec.ParentLayout = "grid"
		case strings.Contains(lower, "flex") || strings.Contains(lower, "row"):
			ec.ParentLayout = "flex"
		}
	}

	seen := make(map[string]struct{})
	sel.Siblings().Each(func(_ int, sib *goquery.Selection) {
		if len(ec.SiblingTags) >= 4 {
			return
		}
		tag := goquery.NodeName(sib)
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		ec.SiblingTags = append(ec.SiblingTags, tag)
	})

	_, ec.HasClickHandler = sel.Attr("onclick")
	return ec
}
