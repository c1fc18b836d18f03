package models

import "time"

// Page represents one fetched storefront page. It is the raw input to
// target resolution; the resolver never mutates it.
type Page struct {
	URL          string    `json:"url"`
	StatusCode   int       `json:"status_code"`
	Title        string    `json:"title,omitempty"`
	HTML         string    `json:"html,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
	ResponseTime int64     `json:"response_time_ms"`
}

// SelectorStrategy identifies which generation strategy produced a candidate.
type SelectorStrategy string

const (
	StrategyDataAttr         SelectorStrategy = "data-attr"
	StrategyRole             SelectorStrategy = "role"
	StrategyAriaLabel        SelectorStrategy = "aria-label"
	StrategyID               SelectorStrategy = "id"
	StrategySemanticClass    SelectorStrategy = "semantic-class"
	StrategyStructuralParent SelectorStrategy = "structural-parent"
	StrategyIndexedPath      SelectorStrategy = "indexed-path"
	StrategyTextMatch        SelectorStrategy = "text-match"
)

// CandidateSelector is a single proposed CSS selector with its originating
// strategy and the raw weight that strategy assigns. Candidates live only
// inside one resolution call and are never persisted.
type CandidateSelector struct {
	Selector string           `json:"selector"`
	Strategy SelectorStrategy `json:"strategy"`
	Weight   float64          `json:"weight"`
}

// ValidationResult is the outcome of running one selector against a document.
//
// Works is true iff MatchCount == 1. Confidence is a 0-1 reliability estimate
// of the selector surviving a template re-render; stability penalties only
// ever reduce it.
type ValidationResult struct {
	Selector   string  `json:"selector"`
	MatchCount int     `json:"match_count"`
	Works      bool    `json:"works"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ElementType is a semantic role guess for a resolved element.
type ElementType string

const (
	ElementButton      ElementType = "button"
	ElementText        ElementType = "text"
	ElementImage       ElementType = "image"
	ElementContainer   ElementType = "container"
	ElementForm        ElementType = "form"
	ElementNavigation  ElementType = "navigation"
	ElementPrice       ElementType = "price"
	ElementTitle       ElementType = "title"
	ElementDescription ElementType = "description"
)

// InsertionMethod is the DOM mutation verb for splicing variant markup.
type InsertionMethod string

const (
	InsertBefore  InsertionMethod = "before"
	InsertAfter   InsertionMethod = "after"
	InsertPrepend InsertionMethod = "prepend"
	InsertAppend  InsertionMethod = "append"
	InsertReplace InsertionMethod = "replace"
	InsertWrap    InsertionMethod = "wrap"
)

// ChangeCategory classifies a hypothesis by the kind of UI change it implies.
type ChangeCategory string

const (
	CategoryRating      ChangeCategory = "rating"
	CategoryButton      ChangeCategory = "button"
	CategoryBadge       ChangeCategory = "badge"
	CategoryReplacement ChangeCategory = "replacement"
	CategoryGeneric     ChangeCategory = "generic"
)

// InsertionStrategy describes where and how variant markup should be spliced
// relative to a resolved element. Fallbacks are full strategies in preference
// order, each with its own anchor and reasoning; they carry no fallbacks of
// their own.
type InsertionStrategy struct {
	Method         InsertionMethod     `json:"method"`
	TargetSelector string              `json:"target_selector"`
	Reasoning      string              `json:"reasoning"`
	Example        string              `json:"example,omitempty"`
	Fallbacks      []InsertionStrategy `json:"fallbacks,omitempty"`
}

// ElementContext carries spatial/interaction metadata for downstream code
// generation. The resolver populates it but never consults it.
type ElementContext struct {
	ParentLayout    string   `json:"parent_layout,omitempty"`
	SiblingTags     []string `json:"sibling_tags,omitempty"`
	HasClickHandler bool     `json:"has_click_handler"`
}

// InjectionPoint is the unit returned to callers: a validated DOM location
// where experiment-variant markup can be spliced. Immutable once built.
type InjectionPoint struct {
	Selector             string             `json:"selector"`
	Type                 ElementType        `json:"type"`
	Confidence           float64            `json:"confidence"`
	AlternativeSelectors []string           `json:"alternative_selectors,omitempty"`
	Reasoning            string             `json:"reasoning,omitempty"`
	Hypothesis           string             `json:"hypothesis"`
	URL                  string             `json:"url,omitempty"`
	InsertionStrategy    *InsertionStrategy `json:"insertion_strategy,omitempty"`
	ElementContext       *ElementContext    `json:"element_context,omitempty"`
}
