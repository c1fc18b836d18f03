// Package ai is the boundary to the language model that maps hypotheses to
// page elements. The model's JSON reply is decoded into a closed set of
// completion types here; nothing downstream parses model output.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedCompletion reports a model reply that fits neither completion
// shape. Callers treat it like a miss, not a failure.
var ErrMalformedCompletion = errors.New("ai: completion is neither element_found nor not_found")

// LocateRequest asks the model to find the element a hypothesis targets.
type LocateRequest struct {
	Hypothesis string
	URL        string
	HTML       string
	Truncated  bool
}

// Completion is the decoded model verdict, either *ElementFound or
// *ElementNotFound.
type Completion interface {
	isCompletion()
}

// ElementFound is the model's claim that a specific element matches.
type ElementFound struct {
	CSSSelector          string   `json:"css_selector"`
	ElementText          string   `json:"element_text"`
	SectionContext       string   `json:"section_context"`
	Confidence           float64  `json:"confidence"`
	Reasoning            string   `json:"reasoning"`
	AlternativeSelectors []string `json:"alternative_selectors"`
}

func (*ElementFound) isCompletion() {}

// ElementNotFound is the model's explicit miss, with repair hints.
type ElementNotFound struct {
	NotFound    bool     `json:"NOT_FOUND"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions"`
}

func (*ElementNotFound) isCompletion() {}

// Completer locates the element a hypothesis refers to within a page.
type Completer interface {
	Locate(ctx context.Context, req LocateRequest) (Completion, error)
}

// Decode parses a raw model reply into a Completion. Markdown code fences
// around the JSON are tolerated since models add them despite instructions.
func Decode(raw string) (Completion, error) {
	body := stripFences(raw)

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &probe); err != nil {
		return nil, ErrMalformedCompletion
	}
	if _, ok := probe["NOT_FOUND"]; ok {
		var nf ElementNotFound
		if err := json.Unmarshal([]byte(body), &nf); err != nil {
			return nil, ErrMalformedCompletion
		}
		return &nf, nil
	}
	if _, ok := probe["css_selector"]; ok {
		var found ElementFound
		if err := json.Unmarshal([]byte(body), &found); err != nil {
			return nil, ErrMalformedCompletion
		}
		if found.CSSSelector == "" {
			return nil, ErrMalformedCompletion
		}
		return &found, nil
	}
	return nil, ErrMalformedCompletion
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
