package ai

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

const systemPrompt = `You locate the DOM element an A/B test hypothesis targets.

You receive a page URL, a readable outline of the page, the page HTML, and a hypothesis describing a change. Identify the single element the change applies to.

Respond with ONLY a JSON object, no prose, in one of two shapes.

When you find the element:
{"css_selector": "<selector matching exactly one element>", "element_text": "<its visible text>", "section_context": "<where on the page it sits>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>", "alternative_selectors": ["<backup selector>", ...]}

When the element does not exist on this page:
{"NOT_FOUND": true, "reason": "<why>", "suggestions": ["<what the page does have>", ...]}

Prefer selectors built on data-* test attributes, ARIA attributes, ids, or semantic class names. Avoid nth-child positions and generated class names.`

const outlineLimit = 2000

var outlineConverter = func() *md.Converter {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	return conv
}()

// buildUserPrompt assembles the page snapshot and hypothesis. A markdown
// outline precedes the HTML so the model can orient itself before wading
// into markup, and truncation is called out so the model does not assume a
// missing footer means a missing element.
func buildUserPrompt(req LocateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n\n", req.URL)
	if outline := pageOutline(req.HTML); outline != "" {
		fmt.Fprintf(&b, "PAGE OUTLINE:\n%s\n\n", outline)
	}
	if req.Truncated {
		b.WriteString("NOTE: the HTML below was truncated to fit; the page continues past the cut.\n\n")
	}
	fmt.Fprintf(&b, "HTML:\n%s\n\n", req.HTML)
	fmt.Fprintf(&b, "HYPOTHESIS: %s\n", req.Hypothesis)
	return b.String()
}

// pageOutline renders the page as markdown and keeps the head of it. Best
// effort: any conversion failure just drops the outline.
func pageOutline(html string) string {
	text, err := outlineConverter.ConvertString(html)
	if err != nil {
		return ""
	}
	text = strings.TrimSpace(text)
	if len(text) > outlineLimit {
		cut := strings.LastIndexByte(text[:outlineLimit], '\n')
		if cut <= 0 {
			cut = outlineLimit
		}
		text = text[:cut]
	}
	return text
}
