// Package dom provides the canonical in-memory representation of a fetched
// page: normalization of raw HTML into an analyzable string, and a frozen,
// queryable document snapshot that selectors are resolved against.
package dom

import (
	"regexp"
	"strings"
)

// TruncationSentinel is appended to a document that was cut at the character
// budget. It is a real element rather than an HTML comment so that a second
// normalization pass preserves it (comments are stripped).
const TruncationSentinel = `<i data-truncated="true"></i>`

var (
	scriptRe   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	noscriptRe = regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript>`)
	// Unterminated script/style blocks swallow the rest of the document in a
	// real parser; match that behavior rather than leaving code as text.
	openScriptRe = regexp.MustCompile(`(?is)<(?:script|style)\b[^>]*>.*\z`)
	commentRe    = regexp.MustCompile(`(?s)<!--.*?-->`)
	styleLinkRe  = regexp.MustCompile(`(?i)<link\b[^>]*\bstylesheet\b[^>]*>`)
	wsRe         = regexp.MustCompile(`\s+`)
	interTagRe   = regexp.MustCompile(`>\s+<`)
)

// Normalize strips script/style/noscript/stylesheet-link elements and HTML
// comments from raw markup, collapses whitespace runs to single spaces, and
// removes whitespace between adjacent tags. The result is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
//
// If budget > 0 and the normalized document exceeds it, the document is cut
// deterministically at a tag boundary and TruncationSentinel is appended; the
// returned bool reports whether truncation happened. Callers must treat a
// truncated document as potentially missing the target element, not as
// evidence of absence.
func Normalize(raw string, budget int) (string, bool) {
	s := scriptRe.ReplaceAllString(raw, "")
	s = styleRe.ReplaceAllString(s, "")
	s = noscriptRe.ReplaceAllString(s, "")
	s = openScriptRe.ReplaceAllString(s, "")
	s = commentRe.ReplaceAllString(s, "")
	s = styleLinkRe.ReplaceAllString(s, "")
	s = wsRe.ReplaceAllString(s, " ")
	s = interTagRe.ReplaceAllString(s, "><")
	s = strings.TrimSpace(s)

	if budget <= 0 || len(s) <= budget {
		return s, false
	}
	if strings.HasSuffix(s, TruncationSentinel) {
		return s, true
	}

	cut := budget - len(TruncationSentinel)
	if cut < 1 {
		return TruncationSentinel, true
	}
	// Prefer cutting right after a '>' so we never stop mid-tag.
	if i := strings.LastIndexByte(s[:cut], '>'); i >= 0 {
		cut = i + 1
	}
	return s[:cut] + TruncationSentinel, true
}
