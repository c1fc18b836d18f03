// Package stability judges whether an id or class token was written by a
// human author (stable across template re-renders) or produced by a build,
// templating, or component-library step (regenerated on every deploy).
//
// This is the single shared implementation consulted by the candidate
// generator, the validator, and the resolver fallback paths; keeping one copy
// is what makes confidence scores comparable across strategies.
package stability

import "regexp"

// Kind is the identifier kind being classified.
type Kind string

const (
	KindID    Kind = "id"
	KindClass Kind = "class"
)

// Generated-artifact shapes. These take precedence: a token matching both a
// generated and an authored pattern is unstable.
var unstablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9]+$`),            // pure numeric
	regexp.MustCompile(`^[0-9a-fA-F]{8,}$`),   // hex hash
	regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`), // UUID
	regexp.MustCompile(`[0-9]{10,}$`), // trailing counter/timestamp run
	// Auto-incrementing component-library ids.
	regexp.MustCompile(`^ember[0-9]+$`),
	regexp.MustCompile(`^react-select-[0-9]+`),
	regexp.MustCompile(`^downshift-[0-9]+`),
	regexp.MustCompile(`^mui-[0-9]+`),
	regexp.MustCompile(`^(?:headlessui|radix)-`),
	// CSS-in-JS build hashes.
	regexp.MustCompile(`^css-[0-9a-z]{5,}$`),
	regexp.MustCompile(`^sc-[a-zA-Z]{6,}$`),
	regexp.MustCompile(`^jsx-[0-9]+$`),
	regexp.MustCompile(`^svelte-[0-9a-z]{5,}$`),
	// Template-engine section identifiers, e.g. template--25767798276440__header.
	regexp.MustCompile(`(?:template|section|block)--?[0-9]{6,}`),
}

// Authored conventions: kebab-case words (digits allowed), BEM blocks with
// __element / --modifier parts, plain lowercase words.
var stablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z][a-z0-9]*(?:-[a-z0-9]+)*(?:__[a-z0-9]+(?:-[a-z0-9]+)*)?(?:--[a-z0-9]+(?:-[a-z0-9]+)*)?$`),
}

// IsStable reports whether the identifier looks author-written. Tokens that
// match neither set (camelCase, mixed-case, punctuation-heavy) are treated as
// not stable: they cannot be trusted to survive a re-render.
func IsStable(value string, kind Kind) bool {
	if value == "" {
		return false
	}
	// One- and two-letter class tokens are almost always minifier output.
	if kind == KindClass && len(value) <= 2 {
		return false
	}
	for _, re := range unstablePatterns {
		if re.MatchString(value) {
			return false
		}
	}
	for _, re := range stablePatterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

var (
	idTokenRe    = regexp.MustCompile(`#([A-Za-z_][\w-]*)`)
	classTokenRe = regexp.MustCompile(`\.([A-Za-z_][\w-]*)`)
)

// UnstableToken scans a full CSS selector for id/class tokens and returns the
// first one that fails IsStable, if any. Attribute values and pseudo-class
// arguments are not classified.
func UnstableToken(selector string) (string, bool) {
	for _, m := range idTokenRe.FindAllStringSubmatch(selector, -1) {
		if !IsStable(m[1], KindID) {
			return m[1], true
		}
	}
	for _, m := range classTokenRe.FindAllStringSubmatch(selector, -1) {
		if !IsStable(m[1], KindClass) {
			return m[1], true
		}
	}
	return "", false
}
