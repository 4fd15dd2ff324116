// Package snippet extracts bounded context windows around a search match
// in markup-bearing document text.
package snippet

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fallback selects what Extract returns when no part of the query is found.
type Fallback string

const (
	// FallbackEmpty returns "" on a miss.
	FallbackEmpty Fallback = "empty"
	// FallbackLeading returns the first LeadingChars characters of the
	// cleaned text followed by an ellipsis on a miss.
	FallbackLeading Fallback = "leading"
)

// LeadingChars is the prefix length used by FallbackLeading.
const LeadingChars = 500

// Block-level chrome is dropped wholesale before the generic tag strip so
// that navigation boilerplate never wins a match.
var (
	navRe    = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	headerRe = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	footerRe = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	menuRe   = regexp.MustCompile(`(?is)<menu[^>]*>.*?</menu>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
)

// Extractor produces context snippets. WindowChars is the number of
// characters kept on each side of the match.
type Extractor struct {
	WindowChars int
	Fallback    Fallback
}

// New returns an Extractor with the given window size and fallback policy.
func New(windowChars int, fallback Fallback) Extractor {
	return Extractor{WindowChars: windowChars, Fallback: fallback}
}

// Clean strips chrome blocks and remaining markup from text and collapses
// whitespace.
func Clean(text string) string {
	text = navRe.ReplaceAllString(text, " ")
	text = headerRe.ReplaceAllString(text, " ")
	text = footerRe.ReplaceAllString(text, " ")
	text = menuRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// Extract returns a snippet of text centered on the first case-insensitive
// occurrence of query. When the full query is absent it falls back to the
// query's first word longer than three characters; when nothing matches,
// the fallback policy decides the result. Empty text or query yields "".
// The snippet is bounded by 2*WindowChars + len(query) plus the ellipses
// added on clipped sides.
func (e Extractor) Extract(text, query string) string {
	if text == "" || query == "" {
		return ""
	}

	clean := Clean(text)
	if clean == "" {
		return ""
	}

	cr := []rune(clean)
	lower := make([]rune, len(cr))
	for i, r := range cr {
		lower[i] = unicode.ToLower(r)
	}
	haystack := string(lower)

	pos := findRune(haystack, strings.ToLower(query))
	if pos < 0 {
		for _, word := range strings.Fields(strings.ToLower(query)) {
			if utf8.RuneCountInString(word) <= 3 {
				continue
			}
			if pos = findRune(haystack, word); pos >= 0 {
				break
			}
		}
	}

	if pos < 0 {
		if e.Fallback == FallbackLeading {
			head := cr
			if len(head) > LeadingChars {
				head = head[:LeadingChars]
			}
			return string(head) + "..."
		}
		return ""
	}

	qlen := utf8.RuneCountInString(query)
	start := pos - e.WindowChars
	if start < 0 {
		start = 0
	}
	end := pos + qlen + e.WindowChars
	if end > len(cr) {
		end = len(cr)
	}

	out := strings.TrimSpace(string(cr[start:end]))
	if start > 0 {
		out = "..." + out
	}
	if end < len(cr) {
		out = out + "..."
	}
	return out
}

// findRune locates needle in haystack and reports the match position in
// runes, or -1.
func findRune(haystack, needle string) int {
	b := strings.Index(haystack, needle)
	if b < 0 {
		return -1
	}
	return utf8.RuneCountInString(haystack[:b])
}
