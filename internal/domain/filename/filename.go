// Package filename decides whether two filenames refer to the same logical
// document. The HTML and PDF indexes are populated independently and share
// no keys, so cross-referencing is done on normalized names.
package filename

import (
	"net/url"
	"strings"

	"github.com/kailas-cloud/evidex/internal/domain/textnorm"
)

// significantLen is the minimum term length counted toward similarity.
const significantLen = 3

// similarityThreshold is the significant-term overlap required for a match.
const similarityThreshold = 0.5

// Similar reports whether two filenames likely name the same document:
// both are normalized for filename comparison, tokenized, reduced to terms
// longer than three characters, and matched on Jaccard overlap >= 0.5.
// Two names with no significant terms do not match.
func Similar(a, b string) bool {
	aTerms := significantTerms(textnorm.NormalizeFilename(a))
	bTerms := significantTerms(textnorm.NormalizeFilename(b))

	union := len(aTerms)
	common := 0
	for term := range bTerms {
		if _, ok := aTerms[term]; ok {
			common++
		} else {
			union++
		}
	}
	if union == 0 {
		return false
	}
	return float64(common)/float64(union) >= similarityThreshold
}

// ExactMatch reports whether two names are equal after plain normalization.
// Callers pass stems (extension already removed); unlike Similar this does
// not apply filename-specific decoding.
func ExactMatch(a, b string) bool {
	return textnorm.Normalize(a) == textnorm.Normalize(b)
}

// Basename returns the final path segment of a URL, URL-decoded twice to
// unwrap double-encoded segments.
func Basename(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	name := parts[len(parts)-1]
	for i := 0; i < 2; i++ {
		if dec, err := url.PathUnescape(name); err == nil {
			name = dec
		}
	}
	return name
}

// Stem strips the last dot-extension from a filename, if any.
func Stem(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

func significantTerms(normalized string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, t := range strings.Fields(normalized) {
		if len(t) > significantLen {
			terms[t] = struct{}{}
		}
	}
	return terms
}
