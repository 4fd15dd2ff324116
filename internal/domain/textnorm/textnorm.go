// Package textnorm provides the text normalization primitives shared by
// snippet extraction, filename matching and record field handling.
package textnorm

import (
	"net/url"
	"strings"
)

// Normalize lower-cases s, replaces every character that is not an ASCII
// letter or digit with a space and collapses whitespace runs. Idempotent:
// Normalize(Normalize(s)) == Normalize(s). Never used for index-facing
// filter values, which must be preserved exactly.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// NormalizeFilename prepares a filename for comparison: URL-decodes twice
// (path segments arrive double-encoded from some producers), strips one
// trailing ".pdf" and applies Normalize. Invalid percent escapes leave the
// input untouched rather than failing.
func NormalizeFilename(s string) string {
	for i := 0; i < 2; i++ {
		if dec, err := url.PathUnescape(s); err == nil {
			s = dec
		}
	}
	s = strings.TrimSuffix(s, ".pdf")
	return Normalize(s)
}

// FirstLines returns the first n lines of s, trimmed. Nil-safe: empty input
// yields "".
func FirstLines(s string, n int) string {
	if s == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SplitList normalizes a field that may arrive as a list or as a
// semicolon-joined string into a clean []string. Unknown shapes yield nil.
func SplitList(v any) []string {
	switch vv := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(vv))
		for _, s := range vv {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		if strings.TrimSpace(vv) == "" {
			return nil
		}
		parts := strings.Split(vv, ";")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

// FirstURL returns the first element of a list-or-joined URL field, or ""
// when the field is absent or empty.
func FirstURL(v any) string {
	urls := SplitList(v)
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
