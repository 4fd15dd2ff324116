package snippet

import (
	"strings"
	"testing"
)

func TestExtract_StripsChromeAndCentersMatch(t *testing.T) {
	e := New(5, FallbackEmpty)

	got := e.Extract("<nav>skip</nav>Hello world, find FOO here", "FOO")
	if got != "...find FOO here" {
		t.Errorf("Extract = %q, want %q", got, "...find FOO here")
	}
}

func TestExtract_CaseInsensitive(t *testing.T) {
	e := New(10, FallbackEmpty)

	got := e.Extract("Some Literacy Tutoring program", "literacy")
	if !strings.Contains(got, "Literacy") {
		t.Errorf("Extract = %q, want original casing preserved", got)
	}
}

func TestExtract_ChromeNeverMatches(t *testing.T) {
	e := New(5, FallbackEmpty)

	if got := e.Extract("<nav>skip</nav>body text", "skip"); got != "" {
		t.Errorf("Extract matched nav content: %q", got)
	}
	if got := e.Extract("<header>top</header><footer>bottom</footer>rest", "bottom"); got != "" {
		t.Errorf("Extract matched footer content: %q", got)
	}
}

func TestExtract_FallbackWord(t *testing.T) {
	e := New(5, FallbackEmpty)

	// Full phrase absent, but "tutoring" (>3 chars) is present.
	got := e.Extract("after school tutoring sessions", "reading tutoring")
	if !strings.Contains(got, "tutoring") {
		t.Errorf("Extract = %q, want window around fallback word", got)
	}
}

func TestExtract_ShortWordsNotTried(t *testing.T) {
	e := New(5, FallbackEmpty)

	// Every query word is <= 3 chars, so nothing is searched after the
	// full-phrase miss.
	if got := e.Extract("a to z listing", "x to y"); got != "" {
		t.Errorf("Extract = %q, want empty", got)
	}
}

func TestExtract_MissEmptyPolicy(t *testing.T) {
	e := New(10, FallbackEmpty)

	if got := e.Extract("nothing relevant in here", "quasar"); got != "" {
		t.Errorf("Extract = %q, want empty", got)
	}
}

func TestExtract_MissLeadingPolicy(t *testing.T) {
	e := New(10, FallbackLeading)

	long := strings.Repeat("word ", 200) // cleans to 999 chars
	got := e.Extract(long, "quasar")
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Extract = %q, want ellipsis suffix", got)
	}
	if len(got) != LeadingChars+3 {
		t.Errorf("Extract length = %d, want %d", len(got), LeadingChars+3)
	}
}

func TestExtract_EmptyInputs(t *testing.T) {
	e := New(10, FallbackLeading)

	if got := e.Extract("", "query"); got != "" {
		t.Errorf("Extract(empty text) = %q", got)
	}
	if got := e.Extract("text", ""); got != "" {
		t.Errorf("Extract(empty query) = %q", got)
	}
	if got := e.Extract("<div></div>", "query"); got != "" {
		t.Errorf("Extract(markup only) = %q", got)
	}
}

func TestExtract_EllipsisOnBothClippedSides(t *testing.T) {
	e := New(4, FallbackEmpty)

	got := e.Extract("aaaaaaaaaa TARGET bbbbbbbbbb", "TARGET")
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("Extract = %q, want ellipses on both sides", got)
	}
	if !strings.Contains(got, "TARGET") {
		t.Errorf("Extract = %q, want match included", got)
	}
}

func TestExtract_NoEllipsisAtBounds(t *testing.T) {
	e := New(50, FallbackEmpty)

	got := e.Extract("TARGET only", "TARGET")
	if strings.Contains(got, "...") {
		t.Errorf("Extract = %q, want no ellipsis when window covers text", got)
	}
}

func TestExtract_BoundedLength(t *testing.T) {
	e := New(15, FallbackEmpty)
	query := "needle"

	long := strings.Repeat("x ", 500) + "needle" + strings.Repeat(" y", 500)
	got := e.Extract(long, query)

	max := 2*e.WindowChars + len(query) + 6
	if len(got) > max {
		t.Errorf("snippet length %d exceeds bound %d", len(got), max)
	}
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	got := Clean("<p>two\n\n  words</p>")
	if got != "two words" {
		t.Errorf("Clean = %q", got)
	}
}

func TestClean_NestedChromeRemoved(t *testing.T) {
	got := Clean(`<nav class="main"><ul><li>Home</li></ul></nav>content`)
	if got != "content" {
		t.Errorf("Clean = %q", got)
	}
}
