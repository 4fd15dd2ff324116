// Package enrich derives index document fields from raw page content and
// source URLs: URL decomposition, category tagging, link extraction, and the
// blob naming rules shared by the ingestion and deletion flows.
package enrich

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// URLParts is the decomposition of a page URL path. Domain is the first
// path segment, Title the last. For blog posts (/blogs/YYYY-MM-DD/slug)
// the subdomains carry the date parts; otherwise they carry up to three
// decoded middle segments.
type URLParts struct {
	Domain     string
	Title      string
	Subdomain1 string
	Subdomain2 string
	Subdomain3 string
}

// Categories holds the controlled-vocabulary terms found in page content.
type Categories struct {
	Programs        []string
	FocusPopulation []string
	AgesStudied     []string
}

const (
	headerMarker = "Welcome to the AmeriCorps Evidence Exchange"
	footerMarker = "Back to main content"
)

var (
	hrefRe    = regexp.MustCompile(`href=['"](https?://[^'"]+)['"]`)
	pdfHrefRe = regexp.MustCompile(`href=['"](/sites/default/files/[^'"]+\.pdf)['"]`)

	keyRe       = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	fileCharsRe = regexp.MustCompile(`[^\w\s-]`)
	fileSepRe   = regexp.MustCompile(`[-\s]+`)

	headerRe     = regexp.MustCompile(`(?s)^.*?` + regexp.QuoteMeta(headerMarker))
	footerRe     = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(footerMarker) + `.*$`)
	menuRe       = regexp.MustCompile(`menu block (one|two|three).*?\n`)
	breadcrumbRe = regexp.MustCompile(`Breadcrumb.*?\n`)
	scrollRe     = regexp.MustCompile(`(?s)<div class="scroll.*?</div>`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

var programTerms = []string{
	"Social Innovation Fund",
	"AmeriCorps NCCC",
	"AmeriCorps State and National",
	"AmeriCorps VISTA",
	"AmeriCorps Seniors",
	"Volunteer Generation Fund",
	"Office of Research and Evaluation",
	"Public Health AmeriCorps",
}

// programMinCounts lists programs whose names appear in site chrome on
// every page; a single mention is not evidence the page is about them.
var programMinCounts = map[string]int{
	"AmeriCorps Seniors":            9,
	"AmeriCorps NCCC":               3,
	"AmeriCorps State and National": 3,
	"Volunteer Generation Fund":     3,
	"AmeriCorps VISTA":              3,
}

// Matching is case-sensitive, so spelling variants are listed explicitly.
var focusPopulationTerms = []string{
	"Opportunity Youth",
	"Opportunity-Youth",
	"Opportunity-youth",
	"Schools",
	"Nonprofits",
	"Non-profits",
	"Non profits",
	"Tribes",
	"Veterans and Military Families",
	"Rural",
	"Suburban",
	"Urban",
	"Low-income",
	"Low income",
}

var agesStudiedTerms = []string{
	"0-5 (Early Childhood)",
	"0-5 (early childhood)",
	"0-5 (Early childhood)",
	"6-12 (Childhood)",
	"13-17 (Adolescent)",
	"18-25 (Young adult)",
	"18-25 (Young Adult)",
	"26-55 (Adult)",
	"55+ (Older adult)",
}

// SplitURL decomposes a page URL into domain, title, and subdomain parts.
// Blog URLs of the form /blogs/YYYY-MM-DD/slug put the date parts into the
// subdomains; any other URL fills them with up to three decoded middle
// segments. Unparseable or path-less URLs yield the zero value.
func SplitURL(rawURL string) URLParts {
	u, err := url.Parse(rawURL)
	if err != nil {
		return URLParts{}
	}

	var segs []string
	for _, s := range strings.Split(u.EscapedPath(), "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) == 0 {
		return URLParts{}
	}

	parts := URLParts{Domain: segs[0], Title: segs[len(segs)-1]}

	if segs[0] == "blogs" && len(segs) >= 3 {
		if date := strings.Split(segs[1], "-"); len(date) == 3 {
			parts.Subdomain1 = date[0]
			parts.Subdomain2 = date[1]
			parts.Subdomain3 = date[2]
			return parts
		}
	}

	if len(segs) > 2 {
		for i, seg := range segs[1 : len(segs)-1] {
			if i == 3 {
				break
			}
			if dec, err := url.PathUnescape(seg); err == nil {
				seg = dec
			}
			switch i {
			case 0:
				parts.Subdomain1 = seg
			case 1:
				parts.Subdomain2 = seg
			case 2:
				parts.Subdomain3 = seg
			}
		}
	}
	return parts
}

// MatchCategories scans page content for the controlled vocabulary terms
// of each category. Programs with a minimum-count requirement must appear
// at least that many times; all other terms match on a single occurrence.
func MatchCategories(content string) Categories {
	return Categories{
		Programs:        matchTerms(content, programTerms, programMinCounts),
		FocusPopulation: matchTerms(content, focusPopulationTerms, nil),
		AgesStudied:     matchTerms(content, agesStudiedTerms, nil),
	}
}

func matchTerms(content string, terms []string, minCounts map[string]int) []string {
	var found []string
	for _, term := range terms {
		if need, ok := minCounts[term]; ok {
			if strings.Count(content, term) >= need {
				found = append(found, term)
			}
			continue
		}
		if strings.Contains(content, term) {
			found = append(found, term)
		}
	}
	return found
}

// EmbeddedURLs extracts absolute http(s) URLs from href attributes,
// skipping stylesheet and script links.
func EmbeddedURLs(content string) []string {
	var urls []string
	for _, m := range hrefRe.FindAllStringSubmatch(content, -1) {
		u := m[1]
		if strings.HasSuffix(u, ".css") || strings.HasSuffix(u, ".js") {
			continue
		}
		urls = append(urls, u)
	}
	return urls
}

// PDFURLs extracts site-relative PDF links from href attributes and
// resolves them against the site base URL.
func PDFURLs(content, siteBase string) []string {
	var urls []string
	for _, m := range pdfHrefRe.FindAllStringSubmatch(content, -1) {
		urls = append(urls, siteBase+m[1])
	}
	return urls
}

// JoinValues renders a term list as a single semicolon-separated string.
func JoinValues(values []string) string {
	return strings.Join(values, "; ")
}

// CleanContent strips site chrome from scraped page text: everything
// before the welcome banner, everything after the footer marker,
// navigation and breadcrumb lines, and scroll containers. Whitespace is
// collapsed to single spaces.
func CleanContent(content string) string {
	content = headerRe.ReplaceAllString(content, headerMarker)
	content = footerRe.ReplaceAllString(content, "")
	content = menuRe.ReplaceAllString(content, "")
	content = breadcrumbRe.ReplaceAllString(content, "")
	content = scrollRe.ReplaceAllString(content, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(content, " "))
}

// SanitizeKey makes a string usable as an index document key: empty keys
// get a timestamped placeholder, a leading underscore gets a "doc" prefix,
// and every character outside [a-zA-Z0-9_-] becomes an underscore.
func SanitizeKey(key string) string {
	if key == "" {
		return fmt.Sprintf("doc-%d", time.Now().Unix())
	}
	if strings.HasPrefix(key, "_") {
		key = "doc" + key
	}
	return keyRe.ReplaceAllString(key, "_")
}

// FilenameFromURL derives a document identifier from a blob URL: the last
// path segment with punctuation dropped and separator runs collapsed to
// single underscores.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.EscapedPath()
	name := p[strings.LastIndexByte(p, '/')+1:]
	name = fileCharsRe.ReplaceAllString(name, "")
	return fileSepRe.ReplaceAllString(name, "_")
}

// UploadFilename derives the blob name for an uploaded page from its URL:
// scheme stripped, slashes replaced with underscores, an .html extension
// ensured, and percent-escapes decoded.
func UploadFilename(rawURL string) string {
	name := strings.TrimRight(rawURL, "/")
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.ReplaceAll(name, "/", "_")
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}
	if dec, err := url.PathUnescape(name); err == nil {
		name = dec
	}
	return name
}

// StoredNames returns the blob names under which a page and its extracted
// document JSON are stored, derived from the page URL. The page name keeps
// dots and hyphens; the JSON name drops dots and folds hyphens into
// underscores, matching what the extraction pipeline wrote.
func StoredNames(rawURL string) (page, doc string) {
	clean := strings.ReplaceAll(rawURL, "https://", "")
	clean = strings.ReplaceAll(clean, "http://", "")

	base := strings.ReplaceAll(clean, "/", "_")
	page = base + ".html"

	doc = strings.ReplaceAll(base, ".", "")
	doc = strings.ReplaceAll(doc, "-", "_")
	doc += "html.json"
	return page, doc
}
