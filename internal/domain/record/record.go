// Package record defines the enriched document record that the enrichment
// stage writes to the json container and the indexing stage later reads
// back. The two shapes are asymmetric on purpose: enrichment stores programs
// as one semicolon-joined string while the other term fields stay arrays,
// and Normalize folds every accepted shape back into clean lists.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/enrich"
	"github.com/kailas-cloud/evidex/internal/domain/textnorm"
)

// maxContentBytes caps stored page content; the index rejects larger fields.
const maxContentBytes = 32000

// Enriched is the record produced by page enrichment.
type Enriched struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Summary         string   `json:"summary"`
	EmbeddedURLs    []string `json:"embedded_urls"`
	PDFURLs         []string `json:"pdf_urls"`
	Programs        string   `json:"programs"`
	FocusPopulation []string `json:"focus_population"`
	AgesStudied     []string `json:"ages_studied"`
	ResourceType    string   `json:"resource_type"`
	Domain          string   `json:"domain"`
	Subdomain1      string   `json:"subdomain_1"`
	Subdomain2      string   `json:"subdomain_2"`
	Subdomain3      string   `json:"subdomain_3"`
	Status          string   `json:"Status"`
	CFDANumber      string   `json:"CFDA_number"`
	Topic           string   `json:"topic"`
	Year            string   `json:"year"`
}

// Normalize decodes a stored record into the HTML index document shape.
// Records may be hand-authored, so shapes are tolerated liberally: scalars
// are coerced to strings, term fields are accepted as arrays or as
// semicolon-joined strings, unknown fields are ignored. Content is stripped
// of site chrome and truncated. The date fields belong to the index-side
// pipeline and always land empty.
func Normalize(data []byte) (*domain.HTMLDocument, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	content := enrich.CleanContent(stringField(raw, "content"))
	content = truncateBytes(content, maxContentBytes)

	return &domain.HTMLDocument{
		ID:              enrich.SanitizeKey(stringField(raw, "id")),
		URL:             stringField(raw, "url"),
		Title:           stringField(raw, "title"),
		Content:         content,
		Summary:         stringField(raw, "summary"),
		EmbeddedURLs:    textnorm.SplitList(raw["embedded_urls"]),
		PDFURLs:         textnorm.SplitList(raw["pdf_urls"]),
		Programs:        textnorm.SplitList(raw["programs"]),
		FocusPopulation: textnorm.SplitList(raw["focus_population"]),
		AgesStudied:     textnorm.SplitList(raw["ages_studied"]),
		ResourceType:    stringField(raw, "resource_type"),
		Domain:          stringField(raw, "domain"),
		Subdomain1:      stringField(raw, "subdomain_1"),
		Subdomain2:      stringField(raw, "subdomain_2"),
		Subdomain3:      stringField(raw, "subdomain_3"),
		Status:          stringField(raw, "Status"),
		CFDANumber:      stringField(raw, "CFDA_number"),
		Topic:           stringField(raw, "topic"),
		Year:            stringField(raw, "year"),
	}, nil
}

// stringField coerces a record field to string; numbers keep their literal
// form, anything else is empty.
func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// truncateBytes caps s at n bytes without splitting a UTF-8 sequence.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
