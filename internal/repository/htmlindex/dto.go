package htmlindex

import (
	"strconv"

	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/domain/textnorm"
	"github.com/kailas-cloud/evidex/internal/index"
)

// parseHit maps raw index fields onto a result item. List-or-string fields
// go through SplitList; the page URL is the first embedded URL. Content is
// the full stored text — snippet extraction is usecase policy.
func parseHit(h index.Hit) result.Item {
	f := h.Fields
	return result.Item{
		Content:         stringField(f, "content"),
		URL:             textnorm.FirstURL(f["embedded_urls"]),
		Title:           stringField(f, "title"),
		Programs:        textnorm.SplitList(f["programs"]),
		AgesStudied:     textnorm.SplitList(f["ages_studied"]),
		FocusPopulation: textnorm.SplitList(f["focus_population"]),
		Domain:          stringField(f, "domain"),
		Subdomain1:      stringField(f, "subdomain_1"),
		Subdomain2:      stringField(f, "subdomain_2"),
		Subdomain3:      stringField(f, "subdomain_3"),
		ResourceType:    stringField(f, "resource_type"),
		PDFURLs:         textnorm.SplitList(f["pdf_urls"]),
		FoundInPDF:      result.FoundOnlyInHTML,
		Topic:           stringField(f, "topic"),
		Year:            stringField(f, "year"),
		Status:          stringField(f, "Status"),
		CFDANumber:      stringField(f, "CFDA_number"),
		Summary:         stringField(f, "summary"),
		PublishedDate:   stringField(f, "published_date"),
		ChangedDate:     stringField(f, "changed_date"),
	}
}

// parseSemanticHit maps a semantic-ranker hit. Content is deliberately not
// carried: the endpoint surfaces the caption instead. The caption prefers
// highlights over plain text.
func parseSemanticHit(h index.Hit) result.SemanticItem {
	item := result.SemanticItem{
		Title:   stringField(h.Fields, "title"),
		Summary: stringField(h.Fields, "summary"),
		Domain:  stringField(h.Fields, "domain"),
		URL:     textnorm.FirstURL(h.Fields["embedded_urls"]),
		Score:   h.RerankerScore,
	}
	if len(h.Captions) > 0 {
		item.Caption = h.Captions[0].Highlights
		if item.Caption == "" {
			item.Caption = h.Captions[0].Text
		}
	}
	return item
}

// parseVectorHit maps a nearest-neighbor hit: full content, no caption or
// reranker score.
func parseVectorHit(h index.Hit) result.SemanticItem {
	return result.SemanticItem{
		Title:   stringField(h.Fields, "title"),
		Summary: stringField(h.Fields, "summary"),
		Content: stringField(h.Fields, "content"),
		Domain:  stringField(h.Fields, "domain"),
		URL:     textnorm.FirstURL(h.Fields["embedded_urls"]),
	}
}

// stringField coerces an index field to string; numbers keep their literal
// form, anything else is empty.
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
