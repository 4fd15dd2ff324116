package docindex

import (
	"strings"

	"github.com/kailas-cloud/evidex/internal/domain"
)

// buildHTMLDoc converts a domain document to the HTML index shape.
func buildHTMLDoc(doc *domain.HTMLDocument) map[string]any {
	return map[string]any{
		"id":               doc.ID,
		"url":              doc.URL,
		"title":            doc.Title,
		"content":          doc.Content,
		"summary":          doc.Summary,
		"embedded_urls":    doc.EmbeddedURLs,
		"pdf_urls":         doc.PDFURLs,
		"programs":         doc.Programs,
		"focus_population": doc.FocusPopulation,
		"ages_studied":     doc.AgesStudied,
		"resource_type":    doc.ResourceType,
		"domain":           doc.Domain,
		"subdomain_1":      doc.Subdomain1,
		"subdomain_2":      doc.Subdomain2,
		"subdomain_3":      doc.Subdomain3,
		"Status":           doc.Status,
		"CFDA_number":      doc.CFDANumber,
		"topic":            doc.Topic,
		"year":             doc.Year,
		"Title":            doc.Title2,
		"published_date":   doc.PublishedDate,
		"changed_date":     doc.ChangedDate,
	}
}

// buildPDFDoc converts a PDF registration to the PDF index shape. Content is
// nil at registration time so the enrichment pipeline can fill it later.
func buildPDFDoc(doc *domain.PDFDocument) map[string]any {
	return map[string]any{
		"id":        doc.ID,
		"content":   doc.Content,
		"file_name": doc.FileName,
		"url":       doc.URL,
	}
}

// escapeQuotes doubles single quotes for OData string literals.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
