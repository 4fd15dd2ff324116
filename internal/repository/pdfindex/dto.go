package pdfindex

import (
	"strings"

	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/index"
)

func (r *Repo) parseHit(h index.Hit) result.PDFItem {
	return result.PDFItem{
		Content:  stringField(h.Fields, "content"),
		FileName: stringField(h.Fields, "file_name"),
		URL:      r.rewriteURL(stringField(h.Fields, "url")),
		ID:       stringField(h.Fields, "id"),
		Score:    h.Score,
	}
}

// rewriteURL replaces a stored blob-store prefix with its public form.
func (r *Repo) rewriteURL(u string) string {
	for _, rw := range r.rewrites {
		if rw.From != "" && strings.HasPrefix(u, rw.From) {
			return rw.To + u[len(rw.From):]
		}
	}
	return u
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}
