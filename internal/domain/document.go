package domain

import "fmt"

// DocumentKind selects which index and archive layout a document belongs to.
type DocumentKind string

const (
	KindHTML DocumentKind = "html"
	KindPDF  DocumentKind = "pdf"
)

// ParseDocumentKind validates a request-supplied kind. Empty defaults to HTML.
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch DocumentKind(s) {
	case "", KindHTML:
		return KindHTML, nil
	case KindPDF:
		return KindPDF, nil
	default:
		return "", fmt.Errorf("%w: file type must be either 'html' or 'pdf'", ErrInvalidRequest)
	}
}

// HTMLDocument is one entry of the HTML index.
type HTMLDocument struct {
	ID              string
	URL             string
	Title           string
	Content         string
	Summary         string
	EmbeddedURLs    []string
	PDFURLs         []string
	Programs        []string
	FocusPopulation []string
	AgesStudied     []string
	ResourceType    string
	Domain          string
	Subdomain1      string
	Subdomain2      string
	Subdomain3      string
	Status          string
	CFDANumber      string
	Topic           string
	Year            string
	Title2          string
	PublishedDate   string
	ChangedDate     string
}

// PDFDocument is one entry of the PDF index. Content is nil at registration
// time; the index-side extractor fills it in later.
type PDFDocument struct {
	ID       string
	Content  *string
	FileName string
	URL      string
}
