// Package result defines the hit shapes produced by the search usecases.
package result

// PDFPresence marks whether an HTML hit's document was also found in the
// PDF index. The values are part of the response contract.
type PDFPresence string

const (
	FoundOnlyInHTML PDFPresence = "Found only in HTML"
	FoundInBoth     PDFPresence = "Found in both HTML and PDF"
	PDFCheckError   PDFPresence = "Error checking PDF"
)

// Item is one HTML-index hit after snippet extraction, PDF URL policy
// filtering, and cross-referencing against the PDF index.
type Item struct {
	Content         string
	URL             string
	Title           string
	Programs        []string
	AgesStudied     []string
	FocusPopulation []string
	Domain          string
	Subdomain1      string
	Subdomain2      string
	Subdomain3      string
	ResourceType    string
	PDFURLs         []string
	FoundInPDF      PDFPresence
	PDFContent      string
	Topic           string
	Year            string
	Status          string
	CFDANumber      string
	Summary         string
	PublishedDate   string
	ChangedDate     string
}

// Empty reports whether the hit carries nothing a client could use: no
// snippet, no page URL, and no surviving PDF links. Empty items are
// dropped from responses.
func (i Item) Empty() bool {
	return i.Content == "" && i.URL == "" && len(i.PDFURLs) == 0
}

// PDFItem is one PDF-index hit.
type PDFItem struct {
	Content  string
	FileName string
	URL      string
	ID       string
	Score    float64
}

// SemanticItem is one hit of the semantic endpoint. Caption and Score are
// set only in semantic mode, Content only in vector mode.
type SemanticItem struct {
	Title   string
	Summary string
	Content string
	Domain  string
	URL     string
	Score   float64
	Caption string
}
