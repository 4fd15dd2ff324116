package evidex

// SearchMode controls the semantic endpoint's query strategy.
type SearchMode string

// Search mode constants.
const (
	ModeSemantic SearchMode = "semantic"
	ModeVector   SearchMode = "vector"
)

// SearchRequest is a fused search call: free text plus structured filters.
// Every filter field is optional; an empty SearchText switches search into
// filter-only mode.
type SearchRequest struct {
	SearchText      string
	Programs        []string
	AgesStudied     []string
	FocusPopulation []string
	Domain          string
	Subdomain1      string
	Subdomain2      string
	Subdomain3      string
	ResourceType    string
	Topic           string
	Year            string
	Status          string
	CFDANumber      string
	Summary         string
	Title           string
	PublishedDate   string
	ChangedDate     string
}

// SearchResult is one fused search hit.
type SearchResult struct {
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
	FoundInPDF      string
	PDFContent      string
	Topic           string
	Year            string
	Status          string
	CFDANumber      string
	Summary         string
	PublishedDate   string
	ChangedDate     string
}

// PDFResult is one PDF-index hit.
type PDFResult struct {
	Content  string
	FileName string
	URL      string
	ID       string
	Score    float64
}

// SemanticResult is one semantic-endpoint hit. Caption and Score are set
// only in semantic mode, Content only in vector mode.
type SemanticResult struct {
	Title   string
	Summary string
	Content string
	Domain  string
	URL     string
	Score   float64
	Caption string
}

// Upload is the outcome of an accepted page upload.
type Upload struct {
	Container string
	Filename  string
	URL       string
}

// Record is the enriched document record produced by the HTML ingestion
// stage. Programs is a semicolon-joined string in the stored record shape.
type Record struct {
	ID              string
	URL             string
	Title           string
	Content         string
	Summary         string
	EmbeddedURLs    []string
	PDFURLs         []string
	Programs        string
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
}

// PDFDocument is a registered PDF index entry.
type PDFDocument struct {
	ID       string
	FileName string
	URL      string
}
