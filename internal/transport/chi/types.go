package chi

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/record"
	"github.com/kailas-cloud/evidex/internal/domain/search/filter"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/domain/textnorm"
	domusage "github.com/kailas-cloud/evidex/internal/domain/usage"
	"github.com/kailas-cloud/evidex/internal/usecase/health"
)

// StringList accepts a JSON string, a JSON array, or a semicolon-joined
// string and always decodes to a clean list. Request filter fields arrive
// in every one of those shapes depending on the client; the ambiguity is
// resolved here, once, at the parsing boundary.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = textnorm.SplitList(v)
	return nil
}

// searchRequest is the POST /search body.
type searchRequest struct {
	SearchText      string     `json:"search_text"`
	Programs        StringList `json:"programs"`
	AgesStudied     StringList `json:"ages_studied"`
	FocusPopulation StringList `json:"focus_population"`
	Domain          string     `json:"domain"`
	Subdomain1      string     `json:"subdomain_1"`
	Subdomain2      string     `json:"subdomain_2"`
	Subdomain3      string     `json:"subdomain_3"`
	ResourceType    string     `json:"resource_type"`
	Topic           string     `json:"topic"`
	Year            string     `json:"year"`
	Status          string     `json:"Status"`
	CFDANumber      string     `json:"CFDA_number"`
	Summary         string     `json:"summary"`
	Title           string     `json:"title"`
	PublishedDate   string     `json:"published_date"`
	ChangedDate     string     `json:"changed_date"`
}

func (r searchRequest) toFilter() filter.Filter {
	return filter.Filter{
		Programs:        r.Programs,
		AgesStudied:     r.AgesStudied,
		FocusPopulation: r.FocusPopulation,
		Domain:          r.Domain,
		Subdomain1:      r.Subdomain1,
		Subdomain2:      r.Subdomain2,
		Subdomain3:      r.Subdomain3,
		ResourceType:    r.ResourceType,
		Topic:           r.Topic,
		Year:            r.Year,
		Status:          r.Status,
		CFDANumber:      r.CFDANumber,
		Summary:         r.Summary,
		Title:           r.Title,
		PublishedDate:   r.PublishedDate,
		ChangedDate:     r.ChangedDate,
	}
}

// appliedFilters echoes every request filter key back, absent ones as null.
type appliedFilters struct {
	Programs        []string `json:"programs"`
	AgesStudied     []string `json:"ages_studied"`
	FocusPopulation []string `json:"focus_population"`
	Domain          *string  `json:"domain"`
	Subdomain1      *string  `json:"subdomain_1"`
	Subdomain2      *string  `json:"subdomain_2"`
	Subdomain3      *string  `json:"subdomain_3"`
	ResourceType    *string  `json:"resource_type"`
	Topic           *string  `json:"topic"`
	Year            *string  `json:"year"`
	Status          *string  `json:"Status"`
	CFDANumber      *string  `json:"CFDA_number"`
	Summary         *string  `json:"summary"`
	Title           *string  `json:"title"`
	PublishedDate   *string  `json:"published_date"`
	ChangedDate     *string  `json:"changed_date"`
}

func appliedFromFilter(f filter.Filter) appliedFilters {
	return appliedFilters{
		Programs:        f.Programs,
		AgesStudied:     f.AgesStudied,
		FocusPopulation: f.FocusPopulation,
		Domain:          optional(f.Domain),
		Subdomain1:      optional(f.Subdomain1),
		Subdomain2:      optional(f.Subdomain2),
		Subdomain3:      optional(f.Subdomain3),
		ResourceType:    optional(f.ResourceType),
		Topic:           optional(f.Topic),
		Year:            optional(f.Year),
		Status:          optional(f.Status),
		CFDANumber:      optional(f.CFDANumber),
		Summary:         optional(f.Summary),
		Title:           optional(f.Title),
		PublishedDate:   optional(f.PublishedDate),
		ChangedDate:     optional(f.ChangedDate),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// searchResultPayload is one fused search hit on the wire.
type searchResultPayload struct {
	Content         string   `json:"content"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Programs        []string `json:"programs"`
	AgesStudied     []string `json:"ages_studied"`
	FocusPopulation []string `json:"focus_population"`
	Domain          string   `json:"domain"`
	Subdomain1      string   `json:"subdomain_1"`
	Subdomain2      string   `json:"subdomain_2"`
	Subdomain3      string   `json:"subdomain_3"`
	ResourceType    string   `json:"resource_type"`
	PDFURLs         []string `json:"pdf_urls"`
	FoundInPDF      string   `json:"found_in_pdf"`
	PDFContent      string   `json:"pdf_content,omitempty"`
	Topic           string   `json:"topic"`
	Year            string   `json:"year"`
	Status          string   `json:"Status"`
	CFDANumber      string   `json:"CFDA_number"`
	Summary         string   `json:"summary"`
	PublishedDate   string   `json:"published_date"`
	ChangedDate     string   `json:"changed_date"`
}

func resultToPayload(item result.Item) searchResultPayload {
	return searchResultPayload{
		Content:         item.Content,
		URL:             item.URL,
		Title:           item.Title,
		Programs:        item.Programs,
		AgesStudied:     item.AgesStudied,
		FocusPopulation: item.FocusPopulation,
		Domain:          item.Domain,
		Subdomain1:      item.Subdomain1,
		Subdomain2:      item.Subdomain2,
		Subdomain3:      item.Subdomain3,
		ResourceType:    item.ResourceType,
		PDFURLs:         item.PDFURLs,
		FoundInPDF:      string(item.FoundInPDF),
		PDFContent:      item.PDFContent,
		Topic:           item.Topic,
		Year:            item.Year,
		Status:          item.Status,
		CFDANumber:      item.CFDANumber,
		Summary:         item.Summary,
		PublishedDate:   item.PublishedDate,
		ChangedDate:     item.ChangedDate,
	}
}

// searchResponse is the POST /search response.
type searchResponse struct {
	Results        []searchResultPayload `json:"results"`
	AppliedFilters appliedFilters        `json:"applied_filters"`
	TotalCount     *int                  `json:"total_count,omitempty"`
}

// searchErrorResponse is the fused-search failure payload: the diagnostic
// context collected before the failure point, nulls for what never got
// computed.
type searchErrorResponse struct {
	Error        string  `json:"error"`
	Type         string  `json:"type"`
	SearchText   *string `json:"search_text"`
	FilterString *string `json:"filter_string"`
}

// pdfSearchRequest is the POST /search/pdf body.
type pdfSearchRequest struct {
	SearchText string `json:"search_text"`
	MaxResults int    `json:"max_results"`
}

// pdfResultPayload is one PDF-index hit on the wire.
type pdfResultPayload struct {
	Content  string  `json:"content"`
	FileName string  `json:"file_name"`
	URL      string  `json:"url"`
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
}

func pdfItemToPayload(item result.PDFItem) pdfResultPayload {
	return pdfResultPayload{
		Content:  item.Content,
		FileName: item.FileName,
		URL:      item.URL,
		ID:       item.ID,
		Score:    item.Score,
	}
}

// semanticSearchRequest is the POST /search/semantic body.
type semanticSearchRequest struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

// semanticResultPayload is one semantic-endpoint hit on the wire.
type semanticResultPayload struct {
	Title   string  `json:"title"`
	Summary string  `json:"summary"`
	Content string  `json:"content,omitempty"`
	Domain  string  `json:"domain"`
	URL     string  `json:"url"`
	Score   float64 `json:"score,omitempty"`
	Caption string  `json:"caption,omitempty"`
}

func semanticItemToPayload(item result.SemanticItem) semanticResultPayload {
	return semanticResultPayload{
		Title:   item.Title,
		Summary: item.Summary,
		Content: item.Content,
		Domain:  item.Domain,
		URL:     item.URL,
		Score:   item.Score,
		Caption: item.Caption,
	}
}

// semanticSearchResponse is the POST /search/semantic response.
type semanticSearchResponse struct {
	Results []semanticResultPayload `json:"results"`
	Count   int                     `json:"count"`
}

// uploadRequest is the POST /documents/html body (JSON form; the handler
// also accepts form-encoded url/body fields).
type uploadRequest struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

// uploadResponse is the 202 acknowledgment of an accepted page.
type uploadResponse struct {
	Message     string `json:"message"`
	Container   string `json:"container"`
	Filename    string `json:"filename"`
	OriginalURL string `json:"originalUrl"`
}

// deleteRequest is the POST /documents/delete body.
type deleteRequest struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
}

// deleteResponse lists what the delete actually did.
type deleteResponse struct {
	Message    string   `json:"message"`
	Operations []string `json:"operations"`
}

// ingestRequest is the body of the three POST /ingest/* operations.
type ingestRequest struct {
	Name string `json:"name"`
}

// enrichResponse echoes the record produced by POST /ingest/html.
type enrichResponse struct {
	Message string          `json:"message"`
	Output  record.Enriched `json:"output"`
}

// indexResponse acknowledges POST /ingest/json with the indexed document id.
type indexResponse struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}

// registerResponse echoes the document registered by POST /ingest/pdf.
type registerResponse struct {
	Message  string        `json:"message"`
	Document pdfDocPayload `json:"document"`
}

// pdfDocPayload is the registered PDF document echoed by POST /ingest/pdf.
type pdfDocPayload struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

func pdfDocToPayload(doc domain.PDFDocument) pdfDocPayload {
	return pdfDocPayload{ID: doc.ID, FileName: doc.FileName, URL: doc.URL}
}

// usagePayload is one operation's section of the GET /usage response.
type usagePayload struct {
	Tokens          int        `json:"tokens"`
	TokensLimit     int        `json:"tokens_limit"`
	TokensRemaining int        `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

func usageFromReport(report domusage.Report) usagePayload {
	p := usagePayload{
		Tokens:          report.Metrics().Tokens(),
		TokensLimit:     report.Budget().TokensLimit(),
		TokensRemaining: report.Budget().TokensRemaining(),
		IsExhausted:     report.Budget().IsExhausted(),
	}
	if report.Budget().ResetsAt() > 0 {
		t := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		p.ResetsAt = &t
	}
	return p
}

func unixMilliUTC(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// usageResponse is the GET /usage response.
type usageResponse struct {
	Period        string                  `json:"period"`
	PeriodStartAt time.Time               `json:"period_start_at"`
	PeriodEndAt   time.Time               `json:"period_end_at"`
	Operations    map[string]usagePayload `json:"operations"`
}

// healthResponse is the GET /health response.
type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func healthFromReport(report health.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return healthResponse{
		Status:  string(report.Status),
		Version: report.Version,
		Checks:  checks,
	}
}

// errorResponse is the generic error payload of every non-search endpoint.
type errorResponse struct {
	Error string `json:"error"`
}
