// Package chi is the HTTP transport: route registration, payload
// conversion, and the mapping from domain errors to status codes.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/record"
	"github.com/kailas-cloud/evidex/internal/domain/search/mode"
	"github.com/kailas-cloud/evidex/internal/domain/search/request"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	domusage "github.com/kailas-cloud/evidex/internal/domain/usage"
	documentuc "github.com/kailas-cloud/evidex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/evidex/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// SearchService runs the fused HTML+PDF search.
type SearchService interface {
	Search(ctx context.Context, req request.Request) ([]result.Item, error)
}

// PDFSearchService queries the PDF index directly.
type PDFSearchService interface {
	Search(ctx context.Context, text string) ([]result.PDFItem, error)
}

// SemanticService runs the semantic and vector search modes.
type SemanticService interface {
	Search(ctx context.Context, text string, m mode.Mode) ([]result.SemanticItem, error)
}

// IngestService runs the three ingestion stages.
type IngestService interface {
	EnrichHTML(ctx context.Context, name string) (record.Enriched, error)
	IndexJSON(ctx context.Context, name string) (string, error)
	RegisterPDF(ctx context.Context, name string) (domain.PDFDocument, error)
}

// DocumentService runs the upload and delete lifecycle.
type DocumentService interface {
	UploadHTML(ctx context.Context, pageURL, body string) (documentuc.Upload, error)
	Delete(ctx context.Context, name string, kind domain.DocumentKind) ([]string, error)
}

// UsageService reports provider token usage against its budgets.
type UsageService interface {
	GetReport(ctx context.Context, op domusage.Op, period domusage.Period) domusage.Report
}

// HealthService checks the service's dependencies.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API server.
type Server struct {
	search        SearchService
	pdf           PDFSearchService
	semantic      SemanticService
	ingest        IngestService
	documents     DocumentService
	usage         UsageService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search SearchService,
	pdf PDFSearchService,
	semantic SemanticService,
	ingest IngestService,
	documents DocumentService,
	usage UsageService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		pdf:       pdf,
		semantic:  semantic,
		ingest:    ingest,
		documents: documents,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		diagnosticHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests),
		sentinelHandler(domain.ErrProviderQuotaExceeded, http.StatusPaymentRequired),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable),
	}
	return s
}

// Routes registers the API endpoints on r. The searchMiddleware chain is
// applied to the three search endpoints only; lifecycle, ingestion, and
// operational endpoints stay outside the rate limit.
func (s *Server) Routes(r chi.Router, searchMiddleware ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		for _, mw := range searchMiddleware {
			r.Use(mw)
		}
		r.Post("/search", s.handleSearch)
		r.Post("/search/pdf", s.handlePDFSearch)
		r.Post("/search/semantic", s.handleSemanticSearch)
	})

	r.Post("/documents/html", s.handleUploadHTML)
	r.Post("/documents/delete", s.handleDelete)

	r.Post("/ingest/html", s.handleEnrichHTML)
	r.Post("/ingest/json", s.handleIndexJSON)
	r.Post("/ingest/pdf", s.handleRegisterPDF)

	r.Get("/usage", s.handleUsage)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// handleSearch handles POST /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := request.New(body.SearchText, body.toFilter())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]searchResultPayload, len(items))
	for i, item := range items {
		results[i] = resultToPayload(item)
	}

	resp := searchResponse{
		Results:        results,
		AppliedFilters: appliedFromFilter(req.Filter()),
	}
	if !req.Query().IsEmpty() {
		n := len(results)
		resp.TotalCount = &n
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePDFSearch handles POST /search/pdf.
func (s *Server) handlePDFSearch(w http.ResponseWriter, r *http.Request) {
	var body pdfSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	items, err := s.pdf.Search(r.Context(), body.SearchText)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if body.MaxResults > 0 && len(items) > body.MaxResults {
		items = items[:body.MaxResults]
	}

	results := make([]pdfResultPayload, len(items))
	for i, item := range items {
		results[i] = pdfItemToPayload(item)
	}
	writeJSON(w, http.StatusOK, results)
}

// handleSemanticSearch handles POST /search/semantic.
func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	var body semanticSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	m, err := mode.Parse(body.Type)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items, err := s.semantic.Search(r.Context(), body.Query, m)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]semanticResultPayload, len(items))
	for i, item := range items {
		results[i] = semanticItemToPayload(item)
	}
	writeJSON(w, http.StatusOK, semanticSearchResponse{Results: results, Count: len(results)})
}

// handleUploadHTML handles POST /documents/html. Scrapers post either JSON
// or a url/body form, so both encodings are accepted.
func (s *Server) handleUploadHTML(w http.ResponseWriter, r *http.Request) {
	var body uploadRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form body: "+err.Error())
			return
		}
		body.URL = r.PostFormValue("url")
		body.Body = r.PostFormValue("body")
	}

	up, err := s.documents.UploadHTML(r.Context(), body.URL, body.Body)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{
		Message:     "Upload accepted",
		Container:   up.Container,
		Filename:    up.Filename,
		OriginalURL: up.URL,
	})
}

// handleDelete handles POST /documents/delete.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var body deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	kind, err := domain.ParseDocumentKind(body.FileType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ops, err := s.documents.Delete(r.Context(), body.Filename, kind)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		Message:    "File and document deleted successfully",
		Operations: ops,
	})
}

// handleEnrichHTML handles POST /ingest/html.
func (s *Server) handleEnrichHTML(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodeIngest(w, r)
	if !ok {
		return
	}

	rec, err := s.ingest.EnrichHTML(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, enrichResponse{Message: "Blob processed successfully", Output: rec})
}

// handleIndexJSON handles POST /ingest/json.
func (s *Server) handleIndexJSON(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodeIngest(w, r)
	if !ok {
		return
	}

	id, err := s.ingest.IndexJSON(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, indexResponse{Message: "Document indexed successfully", DocumentID: id})
}

// handleRegisterPDF handles POST /ingest/pdf.
func (s *Server) handleRegisterPDF(w http.ResponseWriter, r *http.Request) {
	name, ok := s.decodeIngest(w, r)
	if !ok {
		return
	}

	doc, err := s.ingest.RegisterPDF(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		Message:  "PDF registered successfully",
		Document: pdfDocToPayload(doc),
	})
}

func (s *Server) decodeIngest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return "", false
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "Blob name is required")
		return "", false
	}
	return body.Name, true
}

// handleUsage handles GET /usage. The op parameter narrows the report to
// one operation; without it both tracked operations are reported.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	period := domusage.Period(r.URL.Query().Get("period"))
	switch period {
	case "":
		period = domusage.PeriodMonth
	case domusage.PeriodDay, domusage.PeriodMonth:
	default:
		writeError(w, http.StatusBadRequest, "period must be either 'day' or 'month'")
		return
	}

	ops := []domusage.Op{domusage.OpEmbedding, domusage.OpExtraction}
	if v := r.URL.Query().Get("op"); v != "" {
		op := domusage.Op(v)
		if op != domusage.OpEmbedding && op != domusage.OpExtraction {
			writeError(w, http.StatusBadRequest, "op must be either 'embedding' or 'extraction'")
			return
		}
		ops = []domusage.Op{op}
	}

	resp := usageResponse{
		Period:     string(period),
		Operations: make(map[string]usagePayload, len(ops)),
	}
	for _, op := range ops {
		report := s.usage.GetReport(r.Context(), op, period)
		resp.PeriodStartAt = unixMilliUTC(report.PeriodStart())
		resp.PeriodEndAt = unixMilliUTC(report.PeriodEnd())
		resp.Operations[string(op)] = usageFromReport(report)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /health. A degraded service still serves search,
// so only an unreachable index reports 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthFromReport(report))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrProviderQuotaExceeded,
		domain.ErrProviderError,
		domain.ErrIndexUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, safeDomainMessage(err))
		return true
	}
}

// diagnosticHandler handles fused-search failures: the response carries the
// query context collected before the failure point, nulls for what never
// got computed.
func diagnosticHandler(w http.ResponseWriter, err error) bool {
	var de *domain.DiagnosticError
	if !errors.As(err, &de) {
		return false
	}
	writeJSON(w, http.StatusInternalServerError, searchErrorResponse{
		Error:        de.Err.Error(),
		Type:         errorTypeName(de.Err),
		SearchText:   de.Diag.SearchText,
		FilterString: de.Diag.FilterString,
	})
	return true
}

// errorTypeName classifies a search failure for the error payload.
func errorTypeName(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return "InvalidRequest"
	case errors.Is(err, domain.ErrIndexUnavailable):
		return "IndexUnavailable"
	case errors.Is(err, domain.ErrProviderQuotaExceeded):
		return "ProviderQuotaExceeded"
	case errors.Is(err, domain.ErrProviderError):
		return "ProviderError"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	default:
		return "SearchError"
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
