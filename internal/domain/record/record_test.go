package record

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize_TermFieldShapes(t *testing.T) {
	data := []byte(`{
		"id": "americorpsgov_evidence_page",
		"programs": "AmeriCorps VISTA; Social Innovation Fund",
		"focus_population": ["Rural", " Schools ", ""],
		"ages_studied": "6-12 (Childhood)",
		"pdf_urls": ["https://americorps.gov/sites/default/files/report.pdf"]
	}`)

	doc, err := Normalize(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"AmeriCorps VISTA", "Social Innovation Fund"}; !reflect.DeepEqual(doc.Programs, want) {
		t.Errorf("Programs = %v, want %v", doc.Programs, want)
	}
	if want := []string{"Rural", "Schools"}; !reflect.DeepEqual(doc.FocusPopulation, want) {
		t.Errorf("FocusPopulation = %v, want %v", doc.FocusPopulation, want)
	}
	if want := []string{"6-12 (Childhood)"}; !reflect.DeepEqual(doc.AgesStudied, want) {
		t.Errorf("AgesStudied = %v, want %v", doc.AgesStudied, want)
	}
	if len(doc.PDFURLs) != 1 {
		t.Errorf("PDFURLs = %v, want one entry", doc.PDFURLs)
	}
}

func TestNormalize_SanitizesID(t *testing.T) {
	doc, err := Normalize([]byte(`{"id": "_2020 report!"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "doc_2020_report_" {
		t.Errorf("ID = %q, want %q", doc.ID, "doc_2020_report_")
	}
}

func TestNormalize_MissingIDGetsPlaceholder(t *testing.T) {
	doc, err := Normalize([]byte(`{"url": "https://americorps.gov/about"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(doc.ID, "doc-") {
		t.Errorf("ID = %q, want a doc- placeholder", doc.ID)
	}
}

func TestNormalize_CleansContent(t *testing.T) {
	data := []byte(`{"content": "skip navigation here Welcome to the AmeriCorps Evidence Exchange findings Back to main content footer junk"}`)

	doc, err := Normalize(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Welcome to the AmeriCorps Evidence Exchange findings"
	if doc.Content != want {
		t.Errorf("Content = %q, want %q", doc.Content, want)
	}
}

func TestNormalize_TruncatesContent(t *testing.T) {
	long := strings.Repeat("evidence ", 5000)
	raw, _ := json.Marshal(map[string]any{"content": long})

	doc, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content) != maxContentBytes {
		t.Errorf("len(Content) = %d, want %d", len(doc.Content), maxContentBytes)
	}
}

func TestNormalize_TruncationKeepsValidUTF8(t *testing.T) {
	// Место обрезки попадает в середину многобайтовой руны.
	long := strings.Repeat("a", maxContentBytes-1) + "день"
	raw, _ := json.Marshal(map[string]any{"content": long})

	doc, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content) > maxContentBytes {
		t.Errorf("len(Content) = %d, want <= %d", len(doc.Content), maxContentBytes)
	}
	if !strings.HasSuffix(doc.Content, "a") {
		t.Errorf("Content ends in %q, want the split rune dropped", doc.Content[len(doc.Content)-4:])
	}
}

func TestNormalize_CoercesScalars(t *testing.T) {
	data := []byte(`{"year": 2020, "CFDA_number": 94.011, "title": null}`)

	doc, err := Normalize(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Year != "2020" {
		t.Errorf("Year = %q, want %q", doc.Year, "2020")
	}
	if doc.CFDANumber != "94.011" {
		t.Errorf("CFDANumber = %q, want %q", doc.CFDANumber, "94.011")
	}
	if doc.Title != "" {
		t.Errorf("Title = %q, want empty", doc.Title)
	}
}

func TestNormalize_DateFieldsStayEmpty(t *testing.T) {
	data := []byte(`{"id": "x", "title2": "alt", "published_date": "2021-05-05", "changed_date": "2022-01-01"}`)

	doc, err := Normalize(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title2 != "" || doc.PublishedDate != "" || doc.ChangedDate != "" {
		t.Errorf("date fields = %q/%q/%q, want all empty", doc.Title2, doc.PublishedDate, doc.ChangedDate)
	}
}

func TestNormalize_BadJSON(t *testing.T) {
	if _, err := Normalize([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed record")
	}
}

// TestNormalize_RoundTripFromEnriched covers the hand-off between the two
// ingestion stages: the joined programs string written by enrichment comes
// back as a list, the array fields pass through.
func TestNormalize_RoundTripFromEnriched(t *testing.T) {
	rec := Enriched{
		ID:              "americorpsgov_evidence_exchange_Literacy_Studyhtml",
		URL:             "https://americorps.gov/evidence-exchange/Literacy-Study",
		Title:           "Literacy-Study",
		Content:         "Welcome to the AmeriCorps Evidence Exchange literacy findings",
		Programs:        "AmeriCorps VISTA; AmeriCorps Seniors",
		FocusPopulation: []string{"Rural"},
		AgesStudied:     []string{"6-12 (Childhood)"},
		ResourceType:    "evidence-exchange",
		Domain:          "evidence-exchange",
		Year:            "2020",
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := Normalize(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != rec.ID {
		t.Errorf("ID = %q, want %q", doc.ID, rec.ID)
	}
	if want := []string{"AmeriCorps VISTA", "AmeriCorps Seniors"}; !reflect.DeepEqual(doc.Programs, want) {
		t.Errorf("Programs = %v, want %v", doc.Programs, want)
	}
	if !reflect.DeepEqual(doc.FocusPopulation, rec.FocusPopulation) {
		t.Errorf("FocusPopulation = %v, want %v", doc.FocusPopulation, rec.FocusPopulation)
	}
	if doc.Content != rec.Content {
		t.Errorf("Content = %q, want %q", doc.Content, rec.Content)
	}
}
