package document

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/objstore"
)

// --- Mocks ---

type blobCall struct {
	container string
	key       string
}

type mockBlobStore struct {
	existing map[string]bool // "<container>/<key>" -> present
	putErr   error

	puts    []blobCall
	copies  []blobCall
	deletes []blobCall
	lastObj *objstore.Object
}

func (m *mockBlobStore) Exists(_ context.Context, container, key string) (bool, error) {
	return m.existing[container+"/"+key], nil
}

func (m *mockBlobStore) Put(_ context.Context, container, key string, obj *objstore.Object) error {
	m.puts = append(m.puts, blobCall{container, key})
	m.lastObj = obj
	return m.putErr
}

func (m *mockBlobStore) Copy(_ context.Context, srcContainer, dstContainer, key string) error {
	m.copies = append(m.copies, blobCall{dstContainer, key})
	return nil
}

func (m *mockBlobStore) Delete(_ context.Context, container, key string) error {
	m.deletes = append(m.deletes, blobCall{container, key})
	return nil
}

func (m *mockBlobStore) EnsureContainer(context.Context, string) error { return nil }

type mockDocIndex struct {
	htmlID  string
	pdfID   string
	findErr error
	delErr  error

	deleted   []string
	lastKind  domain.DocumentKind
	lastQuery string
}

func (m *mockDocIndex) FindHTMLID(_ context.Context, pageURL string) (string, error) {
	m.lastQuery = pageURL
	if m.findErr != nil {
		return "", m.findErr
	}
	if m.htmlID == "" {
		return "", domain.ErrDocumentNotFound
	}
	return m.htmlID, nil
}

func (m *mockDocIndex) FindPDFID(_ context.Context, fileName string) (string, error) {
	m.lastQuery = fileName
	if m.findErr != nil {
		return "", m.findErr
	}
	if m.pdfID == "" {
		return "", domain.ErrDocumentNotFound
	}
	return m.pdfID, nil
}

func (m *mockDocIndex) Delete(_ context.Context, kind domain.DocumentKind, id string) error {
	m.lastKind = kind
	m.deleted = append(m.deleted, id)
	return m.delErr
}

func newService(blobs *mockBlobStore, index *mockDocIndex) *Service {
	return New(blobs, index, Containers{}, zap.NewNop())
}

// --- UploadHTML ---

func TestUploadHTML_StoresPageWithMetadata(t *testing.T) {
	blobs := &mockBlobStore{}
	svc := newService(blobs, &mockDocIndex{})

	up, err := svc.UploadHTML(context.Background(), "https://americorps.gov/evidence-exchange/study-1", "<html>body</html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if up.Container != "htmlcontent" {
		t.Errorf("expected container htmlcontent, got %q", up.Container)
	}
	if up.Filename != "americorps.gov_evidence-exchange_study-1.html" {
		t.Errorf("unexpected filename %q", up.Filename)
	}
	if len(blobs.puts) != 1 {
		t.Fatalf("expected 1 put, got %d", len(blobs.puts))
	}
	if blobs.lastObj.ContentType != "text/html" {
		t.Errorf("expected text/html content type, got %q", blobs.lastObj.ContentType)
	}
	if got := blobs.lastObj.Metadata["original_url"]; got != "https://americorps.gov/evidence-exchange/study-1" {
		t.Errorf("unexpected original_url metadata %q", got)
	}
}

func TestUploadHTML_MissingFields(t *testing.T) {
	svc := newService(&mockBlobStore{}, &mockDocIndex{})

	for _, tc := range []struct{ url, body string }{
		{"", "<html></html>"},
		{"https://example.org", ""},
	} {
		_, err := svc.UploadHTML(context.Background(), tc.url, tc.body)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("url=%q body=%q: expected ErrInvalidRequest, got %v", tc.url, tc.body, err)
		}
	}
}

func TestUploadHTML_StoreFailure(t *testing.T) {
	blobs := &mockBlobStore{putErr: errors.New("storage down")}
	svc := newService(blobs, &mockDocIndex{})

	if _, err := svc.UploadHTML(context.Background(), "https://example.org/page", "body"); err == nil {
		t.Fatal("expected error when the store rejects the upload")
	}
}

// --- Delete ---

func TestDelete_HTML_ArchivesBlobsAndDeletesIndexDoc(t *testing.T) {
	blobs := &mockBlobStore{existing: map[string]bool{
		"htmlcontent/americorps.gov_evidence-exchange_study-1.html": true,
		"html-jsons/americorpsgov_evidence_exchange_study_1html.json": true,
	}}
	index := &mockDocIndex{htmlID: "doc-42"}
	svc := newService(blobs, index)

	ops, err := svc.Delete(context.Background(), "https://americorps.gov/evidence-exchange/study-1", domain.KindHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ops) != 3 {
		t.Fatalf("expected 3 operations, got %d: %v", len(ops), ops)
	}
	if len(blobs.copies) != 2 || len(blobs.deletes) != 2 {
		t.Errorf("expected 2 archive moves, got %d copies %d deletes", len(blobs.copies), len(blobs.deletes))
	}
	if blobs.copies[0].container != "htmlcontent-archieve" {
		t.Errorf("expected html archive target, got %q", blobs.copies[0].container)
	}
	if blobs.copies[1].container != "jsonfiles-archieve" {
		t.Errorf("expected json archive target, got %q", blobs.copies[1].container)
	}
	if len(index.deleted) != 1 || index.deleted[0] != "doc-42" {
		t.Errorf("expected index delete of doc-42, got %v", index.deleted)
	}
	if index.lastKind != domain.KindHTML {
		t.Errorf("expected html kind, got %q", index.lastKind)
	}
}

func TestDelete_PDF_AppendsExtensionAndUsesPDFIndex(t *testing.T) {
	blobs := &mockBlobStore{existing: map[string]bool{
		"evidencefiles/Literacy_Report.pdf": true,
	}}
	index := &mockDocIndex{pdfID: "pdf-7"}
	svc := newService(blobs, index)

	ops, err := svc.Delete(context.Background(), "Literacy_Report", domain.KindPDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d: %v", len(ops), ops)
	}
	if index.lastQuery != "Literacy_Report.pdf" {
		t.Errorf("expected lookup by file name with extension, got %q", index.lastQuery)
	}
	if index.lastKind != domain.KindPDF {
		t.Errorf("expected pdf kind, got %q", index.lastKind)
	}
	if blobs.copies[0].container != "evidencefiles-archieve" {
		t.Errorf("expected pdf archive target, got %q", blobs.copies[0].container)
	}
}

func TestDelete_NothingFound_NotFound(t *testing.T) {
	svc := newService(&mockBlobStore{}, &mockDocIndex{})

	_, err := svc.Delete(context.Background(), "https://example.org/missing", domain.KindHTML)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_IndexLookupFails_BlobArchiveStillCounts(t *testing.T) {
	blobs := &mockBlobStore{existing: map[string]bool{
		"htmlcontent/example.org_page.html": true,
	}}
	index := &mockDocIndex{findErr: errors.New("index down")}
	svc := newService(blobs, index)

	ops, err := svc.Delete(context.Background(), "https://example.org/page", domain.KindHTML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 1 || ops[0] != "HTML file moved to archive" {
		t.Errorf("expected only the archive operation, got %v", ops)
	}
}

func TestDelete_MissingFilename(t *testing.T) {
	svc := newService(&mockBlobStore{}, &mockDocIndex{})

	_, err := svc.Delete(context.Background(), "", domain.KindHTML)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
