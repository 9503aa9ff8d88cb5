package writers

import (
	"bytes"
	"testing"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/authscope/authscope/pkg/output/events"
)

type pdfResult struct {
	t      *testing.T
	raw    []byte
	reader *bytes.Reader
}

func generatePDF(t *testing.T, config PDFConfig, evs ...events.Event) pdfResult {
	t.Helper()
	buf := &bytes.Buffer{}
	w := NewPDFWriter(buf, config)
	w.noCompress = true // disable stream compression so text is searchable in raw bytes

	for _, ev := range evs {
		if err := w.Write(ev); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw := buf.Bytes()
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		t.Fatal("output does not start with a PDF header")
	}
	return pdfResult{t: t, raw: raw, reader: bytes.NewReader(raw)}
}

// assertValid validates the PDF structure using pdfcpu.
func (p *pdfResult) assertValid() {
	p.t.Helper()
	p.reader.Seek(0, 0)
	if err := pdfapi.Validate(p.reader, nil); err != nil {
		p.t.Errorf("PDF validation failed: %v", err)
	}
}

// assertPageCount checks the exact number of pages.
func (p *pdfResult) assertPageCount(expected int) {
	p.t.Helper()
	p.reader.Seek(0, 0)
	count, err := pdfapi.PageCount(p.reader, nil)
	if err != nil {
		p.t.Fatalf("PageCount failed: %v", err)
	}
	if count != expected {
		p.t.Errorf("page count = %d, want %d", count, expected)
	}
}

// assertContainsText checks the raw PDF bytes for the given text.
// fpdf encodes Helvetica text as literal bytes in uncompressed content streams.
func (p *pdfResult) assertContainsText(text string) {
	p.t.Helper()
	if !bytes.Contains(p.raw, []byte(text)) {
		p.t.Errorf("PDF does not contain text %q", text)
	}
}

func (p *pdfResult) assertNotContainsText(text string) {
	p.t.Helper()
	if bytes.Contains(p.raw, []byte(text)) {
		p.t.Errorf("PDF unexpectedly contains text %q", text)
	}
}

func (p *pdfResult) assertMinSize(n int) {
	p.t.Helper()
	if len(p.raw) < n {
		p.t.Errorf("PDF size = %d bytes, want at least %d", len(p.raw), n)
	}
}

func TestPDF_ValidDocument(t *testing.T) {
	t.Parallel()
	p := generatePDF(t, PDFConfig{},
		pageResult("https://github.com/login", passwordFormComponent(), oauthComponent()),
		fetchFailure("https://down.example", "Connection error — could not reach the website."),
		runSummary(),
	)

	p.assertValid()
	// Cover, category breakdown, scanned pages, failed pages.
	p.assertPageCount(4)
	p.assertMinSize(2000)
}

func TestPDF_EmptyRunStillRenders(t *testing.T) {
	t.Parallel()
	p := generatePDF(t, PDFConfig{})

	p.assertValid()
	p.assertPageCount(1)
	p.assertContainsText("Authscope Scan Report")
}

func TestPDF_CoverTotals(t *testing.T) {
	t.Parallel()
	p := generatePDF(t, PDFConfig{}, runSummary())

	p.assertContainsText("Pages Scanned")
	p.assertContainsText("Sites With Auth UI")
	p.assertContainsText("7.5s")
}

func TestPDF_PageFindings(t *testing.T) {
	t.Parallel()
	p := generatePDF(t, PDFConfig{},
		pageResult("https://github.com/login", passwordFormComponent(), oauthComponent()))

	p.assertContainsText("Scanned Pages")
	p.assertContainsText("https://github.com/login")
	p.assertContainsText("Login Form")
	p.assertContainsText("OAuth / SSO Button")
}

func TestPDF_SnippetsOptIn(t *testing.T) {
	t.Parallel()
	withOut := generatePDF(t, PDFConfig{},
		pageResult("https://github.com/login", passwordFormComponent()))
	withOut.assertNotContainsText(`<form id="login-form"`)

	withIn := generatePDF(t, PDFConfig{IncludeSnippets: true},
		pageResult("https://github.com/login", passwordFormComponent()))
	withIn.assertContainsText(`<form id="login-form"`)
}

func TestPDF_FailuresListed(t *testing.T) {
	t.Parallel()
	p := generatePDF(t, PDFConfig{},
		fetchFailure("https://down.example", "Connection error — could not reach the website."))

	p.assertValid()
	p.assertContainsText("Failed Pages")
	p.assertContainsText("https://down.example")
	p.assertContainsText("Connection error")
}

func TestPDF_CustomTitle(t *testing.T) {
	t.Parallel()
	p := generatePDF(t, PDFConfig{Title: "Quarterly Auth Review"}, runSummary())

	p.assertContainsText("Quarterly Auth Review")
	p.assertNotContainsText("Authscope Scan Report")
}

func TestPDF_FooterPagination(t *testing.T) {
	t.Parallel()
	p := generatePDF(t, PDFConfig{},
		pageResult("https://github.com/login", passwordFormComponent()),
		runSummary(),
	)

	p.assertContainsText("Page 1 of ")
}

func TestPDF_SupportsEvent(t *testing.T) {
	t.Parallel()
	w := NewPDFWriter(&bytes.Buffer{}, PDFConfig{})

	if !w.SupportsEvent(events.EventTypeResult) || !w.SupportsEvent(events.EventTypeSummary) {
		t.Error("expected result and summary support")
	}
	if w.SupportsEvent(events.EventTypeProgress) {
		t.Error("progress events should be rejected")
	}
}
