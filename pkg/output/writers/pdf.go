package writers

import (
	"fmt"
	"io"
	"sync"
	"time"

	gofpdf "github.com/go-pdf/fpdf"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/detect"
	"github.com/authscope/authscope/pkg/output/dispatcher"
	"github.com/authscope/authscope/pkg/output/events"
	"github.com/authscope/authscope/pkg/strutil"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*PDFWriter)(nil)

// pdfCategoryColors maps category identifiers to RGB accent colors.
var pdfCategoryColors = map[string][]int{
	"password_field_form": {220, 38, 38},
	"auth_form":           {202, 138, 4},
	"auth_container":      {2, 132, 199},
	"oauth_button":        {22, 163, 74},
	"auth_link":           {100, 116, 139},
}

// PDFConfig configures the PDF report writer.
type PDFConfig struct {
	// Title is the report title (default: "Authscope Scan Report").
	Title string

	// Author is recorded in the document metadata.
	Author string

	// IncludeSnippets prints the detected HTML fragments.
	IncludeSnippets bool

	// MaxSnippetLen clips printed fragments (default 300 runes).
	MaxSnippetLen int
}

// PDFWriter renders scan results as a PDF report.
// Events are buffered and the document is generated on Close.
type PDFWriter struct {
	w       io.Writer
	mu      sync.Mutex
	config  PDFConfig
	results []*events.ResultEvent
	summary *events.SummaryEvent

	// noCompress disables stream compression so tests can search the
	// raw bytes for rendered text.
	noCompress bool
}

// NewPDFWriter creates a PDF report writer.
func NewPDFWriter(w io.Writer, config PDFConfig) *PDFWriter {
	if config.Title == "" {
		config.Title = "Authscope Scan Report"
	}
	if config.MaxSnippetLen <= 0 {
		config.MaxSnippetLen = 300
	}
	return &PDFWriter{
		w:       w,
		config:  config,
		results: make([]*events.ResultEvent, 0),
	}
}

// Write buffers an event for later PDF output.
func (pw *PDFWriter) Write(event events.Event) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	switch e := event.(type) {
	case *events.ResultEvent:
		pw.results = append(pw.results, e)
	case *events.SummaryEvent:
		pw.summary = e
	}
	return nil
}

// Flush is a no-op; the document is generated on Close.
func (pw *PDFWriter) Flush() error {
	return nil
}

// Close renders the PDF and writes it out.
func (pw *PDFWriter) Close() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!pw.noCompress)
	pdf.SetTitle(pw.config.Title, true)
	pdf.SetCreator("authscope "+defaults.Version, true)
	if pw.config.Author != "" {
		pdf.SetAuthor(pw.config.Author, true)
	}
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pw.addTitlePage(pdf, tr)
	pw.addCategoryBreakdown(pdf, tr)
	pw.addPageFindings(pdf, tr)
	pw.addFailures(pdf, tr)

	if err := pdf.Output(pw.w); err != nil {
		return fmt.Errorf("pdf: output: %w", err)
	}
	if closer, ok := pw.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SupportsEvent returns true for result and summary events.
func (pw *PDFWriter) SupportsEvent(eventType events.EventType) bool {
	return eventType == events.EventTypeResult || eventType == events.EventTypeSummary
}

// addSectionHeader renders a dark title bar for a report section.
func (pw *PDFWriter) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 9, " "+title, "", 1, "L", true, 0, "")
	pdf.Ln(4)
}

// addTitlePage renders the cover with the run totals.
func (pw *PDFWriter) addTitlePage(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.AddPage()

	pdf.Ln(30)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 12, tr(pw.config.Title), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 8, "Authentication surface scan", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s by authscope v%s",
		time.Now().Format("2006-01-02 15:04 MST"), defaults.Version), "", 1, "C", false, 0, "")
	pdf.Ln(14)

	if pw.summary == nil {
		return
	}

	rows := []struct {
		label string
		value string
	}{
		{"Pages Scanned", fmt.Sprintf("%d", pw.summary.Totals.Scanned)},
		{"Sites With Auth UI", fmt.Sprintf("%d", pw.summary.Totals.SitesWithAuth)},
		{"Components Detected", fmt.Sprintf("%d", pw.summary.Totals.Components)},
		{"Errors", fmt.Sprintf("%d", pw.summary.Totals.Errors)},
		{"Duration", fmt.Sprintf("%.1fs", pw.summary.Timing.DurationSec)},
	}

	pageW, _ := pdf.GetPageSize()
	tableW := 110.0
	pdf.SetX((pageW - tableW) / 2)

	pdf.SetFont("Helvetica", "B", 10)
	for i, row := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(241, 245, 249)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetX((pageW - tableW) / 2)
		pdf.SetTextColor(71, 85, 105)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(70, 8, row.label, "1", 0, "L", true, 0, "")
		pdf.SetTextColor(30, 41, 59)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 8, row.value, "1", 1, "C", true, 0, "")
	}
}

// addCategoryBreakdown renders per-category counts in detection order.
func (pw *PDFWriter) addCategoryBreakdown(pdf *gofpdf.Fpdf, tr func(string) string) {
	counts := make(map[string]int)
	for _, re := range pw.results {
		if re.Auth == nil {
			continue
		}
		for cat, n := range re.Auth.Counts {
			counts[cat] += n
		}
	}
	if len(counts) == 0 {
		return
	}

	pdf.AddPage()
	pw.addSectionHeader(pdf, "Component Categories")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(90, 8, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Count", "1", 1, "C", true, 0, "")

	for _, cat := range detect.Categories() {
		n, ok := counts[cat.String()]
		if !ok {
			continue
		}
		color := pdfCategoryColors[cat.String()]
		if color == nil {
			color = []int{100, 116, 139}
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(color[0], color[1], color[2])
		pdf.CellFormat(90, 7, tr(cat.Display()), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", n), "1", 1, "C", false, 0, "")
	}
}

// addPageFindings renders one block per successfully scanned page.
func (pw *PDFWriter) addPageFindings(pdf *gofpdf.Fpdf, tr func(string) string) {
	first := true
	for _, re := range pw.results {
		if !re.Fetch.Success {
			continue
		}
		if first {
			pdf.AddPage()
			pw.addSectionHeader(pdf, "Scanned Pages")
			first = false
		}

		// Keep a page heading and at least one component together.
		if pdf.GetY() > 240 {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(30, 41, 59)
		pdf.MultiCell(0, 6, tr(re.Target.URL), "", "L", false)

		meta := fmt.Sprintf("HTTP %d", re.Fetch.StatusCode)
		if re.Target.Title != "" {
			meta = tr(re.Target.Title) + "  |  " + meta
		}
		meta += fmt.Sprintf("  |  %.1fs", re.Fetch.ElapsedSec)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(0, 5, meta, "", 1, "L", false, 0, "")
		pdf.Ln(1)

		if re.Auth == nil || len(re.Auth.Components) == 0 {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(148, 163, 184)
			pdf.CellFormat(0, 5, "No authentication components detected.", "", 1, "L", false, 0, "")
			pdf.Ln(4)
			continue
		}

		for _, c := range re.Auth.Components {
			color := pdfCategoryColors[c.Category]
			if color == nil {
				color = []int{100, 116, 139}
			}

			display := c.Category
			if cat, err := detect.ParseCategory(c.Category); err == nil {
				display = cat.Display()
			}
			line := display
			if c.Label != "" {
				line += "  |  " + c.Label
			}

			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetTextColor(color[0], color[1], color[2])
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")

			if c.Context != "" {
				pdf.SetFont("Helvetica", "", 8)
				pdf.SetTextColor(100, 116, 139)
				pdf.MultiCell(0, 4, tr(c.Context), "", "L", false)
			}

			if pw.config.IncludeSnippets && c.HTML != "" {
				snippet := strutil.Truncate(c.HTML, pw.config.MaxSnippetLen)
				pdf.SetFont("Courier", "", 7)
				pdf.SetTextColor(71, 85, 105)
				pdf.SetFillColor(241, 245, 249)
				pdf.MultiCell(0, 3.5, tr(snippet), "", "L", true)
			}
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}
}

// addFailures renders the pages that could not be fetched.
func (pw *PDFWriter) addFailures(pdf *gofpdf.Fpdf, tr func(string) string) {
	first := true
	for _, re := range pw.results {
		if re.Fetch.Success {
			continue
		}
		if first {
			pdf.AddPage()
			pw.addSectionHeader(pdf, "Failed Pages")
			first = false
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(30, 41, 59)
		pdf.MultiCell(0, 5, tr(re.Target.URL), "", "L", false)

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(220, 38, 38)
		pdf.MultiCell(0, 5, tr(re.Fetch.Error), "", "L", false)
		pdf.Ln(3)
	}
}
