package writers

import (
	"fmt"
	"io"
	"strings"

	gofpdf "github.com/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/output"
	"github.com/depgate/depgate/pkg/policy"
	"github.com/depgate/depgate/pkg/strutil"
)

var _ output.Writer = (*PDFWriter)(nil)

// PDFWriter renders a one-document summary of the verdict.
type PDFWriter struct {
	w    io.Writer
	opts PDFOptions
}

// PDFOptions configures the PDF writer.
type PDFOptions struct {
	// Title is printed on the first page (default: "Dependency Policy Report").
	Title string

	// Author is recorded in the document metadata.
	Author string
}

// NewPDFWriter creates a PDF writer that writes to w.
func NewPDFWriter(w io.Writer, opts PDFOptions) *PDFWriter {
	if opts.Title == "" {
		opts.Title = "Dependency Policy Report"
	}
	if opts.Author == "" {
		opts.Author = defaults.ToolName
	}
	return &PDFWriter{w: w, opts: opts}
}

// Write renders r and writes the PDF bytes.
func (pw *PDFWriter) Write(r *output.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(pw.opts.Title, true)
	pdf.SetAuthor(pw.opts.Author, true)
	pdf.SetCreator(defaults.ToolName+" "+defaults.Version, true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pw.addHeader(pdf, r, tr)
	pw.addRuleTable(pdf, r, tr)
	pw.addFailures(pdf, r, tr)

	if err := pdf.Output(pw.w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func (pw *PDFWriter) addHeader(pdf *gofpdf.Fpdf, r *output.Report, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(pw.opts.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	meta := []string{
		"Run: " + r.RunID,
		"Generated: " + r.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
	}
	if r.Fingerprint != "" {
		meta = append(meta, "Rule set: "+r.Fingerprint+" ("+strings.Join(r.RuleFiles, ", ")+")")
	}
	for _, m := range meta {
		pdf.CellFormat(0, 5, tr(m), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	if r.Verdict.Pass {
		pdf.SetTextColor(0, 128, 0)
		pdf.CellFormat(0, 10, "PASS", "", 1, "L", false, 0, "")
	} else {
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 10, "FAIL", "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d packages, %d rules, %d failed",
		r.Summary.Packages, r.Summary.Rules, r.Summary.Failed), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (pw *PDFWriter) addRuleTable(pdf *gofpdf.Fpdf, r *output.Report, tr func(string) string) {
	titleCase := cases.Title(language.English)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(60, 8, "Rule", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Action", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Result", "1", 0, "C", true, 0, "")
	pdf.CellFormat(0, 8, "Description", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, a := range r.Verdict.Actions {
		result := "pass"
		if !a.Pass {
			result = "fail"
		}
		pdf.CellFormat(60, 7, tr(strutil.Truncate(a.Label, 34)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, titleCase.String(string(a.Action)), "1", 0, "C", false, 0, "")
		if !a.Pass && a.Action != policy.ActionIgnore {
			pdf.SetTextColor(200, 0, 0)
		}
		pdf.CellFormat(20, 7, titleCase.String(result), "1", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 7, tr(strutil.Truncate(a.Description, 48)), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (pw *PDFWriter) addFailures(pdf *gofpdf.Fpdf, r *output.Report, tr func(string) string) {
	for _, a := range r.Verdict.Actions {
		if a.Pass || a.Action == policy.ActionIgnore || a.Message == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, tr(a.Label+": "+a.Description), "", 1, "L", false, 0, "")
		pdf.SetFont("Courier", "", 8)
		pdf.MultiCell(0, 4, tr(a.Message), "", "L", false)
		pdf.Ln(3)
	}
}

