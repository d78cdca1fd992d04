package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct {
	Placeholder string
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(placeholder string) *PDFExporter {
	return &PDFExporter{Placeholder: placeholder}
}

// Render creates a PDF document with an optional title and table body.
// Wide datasets shrink the font so every selected column fits the page.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	fontSize := 9.0
	if len(data.Headers) > 8 {
		fontSize = 6
	}
	if len(data.Headers) > 16 {
		fontSize = 4
	}
	colWidth := 277.0 / float64(len(data.Headers))
	rowHeight := fontSize * 0.9

	pdf.SetFont("Arial", "B", fontSize)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, rowHeight, fit(pdf, header, colWidth), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", fontSize)
	for _, row := range data.Rows {
		for _, value := range record(data.Headers, row, e.Placeholder) {
			pdf.CellFormat(colWidth, rowHeight, fit(pdf, value, colWidth), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func fit(pdf *gofpdf.Fpdf, value string, width float64) string {
	limit := width - 1
	if pdf.GetStringWidth(value) <= limit {
		return value
	}
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"..") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ".."
}
