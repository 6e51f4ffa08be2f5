package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/courtlog/internal/domain"
)

// header is the fixed column order shared by all export formats.
var header = []string{"id", "date", "court", "problem", "photo_path", "reporter"}

const sheetName = "Issues"

// row flattens an issue into the export column order. CSV and spreadsheet
// exports carry full values; only the PDF truncates for display.
func row(issue domain.Issue) []string {
	photoPath := ""
	if issue.PhotoKey != nil {
		photoPath = *issue.PhotoKey
	}
	return []string{
		issue.ID,
		issue.ReportedAt.Format(domain.TimeLayout),
		issue.Court,
		issue.Problem,
		photoPath,
		issue.Reporter,
	}
}

// CSV renders the issues as UTF-8 comma-delimited text with a header row.
func CSV(issues []domain.Issue) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, issue := range issues {
		if err := w.Write(row(issue)); err != nil {
			return nil, fmt.Errorf("failed to write csv row for %s: %w", issue.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Spreadsheet renders the issues as a single-sheet xlsx workbook with the
// same column layout as the CSV export.
func Spreadsheet(issues []domain.Issue) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	writeRow := func(rowNum int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		return f.SetSheetRow(sheetName, cell, &cells)
	}

	if err := writeRow(1, header); err != nil {
		return nil, fmt.Errorf("failed to write sheet header: %w", err)
	}
	for i, issue := range issues {
		if err := writeRow(i+2, row(issue)); err != nil {
			return nil, fmt.Errorf("failed to write sheet row for %s: %w", issue.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfColWidths sums to the usable width of a landscape A4 page.
var pdfColWidths = []float64{24, 40, 48, 91, 42, 32}

// PDF renders the issues as a styled single-table summary. Ids are shortened
// to a prefix and long problem text is truncated; this export is for reading,
// not for preserving full values.
func PDF(issues []domain.Issue) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(52, 73, 94)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		pdf.CellFormat(pdfColWidths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for _, issue := range issues {
		values := row(issue)
		values[0] = shorten(values[0], 8)
		values[3] = shorten(values[3], 50)
		values[4] = shorten(values[4], 24)
		for i, v := range values {
			pdf.CellFormat(pdfColWidths[i], 7, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// shorten truncates s to max runes plus an ellipsis.
func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
