package infra

// pdf.go: one-page daily report sheet using go-pdf/fpdf:
//   - shop header and report timestamp
//   - money block (declared, variance, remainder, cashbox)
//   - stock table (closing count and consumption per product)

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// WriteReportPDF renders the report sheet to w.
func WriteReportPDF(w io.Writer, shop *model.Shop, rep *model.Report, loc *time.Location) error {
	pdf := buildReportPDF(shop, rep, loc)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}

// GenerateReportPDF writes the report sheet to storagePath/report_{id}.pdf
// and returns the file path.
func GenerateReportPDF(shop *model.Shop, rep *model.Report, loc *time.Location, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("report_%d.pdf", rep.ID))

	pdf := buildReportPDF(shop, rep, loc)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func buildReportPDF(shop *model.Shop, rep *model.Report, loc *time.Location) *fpdf.Fpdf {
	if loc == nil {
		loc = time.UTC
	}
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, shop.Address, "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Daily report #%d  %s", rep.ID,
		rep.Timestamp.In(loc).Format("02.01.2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(3)

	// ── Money ────────────────────────────────────────────────────────────────
	labelW, valueW := contentW*0.6, contentW*0.4
	money := []struct {
		label string
		value int64
	}{
		{"Actual balance", rep.ActualBalance},
		{"Cashless", rep.Cashless},
		{"Day cash expenses", rep.DayCashExpenses},
		{"Day weighed cash", rep.DayWeighedCash},
		{"Cash balance", rep.CashBalance},
		{"Remainder of day", rep.RemainderOfDay},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, m := range money {
		pdf.CellFormat(labelW, 5, m.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 5, fmt.Sprintf("%d", m.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelW, 6, "Cashbox", "T", 0, "L", false, 0, "")
	pdf.CellFormat(valueW, 6, fmt.Sprintf("%d", rep.Cashbox), "T", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Stock ────────────────────────────────────────────────────────────────
	col1, col2, col3 := contentW*0.46, contentW*0.27, contentW*0.27
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Closing", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 6, "Consumption", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, p := range ledger.Products {
		closing, _ := rep.Remaining.Level(p)
		used, _ := rep.Consumption.Level(p)
		pdf.CellFormat(col1, 5, fmt.Sprintf("%s, %s", p, p.Unit()), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, closing.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 5, used.String(), "", 1, "R", false, 0, "")
	}

	if rep.LastEdit != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 4, "Edited "+rep.LastEdit.In(loc).Format("02.01.2006 15:04"), "", 1, "R", false, 0, "")
	}
	return pdf
}
