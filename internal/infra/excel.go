package infra

import (
	"fmt"
	"io"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/ledger"
	"github.com/altWulff/Not-Detail-Poster-sub000/internal/model"

	"github.com/xuri/excelize/v2"
)

const reportsSheet = "Reports"

// WriteReportsXLSX writes one row per report with the money figures followed
// by the closing count and consumption of every tracked product.
func WriteReportsXLSX(w io.Writer, shop *model.Shop, reports []model.Report, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportsSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	header := []interface{}{"Date", "Shop", "Actual balance", "Cashless", "Cash balance",
		"Remainder of day", "Cashbox", "Day cash expenses", "Day weighed cash"}
	for _, p := range ledger.Products {
		header = append(header, fmt.Sprintf("Closing %s (%s)", p, p.Unit()))
	}
	for _, p := range ledger.Products {
		header = append(header, fmt.Sprintf("Consumption %s (%s)", p, p.Unit()))
	}
	if err := f.SetSheetRow(reportsSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(reportsSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}

	for i, r := range reports {
		row := []interface{}{
			r.Timestamp.In(loc).Format("2006-01-02 15:04"),
			shop.Name,
			r.ActualBalance, r.Cashless, r.CashBalance,
			r.RemainderOfDay, r.Cashbox, r.DayCashExpenses, r.DayWeighedCash,
		}
		for _, p := range ledger.Products {
			q, _ := r.Remaining.Level(p)
			row = append(row, q.String())
		}
		for _, p := range ledger.Products {
			q, _ := r.Consumption.Level(p)
			row = append(row, q.String())
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(reportsSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}
