// Package export writes the sales report as an Excel workbook.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/retailpos/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names
const (
	SheetSales   = "Sales"
	SheetSummary = "Summary"
)

// ContentTypeXLSX is the MIME type of the generated workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var salesHeader = []any{"Sale #", "Date", "Cashier", "Customer", "Payment", "Items", "Total"}

// XLSXWriter renders sales reports into XLSX workbooks
type XLSXWriter struct {
	loc     *time.Location
	maxRows int
}

// NewXLSXWriter creates a writer. Timestamps are shown in loc; maxRows caps
// the number of sale rows (0 means no cap).
func NewXLSXWriter(loc *time.Location, maxRows int) *XLSXWriter {
	if loc == nil {
		loc = time.UTC
	}
	return &XLSXWriter{loc: loc, maxRows: maxRows}
}

// ErrTooManyRows is returned when a report exceeds the configured row cap
type ErrTooManyRows struct {
	Rows, Max int
}

func (e *ErrTooManyRows) Error() string {
	return fmt.Sprintf("report has %d rows, export limit is %d", e.Rows, e.Max)
}

// Write renders the report and returns the workbook bytes
func (w *XLSXWriter) Write(rep *report.SalesReport) ([]byte, error) {
	if w.maxRows > 0 && len(rep.Sales) > w.maxRows {
		return nil, &ErrTooManyRows{Rows: len(rep.Sales), Max: w.maxRows}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSales); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	if err := w.writeSales(f, styles, rep); err != nil {
		return nil, err
	}
	if err := w.writeSummary(f, styles, rep); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	header int
	money  int
	bold   int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"305496"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	fmtMoney := "#,##0.00"
	s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &fmtMoney})
	if err != nil {
		return s, fmt.Errorf("money style: %w", err)
	}
	s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, fmt.Errorf("bold style: %w", err)
	}
	return s, nil
}

func (w *XLSXWriter) writeSales(f *excelize.File, st sheetStyles, rep *report.SalesReport) error {
	if err := f.SetSheetRow(SheetSales, "A1", &salesHeader); err != nil {
		return fmt.Errorf("sales header: %w", err)
	}
	if err := f.SetCellStyle(SheetSales, "A1", "G1", st.header); err != nil {
		return err
	}

	for i, row := range rep.Sales {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			row.SaleNumber,
			row.CreatedAt.In(w.loc).Format("2006-01-02 15:04"),
			row.CashierName,
			row.CustomerName,
			row.PaymentMethod,
			row.ItemCount,
			moneyValue(row.TotalAmount),
		}
		if err := f.SetSheetRow(SheetSales, cell, &values); err != nil {
			return fmt.Errorf("sales row %d: %w", i+1, err)
		}
	}

	if n := len(rep.Sales); n > 0 {
		last, _ := excelize.CoordinatesToCellName(7, n+1)
		if err := f.SetCellStyle(SheetSales, "G2", last, st.money); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetSales, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}
	for col, width := range map[string]float64{"A": 22, "B": 18, "C": 22, "D": 24, "E": 10, "F": 8, "G": 14} {
		if err := f.SetColWidth(SheetSales, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeSummary(f *excelize.File, st sheetStyles, rep *report.SalesReport) error {
	rows := [][]any{
		{"Start date", rep.StartDate},
		{"End date", rep.EndDate},
		{"Generated at", rep.GeneratedAt.In(w.loc).Format("2006-01-02 15:04")},
		{"Sales", rep.Totals.Count},
		{"Total sales", moneyValue(rep.Totals.Total)},
		{"Cash sales", moneyValue(rep.Totals.CashTotal)},
		{"Card sales", moneyValue(rep.Totals.CardTotal)},
		{"Average ticket", moneyValue(rep.AverageTicket)},
	}
	for i, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &values); err != nil {
			return fmt.Errorf("summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A8", st.bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "B5", "B8", st.money); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 18)
}

func moneyValue(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
