package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesReport lists the sales in a date range with their totals
type SalesReport struct {
	Range         DateRange       `json:"-"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Sales         []SaleRow       `json:"sales"`
	Totals        SalesTotals     `json:"totals"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// NewSalesReport builds a report from rows, totalling them in memory
func NewSalesReport(r DateRange, rows []SaleRow, now time.Time) *SalesReport {
	totals := SalesTotals{
		Total:     decimal.Zero,
		CashTotal: decimal.Zero,
		CardTotal: decimal.Zero,
		Count:     int64(len(rows)),
	}
	for _, row := range rows {
		totals.Total = totals.Total.Add(row.TotalAmount)
		switch row.PaymentMethod {
		case "cash":
			totals.CashTotal = totals.CashTotal.Add(row.TotalAmount)
		case "card":
			totals.CardTotal = totals.CardTotal.Add(row.TotalAmount)
		}
	}
	if rows == nil {
		rows = []SaleRow{}
	}
	return &SalesReport{
		Range:         r,
		StartDate:     r.StartDate.Format(DateLayout),
		EndDate:       r.EndDate.Format(DateLayout),
		Sales:         rows,
		Totals:        totals,
		AverageTicket: totals.AverageTicket(),
		GeneratedAt:   now,
	}
}

// ReportRepository answers the read-side queries of the dashboard and sales report
type ReportRepository interface {
	// SalesTotals sums sales with from <= created_at < to, split by payment method
	SalesTotals(ctx context.Context, from, to time.Time) (SalesTotals, error)

	// TopProducts ranks products by units sold over all time; revenue is sum(quantity * unit_price)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)

	// SessionsStartedBetween lists drawer sessions with their cashier
	SessionsStartedBetween(ctx context.Context, from, to time.Time) ([]SessionOverview, error)

	// RecentSales returns the latest sales
	RecentSales(ctx context.Context, limit int) ([]SaleRow, error)

	// SalesBetween returns sales with from <= created_at < to, newest first
	SalesBetween(ctx context.Context, from, to time.Time) ([]SaleRow, error)
}
