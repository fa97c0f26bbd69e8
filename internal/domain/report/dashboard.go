// Package report contains the read models behind the manager dashboard
// and the sales report.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dashboard limits
const (
	TopProductsLimit = 5
	RecentSalesLimit = 10
	StockAlertLimit  = 5
	WeekDays         = 7
)

// SalesTotals aggregates sales over a period
type SalesTotals struct {
	Total     decimal.Decimal `json:"total"`
	CashTotal decimal.Decimal `json:"cash_total"`
	CardTotal decimal.Decimal `json:"card_total"`
	Count     int64           `json:"count"`
}

// AverageTicket returns total / count, zero when there were no sales
func (t SalesTotals) AverageTicket() decimal.Decimal {
	if t.Count == 0 {
		return decimal.Zero
	}
	return t.Total.Div(decimal.NewFromInt(t.Count)).Round(2)
}

// TopProduct is a best seller ranked by units sold
type TopProduct struct {
	Rank        int             `json:"rank"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SessionOverview is a drawer session with its cashier
type SessionOverview struct {
	SessionID       uuid.UUID        `json:"session_id"`
	UserID          uuid.UUID        `json:"user_id"`
	Username        string           `json:"username"`
	FullName        string           `json:"full_name"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	StartingBalance decimal.Decimal  `json:"starting_balance"`
	EndingBalance   *decimal.Decimal `json:"ending_balance,omitempty"`
}

// IsActive reports whether the session is still open
func (s SessionOverview) IsActive() bool {
	return s.EndTime == nil
}

// SaleRow is one sale as listed on the dashboard and in the sales report
type SaleRow struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	CreatedAt     time.Time       `json:"created_at"`
	CashierName   string          `json:"cashier_name"`
	CustomerName  string          `json:"customer_name,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	ItemCount     int64           `json:"item_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// StockAlert is a product that is running low or out of stock
type StockAlert struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Stock     int       `json:"stock"`
}

// Dashboard is the manager overview
type Dashboard struct {
	Date           time.Time         `json:"date"`
	WeekStart      time.Time         `json:"week_start"`
	Today          SalesTotals       `json:"today"`
	AverageTicket  decimal.Decimal   `json:"average_ticket"`
	WeekSales      decimal.Decimal   `json:"week_sales"`
	ActiveSessions int64             `json:"active_sessions"`
	TopProducts    []TopProduct      `json:"top_products"`
	TodaySessions  []SessionOverview `json:"today_sessions"`
	RecentSales    []SaleRow         `json:"recent_sales"`
	LowStock       []StockAlert      `json:"low_stock"`
	OutOfStock     []StockAlert      `json:"out_of_stock"`
}
