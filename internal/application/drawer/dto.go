package drawer

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest carries the counted starting float as typed by the cashier
type OpenSessionRequest struct {
	StartingBalance string `json:"starting_balance" binding:"required"`
}

// CloseSessionRequest carries the counted drawer at the end of the shift
type CloseSessionRequest struct {
	EndingBalance string `json:"ending_balance" binding:"required"`
	Notes         string `json:"notes" binding:"max=1000"`
}

// SessionListFilter is the manager's session list query. Dates are YYYY-MM-DD
// and match on the session start day.
type SessionListFilter struct {
	UserID   *uuid.UUID `form:"user_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=active closed"`
	From     string     `form:"from"`
	To       string     `form:"to"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SummaryResponse is the money that moved through a session
type SummaryResponse struct {
	CashSales    decimal.Decimal `json:"cash_sales"`
	CardSales    decimal.Decimal `json:"card_sales"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	SaleCount    int64           `json:"sale_count"`
	CashRefunds  decimal.Decimal `json:"cash_refunds"`
	CardRefunds  decimal.Decimal `json:"card_refunds"`
	ReturnCount  int64           `json:"return_count"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
}

// SessionResponse represents a drawer session
type SessionResponse struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	Username        string           `json:"username,omitempty"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	StartingBalance decimal.Decimal  `json:"starting_balance"`
	EndingBalance   *decimal.Decimal `json:"ending_balance,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	IsActive        bool             `json:"is_active"`
	DurationMinutes int64            `json:"duration_minutes"`
	Summary         *SummaryResponse `json:"summary,omitempty"`
}

// ReconciliationResponse is the drawer count result shown after close
type ReconciliationResponse struct {
	StartingBalance decimal.Decimal `json:"starting_balance"`
	CashSales       decimal.Decimal `json:"cash_sales"`
	CardSales       decimal.Decimal `json:"card_sales"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	CashRefunds     decimal.Decimal `json:"cash_refunds"`
	ExpectedCash    decimal.Decimal `json:"expected_cash"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
	Difference      decimal.Decimal `json:"difference"`
	Status          string          `json:"status"`
}

// CloseSessionResponse is returned when a session is closed
type CloseSessionResponse struct {
	Session        SessionResponse        `json:"session"`
	Reconciliation ReconciliationResponse `json:"reconciliation"`
	Message        string                 `json:"message"`
}

// ToSessionResponse converts a domain session to SessionResponse
func ToSessionResponse(s *drawer.Session, now time.Time) SessionResponse {
	return SessionResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		StartingBalance: s.StartingBalance,
		EndingBalance:   s.EndingBalance,
		Notes:           s.Notes,
		IsActive:        s.IsActive(),
		DurationMinutes: int64(s.Duration(now).Minutes()),
	}
}

// ToSummaryResponse converts a session summary
func ToSummaryResponse(s *drawer.Session, summary drawer.SalesSummary) *SummaryResponse {
	return &SummaryResponse{
		CashSales:    summary.CashSales,
		CardSales:    summary.CardSales,
		TotalSales:   summary.TotalSales(),
		SaleCount:    summary.SaleCount,
		CashRefunds:  summary.CashRefunds,
		CardRefunds:  summary.CardRefunds,
		ReturnCount:  summary.ReturnCount,
		ExpectedCash: s.ExpectedCash(summary),
	}
}

// ToReconciliationResponse converts a reconciliation
func ToReconciliationResponse(r drawer.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		StartingBalance: r.StartingBalance,
		CashSales:       r.CashSales,
		CardSales:       r.CardSales,
		TotalSales:      r.TotalSales,
		CashRefunds:     r.CashRefunds,
		ExpectedCash:    r.ExpectedCash,
		EndingBalance:   r.EndingBalance,
		Difference:      r.Difference,
		Status:          string(r.Status),
	}
}
