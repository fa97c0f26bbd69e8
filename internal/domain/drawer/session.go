// Package drawer models cash-drawer sessions: a cashier's open-to-close
// working period and the cash reconciliation performed when it ends.
package drawer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrSessionNotFound    = shared.NewDomainError("SESSION_NOT_FOUND", "Cash drawer session not found")
	ErrNoActiveSession    = shared.NewDomainError("NO_ACTIVE_SESSION", "You must open a cash drawer session first")
	ErrSessionAlreadyOpen = shared.NewDomainError("SESSION_ALREADY_OPEN", "You already have an open cash drawer session")
	ErrSessionClosed      = shared.NewDomainError("SESSION_CLOSED", "This cash drawer session is already closed")
	ErrSessionStillOpen   = shared.NewDomainError("SESSION_STILL_OPEN", "This cash drawer session has not been closed yet")
)

// Session is one cashier's drawer shift
type Session struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	StartTime       time.Time
	EndTime         *time.Time
	StartingBalance decimal.Decimal
	EndingBalance   *decimal.Decimal
	Notes           string
}

// OpenSession starts a shift with the counted starting float
func OpenSession(userID uuid.UUID, startingBalance decimal.Decimal, now time.Time) (*Session, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	if startingBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Starting balance cannot be negative")
	}

	s := &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		StartTime:         now,
		StartingBalance:   shared.RoundMoney(startingBalance),
	}
	s.AddDomainEvent(NewSessionOpenedEvent(s))
	return s, nil
}

// IsActive reports whether the session has not been closed
func (s *Session) IsActive() bool {
	return s.EndTime == nil
}

// Close ends the shift with the counted ending balance and returns the reconciliation
func (s *Session) Close(endingBalance decimal.Decimal, notes string, summary SalesSummary, now time.Time) (Reconciliation, error) {
	if !s.IsActive() {
		return Reconciliation{}, ErrSessionClosed
	}
	if endingBalance.IsNegative() {
		return Reconciliation{}, shared.NewDomainError("INVALID_AMOUNT", "Ending balance cannot be negative")
	}

	ending := shared.RoundMoney(endingBalance)
	s.EndTime = &now
	s.EndingBalance = &ending
	s.Notes = strings.TrimSpace(notes)
	s.IncrementVersion()

	rec, err := Reconcile(s, summary)
	if err != nil {
		return Reconciliation{}, err
	}
	s.AddDomainEvent(NewSessionClosedEvent(s, rec))
	return rec, nil
}

// ExpectedCash is the amount of cash that should be in the drawer
func (s *Session) ExpectedCash(summary SalesSummary) decimal.Decimal {
	return s.StartingBalance.Add(summary.CashSales).Sub(summary.CashRefunds)
}

// Duration returns how long the session ran, or has been running at now
func (s *Session) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return end.Sub(s.StartTime)
}
