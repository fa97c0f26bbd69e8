package drawer

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeSession is the aggregate type name used on session events
const AggregateTypeSession = "CashDrawerSession"

const (
	EventTypeSessionOpened = "SessionOpened"
	EventTypeSessionClosed = "SessionClosed"
)

// SessionOpenedEvent is published when a cashier opens the drawer
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID       uuid.UUID       `json:"session_id"`
	UserID          uuid.UUID       `json:"user_id"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
}

// NewSessionOpenedEvent creates a SessionOpenedEvent
func NewSessionOpenedEvent(s *Session) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionOpened, AggregateTypeSession, s.ID),
		SessionID:       s.ID,
		UserID:          s.UserID,
		StartingBalance: s.StartingBalance,
	}
}

// SessionClosedEvent is published when a drawer is counted and closed
type SessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID    uuid.UUID            `json:"session_id"`
	UserID       uuid.UUID            `json:"user_id"`
	ExpectedCash decimal.Decimal      `json:"expected_cash"`
	Difference   decimal.Decimal      `json:"difference"`
	Status       ReconciliationStatus `json:"status"`
}

// NewSessionClosedEvent creates a SessionClosedEvent
func NewSessionClosedEvent(s *Session, rec Reconciliation) *SessionClosedEvent {
	return &SessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionClosed, AggregateTypeSession, s.ID),
		SessionID:       s.ID,
		UserID:          s.UserID,
		ExpectedCash:    rec.ExpectedCash,
		Difference:      rec.Difference,
		Status:          rec.Status,
	}
}
