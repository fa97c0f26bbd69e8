package drawer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// Filter keys understood by SessionRepository.FindAll and Count
const (
	FilterUserID = "user_id"
	FilterActive = "active"
	FilterFrom   = "from" // start_time >= value
	FilterTo     = "to"   // start_time < value
)

// SessionRepository defines drawer session persistence
type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// FindActiveByUser returns the user's open session or ErrNoActiveSession
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*Session, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Session, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindStartedBetween returns sessions with from <= start_time < to
	FindStartedBetween(ctx context.Context, from, to time.Time) ([]Session, error)

	// CountActive counts sessions that have not been closed
	CountActive(ctx context.Context) (int64, error)

	// Save creates or updates a session. Creating a second open session for
	// the same user fails with ErrSessionAlreadyOpen.
	Save(ctx context.Context, session *Session) error
}

// SalesSummaryReader aggregates the sales and refunds booked against a session
type SalesSummaryReader interface {
	SummarizeSession(ctx context.Context, sessionID uuid.UUID) (SalesSummary, error)
}

// SessionLocker re-reads an open session under a row lock held until the
// surrounding transaction ends. ErrNoActiveSession means the session was
// closed in the meantime.
type SessionLocker interface {
	LockActive(ctx context.Context, id uuid.UUID) (*Session, error)
}
