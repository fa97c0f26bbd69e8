package drawer

import (
	"context"

	"github.com/retailpos/backend/internal/domain/drawer"
)

// TransactionScope runs a session close atomically. The session row stays
// locked from LockActive until fn returns.
type TransactionScope interface {
	ExecuteSession(ctx context.Context, fn func(repos SessionRepositories) error) error
}

// SessionRepositories provides the session repositories bound to one transaction
type SessionRepositories interface {
	SessionLocker() drawer.SessionLocker
	SessionRepo() drawer.SessionRepository
	SummaryReader() drawer.SalesSummaryReader
}

// NoOpTransactionScope hands out the given repositories without a transaction
type NoOpTransactionScope struct {
	locker    drawer.SessionLocker
	sessions  drawer.SessionRepository
	summaries drawer.SalesSummaryReader
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(locker drawer.SessionLocker, sessions drawer.SessionRepository, summaries drawer.SalesSummaryReader) *NoOpTransactionScope {
	return &NoOpTransactionScope{locker: locker, sessions: sessions, summaries: summaries}
}

// ExecuteSession runs fn directly
func (s *NoOpTransactionScope) ExecuteSession(_ context.Context, fn func(repos SessionRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) SessionLocker() drawer.SessionLocker { return s.locker }

func (s *NoOpTransactionScope) SessionRepo() drawer.SessionRepository { return s.sessions }

func (s *NoOpTransactionScope) SummaryReader() drawer.SalesSummaryReader { return s.summaries }
