package drawer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/report"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActiveSessionError is returned when a user tries to open a second drawer.
// It matches drawer.ErrSessionAlreadyOpen and carries the open session.
type ActiveSessionError struct {
	SessionID uuid.UUID
}

func (e *ActiveSessionError) Error() string {
	return drawer.ErrSessionAlreadyOpen.Message
}

func (e *ActiveSessionError) Unwrap() error {
	return drawer.ErrSessionAlreadyOpen
}

// SessionService manages cash drawer sessions
type SessionService struct {
	txScope        TransactionScope
	sessionRepo    drawer.SessionRepository
	summaryReader  drawer.SalesSummaryReader
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	location       *time.Location
	logger         *zap.Logger
	now            func() time.Time
}

// NewSessionService creates a new SessionService. Dates in list filters are
// read in loc.
func NewSessionService(
	txScope TransactionScope,
	sessionRepo drawer.SessionRepository,
	summaryReader drawer.SalesSummaryReader,
	userRepo identity.UserRepository,
	loc *time.Location,
	logger *zap.Logger,
) *SessionService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		txScope:       txScope,
		sessionRepo:   sessionRepo,
		summaryReader: summaryReader,
		userRepo:      userRepo,
		location:      loc,
		logger:        logger,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for session events
func (s *SessionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Open starts a drawer session for the user
func (s *SessionService) Open(ctx context.Context, userID uuid.UUID, req OpenSessionRequest) (*SessionResponse, error) {
	amount, err := shared.ParseAmount(req.StartingBalance)
	if err != nil {
		return nil, err
	}

	active, err := s.sessionRepo.FindActiveByUser(ctx, userID)
	if err == nil {
		return nil, &ActiveSessionError{SessionID: active.ID}
	}
	if !errors.Is(err, drawer.ErrNoActiveSession) {
		return nil, err
	}

	session, err := drawer.OpenSession(userID, amount, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		if errors.Is(err, drawer.ErrSessionAlreadyOpen) {
			// lost a race with a concurrent open
			if active, findErr := s.sessionRepo.FindActiveByUser(ctx, userID); findErr == nil {
				return nil, &ActiveSessionError{SessionID: active.ID}
			}
		}
		return nil, err
	}

	s.logger.Info("Drawer session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("starting_balance", session.StartingBalance.StringFixed(2)))
	s.publish(ctx, session)

	resp := ToSessionResponse(session, s.now())
	return &resp, nil
}

// GetActive returns the user's open session with its running summary
func (s *SessionService) GetActive(ctx context.Context, userID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withSummary(ctx, session)
}

// Summary returns the sales and refund totals of a session
func (s *SessionService) Summary(ctx context.Context, sessionID uuid.UUID) (*SummaryResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary, err := s.summaryReader.SummarizeSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return ToSummaryResponse(session, summary), nil
}

// Close counts and closes the user's open session
func (s *SessionService) Close(ctx context.Context, userID uuid.UUID, req CloseSessionRequest) (*CloseSessionResponse, error) {
	ending, err := shared.ParseAmount(req.EndingBalance)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		summary drawer.SalesSummary
		rec     drawer.Reconciliation
	)
	// checkouts and returns lock this row before booking against the session
	err = s.txScope.ExecuteSession(ctx, func(repos SessionRepositories) error {
		locked, err := repos.SessionLocker().LockActive(ctx, session.ID)
		if err != nil {
			return err
		}
		summary, err = repos.SummaryReader().SummarizeSession(ctx, locked.ID)
		if err != nil {
			return err
		}
		rec, err = locked.Close(ending, req.Notes, summary, now)
		if err != nil {
			return err
		}
		session = locked
		return repos.SessionRepo().Save(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	logFn := s.logger.Info
	if rec.Status == drawer.StatusShortage {
		logFn = s.logger.Warn
	}
	logFn("Drawer session closed",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("expected_cash", rec.ExpectedCash.StringFixed(2)),
		zap.String("difference", rec.Difference.StringFixed(2)),
		zap.String("status", string(rec.Status)))
	s.publish(ctx, session)

	resp := ToSessionResponse(session, now)
	resp.Summary = ToSummaryResponse(session, summary)
	return &CloseSessionResponse{
		Session:        resp,
		Reconciliation: ToReconciliationResponse(rec),
		Message:        closeMessage(rec),
	}, nil
}

// GetByID returns one session with its summary and cashier name
func (s *SessionService) GetByID(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := s.withSummary(ctx, session)
	if err != nil {
		return nil, err
	}
	names, err := s.usernames(ctx, []uuid.UUID{session.UserID})
	if err != nil {
		return nil, err
	}
	resp.Username = names[session.UserID]
	return resp, nil
}

// List returns sessions, newest first
func (s *SessionService) List(ctx context.Context, filter SessionListFilter) ([]SessionResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "start_time"
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.UserID != nil {
		domainFilter.Filters[drawer.FilterUserID] = *filter.UserID
	}
	switch filter.Status {
	case "active":
		domainFilter.Filters[drawer.FilterActive] = true
	case "closed":
		domainFilter.Filters[drawer.FilterActive] = false
	}
	if filter.From != "" || filter.To != "" {
		from, to := filter.From, filter.To
		if from == "" {
			from = to
		}
		if to == "" {
			to = from
		}
		dateRange, err := report.ParseDateRange(from, to, s.location)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters[drawer.FilterFrom] = dateRange.From()
		domainFilter.Filters[drawer.FilterTo] = dateRange.To()
	}

	sessions, err := s.sessionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.sessionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	userIDs := make([]uuid.UUID, 0, len(sessions))
	for i := range sessions {
		userIDs = append(userIDs, sessions[i].UserID)
	}
	names, err := s.usernames(ctx, userIDs)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	responses := make([]SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = ToSessionResponse(&sessions[i], now)
		responses[i].Username = names[sessions[i].UserID]
	}
	return responses, total, nil
}

func (s *SessionService) withSummary(ctx context.Context, session *drawer.Session) (*SessionResponse, error) {
	summary, err := s.summaryReader.SummarizeSession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	resp := ToSessionResponse(session, s.now())
	resp.Summary = ToSummaryResponse(session, summary)
	return &resp, nil
}

func (s *SessionService) usernames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 || s.userRepo == nil {
		return names, nil
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}
	return names, nil
}

func (s *SessionService) publish(ctx context.Context, session *drawer.Session) {
	if s.eventPublisher == nil {
		session.ClearDomainEvents()
		return
	}
	for _, event := range session.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish session event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	session.ClearDomainEvents()
}

func closeMessage(rec drawer.Reconciliation) string {
	switch rec.Status {
	case drawer.StatusSurplus:
		return fmt.Sprintf("Drawer closed - Surplus: %s", rec.Difference.StringFixed(2))
	case drawer.StatusShortage:
		return fmt.Sprintf("Drawer closed - Shortage: %s", rec.Difference.Abs().StringFixed(2))
	default:
		return "Drawer closed - No difference"
	}
}
