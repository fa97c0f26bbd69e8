package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionRepository implements drawer.SessionRepository and
// drawer.SalesSummaryReader using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByID finds a session by ID
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*drawer.Session, error) {
	var model models.CashDrawerSessionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, drawer.ErrSessionNotFound)
	}
	return model.ToDomain(), nil
}

// FindActiveByUser returns the user's open session
func (r *GormSessionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*drawer.Session, error) {
	var model models.CashDrawerSessionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND end_time IS NULL", userID).
		Order("start_time DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err, drawer.ErrNoActiveSession)
	}
	return model.ToDomain(), nil
}

// LockActive loads the session with SELECT ... FOR UPDATE as long as it is
// still open
func (r *GormSessionRepository) LockActive(ctx context.Context, id uuid.UUID) (*drawer.Session, error) {
	query := r.db.WithContext(ctx).Where("id = ? AND end_time IS NULL", id)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var model models.CashDrawerSessionModel
	if err := query.First(&model).Error; err != nil {
		return nil, notFound(err, drawer.ErrNoActiveSession)
	}
	return model.ToDomain(), nil
}

// FindAll lists sessions, newest first by default
func (r *GormSessionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]drawer.Session, error) {
	var rows []models.CashDrawerSessionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CashDrawerSessionModel{}), filter).
		Order(sessionSort.clause(filter))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSessions(rows), nil
}

// Count counts sessions matching the filter
func (r *GormSessionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CashDrawerSessionModel{}), filter).Count(&count).Error
	return count, err
}

// FindStartedBetween returns sessions with from <= start_time < to
func (r *GormSessionRepository) FindStartedBetween(ctx context.Context, from, to time.Time) ([]drawer.Session, error) {
	var rows []models.CashDrawerSessionModel
	if err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time < ?", from, to).
		Order("start_time DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSessions(rows), nil
}

// CountActive counts sessions that have not been closed
func (r *GormSessionRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CashDrawerSessionModel{}).
		Where("end_time IS NULL").
		Count(&count).Error
	return count, err
}

// Save creates or updates a session. The partial unique index on open
// sessions turns a concurrent second open into ErrSessionAlreadyOpen.
func (r *GormSessionRepository) Save(ctx context.Context, session *drawer.Session) error {
	model := models.CashDrawerSessionModelFromDomain(session)
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(model).Error
	return translateWriteError(err, drawer.ErrSessionAlreadyOpen)
}

type methodTotal struct {
	Method string
	Total  decimal.Decimal
	Cnt    int64
}

// SummarizeSession sums the session's sales and refunds per payment method
func (r *GormSessionRepository) SummarizeSession(ctx context.Context, sessionID uuid.UUID) (drawer.SalesSummary, error) {
	summary := drawer.SalesSummary{
		CashSales:   decimal.Zero,
		CardSales:   decimal.Zero,
		CashRefunds: decimal.Zero,
		CardRefunds: decimal.Zero,
	}

	var saleRows []methodTotal
	if err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Select("payment_method AS method, COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS cnt").
		Where("cash_drawer_session_id = ?", sessionID).
		Group("payment_method").
		Scan(&saleRows).Error; err != nil {
		return summary, err
	}
	for _, row := range saleRows {
		switch sales.PaymentMethod(row.Method) {
		case sales.PaymentCash:
			summary.CashSales = summary.CashSales.Add(row.Total)
		case sales.PaymentCard:
			summary.CardSales = summary.CardSales.Add(row.Total)
		}
		summary.SaleCount += row.Cnt
	}

	var refundRows []methodTotal
	if err := r.db.WithContext(ctx).
		Model(&models.SaleReturnModel{}).
		Select("refund_method AS method, COALESCE(SUM(total_refund), 0) AS total, COUNT(*) AS cnt").
		Where("cash_drawer_session_id = ?", sessionID).
		Group("refund_method").
		Scan(&refundRows).Error; err != nil {
		return summary, err
	}
	for _, row := range refundRows {
		switch sales.PaymentMethod(row.Method) {
		case sales.PaymentCash:
			summary.CashRefunds = summary.CashRefunds.Add(row.Total)
		case sales.PaymentCard:
			summary.CardRefunds = summary.CardRefunds.Add(row.Total)
		}
		summary.ReturnCount += row.Cnt
	}
	return summary, nil
}

func (r *GormSessionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case drawer.FilterUserID:
			query = query.Where("user_id = ?", value)
		case drawer.FilterActive:
			if active, ok := value.(bool); ok {
				if active {
					query = query.Where("end_time IS NULL")
				} else {
					query = query.Where("end_time IS NOT NULL")
				}
			}
		case drawer.FilterFrom:
			query = query.Where("start_time >= ?", value)
		case drawer.FilterTo:
			query = query.Where("start_time < ?", value)
		}
	}
	return query
}

func toSessions(rows []models.CashDrawerSessionModel) []drawer.Session {
	sessions := make([]drawer.Session, len(rows))
	for i := range rows {
		sessions[i] = *rows[i].ToDomain()
	}
	return sessions
}

// Ensure GormSessionRepository implements the drawer interfaces
var (
	_ drawer.SessionRepository  = (*GormSessionRepository)(nil)
	_ drawer.SalesSummaryReader = (*GormSessionRepository)(nil)
)
