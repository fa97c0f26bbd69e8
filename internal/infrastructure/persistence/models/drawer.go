package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/shopspring/decimal"
)

// CashDrawerSessionModel is the persistence model for the drawer Session entity.
// At most one row per user may have a NULL end_time.
type CashDrawerSessionModel struct {
	AggregateModel
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_sessions_user_active,where:end_time IS NULL"`
	StartTime       time.Time        `gorm:"not null;index"`
	EndTime         *time.Time       `gorm:"index"`
	StartingBalance decimal.Decimal  `gorm:"type:decimal(12,2);not null;check:chk_sessions_starting_balance,starting_balance >= 0"`
	EndingBalance   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes           string           `gorm:"type:text"`

	User *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for GORM
func (CashDrawerSessionModel) TableName() string {
	return "cash_drawer_sessions"
}

// ToDomain converts the persistence model to a domain Session entity.
func (m *CashDrawerSessionModel) ToDomain() *drawer.Session {
	return &drawer.Session{
		BaseAggregateRoot: m.ToAggregateRoot(),
		UserID:            m.UserID,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		StartingBalance:   m.StartingBalance,
		EndingBalance:     m.EndingBalance,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Session entity.
func (m *CashDrawerSessionModel) FromDomain(s *drawer.Session) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.UserID = s.UserID
	m.StartTime = s.StartTime
	m.EndTime = s.EndTime
	m.StartingBalance = s.StartingBalance
	m.EndingBalance = s.EndingBalance
	m.Notes = s.Notes
}

// CashDrawerSessionModelFromDomain creates a new persistence model from a domain Session entity.
func CashDrawerSessionModelFromDomain(s *drawer.Session) *CashDrawerSessionModel {
	m := &CashDrawerSessionModel{}
	m.FromDomain(s)
	return m
}
