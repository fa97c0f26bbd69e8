package persistence

import (
	"context"
	"fmt"
	"time"

	appdrawer "github.com/retailpos/backend/internal/application/drawer"
	appsales "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormTransactionScope creates a new GormTransactionScope. On PostgreSQL a
// positive lockTimeout bounds how long the transaction waits for row locks.
func NewGormTransactionScope(db *gorm.DB, lockTimeout time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, lockTimeout: lockTimeout}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.transaction(ctx, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

// ExecuteSession runs a drawer close within a database transaction.
func (s *GormTransactionScope) ExecuteSession(ctx context.Context, fn func(repos appdrawer.SessionRepositories) error) error {
	return s.transaction(ctx, func(repos *gormTransactionalRepositories) error {
		return fn(repos)
	})
}

func (s *GormTransactionScope) transaction(ctx context.Context, fn func(repos *gormTransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// SaleRepo returns the sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// ReturnRepo returns the return repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReturnRepo() sales.SaleReturnRepository {
	return NewGormSaleReturnRepository(r.tx)
}

// SessionLocker returns a session repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SessionLocker() drawer.SessionLocker {
	return NewGormSessionRepository(r.tx)
}

// SessionRepo returns the session repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SessionRepo() drawer.SessionRepository {
	return NewGormSessionRepository(r.tx)
}

// SummaryReader returns the session summary reader scoped to the current transaction.
func (r *gormTransactionalRepositories) SummaryReader() drawer.SalesSummaryReader {
	return NewGormSessionRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appsales.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appsales.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

var _ appdrawer.TransactionScope = (*GormTransactionScope)(nil)

var _ appdrawer.SessionRepositories = (*gormTransactionalRepositories)(nil)
