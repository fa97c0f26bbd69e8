package sales

import (
	"context"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/sales"
)

// TransactionScope runs checkout and return processing atomically.
// Stock changes, sales and returns written through the repositories handed
// to fn are committed together or not at all.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to one transaction
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	SaleRepo() sales.SaleRepository
	ReturnRepo() sales.SaleReturnRepository
	SessionLocker() drawer.SessionLocker
}

// NoOpTransactionScope hands out the given repositories without a transaction.
// Tests use it with in-memory repositories.
type NoOpTransactionScope struct {
	products catalog.ProductRepository
	sales    sales.SaleRepository
	returns  sales.SaleReturnRepository
	sessions drawer.SessionLocker
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(products catalog.ProductRepository, saleRepo sales.SaleRepository, returns sales.SaleReturnRepository, sessions drawer.SessionLocker) *NoOpTransactionScope {
	return &NoOpTransactionScope{products: products, sales: saleRepo, returns: returns, sessions: sessions}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.products }

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() sales.SaleRepository { return s.sales }

// ReturnRepo returns the return repository
func (s *NoOpTransactionScope) ReturnRepo() sales.SaleReturnRepository { return s.returns }

// SessionLocker returns the session locker
func (s *NoOpTransactionScope) SessionLocker() drawer.SessionLocker { return s.sessions }
