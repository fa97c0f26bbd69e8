package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// Filter keys understood by SaleRepository and SaleReturnRepository list queries
const (
	FilterSessionID     = "session_id"
	FilterCashierID     = "cashier_id"
	FilterPaymentMethod = "payment_method"
	FilterSaleID        = "sale_id"
	FilterFrom          = "from"
	FilterTo            = "to"
)

// SaleRepository defines sale persistence
type SaleRepository interface {
	// FindByID loads a sale with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindBySaleNumber loads a sale with its items by receipt number
	FindBySaleNumber(ctx context.Context, saleNumber string) (*Sale, error)

	// FindAll lists sales newest first, without items
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)

	// Count counts sales matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindBetween returns sales with from <= created_at < to, newest first
	FindBetween(ctx context.Context, from, to time.Time) ([]Sale, error)

	// FindRecent returns the latest sales
	FindRecent(ctx context.Context, limit int) ([]Sale, error)

	// Save creates a sale together with its items
	Save(ctx context.Context, sale *Sale) error
}

// SaleReturnRepository defines return persistence
type SaleReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SaleReturn, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]SaleReturn, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SaleReturn, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ReturnedQuantities sums the returned units per product for a sale
	ReturnedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]int, error)

	// Save creates a return together with its items
	Save(ctx context.Context, ret *SaleReturn) error
}
