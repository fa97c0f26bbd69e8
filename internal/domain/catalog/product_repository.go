package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// Filter keys understood by ProductRepository.FindAll and Count
const (
	FilterCategoryID  = "category_id"
	FilterSupplierID  = "supplier_id"
	FilterStockStatus = "stock_status"
)

// ProductRepository defines product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its normalized SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindByIDsForUpdate loads products holding row locks until the surrounding
	// transaction ends. Rows are locked in ID order.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll lists products matching the filter (search on name and SKU)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindLowStock returns products with 0 < stock < LowStockThreshold, lowest first
	FindLowStock(ctx context.Context, limit int) ([]Product, error)

	// FindOutOfStock returns products with no stock
	FindOutOfStock(ctx context.Context, limit int) ([]Product, error)

	// CountByCategory returns the number of products per category
	CountByCategory(ctx context.Context) (map[uuid.UUID]int64, error)

	// CountBySupplier returns the number of products per supplier
	CountBySupplier(ctx context.Context) (map[uuid.UUID]int64, error)

	// ExistsBySKU reports whether another product already uses the SKU
	ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveStock persists a stock change guarded by the aggregate version
	SaveStock(ctx context.Context, product *Product) error

	// Delete deletes a product. Products referenced by sales cannot be deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierRepository defines supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}
