package catalog

import (
	"fmt"

	"github.com/retailpos/backend/internal/domain/shared"
)

var (
	ErrProductNotFound  = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrCategoryNotFound = shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
	ErrSupplierNotFound = shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
	ErrOutOfStock       = shared.NewDomainError("OUT_OF_STOCK", "Product has no stock")
	ErrSKUExists        = shared.NewDomainError("SKU_EXISTS", "A product with this SKU already exists")
	ErrCategoryExists   = shared.NewDomainError("CATEGORY_EXISTS", "A category with this name already exists")
	ErrSupplierExists   = shared.NewDomainError("SUPPLIER_EXISTS", "A supplier with this name already exists")
)

// NewInsufficientStockError reports the available and requested quantity for a product
func NewInsufficientStockError(productName string, available, requested int) *shared.DomainError {
	return shared.ErrInsufficientStock.WithMessage(
		fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d", productName, available, requested))
}
