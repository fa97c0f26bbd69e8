package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// CategoryResponse represents a category with the number of products in it
type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	ContactName string `json:"contact_name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=50"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest = CreateSupplierRequest

// SupplierResponse represents a supplier with the number of products it delivers
type SupplierResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactName  string    `json:"contact_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name       string           `json:"name" binding:"required,min=1,max=200"`
	SKU        string           `json:"sku" binding:"required,min=1,max=50"`
	Price      decimal.Decimal  `json:"price" binding:"required"`
	Cost       *decimal.Decimal `json:"cost"`
	Stock      int              `json:"stock" binding:"min=0"`
	CategoryID *uuid.UUID       `json:"category_id"`
	SupplierID *uuid.UUID       `json:"supplier_id"`
}

// UpdateProductRequest represents a request to update a product. Stock is
// changed through AdjustStock only.
type UpdateProductRequest struct {
	Name       string           `json:"name" binding:"required,min=1,max=200"`
	SKU        string           `json:"sku" binding:"required,min=1,max=50"`
	Price      decimal.Decimal  `json:"price" binding:"required"`
	Cost       *decimal.Decimal `json:"cost"`
	CategoryID *uuid.UUID       `json:"category_id"`
	SupplierID *uuid.UUID       `json:"supplier_id"`
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	SKU          string           `json:"sku"`
	Price        decimal.Decimal  `json:"price"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	Margin       *decimal.Decimal `json:"margin,omitempty"`
	Stock        int              `json:"stock"`
	StockStatus  string           `json:"stock_status"`
	CategoryID   *uuid.UUID       `json:"category_id,omitempty"`
	CategoryName string           `json:"category_name,omitempty"`
	SupplierID   *uuid.UUID       `json:"supplier_id,omitempty"`
	SupplierName string           `json:"supplier_name,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Version      int              `json:"version"`
}

// ListFilter is the common paging and sorting query of catalog lists
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	ListFilter
	CategoryID  *uuid.UUID `form:"category_id"`
	SupplierID  *uuid.UUID `form:"supplier_id"`
	StockStatus string     `form:"stock_status" binding:"omitempty,oneof=in_stock low_stock out_of_stock"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category, productCount int64) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ProductCount: productCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *catalog.Supplier, productCount int64) SupplierResponse {
	return SupplierResponse{
		ID:           s.ID,
		Name:         s.Name,
		ContactName:  s.ContactName,
		Phone:        s.Phone,
		Email:        s.Email,
		ProductCount: productCount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Price:       p.Price,
		Cost:        p.Cost,
		Margin:      p.Margin(),
		Stock:       p.Stock,
		StockStatus: string(p.StockStatus()),
		CategoryID:  p.CategoryID,
		SupplierID:  p.SupplierID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

func (f ListFilter) toDomainFilter() shared.Filter {
	filter := shared.DefaultFilter()
	filter.Search = f.Search
	filter.OrderBy = f.OrderBy
	filter.OrderDir = f.OrderDir
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	return filter
}
