package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level below which a product counts as running low
const LowStockThreshold = 10

// StockStatus is the derived availability label of a product
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// IsValid reports whether s is a known stock status
func (s StockStatus) IsValid() bool {
	switch s {
	case StockStatusInStock, StockStatusLowStock, StockStatusOutOfStock:
		return true
	}
	return false
}

var skuPattern = regexp.MustCompile(`^[A-Z0-9_-]{1,50}$`)

// Product is a sellable item identified by its SKU
type Product struct {
	shared.BaseAggregateRoot
	Name       string
	SKU        string
	Price      decimal.Decimal
	Cost       *decimal.Decimal
	Stock      int
	CategoryID *uuid.UUID
	SupplierID *uuid.UUID
}

// NewProduct creates a product with zero stock
func NewProduct(name, sku string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	sku = NormalizeSKU(sku)
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SKU:               sku,
		Price:             shared.RoundMoney(price),
	}, nil
}

// NormalizeSKU uppercases and trims a scanned or typed SKU
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Update changes name, SKU and price
func (p *Product) Update(name, sku string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	sku = NormalizeSKU(sku)
	if err := validateSKU(sku); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}

	p.Name = name
	p.SKU = sku
	p.Price = shared.RoundMoney(price)
	p.IncrementVersion()
	return nil
}

// SetCost sets the purchase cost; nil clears it
func (p *Product) SetCost(cost *decimal.Decimal) error {
	if cost != nil {
		if cost.IsNegative() {
			return shared.NewDomainError("INVALID_COST", "Cost cannot be negative")
		}
		rounded := shared.RoundMoney(*cost)
		cost = &rounded
	}
	p.Cost = cost
	p.IncrementVersion()
	return nil
}

// Assign sets the category and supplier references
func (p *Product) Assign(categoryID, supplierID *uuid.UUID) {
	p.CategoryID = categoryID
	p.SupplierID = supplierID
	p.IncrementVersion()
}

// StockStatus derives the availability label from the current stock
func (p *Product) StockStatus() StockStatus {
	return StockStatusFor(p.Stock)
}

// StockStatusFor derives the availability label for a stock level
func StockStatusFor(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockStatusOutOfStock
	case stock < LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// CanSell reports whether qty units can be taken from stock
func (p *Product) CanSell(qty int) bool {
	return qty > 0 && p.Stock >= qty
}

// DecreaseStock removes sold units. Stock never goes negative.
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Stock < qty {
		return NewInsufficientStockError(p.Name, p.Stock, qty)
	}
	p.Stock -= qty
	p.IncrementVersion()
	return nil
}

// IncreaseStock puts units back, e.g. after a return
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	p.Stock += qty
	p.IncrementVersion()
	return nil
}

// AdjustStock applies a manual correction of delta units
func (p *Product) AdjustStock(delta int) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment cannot be zero")
	}
	if p.Stock+delta < 0 {
		return shared.NewDomainError("NEGATIVE_STOCK", "Stock cannot go below zero")
	}
	p.Stock += delta
	p.IncrementVersion()
	return nil
}

// Margin returns price minus cost, or nil if the cost is unknown
func (p *Product) Margin() *decimal.Decimal {
	if p.Cost == nil {
		return nil
	}
	m := p.Price.Sub(*p.Cost)
	return &m
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if !skuPattern.MatchString(sku) {
		return shared.NewDomainError("INVALID_SKU", "SKU may only contain letters, digits, hyphens and underscores (max 50)")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	return nil
}
