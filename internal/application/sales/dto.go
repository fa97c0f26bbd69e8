package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// AddToCartRequest adds one unit of the product with the given SKU
type AddToCartRequest struct {
	SKU string `json:"sku" binding:"max=50"`
}

// SetQuantityRequest sets a cart line's quantity; zero removes the line
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineResponse is one cart line
type CartLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse is the cashier's cart
type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	Total     decimal.Decimal    `json:"total"`
	ItemCount int                `json:"item_count"`
	Version   int64              `json:"version"`
}

// CartProductResponse is the product touched by a cart mutation
type CartProductResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	SKU         string              `json:"sku"`
	Stock       int                 `json:"stock"`
	StockStatus catalog.StockStatus `json:"stock_status"`
}

// AddToCartResponse is the cart after adding a product
type AddToCartResponse struct {
	Cart    CartResponse        `json:"cart"`
	Product CartProductResponse `json:"product"`
	Message string              `json:"message"`
}

// CheckoutRequest completes the sale. An empty payment method means cash.
type CheckoutRequest struct {
	PaymentMethod string     `json:"payment_method"`
	CustomerID    *uuid.UUID `json:"customer_id"`
}

// CheckoutResponse is the registered sale
type CheckoutResponse struct {
	Sale    SaleResponse `json:"sale"`
	Message string       `json:"message"`
}

// SaleItemResponse is one sale line
type SaleItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse represents a sale
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	SessionID     *uuid.UUID         `json:"session_id,omitempty"`
	CashierID     uuid.UUID          `json:"cashier_id"`
	CashierName   string             `json:"cashier_name,omitempty"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	ItemCount     int                `json:"item_count,omitempty"`
	Items         []SaleItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SaleListFilter filters the sales list. Dates are YYYY-MM-DD.
type SaleListFilter struct {
	From          string     `form:"from"`
	To            string     `form:"to"`
	SessionID     *uuid.UUID `form:"session_id"`
	CashierID     *uuid.UUID `form:"cashier_id"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,oneof=cash card"`
	Page          int        `form:"page" binding:"min=0"`
	PageSize      int        `form:"page_size" binding:"min=0,max=100"`
}

// ReturnItemRequest is one product to give back
type ReturnItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// ProcessReturnRequest returns some lines of a sale
type ProcessReturnRequest struct {
	SaleID uuid.UUID           `json:"sale_id" binding:"required"`
	Reason string              `json:"reason" binding:"max=500"`
	Items  []ReturnItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReturnableLineResponse shows how much of a sale line can still be returned
type ReturnableLineResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Sold        int             `json:"sold"`
	Returned    int             `json:"returned"`
	Returnable  int             `json:"returnable"`
}

// ReturnLookupResponse is a sale found for a return
type ReturnLookupResponse struct {
	Sale          SaleResponse             `json:"sale"`
	Lines         []ReturnableLineResponse `json:"lines"`
	FullyReturned bool                     `json:"fully_returned"`
}

// ReturnItemResponse is one returned line
type ReturnItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ReturnResponse represents a sale return
type ReturnResponse struct {
	ID              uuid.UUID            `json:"id"`
	SaleID          uuid.UUID            `json:"sale_id"`
	SaleNumber      string               `json:"sale_number"`
	SessionID       *uuid.UUID           `json:"session_id,omitempty"`
	ReturnedAt      time.Time            `json:"returned_at"`
	Reason          string               `json:"reason"`
	TotalRefund     decimal.Decimal      `json:"total_refund"`
	RefundMethod    string               `json:"refund_method"`
	ProcessedBy     uuid.UUID            `json:"processed_by"`
	ProcessedByName string               `json:"processed_by_name,omitempty"`
	Items           []ReturnItemResponse `json:"items,omitempty"`
}

// ProcessReturnResponse is the recorded return
type ProcessReturnResponse struct {
	Return  ReturnResponse `json:"return"`
	Message string         `json:"message"`
}

// ReturnListFilter filters the returns list. Dates are YYYY-MM-DD.
type ReturnListFilter struct {
	SaleID   *uuid.UUID `form:"sale_id"`
	From     string     `form:"from"`
	To       string     `form:"to"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
}

// ToCartResponse converts a cart
func ToCartResponse(c *sales.Cart) CartResponse {
	lines := make([]CartLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		}
	}
	return CartResponse{
		Lines:     lines,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		Version:   c.Version,
	}
}

// ToSaleResponse converts a sale with its items
func ToSaleResponse(s *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		}
	}
	return SaleResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		SessionID:     s.SessionID,
		CashierID:     s.CashierID,
		CustomerID:    s.CustomerID,
		PaymentMethod: s.PaymentMethod.String(),
		TotalAmount:   s.TotalAmount,
		ItemCount:     s.ItemCount(),
		Items:         items,
		CreatedAt:     s.CreatedAt,
	}
}

// ToReturnResponse converts a return with its items
func ToReturnResponse(r *sales.SaleReturn) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ReturnItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		}
	}
	return ReturnResponse{
		ID:           r.ID,
		SaleID:       r.SaleID,
		SaleNumber:   r.SaleNumber,
		SessionID:    r.SessionID,
		ReturnedAt:   r.ReturnedAt,
		Reason:       r.Reason,
		TotalRefund:  r.TotalRefund,
		RefundMethod: r.RefundMethod.String(),
		ProcessedBy:  r.ProcessedBy,
		Items:        items,
	}
}
