package sales

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSale       = "Sale"
	AggregateTypeSaleReturn = "SaleReturn"
)

// Event type constants
const (
	EventTypeSaleCompleted = "SaleCompleted"
	EventTypeSaleReturned  = "SaleReturned"
)

// SaleItemInfo represents line information carried on sales events
type SaleItemInfo struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// SaleCompletedEvent is raised when checkout commits a sale
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	CashierID     uuid.UUID       `json:"cashier_id"`
	SessionID     *uuid.UUID      `json:"session_id,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []SaleItemInfo  `json:"items"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(s *Sale) *SaleCompletedEvent {
	items := make([]SaleItemInfo, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemInfo{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		CashierID:       s.CashierID,
		SessionID:       s.SessionID,
		PaymentMethod:   s.PaymentMethod,
		TotalAmount:     s.TotalAmount,
		Items:           items,
	}
}

// SaleReturnedEvent is raised when a return is recorded
type SaleReturnedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID       `json:"return_id"`
	SaleID       uuid.UUID       `json:"sale_id"`
	SaleNumber   string          `json:"sale_number"`
	RefundMethod PaymentMethod   `json:"refund_method"`
	TotalRefund  decimal.Decimal `json:"total_refund"`
	Items        []SaleItemInfo  `json:"items"`
}

// NewSaleReturnedEvent creates a new SaleReturnedEvent
func NewSaleReturnedEvent(r *SaleReturn) *SaleReturnedEvent {
	items := make([]SaleItemInfo, len(r.Items))
	for i, item := range r.Items {
		items[i] = SaleItemInfo{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return &SaleReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturned, AggregateTypeSaleReturn, r.ID),
		ReturnID:        r.ID,
		SaleID:          r.SaleID,
		SaleNumber:      r.SaleNumber,
		RefundMethod:    r.RefundMethod,
		TotalRefund:     r.TotalRefund,
		Items:           items,
	}
}
