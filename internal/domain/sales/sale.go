// Package sales holds the point-of-sale transaction model: the cashier's
// cart, completed sales and the returns booked against them.
package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrSaleNotFound         = shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
	ErrInvalidPaymentMethod = shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be cash or card")
	ErrSaleHasNoItems       = shared.NewDomainError("SALE_EMPTY", "A sale needs at least one item")
	ErrDuplicateSaleItem    = shared.NewDomainError("DUPLICATE_ITEM", "Product already added to this sale")
	ErrSaleAlreadyCompleted = shared.NewDomainError("SALE_COMPLETED", "Sale is already completed")
	ErrSaleNumberExists     = shared.NewDomainError("SALE_NUMBER_EXISTS", "Sale number already exists")
	ErrDuplicateCheckout    = shared.NewDomainError("DUPLICATE_CHECKOUT", "This checkout is already being processed")
	ErrCartEmpty            = shared.NewDomainError("CART_EMPTY", "The cart is empty")
	ErrCartLineNotFound     = shared.NewDomainError("CART_LINE_NOT_FOUND", "Product is not in the cart")
)

// PaymentMethod is how the customer paid
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	return m == PaymentCash || m == PaymentCard
}

// String returns the string representation of the payment method
func (m PaymentMethod) String() string {
	return string(m)
}

// ParsePaymentMethod parses user input; an empty value means cash
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PaymentCash, nil
	}
	m := PaymentMethod(raw)
	if !m.IsValid() {
		return "", ErrInvalidPaymentMethod
	}
	return m, nil
}

// SaleItem is one product line of a sale. Name and SKU are snapshots taken at checkout.
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
}

// Subtotal returns quantity * unit price
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is a completed checkout
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber    string
	SessionID     *uuid.UUID
	CashierID     uuid.UUID
	CustomerID    *uuid.UUID
	PaymentMethod PaymentMethod
	TotalAmount   decimal.Decimal
	Items         []SaleItem
	completed     bool
}

// NewSale starts a sale for the cashier. Items are added before Complete is called.
func NewSale(cashierID uuid.UUID, sessionID, customerID *uuid.UUID, method PaymentMethod, now time.Time) (*Sale, error) {
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASHIER", "Cashier is required")
	}
	if !method.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        GenerateSaleNumber(now),
		SessionID:         sessionID,
		CashierID:         cashierID,
		CustomerID:        customerID,
		PaymentMethod:     method,
		TotalAmount:       decimal.Zero,
		Items:             make([]SaleItem, 0),
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, nil
}

// GenerateSaleNumber builds a receipt number such as S-20240301-1A2B3C4D
func GenerateSaleNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("S-%s-%s", now.Format("20060102"), strings.ToUpper(suffix))
}

// AddItem appends a line priced at unitPrice
func (s *Sale) AddItem(productID uuid.UUID, productName, sku string, quantity int, unitPrice decimal.Decimal) (*SaleItem, error) {
	if s.completed {
		return nil, ErrSaleAlreadyCompleted
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if s.ItemByProduct(productID) != nil {
		return nil, ErrDuplicateSaleItem
	}

	s.Items = append(s.Items, SaleItem{
		ID:          uuid.New(),
		SaleID:      s.ID,
		ProductID:   productID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   shared.RoundMoney(unitPrice),
		CreatedAt:   s.CreatedAt,
	})
	return &s.Items[len(s.Items)-1], nil
}

// Complete totals the sale and raises SaleCompleted
func (s *Sale) Complete() error {
	if s.completed {
		return ErrSaleAlreadyCompleted
	}
	if len(s.Items) == 0 {
		return ErrSaleHasNoItems
	}
	s.TotalAmount = s.calculateTotal()
	s.completed = true
	s.AddDomainEvent(NewSaleCompletedEvent(s))
	return nil
}

// ItemByProduct finds the line for a product
func (s *Sale) ItemByProduct(productID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}

// ItemCount returns the number of units sold
func (s *Sale) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// ProductIDs returns the distinct products sold
func (s *Sale) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.Items))
	for i, item := range s.Items {
		ids[i] = item.ProductID
	}
	return ids
}

func (s *Sale) calculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return shared.RoundMoney(total)
}
