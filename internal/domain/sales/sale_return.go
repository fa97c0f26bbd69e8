package sales

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrReturnNotFound      = shared.NewDomainError("RETURN_NOT_FOUND", "Return not found")
	ErrNoReturnItems       = shared.NewDomainError("NO_RETURN_ITEMS", "Select at least one item to return")
	ErrItemNotInSale       = shared.NewDomainError("ITEM_NOT_IN_SALE", "Product was not part of this sale")
	ErrReturnQuantityLimit = shared.NewDomainError("RETURN_QUANTITY_EXCEEDED", "Return quantity exceeds the returnable quantity")
)

// ReturnLine is a requested product and quantity to give back
type ReturnLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// SaleReturnItem is one returned product at its original unit price
type SaleReturnItem struct {
	ID          uuid.UUID
	ReturnID    uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal returns quantity * unit price
func (i SaleReturnItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SaleReturn reverses some lines of a prior sale and records the refund
type SaleReturn struct {
	shared.BaseAggregateRoot
	SaleID       uuid.UUID
	SaleNumber   string
	SessionID    *uuid.UUID
	ReturnedAt   time.Time
	Reason       string
	TotalRefund  decimal.Decimal
	RefundMethod PaymentMethod
	ProcessedBy  uuid.UUID
	Items        []SaleReturnItem
}

// NewSaleReturn validates the requested lines against what was sold and
// already returned, then builds the return. Lines for the same product are merged.
func NewSaleReturn(sale *Sale, processedBy uuid.UUID, sessionID *uuid.UUID, reason string, lines []ReturnLine, alreadyReturned map[uuid.UUID]int, now time.Time) (*SaleReturn, error) {
	if processedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Processing user is required")
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > 500 {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}

	requested, order, err := mergeReturnLines(lines)
	if err != nil {
		return nil, err
	}

	r := &SaleReturn{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleID:            sale.ID,
		SaleNumber:        sale.SaleNumber,
		SessionID:         sessionID,
		ReturnedAt:        now,
		Reason:            reason,
		RefundMethod:      sale.PaymentMethod,
		ProcessedBy:       processedBy,
		Items:             make([]SaleReturnItem, 0, len(order)),
	}

	total := decimal.Zero
	for _, productID := range order {
		qty := requested[productID]
		item := sale.ItemByProduct(productID)
		if item == nil {
			return nil, ErrItemNotInSale
		}
		returnable := item.Quantity - alreadyReturned[productID]
		if qty > returnable {
			return nil, shared.NewDomainError(
				ErrReturnQuantityLimit.Code,
				fmt.Sprintf("Cannot return %d of %s. Returnable: %d", qty, item.ProductName, returnable),
			)
		}

		ri := SaleReturnItem{
			ID:          uuid.New(),
			ReturnID:    r.ID,
			ProductID:   productID,
			ProductName: item.ProductName,
			Quantity:    qty,
			UnitPrice:   item.UnitPrice,
		}
		r.Items = append(r.Items, ri)
		total = total.Add(ri.Subtotal())
	}
	r.TotalRefund = shared.RoundMoney(total)

	r.AddDomainEvent(NewSaleReturnedEvent(r))
	return r, nil
}

// ProductIDs returns the returned products
func (r *SaleReturn) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.ProductID
	}
	return ids
}

// ReturnableLine describes how much of a sale line can still be returned
type ReturnableLine struct {
	Item       SaleItem
	Returned   int
	Returnable int
}

// ReturnableLines lists every sale line with its already-returned quantity
func ReturnableLines(sale *Sale, alreadyReturned map[uuid.UUID]int) []ReturnableLine {
	lines := make([]ReturnableLine, len(sale.Items))
	for i, item := range sale.Items {
		returned := alreadyReturned[item.ProductID]
		returnable := item.Quantity - returned
		if returnable < 0 {
			returnable = 0
		}
		lines[i] = ReturnableLine{Item: item, Returned: returned, Returnable: returnable}
	}
	return lines
}

func mergeReturnLines(lines []ReturnLine) (map[uuid.UUID]int, []uuid.UUID, error) {
	merged := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
		}
		if _, seen := merged[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		merged[l.ProductID] += l.Quantity
	}
	if len(order) == 0 {
		return nil, nil, ErrNoReturnItems
	}
	return merged, order, nil
}
