package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CartLine is a product in the cart with the price captured when it was added
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns quantity * unit price
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a cashier's in-progress sale. It lives in the cart store, not the database.
type Cart struct {
	UserID    uuid.UUID  `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	Version   int64      `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for the user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID: userID,
		Lines:  make([]CartLine, 0),
	}
}

// Line returns the cart line for a product, or nil
func (c *Cart) Line(productID uuid.UUID) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// AddProduct adds one unit of the product. An existing line is incremented
// unless that would exceed stock; a new line captures the current price.
func (c *Cart) AddProduct(p *catalog.Product) error {
	if p.Stock <= 0 {
		return catalog.ErrOutOfStock
	}

	if line := c.Line(p.ID); line != nil {
		if line.Quantity+1 > p.Stock {
			return catalog.NewInsufficientStockError(p.Name, p.Stock, line.Quantity+1)
		}
		line.Quantity++
	} else {
		c.Lines = append(c.Lines, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			UnitPrice: p.Price,
			Quantity:  1,
		})
	}
	c.touch()
	return nil
}

// SetQuantity sets a line's quantity; zero or less removes it
func (c *Cart) SetQuantity(p *catalog.Product, qty int) error {
	if qty <= 0 {
		if !c.Remove(p.ID) {
			return ErrCartLineNotFound
		}
		return nil
	}
	if qty > p.Stock {
		return catalog.NewInsufficientStockError(p.Name, p.Stock, qty)
	}

	line := c.Line(p.ID)
	if line == nil {
		c.Lines = append(c.Lines, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			UnitPrice: p.Price,
			Quantity:  qty,
		})
	} else {
		line.Quantity = qty
	}
	c.touch()
	return nil
}

// Remove drops a product line. It reports whether the line existed.
func (c *Cart) Remove(productID uuid.UUID) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = make([]CartLine, 0)
	c.touch()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total returns the sum of line subtotals at cart prices
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return shared.RoundMoney(total)
}

// ItemCount returns the number of units in the cart
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// ProductIDs returns the products in the cart
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Lines))
	for i, l := range c.Lines {
		ids[i] = l.ProductID
	}
	return ids
}

func (c *Cart) touch() {
	c.Version++
	c.UpdatedAt = time.Now()
}

// CartStore keeps one cart per user
type CartStore interface {
	// Get returns the user's cart, or an empty cart if none is stored
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save stores the cart
	Save(ctx context.Context, cart *Cart) error

	// Delete removes the user's cart
	Delete(ctx context.Context, userID uuid.UUID) error
}
