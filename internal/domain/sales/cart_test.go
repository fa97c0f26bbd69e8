package sales

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, sku, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Product "+sku, sku, dec(price))
	require.NoError(t, err)
	p.Stock = stock
	return p
}

func TestCart_AddProduct(t *testing.T) {
	cart := NewCart(uuid.New())
	p := newProduct(t, "COF-1", "3.50", 2)

	require.NoError(t, cart.AddProduct(p))
	require.NoError(t, cart.AddProduct(p))
	assert.Equal(t, 2, cart.Line(p.ID).Quantity)
	assert.Equal(t, int64(2), cart.Version)

	err := cart.AddProduct(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.Equal(t, "Insufficient stock for Product COF-1. Available: 2, Requested: 3", err.Error())
	assert.Equal(t, 2, cart.Line(p.ID).Quantity)

	empty := newProduct(t, "NONE", "1.00", 0)
	assert.True(t, errors.Is(cart.AddProduct(empty), catalog.ErrOutOfStock))
}

func TestCart_PriceIsCapturedOnAdd(t *testing.T) {
	cart := NewCart(uuid.New())
	p := newProduct(t, "TEA-1", "2.00", 10)
	require.NoError(t, cart.AddProduct(p))

	p.Price = dec("9.99")
	require.NoError(t, cart.AddProduct(p))
	assert.True(t, cart.Line(p.ID).UnitPrice.Equal(dec("2.00")))
	assert.True(t, cart.Total().Equal(dec("4.00")))
}

func TestCart_SetQuantity(t *testing.T) {
	cart := NewCart(uuid.New())
	a := newProduct(t, "A", "1.50", 5)
	b := newProduct(t, "B", "2.25", 5)
	require.NoError(t, cart.AddProduct(a))
	require.NoError(t, cart.AddProduct(b))

	require.NoError(t, cart.SetQuantity(a, 4))
	assert.Equal(t, 5, cart.ItemCount())
	assert.True(t, cart.Total().Equal(dec("8.25")))

	assert.True(t, errors.Is(cart.SetQuantity(a, 6), shared.ErrInsufficientStock))

	require.NoError(t, cart.SetQuantity(b, 0))
	assert.Nil(t, cart.Line(b.ID))
	assert.True(t, errors.Is(cart.SetQuantity(b, 0), ErrCartLineNotFound))

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.ProductIDs())
}
