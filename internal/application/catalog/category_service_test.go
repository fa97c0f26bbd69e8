package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		svc := NewCategoryService(categories, new(MockProductRepository))
		categories.On("ExistsByName", ctx, "Bakery", (*uuid.UUID)(nil)).Return(false, nil)
		categories.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		resp, err := svc.Create(ctx, CreateCategoryRequest{Name: "  Bakery "})
		require.NoError(t, err)
		assert.Equal(t, "Bakery", resp.Name)
		assert.Zero(t, resp.ProductCount)
	})

	t.Run("duplicate name", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		svc := NewCategoryService(categories, new(MockProductRepository))
		categories.On("ExistsByName", ctx, "Bakery", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, CreateCategoryRequest{Name: "Bakery"})
		assert.ErrorIs(t, err, catalog.ErrCategoryExists)
	})
}

func TestCategoryService_List_WithProductCounts(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	products := new(MockProductRepository)
	svc := NewCategoryService(categories, products)

	bakery, _ := catalog.NewCategory("Bakery", "")
	dairy, _ := catalog.NewCategory("Dairy", "")
	categories.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return([]catalog.Category{*bakery, *dairy}, nil)
	categories.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)
	products.On("CountByCategory", ctx).Return(map[uuid.UUID]int64{bakery.ID: 4}, nil)

	items, total, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(4), items[0].ProductCount)
	assert.Equal(t, int64(0), items[1].ProductCount)
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	svc := NewCategoryService(categories, new(MockProductRepository))

	assert.ErrorIs(t, svc.Delete(ctx, uuid.Nil), shared.ErrInvalidInput)

	id := uuid.New()
	categories.On("Delete", ctx, id).Return(nil)
	assert.NoError(t, svc.Delete(ctx, id))
}

func TestSupplierService_Create_TitleCasesContact(t *testing.T) {
	ctx := context.Background()
	suppliers := new(MockSupplierRepository)
	svc := NewSupplierService(suppliers, new(MockProductRepository))
	suppliers.On("ExistsByName", ctx, "Acme Foods", (*uuid.UUID)(nil)).Return(false, nil)
	suppliers.On("Save", ctx, mock.AnythingOfType("*catalog.Supplier")).Return(nil)

	resp, err := svc.Create(ctx, CreateSupplierRequest{
		Name:        "Acme Foods",
		ContactName: "maria de la o",
		Email:       "orders@acme.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria De La O", resp.ContactName)
	assert.Equal(t, "orders@acme.example", resp.Email)
}
