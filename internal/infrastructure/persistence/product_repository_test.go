package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_FindByIDsForUpdate(t *testing.T) {
	t.Run("locks rows in id order", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)

		a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
		b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

		rows := sqlmock.NewRows([]string{"id", "name", "sku", "price", "stock", "version"}).
			AddRow(a.String(), "Apple", "APL", "1.50", 5, 1).
			AddRow(b.String(), "Bread", "BRD", "2.00", 3, 1)
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id IN \(\$1,\$2\) ORDER BY id FOR UPDATE`).
			WithArgs(a, b).
			WillReturnRows(rows)

		products, err := repo.FindByIDsForUpdate(context.Background(), []uuid.UUID{b, a})

		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "APL", products[0].SKU)
		assert.Equal(t, 5, products[0].Stock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input does not query", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		products, err := NewGormProductRepository(db).FindByIDsForUpdate(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_SaveStock(t *testing.T) {
	newProduct := func() *catalog.Product {
		p, err := catalog.NewProduct("Milk", "MLK-1", decimal.NewFromInt(2))
		require.NoError(t, err)
		p.Stock = 10
		require.NoError(t, p.DecreaseStock(3))
		return p
	}

	t.Run("updates when version matches", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		p := newProduct()

		mock.ExpectExec(`UPDATE "products" SET .* WHERE id = \$\d AND version = \$\d`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewGormProductRepository(db).SaveStock(context.Background(), p)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when the row moved on", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		p := newProduct()

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormProductRepository(db).SaveStock(context.Background(), p)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_Delete_TranslatesForeignKeyViolation(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM "products" WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})

	err := NewGormProductRepository(db).Delete(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_FindByID_NotFound(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p, err := NewGormProductRepository(db).FindByID(context.Background(), id)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_SQLite(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	cola := createTestProduct(t, db, "COLA", "1.25", 40)
	chips := createTestProduct(t, db, "CHIPS", "2.10", 4)
	gum := createTestProduct(t, db, "GUM", "0.50", 0)

	t.Run("finds by normalized SKU", func(t *testing.T) {
		p, err := repo.FindBySKU(ctx, "  cola ")
		require.NoError(t, err)
		assert.Equal(t, cola.ID, p.ID)
		assert.True(t, decimal.RequireFromString("1.25").Equal(p.Price))
	})

	t.Run("rejects duplicate SKU", func(t *testing.T) {
		dup, err := catalog.NewProduct("Another cola", "COLA", decimal.NewFromInt(1))
		require.NoError(t, err)
		err = repo.Save(ctx, dup)
		assert.ErrorIs(t, err, catalog.ErrSKUExists)
	})

	t.Run("ExistsBySKU excludes the product itself", func(t *testing.T) {
		exists, err := repo.ExistsBySKU(ctx, "cola", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySKU(ctx, "cola", &cola.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("filters by stock status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters[catalog.FilterStockStatus] = string(catalog.StockStatusLowStock)
		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, chips.ID, products[0].ID)

		filter.Filters[catalog.FilterStockStatus] = string(catalog.StockStatusOutOfStock)
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("searches name and SKU", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "chi"
		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "CHIPS", products[0].SKU)
	})

	t.Run("low and out of stock lists", func(t *testing.T) {
		low, err := repo.FindLowStock(ctx, 5)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, chips.ID, low[0].ID)

		out, err := repo.FindOutOfStock(ctx, 5)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, gum.ID, out[0].ID)
	})

	t.Run("SaveStock applies once per loaded version", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, cola.ID)
		require.NoError(t, err)
		stale := *loaded

		require.NoError(t, loaded.DecreaseStock(5))
		require.NoError(t, repo.SaveStock(ctx, loaded))

		require.NoError(t, stale.DecreaseStock(1))
		assert.ErrorIs(t, repo.SaveStock(ctx, &stale), shared.ErrConcurrencyConflict)

		fresh, err := repo.FindByID(ctx, cola.ID)
		require.NoError(t, err)
		assert.Equal(t, 35, fresh.Stock)
	})
}

func TestGormProductRepository_DeleteReferencedBySale(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	cashier := createTestUser(t, db, "cashier1", "cashier")
	product := createTestProduct(t, db, "SOAP", "3.00", 10)

	sale, err := sales.NewSale(cashier.ID, nil, nil, sales.PaymentCash, utcDay(2024, 3, 1, 10))
	require.NoError(t, err)
	_, err = sale.AddItem(product.ID, product.Name, product.SKU, 1, product.Price)
	require.NoError(t, err)
	require.NoError(t, sale.Complete())
	require.NoError(t, NewGormSaleRepository(db).Save(ctx, sale))

	err = NewGormProductRepository(db).Delete(ctx, product.ID)
	assert.ErrorIs(t, err, shared.ErrInUse)

	unsold := createTestProduct(t, db, "TOWEL", "5.00", 1)
	assert.NoError(t, NewGormProductRepository(db).Delete(ctx, unsold.ID))
	assert.ErrorIs(t, NewGormProductRepository(db).Delete(ctx, unsold.ID), catalog.ErrProductNotFound)
}

func TestGormCategoryRepository_DeleteNullsProducts(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	categories := NewGormCategoryRepository(db)
	products := NewGormProductRepository(db)

	drinks, err := catalog.NewCategory("Drinks", "")
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, drinks))

	dup, err := catalog.NewCategory("Drinks", "again")
	require.NoError(t, err)
	assert.ErrorIs(t, categories.Save(ctx, dup), catalog.ErrCategoryExists)

	exists, err := categories.ExistsByName(ctx, "drinks", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	water := createTestProduct(t, db, "WATER", "0.80", 12)
	water.Assign(&drinks.ID, nil)
	require.NoError(t, products.Save(ctx, water))

	counts, err := products.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[drinks.ID])

	require.NoError(t, categories.Delete(ctx, drinks.ID))

	reloaded, err := products.FindByID(ctx, water.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)
	assert.ErrorIs(t, categories.Delete(ctx, drinks.ID), catalog.ErrCategoryNotFound)
}
