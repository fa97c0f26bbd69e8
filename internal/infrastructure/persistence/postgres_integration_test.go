//go:build integration

package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appsales "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/migration"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { sqlDB.Close() })

	m, err := migration.New(sqlDB, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func sellOne(ctx context.Context, scope *GormTransactionScope, cashierID, productID uuid.UUID) error {
	return scope.Execute(ctx, func(repos appsales.TransactionalRepositories) error {
		locked, err := repos.ProductRepo().FindByIDsForUpdate(ctx, []uuid.UUID{productID})
		if err != nil {
			return err
		}
		p := &locked[0]
		if !p.CanSell(1) {
			return catalog.NewInsufficientStockError(p.Name, p.Stock, 1)
		}

		sale, err := sales.NewSale(cashierID, nil, nil, sales.PaymentCash, time.Now().UTC())
		if err != nil {
			return err
		}
		if _, err := sale.AddItem(p.ID, p.Name, p.SKU, 1, p.Price); err != nil {
			return err
		}
		if err := sale.Complete(); err != nil {
			return err
		}
		if err := p.DecreaseStock(1); err != nil {
			return err
		}
		if err := repos.ProductRepo().SaveStock(ctx, p); err != nil {
			return err
		}
		return repos.SaleRepo().Save(ctx, sale)
	})
}

func TestPostgres_ConcurrentCheckoutsSellLastUnitOnce(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	cashierA := createTestUser(t, db, "cashier_a", identity.RoleCashier)
	cashierB := createTestUser(t, db, "cashier_b", identity.RoleCashier)
	product := createTestProduct(t, db, "LAST-1", "9.99", 1)

	scope := NewGormTransactionScope(db, 5*time.Second)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i, cashier := range []*identity.User{cashierA, cashierB} {
		wg.Add(1)
		go func(i int, cashierID uuid.UUID) {
			defer wg.Done()
			<-start
			errs[i] = sellOne(ctx, scope, cashierID, product.ID)
		}(i, cashier.ID)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr), "unexpected error: %v", err)
		assert.Equal(t, shared.ErrInsufficientStock.Code, domainErr.Code)
		assert.Contains(t, domainErr.Message, "Available: 0, Requested: 1")
	}
	assert.Equal(t, 1, succeeded)

	reloaded, err := NewGormProductRepository(db).FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Stock)

	count, err := NewGormSaleRepository(db).Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgres_StockCheckConstraint(t *testing.T) {
	db := newPostgresDB(t)

	p := createTestProduct(t, db, "NEG-1", "1.00", 0)
	err := db.Exec("UPDATE products SET stock = -1 WHERE id = ?", p.ID).Error
	assert.Error(t, err)
}

func TestPostgres_OneOpenSessionPerUser(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	repo := NewGormSessionRepository(db)
	user := createTestUser(t, db, "shift", identity.RoleCashier)

	first, err := drawer.OpenSession(user.ID, decimal.NewFromInt(100), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := drawer.OpenSession(user.ID, decimal.NewFromInt(50), time.Now().UTC())
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), drawer.ErrSessionAlreadyOpen)
}

func TestPostgres_CategoryDeleteKeepsProducts(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	category, err := catalog.NewCategory("Drinks", "")
	require.NoError(t, err)
	require.NoError(t, NewGormCategoryRepository(db).Save(ctx, category))

	p := createTestProduct(t, db, "COLA-1", "1.50", 10)
	p.Assign(&category.ID, nil)
	require.NoError(t, NewGormProductRepository(db).Save(ctx, p))

	require.NoError(t, NewGormCategoryRepository(db).Delete(ctx, category.ID))

	reloaded, err := NewGormProductRepository(db).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)
}
