package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	appdrawer "github.com/retailpos/backend/internal/application/drawer"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestSession(t *testing.T, db *gorm.DB, starting string) *drawer.Session {
	t.Helper()
	user := createTestUser(t, db, "drawer"+starting, "cashier")
	s, err := drawer.OpenSession(user.ID, decimal.RequireFromString(starting), utcDay(2024, 3, 1, 8))
	require.NoError(t, err)
	require.NoError(t, NewGormSessionRepository(db).Save(context.Background(), s))
	return s
}

func TestGormSessionRepository_OneOpenSessionPerUser(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSessionRepository(db)
	ctx := context.Background()

	first := openTestSession(t, db, "100")

	second, err := drawer.OpenSession(first.UserID, decimal.NewFromInt(50), utcDay(2024, 3, 1, 9))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, second), drawer.ErrSessionAlreadyOpen)

	active, err := repo.FindActiveByUser(ctx, first.UserID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	_, err = active.Close(decimal.NewFromInt(100), "done", drawer.SalesSummary{}, utcDay(2024, 3, 1, 17))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, active))

	_, err = repo.FindActiveByUser(ctx, first.UserID)
	assert.ErrorIs(t, err, drawer.ErrNoActiveSession)

	reopened, err := drawer.OpenSession(first.UserID, decimal.NewFromInt(80), utcDay(2024, 3, 2, 8))
	require.NoError(t, err)
	assert.NoError(t, repo.Save(ctx, reopened))

	activeCount, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), activeCount)

	filter := shared.DefaultFilter()
	filter.Filters[drawer.FilterActive] = false
	closed, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, first.ID, closed[0].ID)
	require.NotNil(t, closed[0].EndingBalance)
	assert.Equal(t, "done", closed[0].Notes)

	started, err := repo.FindStartedBetween(ctx, utcDay(2024, 3, 2, 0), utcDay(2024, 3, 3, 0))
	require.NoError(t, err)
	require.Len(t, started, 1)
	assert.Equal(t, reopened.ID, started[0].ID)
}

func TestGormSessionRepository_SummarizeSession(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	session := openTestSession(t, db, "100")
	product := createTestProduct(t, db, "BEANS", "2.50", 100)
	saleRepo := NewGormSaleRepository(db)

	record := func(method sales.PaymentMethod, qty int) *sales.Sale {
		sale, err := sales.NewSale(session.UserID, &session.ID, nil, method, utcDay(2024, 3, 1, 10))
		require.NoError(t, err)
		_, err = sale.AddItem(product.ID, product.Name, product.SKU, qty, product.Price)
		require.NoError(t, err)
		require.NoError(t, sale.Complete())
		require.NoError(t, saleRepo.Save(ctx, sale))
		return sale
	}
	cashSale := record(sales.PaymentCash, 4) // 10.00
	record(sales.PaymentCash, 2)             // 5.00
	record(sales.PaymentCard, 3)             // 7.50

	ret, err := sales.NewSaleReturn(cashSale, session.UserID, &session.ID, "damaged",
		[]sales.ReturnLine{{ProductID: product.ID, Quantity: 1}}, nil, utcDay(2024, 3, 1, 11))
	require.NoError(t, err)
	require.NoError(t, NewGormSaleReturnRepository(db).Save(ctx, ret))

	summary, err := NewGormSessionRepository(db).SummarizeSession(ctx, session.ID)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(15).Equal(summary.CashSales), summary.CashSales.String())
	assert.True(t, decimal.RequireFromString("7.5").Equal(summary.CardSales), summary.CardSales.String())
	assert.True(t, decimal.RequireFromString("2.5").Equal(summary.CashRefunds), summary.CashRefunds.String())
	assert.True(t, summary.CardRefunds.IsZero())
	assert.Equal(t, int64(3), summary.SaleCount)
	assert.Equal(t, int64(1), summary.ReturnCount)
	assert.True(t, decimal.RequireFromString("112.5").Equal(session.ExpectedCash(summary)))
}

func TestGormSessionRepository_LockActive(t *testing.T) {
	t.Run("selects for update", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cash_drawer_sessions" WHERE id = \$1 AND end_time IS NULL .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "starting_balance"}).
				AddRow(id.String(), uuid.New().String(), "100.00"))

		session, err := NewGormSessionRepository(db).LockActive(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, id, session.ID)
		assert.True(t, session.IsActive())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("closed session", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`FROM "cash_drawer_sessions" WHERE id = \$1 AND end_time IS NULL`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormSessionRepository(db).LockActive(context.Background(), uuid.New())

		assert.ErrorIs(t, err, drawer.ErrNoActiveSession)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionScope_SecondCloseFails(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	session := openTestSession(t, db, "100")
	scope := NewGormTransactionScope(db, 0)

	closeOnce := func() error {
		return scope.ExecuteSession(ctx, func(repos appdrawer.SessionRepositories) error {
			locked, err := repos.SessionLocker().LockActive(ctx, session.ID)
			if err != nil {
				return err
			}
			summary, err := repos.SummaryReader().SummarizeSession(ctx, locked.ID)
			if err != nil {
				return err
			}
			if _, err := locked.Close(decimal.NewFromInt(100), "", summary, utcDay(2024, 3, 1, 17)); err != nil {
				return err
			}
			return repos.SessionRepo().Save(ctx, locked)
		})
	}

	require.NoError(t, closeOnce())
	assert.ErrorIs(t, closeOnce(), drawer.ErrNoActiveSession)

	_, err := NewGormSessionRepository(db).FindActiveByUser(ctx, session.UserID)
	assert.ErrorIs(t, err, drawer.ErrNoActiveSession)
}
