package persistence

import (
	"context"
	"testing"

	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormReportRepository(t *testing.T) {
	db, sale, apple, _ := newSaleFixture(t)
	repo := NewGormReportRepository(db)
	ctx := context.Background()

	// second sale: cash, 10 apples
	cash, err := sales.NewSale(sale.CashierID, nil, nil, sales.PaymentCash, utcDay(2024, 3, 5, 16))
	require.NoError(t, err)
	_, err = cash.AddItem(apple.ID, apple.Name, apple.SKU, 10, apple.Price)
	require.NoError(t, err)
	require.NoError(t, cash.Complete())
	require.NoError(t, NewGormSaleRepository(db).Save(ctx, cash))

	t.Run("sales totals split by payment method", func(t *testing.T) {
		totals, err := repo.SalesTotals(ctx, utcDay(2024, 3, 5, 0), utcDay(2024, 3, 6, 0))
		require.NoError(t, err)
		assert.Equal(t, int64(2), totals.Count)
		assert.True(t, decimal.RequireFromString("7.5").Equal(totals.CashTotal), totals.CashTotal.String())
		assert.True(t, decimal.RequireFromString("5.2").Equal(totals.CardTotal), totals.CardTotal.String())
		assert.True(t, decimal.RequireFromString("12.7").Equal(totals.Total), totals.Total.String())
		assert.True(t, decimal.RequireFromString("6.35").Equal(totals.AverageTicket()))
	})

	t.Run("no sales gives zero totals", func(t *testing.T) {
		totals, err := repo.SalesTotals(ctx, utcDay(2024, 1, 1, 0), utcDay(2024, 1, 2, 0))
		require.NoError(t, err)
		assert.Zero(t, totals.Count)
		assert.True(t, totals.Total.IsZero())
	})

	t.Run("top products rank by units sold", func(t *testing.T) {
		top, err := repo.TopProducts(ctx, 5)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, 1, top[0].Rank)
		assert.Equal(t, apple.ID, top[0].ProductID)
		assert.Equal(t, int64(14), top[0].UnitsSold)
		assert.True(t, decimal.RequireFromString("10.5").Equal(top[0].Revenue), top[0].Revenue.String())
		assert.Equal(t, "BREAD", top[1].SKU)
	})

	t.Run("sale rows carry cashier and item count", func(t *testing.T) {
		rows, err := repo.SalesBetween(ctx, utcDay(2024, 3, 5, 0), utcDay(2024, 3, 6, 0))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, cash.SaleNumber, rows[0].SaleNumber)
		assert.Equal(t, int64(10), rows[0].ItemCount)
		assert.Equal(t, "Test ana", rows[0].CashierName)
		assert.Equal(t, "cash", rows[0].PaymentMethod)
		assert.Equal(t, int64(5), rows[1].ItemCount)

		recent, err := repo.RecentSales(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, cash.ID, recent[0].SaleID)
	})

	t.Run("sessions with cashier", func(t *testing.T) {
		s, err := drawer.OpenSession(sale.CashierID, decimal.NewFromInt(20), utcDay(2024, 3, 5, 7))
		require.NoError(t, err)
		require.NoError(t, NewGormSessionRepository(db).Save(ctx, s))

		sessions, err := repo.SessionsStartedBetween(ctx, utcDay(2024, 3, 5, 0), utcDay(2024, 3, 6, 0))
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "ana", sessions[0].Username)
		assert.True(t, sessions[0].IsActive())
	})
}
