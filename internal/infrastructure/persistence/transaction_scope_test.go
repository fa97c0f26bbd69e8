package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	appsales "github.com/retailpos/backend/internal/application/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	product := createTestProduct(t, db, "RICE", "1.10", 10)
	scope := NewGormTransactionScope(db, 0)

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(repos appsales.TransactionalRepositories) error {
			locked, err := repos.ProductRepo().FindByIDsForUpdate(ctx, []uuid.UUID{product.ID})
			require.NoError(t, err)
			require.NoError(t, locked[0].DecreaseStock(4))
			require.NoError(t, repos.ProductRepo().SaveStock(ctx, &locked[0]))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		reloaded, err := NewGormProductRepository(db).FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, reloaded.Stock)
	})

	t.Run("commits on success", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos appsales.TransactionalRepositories) error {
			locked, err := repos.ProductRepo().FindByIDsForUpdate(ctx, []uuid.UUID{product.ID})
			if err != nil {
				return err
			}
			if err := locked[0].DecreaseStock(4); err != nil {
				return err
			}
			return repos.ProductRepo().SaveStock(ctx, &locked[0])
		})
		require.NoError(t, err)

		reloaded, err := NewGormProductRepository(db).FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, reloaded.Stock)
	})
}
