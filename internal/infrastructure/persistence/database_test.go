package persistence

import (
	"context"
	"testing"

	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func TestOpen_AppliesPoolLimits(t *testing.T) {
	cfg := &config.DatabaseConfig{MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: 5}
	db, err := Open(sqlite.Open("file::memory:"), cfg, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)

	pool, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Stats().MaxOpenConnections)
	assert.NoError(t, db.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
