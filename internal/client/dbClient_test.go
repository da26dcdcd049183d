package client

import (
	"context"
	"path/filepath"
	"testing"

	"orchid-shop/internal/config"
	"orchid-shop/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitDatabaseSqlite(t *testing.T) {
	db, err := InitDatabase(config.Database{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "shop.db")}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range model.All() {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestInitDatabaseUnknownDriver(t *testing.T) {
	_, err := InitDatabase(config.Database{Driver: "oracle"}, zap.NewNop())
	require.Error(t, err)
}

func TestInitRedisClient(t *testing.T) {
	rdb, err := InitRedisClient(context.Background(), config.Redis{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	rdb, err = InitRedisClient(context.Background(), config.Redis{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	rdb.Close()
}
