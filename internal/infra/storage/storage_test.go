package storage

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/infra/memory"
	"quiz-progress-service/internal/infra/redis"
	"quiz-progress-service/internal/infra/sqlite"
)

func TestNewKeyValueStoreSelectsEngine(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Storage.Engine = config.EngineMemory
	kv, closer, err := NewKeyValueStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &memory.KVStore{}, kv)
	_ = closer()

	cfg.Storage.Engine = config.EngineSQLite
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "quiz.db")
	kv, closer, err = NewKeyValueStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.KVStore{}, kv)
	_ = closer()

	mr := miniredis.RunT(t)
	cfg.Storage.Engine = config.EngineRedis
	cfg.Redis.Addr = mr.Addr()
	kv, closer, err = NewKeyValueStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &redis.KVStore{}, kv)
	_ = closer()

	cfg.Storage.Engine = "etcd"
	_, _, err = NewKeyValueStore(ctx, cfg)
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestNewCatalogRepository(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()

	repo, closer, err := NewCatalogRepository(ctx, cfg)
	require.NoError(t, err)
	defer closer()
	c, err := repo.GetCatalog(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Categories, "embedded bank")

	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()
	repo, closer2, err := NewCatalogRepository(ctx, cfg)
	require.NoError(t, err)
	defer closer2()
	_, err = repo.GetCatalog(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("catalog:bank"), "bank cached in redis")

	cfg.Catalog.Source = "s3"
	_, _, err = NewCatalogRepository(ctx, cfg)
	assert.ErrorIs(t, err, ErrUnknownCatalogSource)
}
