package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/catalog"
	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/infra/memory"
	"quiz-progress-service/internal/infra/postgres"
	"quiz-progress-service/internal/infra/redis"
	"quiz-progress-service/internal/infra/sqlite"
)

// ErrUnknownEngine is returned for an unsupported storage.engine value.
var ErrUnknownEngine = errors.New("unknown storage engine")

// ErrUnknownCatalogSource is returned for an unsupported catalog.source value.
var ErrUnknownCatalogSource = errors.New("unknown catalog source")

// Closer releases whatever a constructor opened.
type Closer func() error

func noopCloser() error { return nil }

// NewKeyValueStore opens the document store selected by cfg.Storage.Engine.
// Postgres is migrated before use.
func NewKeyValueStore(ctx context.Context, cfg config.Config) (app.KeyValueStore, Closer, error) {
	switch cfg.Storage.Engine {
	case config.EngineMemory:
		return memory.NewKVStore(), noopCloser, nil
	case "", config.EngineSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.EngineRedis:
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewKVStore(client, cfg.Redis.Prefix), client.Close, nil
	case config.EnginePostgres:
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("postgres url not configured")
		}
		db := postgres.OpenDB(cfg.Postgres.URL)
		if _, err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.NewKVStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Storage.Engine)
	}
}

// NewCatalogRepository builds the loader named by cfg.Catalog.Source behind a
// cache: Redis when an address is configured, in-process otherwise.
func NewCatalogRepository(ctx context.Context, cfg config.Config) (app.CatalogRepository, Closer, error) {
	closers := []Closer{}
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	var loader memory.CatalogLoader
	switch cfg.Catalog.Source {
	case "", config.CatalogEmbedded:
		loader = catalog.NewEmbeddedLoader()
	case config.CatalogFile:
		loader = catalog.NewFileLoader(cfg.Catalog.Path)
	case config.CatalogPostgres:
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("postgres url not configured")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		loader = postgres.NewCatalogLoader(pool, cfg.Catalog.ID)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCatalogSource, cfg.Catalog.Source)
	}

	ttl := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	if cfg.Redis.Addr == "" {
		return memory.NewCatalogRepository(loader, ttl), closeAll, nil
	}
	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	closers = append(closers, client.Close)
	return redis.NewCatalogRepository(client, loader, ttl), closeAll, nil
}

// NewRedisClient connects and pings the configured Redis.
func NewRedisClient(ctx context.Context, cfg config.Config) (*goredis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis addr not configured")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
