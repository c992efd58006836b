package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-progress-service/internal/app"
)

type kvDocument struct {
	bun.BaseModel `bun:"table:kv_documents"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// KVStore keeps documents in the kv_documents table. Apply runs in one transaction.
type KVStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewKVStore(db *bun.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc kvDocument
	err := s.db.NewSelect().Model(&doc).Where("key = ?", key).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select document %s: %w", key, err)
	}
	return doc.Value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.upsert(ctx, s.db, key, value)
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	return s.delete(ctx, s.db, key)
}

func (s *KVStore) Apply(ctx context.Context, mutations []app.Mutation) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, m := range mutations {
			var err error
			if m.Delete {
				err = s.delete(ctx, tx, m.Key)
			} else {
				err = s.upsert(ctx, tx, m.Key, m.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *KVStore) upsert(ctx context.Context, db bun.IDB, key, value string) error {
	doc := &kvDocument{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	_, err := db.NewInsert().
		Model(doc).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) delete(ctx context.Context, db bun.IDB, key string) error {
	if _, err := db.NewDelete().Model((*kvDocument)(nil)).Where("key = ?", key).Exec(ctx); err != nil {
		return fmt.Errorf("delete document %s: %w", key, err)
	}
	return nil
}
