package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-progress-service/internal/domain"
)

type catalogRow struct {
	bun.BaseModel `bun:"table:catalogs"`

	ID        string          `bun:"id,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

// ImportCatalog validates catalog and stores it under id, replacing any previous bank.
func ImportCatalog(ctx context.Context, db bun.IDB, id string, catalog domain.Catalog) error {
	if err := catalog.Validate(); err != nil {
		return err
	}
	if id == "" {
		id = DefaultCatalogID
	}
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	row := &catalogRow{ID: id, Data: data, UpdatedAt: time.Now().UTC()}
	_, err = db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("import catalog %s: %w", id, err)
	}
	return nil
}
