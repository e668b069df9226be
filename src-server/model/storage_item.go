package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// StorageItem is one slot of the key-value storage when it lives in sqlite.
type StorageItem struct {
	bun.BaseModel `bun:"table:kv_items"`

	Key              string `bun:"key,pk"`        // required
	Value            string `bun:"value,notnull"` // required
	UpdatedAtUnixUTC int64  `bun:"updated_at"`
}

func (s *StorageItem) Upsert(ctx context.Context, db bun.IDB) error {
	if s.Key == "" {
		return fmt.Errorf("(*StorageItem).Upsert: key is blank")
	}
	s.UpdatedAtUnixUTC = time.Now().UTC().Unix()

	if _, err := db.NewInsert().
		Model(s).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*StorageItem).Upsert: %w", err)
	}
	return nil
}
