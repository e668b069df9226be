package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"joincal/src-server/model"

	"github.com/uptrace/bun"
)

// SQLite stores every key as a row of the kv_items table.
type SQLite struct {
	db bun.IDB
}

// NewSQLite makes sure the kv_items table exists.
func NewSQLite(ctx context.Context, db *bun.DB) (*SQLite, error) {
	if err := model.CreateSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("NewSQLite: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) GetItem(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrBlankKey
	}
	item := new(model.StorageItem)
	if err := s.db.NewSelect().
		Model(item).
		Where("key = ?", key).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("(*SQLite).GetItem: %w", err)
	}
	return item.Value, true, nil
}

func (s *SQLite) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrBlankKey
	}
	item := &model.StorageItem{
		Key:   key,
		Value: value,
	}
	if err := item.Upsert(ctx, s.db); err != nil {
		return fmt.Errorf("(*SQLite).SetItem: %w", err)
	}
	return nil
}

func (s *SQLite) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return ErrBlankKey
	}
	if _, err := s.db.NewDelete().
		Model((*model.StorageItem)(nil)).
		Where("key = ?", key).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*SQLite).RemoveItem: %w", err)
	}
	return nil
}
