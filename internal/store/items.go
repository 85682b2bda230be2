package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/datavault/internal/model"
)

// ItemsKey is the key holding the JSON array of items.
const ItemsKey = "vintageItems"

// LoadItems returns the stored collection. A database without a collection
// yields an empty, non-nil slice.
func LoadItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	raw, ok, err := GetValue(ctx, db, ItemsKey)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	if !ok {
		return []model.Item{}, nil
	}

	items := []model.Item{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}
	return items, nil
}

// SaveItems overwrites the stored collection with items.
func SaveItems(ctx context.Context, db *sql.DB, items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}
	if err := SetValue(ctx, db, ItemsKey, string(raw)); err != nil {
		return fmt.Errorf("saving items: %w", err)
	}
	return nil
}

// ItemStore adapts the package functions to the repository's persistence interface.
type ItemStore struct {
	DB *sql.DB
}

// Load returns the stored collection.
func (s ItemStore) Load(ctx context.Context) ([]model.Item, error) {
	return LoadItems(ctx, s.DB)
}

// Save overwrites the stored collection.
func (s ItemStore) Save(ctx context.Context, items []model.Item) error {
	return SaveItems(ctx, s.DB, items)
}
