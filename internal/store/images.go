package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SetItemImage stores an item's photo, replacing any previous one.
func SetItemImage(ctx context.Context, db *sql.DB, itemID int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO item_images (item_id, image, mime) VALUES (?, ?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET image = excluded.image, mime = excluded.mime,
		     updated_at = CURRENT_TIMESTAMP`,
		itemID, image, mime,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's photo and MIME type. Both are empty if the
// item has no stored photo.
func GetItemImage(ctx context.Context, db *sql.DB, itemID int64) ([]byte, string, error) {
	var image []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT image, mime FROM item_images WHERE item_id = ?`, itemID,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime, nil
}

// DeleteItemImage removes an item's photo, if any.
func DeleteItemImage(ctx context.Context, db *sql.DB, itemID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting item image: %w", err)
	}
	return nil
}
