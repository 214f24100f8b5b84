package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// Items returns all rows owned by ownerID in creation order.
func (r *txRepo) Items(ctx context.Context, ownerID string) ([]inventory.Item, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT id, owner_id, def_id, durability, created_at
		FROM items WHERE owner_id = ? ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]inventory.Item, 0)
	for rows.Next() {
		var it inventory.Item
		var created int64
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.DefID, &it.Durability, &created); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		it.CreatedAt = fromMillis(created)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Item returns one row or storage.ErrItemNotFound.
func (r *txRepo) Item(ctx context.Context, itemID string) (*inventory.Item, error) {
	var it inventory.Item
	var created int64
	err := r.tx.QueryRowContext(ctx, `
		SELECT id, owner_id, def_id, durability, created_at FROM items WHERE id = ?`,
		itemID,
	).Scan(&it.ID, &it.OwnerID, &it.DefID, &it.Durability, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item %s: %w", itemID, err)
	}
	it.CreatedAt = fromMillis(created)
	return &it, nil
}

// CreateItem inserts a fresh row of def for ownerID with full durability.
func (r *txRepo) CreateItem(ctx context.Context, ownerID string, def *inventory.ItemDef) (*inventory.Item, error) {
	it := inventory.Item{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		DefID:      def.ID,
		Durability: def.Durability,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	insert := func() error {
		_, err := r.tx.ExecContext(ctx,
			`INSERT INTO items (id, owner_id, def_id, durability, created_at) VALUES (?, ?, ?, ?, ?)`,
			it.ID, it.OwnerID, it.DefID, it.Durability, toMillis(it.CreatedAt),
		)
		return err
	}
	err := insert()
	if err != nil && isUniqueViolation(err) {
		it.ID = uuid.NewString()
		err = insert()
	}
	if err != nil {
		return nil, fmt.Errorf("insert item %s for %s: %w", def.ID, ownerID, err)
	}
	return &it, nil
}

// DeleteItem removes one row or returns storage.ErrItemNotFound.
func (r *txRepo) DeleteItem(ctx context.Context, itemID string) error {
	res, err := r.tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", itemID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrItemNotFound
	}
	return nil
}

// DeleteItems removes every row owned by ownerID.
func (r *txRepo) DeleteItems(ctx context.Context, ownerID string) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM items WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("delete items of %s: %w", ownerID, err)
	}
	return nil
}

// LowerDurability subtracts by from the row and deletes it once exhausted.
func (r *txRepo) LowerDurability(ctx context.Context, itemID string, by int) (int, error) {
	var remaining int
	err := r.tx.QueryRowContext(ctx,
		`UPDATE items SET durability = durability - ? WHERE id = ? RETURNING durability`,
		by, itemID,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrItemNotFound
		}
		return 0, fmt.Errorf("lower durability of %s: %w", itemID, err)
	}
	if remaining <= 0 {
		if _, err := r.tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID); err != nil {
			return 0, fmt.Errorf("delete exhausted item %s: %w", itemID, err)
		}
	}
	return remaining, nil
}
