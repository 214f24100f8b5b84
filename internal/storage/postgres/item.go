package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// Items returns all rows owned by ownerID in creation order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *txRepo) Items(ctx context.Context, ownerID string) ([]inventory.Item, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, owner_id, def_id, durability, created_at
		FROM items WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := make([]inventory.Item, 0)
	for rows.Next() {
		var it inventory.Item
		var id uuid.UUID
		if err := rows.Scan(&id, &it.OwnerID, &it.DefID, &it.Durability, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		it.ID = id.String()
		items = append(items, it)
	}
	return items, rows.Err()
}

// Item retrieves one row by ID.
//
// Postcondition: Returns the row or storage.ErrItemNotFound.
func (r *txRepo) Item(ctx context.Context, itemID string) (*inventory.Item, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, storage.ErrItemNotFound
	}
	var it inventory.Item
	err = r.tx.QueryRow(ctx, `
		SELECT owner_id, def_id, durability, created_at FROM items WHERE id = $1`,
		id,
	).Scan(&it.OwnerID, &it.DefID, &it.Durability, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("querying item %s: %w", itemID, err)
	}
	it.ID = itemID
	return &it, nil
}

// CreateItem inserts a fresh row of def for ownerID with full durability.
//
// Precondition: def passed Validate; ownerID references an existing player.
// Postcondition: Returns the new row with ID and CreatedAt set.
func (r *txRepo) CreateItem(ctx context.Context, ownerID string, def *inventory.ItemDef) (*inventory.Item, error) {
	id := uuid.New()
	it := inventory.Item{ID: id.String(), OwnerID: ownerID, DefID: def.ID, Durability: def.Durability}
	err := r.tx.QueryRow(ctx, `
		INSERT INTO items (id, owner_id, def_id, durability)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		id, ownerID, def.ID, def.Durability,
	).Scan(&it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting item %s for %s: %w", def.ID, ownerID, err)
	}
	return &it, nil
}

// DeleteItem removes one row.
//
// Postcondition: Returns storage.ErrItemNotFound when no row matched.
func (r *txRepo) DeleteItem(ctx context.Context, itemID string) error {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return storage.ErrItemNotFound
	}
	tag, err := r.tx.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting item %s: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrItemNotFound
	}
	return nil
}

// DeleteItems removes every row owned by ownerID.
func (r *txRepo) DeleteItems(ctx context.Context, ownerID string) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM items WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("deleting items of %s: %w", ownerID, err)
	}
	return nil
}

// LowerDurability subtracts by from the row and deletes it once exhausted.
//
// Postcondition: Returns the remaining durability or storage.ErrItemNotFound.
func (r *txRepo) LowerDurability(ctx context.Context, itemID string, by int) (int, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return 0, storage.ErrItemNotFound
	}
	var remaining int
	err = r.tx.QueryRow(ctx, `
		UPDATE items SET durability = durability - $2 WHERE id = $1
		RETURNING durability`,
		id, by,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrItemNotFound
		}
		return 0, fmt.Errorf("lowering durability of %s: %w", itemID, err)
	}
	if remaining <= 0 {
		if _, err := r.tx.Exec(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
			return 0, fmt.Errorf("deleting exhausted item %s: %w", itemID, err)
		}
	}
	return remaining, nil
}
