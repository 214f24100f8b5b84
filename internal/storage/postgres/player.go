package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// CreatePlayer inserts p or refreshes the name and location of an existing row.
//
// Precondition: p.ID and p.Name must be non-empty; p.MaxHealth > 0.
// Postcondition: A row for p.ID exists.
func (r *txRepo) CreatePlayer(ctx context.Context, p *character.Player) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO players (id, name, health, max_health, location, location_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, location = EXCLUDED.location, updated_at = NOW()`,
		p.ID, p.Name, p.Health, p.MaxHealth, p.Location, p.LocationLevel,
	)
	if err != nil {
		return fmt.Errorf("upserting player %s: %w", p.ID, err)
	}
	return nil
}

// Player retrieves a player by ID.
//
// Postcondition: Returns the Player or storage.ErrPlayerNotFound.
func (r *txRepo) Player(ctx context.Context, id string) (*character.Player, error) {
	var p character.Player
	err := r.tx.QueryRow(ctx, `
		SELECT id, name, health, max_health, in_duel, kills, deaths, xp, location, location_level
		FROM players WHERE id = $1`,
		id,
	).Scan(
		&p.ID, &p.Name, &p.Health, &p.MaxHealth, &p.InDuel,
		&p.Kills, &p.Deaths, &p.XP, &p.Location, &p.LocationLevel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("querying player %s: %w", id, err)
	}
	return &p, nil
}

// SetHealth persists a player's health, clamped to [0, max_health].
func (r *txRepo) SetHealth(ctx context.Context, playerID string, health int) error {
	return r.updatePlayer(ctx, "setting health",
		`UPDATE players SET health = GREATEST(0, LEAST($2, max_health)), updated_at = NOW() WHERE id = $1`,
		playerID, health)
}

// SetInDuel sets or clears the player's in-duel flag.
func (r *txRepo) SetInDuel(ctx context.Context, playerID string, inDuel bool) error {
	return r.updatePlayer(ctx, "setting in_duel",
		`UPDATE players SET in_duel = $2, updated_at = NOW() WHERE id = $1`,
		playerID, inDuel)
}

// AddKill increments the player's kill counter.
func (r *txRepo) AddKill(ctx context.Context, playerID string) error {
	return r.updatePlayer(ctx, "adding kill",
		`UPDATE players SET kills = kills + 1, updated_at = NOW() WHERE id = $1`,
		playerID)
}

// AddDeath increments the player's death counter.
func (r *txRepo) AddDeath(ctx context.Context, playerID string) error {
	return r.updatePlayer(ctx, "adding death",
		`UPDATE players SET deaths = deaths + 1, updated_at = NOW() WHERE id = $1`,
		playerID)
}

// AddXP adds xp to the player's experience.
//
// Precondition: xp >= 0.
func (r *txRepo) AddXP(ctx context.Context, playerID string, xp int) error {
	return r.updatePlayer(ctx, "adding xp",
		`UPDATE players SET xp = xp + $2, updated_at = NOW() WHERE id = $1`,
		playerID, xp)
}

// SetLocationLevel persists the player's unlocked location level.
func (r *txRepo) SetLocationLevel(ctx context.Context, playerID string, level int) error {
	return r.updatePlayer(ctx, "setting location level",
		`UPDATE players SET location_level = $2, updated_at = NOW() WHERE id = $1`,
		playerID, level)
}

// updatePlayer runs a single-row update keyed by player ID.
//
// Postcondition: Returns storage.ErrPlayerNotFound when no row matched.
func (r *txRepo) updatePlayer(ctx context.Context, op, sql string, args ...any) error {
	tag, err := r.tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrPlayerNotFound
	}
	return nil
}
