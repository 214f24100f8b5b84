package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// CreatePlayer inserts p or refreshes the name and location of an existing row.
func (r *txRepo) CreatePlayer(ctx context.Context, p *character.Player) error {
	now := toMillis(time.Now())
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO players (id, name, health, max_health, location, location_level, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, location = excluded.location, updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Health, p.MaxHealth, p.Location, p.LocationLevel, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert player %s: %w", p.ID, err)
	}
	return nil
}

// Player returns one player or storage.ErrPlayerNotFound.
func (r *txRepo) Player(ctx context.Context, id string) (*character.Player, error) {
	var p character.Player
	err := r.tx.QueryRowContext(ctx, `
		SELECT id, name, health, max_health, in_duel, kills, deaths, xp, location, location_level
		FROM players WHERE id = ?`,
		id,
	).Scan(
		&p.ID, &p.Name, &p.Health, &p.MaxHealth, &p.InDuel,
		&p.Kills, &p.Deaths, &p.XP, &p.Location, &p.LocationLevel,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("get player %s: %w", id, err)
	}
	return &p, nil
}

// SetHealth persists a player's health, clamped to [0, max_health].
func (r *txRepo) SetHealth(ctx context.Context, playerID string, health int) error {
	return r.updatePlayer(ctx, "set health",
		`UPDATE players SET health = MAX(0, MIN(?, max_health)), updated_at = ? WHERE id = ?`,
		health, toMillis(time.Now()), playerID)
}

// SetInDuel sets or clears the player's in-duel flag.
func (r *txRepo) SetInDuel(ctx context.Context, playerID string, inDuel bool) error {
	return r.updatePlayer(ctx, "set in_duel",
		`UPDATE players SET in_duel = ?, updated_at = ? WHERE id = ?`,
		inDuel, toMillis(time.Now()), playerID)
}

// AddKill increments the player's kill counter.
func (r *txRepo) AddKill(ctx context.Context, playerID string) error {
	return r.updatePlayer(ctx, "add kill",
		`UPDATE players SET kills = kills + 1, updated_at = ? WHERE id = ?`,
		toMillis(time.Now()), playerID)
}

// AddDeath increments the player's death counter.
func (r *txRepo) AddDeath(ctx context.Context, playerID string) error {
	return r.updatePlayer(ctx, "add death",
		`UPDATE players SET deaths = deaths + 1, updated_at = ? WHERE id = ?`,
		toMillis(time.Now()), playerID)
}

// AddXP adds xp to the player's experience.
func (r *txRepo) AddXP(ctx context.Context, playerID string, xp int) error {
	return r.updatePlayer(ctx, "add xp",
		`UPDATE players SET xp = xp + ?, updated_at = ? WHERE id = ?`,
		xp, toMillis(time.Now()), playerID)
}

// SetLocationLevel persists the player's unlocked location level.
func (r *txRepo) SetLocationLevel(ctx context.Context, playerID string, level int) error {
	return r.updatePlayer(ctx, "set location level",
		`UPDATE players SET location_level = ?, updated_at = ? WHERE id = ?`,
		level, toMillis(time.Now()), playerID)
}

func (r *txRepo) updatePlayer(ctx context.Context, op, query string, args ...any) error {
	res, err := r.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return storage.ErrPlayerNotFound
	}
	return nil
}
