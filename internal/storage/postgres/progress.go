package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/wasteland/internal/game/character"
)

// Cooldown returns the expiry stored for (subject, key).
//
// Postcondition: ok is false when no cooldown row exists.
func (r *txRepo) Cooldown(ctx context.Context, subject, key string) (time.Time, bool, error) {
	var until time.Time
	err := r.tx.QueryRow(ctx,
		`SELECT expires_at FROM cooldowns WHERE subject = $1 AND name = $2`,
		subject, key,
	).Scan(&until)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("querying cooldown %s/%s: %w", subject, key, err)
	}
	return until, true, nil
}

// SetCooldown stores or replaces the expiry for (subject, key).
func (r *txRepo) SetCooldown(ctx context.Context, subject, key string, until time.Time) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO cooldowns (subject, name, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (subject, name) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		subject, key, until,
	)
	if err != nil {
		return fmt.Errorf("setting cooldown %s/%s: %w", subject, key, err)
	}
	return nil
}

// ClearCooldown removes (subject, key) if present.
func (r *txRepo) ClearCooldown(ctx context.Context, subject, key string) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM cooldowns WHERE subject = $1 AND name = $2`, subject, key); err != nil {
		return fmt.Errorf("clearing cooldown %s/%s: %w", subject, key, err)
	}
	return nil
}

// StartQuest records an objective counter; restarting an existing one resets it.
func (r *txRepo) StartQuest(ctx context.Context, playerID string, q character.QuestProgress) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO quest_progress (player_id, quest_id, objective, progress, required)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, quest_id, objective)
		DO UPDATE SET progress = EXCLUDED.progress, required = EXCLUDED.required`,
		playerID, q.QuestID, q.Objective, q.Progress, q.Required,
	)
	if err != nil {
		return fmt.Errorf("starting quest %s for %s: %w", q.QuestID, playerID, err)
	}
	return nil
}

// Quests returns the player's objective counters ordered by quest and objective.
func (r *txRepo) Quests(ctx context.Context, playerID string) ([]character.QuestProgress, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT quest_id, objective, progress, required
		FROM quest_progress WHERE player_id = $1 ORDER BY quest_id, objective`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing quests: %w", err)
	}
	defer rows.Close()

	out := make([]character.QuestProgress, 0)
	for rows.Next() {
		var q character.QuestProgress
		if err := rows.Scan(&q.QuestID, &q.Objective, &q.Progress, &q.Required); err != nil {
			return nil, fmt.Errorf("scanning quest row: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// AdvanceQuest adds n to every incomplete counter matching objective.
//
// Postcondition: No counter exceeds its requirement.
func (r *txRepo) AdvanceQuest(ctx context.Context, playerID, objective string, n int) error {
	_, err := r.tx.Exec(ctx, `
		UPDATE quest_progress SET progress = LEAST(required, progress + $3)
		WHERE player_id = $1 AND objective = $2 AND progress < required`,
		playerID, objective, n,
	)
	if err != nil {
		return fmt.Errorf("advancing %s for %s: %w", objective, playerID, err)
	}
	return nil
}
