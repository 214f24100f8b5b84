package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/wasteland/internal/game/character"
)

// Cooldown returns the expiry stored for (subject, key).
func (r *txRepo) Cooldown(ctx context.Context, subject, key string) (time.Time, bool, error) {
	var until int64
	err := r.tx.QueryRowContext(ctx,
		`SELECT expires_at FROM cooldowns WHERE subject = ? AND name = ?`,
		subject, key,
	).Scan(&until)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("get cooldown %s/%s: %w", subject, key, err)
	}
	return fromMillis(until), true, nil
}

// SetCooldown stores or replaces the expiry for (subject, key).
func (r *txRepo) SetCooldown(ctx context.Context, subject, key string, until time.Time) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO cooldowns (subject, name, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (subject, name) DO UPDATE SET expires_at = excluded.expires_at`,
		subject, key, toMillis(until),
	)
	if err != nil {
		return fmt.Errorf("set cooldown %s/%s: %w", subject, key, err)
	}
	return nil
}

// ClearCooldown removes (subject, key) if present.
func (r *txRepo) ClearCooldown(ctx context.Context, subject, key string) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM cooldowns WHERE subject = ? AND name = ?`, subject, key); err != nil {
		return fmt.Errorf("clear cooldown %s/%s: %w", subject, key, err)
	}
	return nil
}

// StartQuest records an objective counter; restarting an existing one resets it.
func (r *txRepo) StartQuest(ctx context.Context, playerID string, q character.QuestProgress) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO quest_progress (player_id, quest_id, objective, progress, required)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_id, quest_id, objective)
		DO UPDATE SET progress = excluded.progress, required = excluded.required`,
		playerID, q.QuestID, q.Objective, q.Progress, q.Required,
	)
	if err != nil {
		return fmt.Errorf("start quest %s for %s: %w", q.QuestID, playerID, err)
	}
	return nil
}

// Quests returns the player's objective counters ordered by quest and objective.
func (r *txRepo) Quests(ctx context.Context, playerID string) ([]character.QuestProgress, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT quest_id, objective, progress, required
		FROM quest_progress WHERE player_id = ? ORDER BY quest_id, objective`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()

	out := make([]character.QuestProgress, 0)
	for rows.Next() {
		var q character.QuestProgress
		if err := rows.Scan(&q.QuestID, &q.Objective, &q.Progress, &q.Required); err != nil {
			return nil, fmt.Errorf("scan quest row: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// AdvanceQuest adds n to every incomplete counter matching objective, capped at its requirement.
func (r *txRepo) AdvanceQuest(ctx context.Context, playerID, objective string, n int) error {
	_, err := r.tx.ExecContext(ctx, `
		UPDATE quest_progress SET progress = MIN(required, progress + ?)
		WHERE player_id = ? AND objective = ? AND progress < required`,
		n, playerID, objective,
	)
	if err != nil {
		return fmt.Errorf("advance %s for %s: %w", objective, playerID, err)
	}
	return nil
}
