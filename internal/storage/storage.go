// Package storage defines the persistence contract of the duel engine.
// Concrete stores live in the postgres and sqlite subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// ErrItemNotFound is returned when an item row lookup yields no results.
var ErrItemNotFound = errors.New("item not found")

// Store opens units of work.
type Store interface {
	// WithinTx runs fn inside one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	//
	// Postcondition: Returns fn's error (wrapped) or a commit error.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations available inside a unit of work.
type Tx interface {
	// CreatePlayer inserts p, or updates name and location when the ID exists.
	CreatePlayer(ctx context.Context, p *character.Player) error
	// Player returns the player with id or ErrPlayerNotFound.
	Player(ctx context.Context, id string) (*character.Player, error)
	SetHealth(ctx context.Context, playerID string, health int) error
	SetInDuel(ctx context.Context, playerID string, inDuel bool) error
	AddKill(ctx context.Context, playerID string) error
	AddDeath(ctx context.Context, playerID string) error
	AddXP(ctx context.Context, playerID string, xp int) error
	SetLocationLevel(ctx context.Context, playerID string, level int) error

	// Items returns every row owned by ownerID ordered by creation time.
	Items(ctx context.Context, ownerID string) ([]inventory.Item, error)
	// Item returns one row or ErrItemNotFound.
	Item(ctx context.Context, itemID string) (*inventory.Item, error)
	// CreateItem inserts a fresh row for def owned by ownerID.
	CreateItem(ctx context.Context, ownerID string, def *inventory.ItemDef) (*inventory.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
	// DeleteItems removes every row owned by ownerID.
	DeleteItems(ctx context.Context, ownerID string) error
	// LowerDurability subtracts by from the row's durability and deletes the
	// row once it reaches zero.
	//
	// Postcondition: Returns the remaining durability; a value <= 0 means the
	// row no longer exists.
	LowerDurability(ctx context.Context, itemID string, by int) (int, error)

	// Cooldown returns the expiry of subject's cooldown key, if one is set.
	Cooldown(ctx context.Context, subject, key string) (time.Time, bool, error)
	SetCooldown(ctx context.Context, subject, key string, until time.Time) error
	ClearCooldown(ctx context.Context, subject, key string) error

	// StartQuest records a new objective counter for the player.
	StartQuest(ctx context.Context, playerID string, q character.QuestProgress) error
	// Quests returns the player's objective counters.
	Quests(ctx context.Context, playerID string) ([]character.QuestProgress, error)
	// AdvanceQuest adds n to every incomplete counter of the player matching
	// objective, capped at the counter's requirement.
	AdvanceQuest(ctx context.Context, playerID, objective string, n int) error
}

// Cooldown keys. Hunt cooldowns are keyed by player; boss cooldowns by location.
const (
	CooldownHunt = "hunt"
	CooldownBoss = "boss"
)
