// Package storetest holds the behavioural test suite every storage.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

var (
	rifle  = &inventory.ItemDef{ID: "rifle", Name: "Rifle", Category: inventory.CategoryWeapon, Durability: 3}
	rounds = &inventory.ItemDef{ID: "rounds_762", Name: "7.62 Rounds", Category: inventory.CategoryAmmo, Durability: 30}
)

// Run exercises s against the storage.Store contract.
//
// Precondition: s is freshly migrated and holds no rows.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	t.Run("player lifecycle", func(t *testing.T) { testPlayer(t, s) })
	t.Run("items", func(t *testing.T) { testItems(t, s) })
	t.Run("cooldowns", func(t *testing.T) { testCooldowns(t, s) })
	t.Run("quests", func(t *testing.T) { testQuests(t, s) })
	t.Run("rollback", func(t *testing.T) { testRollback(t, s) })
}

func seed(t *testing.T, s storage.Store, id string) {
	t.Helper()
	err := s.WithinTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreatePlayer(context.Background(), &character.Player{
			ID: id, Name: "Player " + id, Health: 100, MaxHealth: 100, Location: "outskirts",
		})
	})
	require.NoError(t, err)
}

func testPlayer(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seed(t, s, "p-life")

	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		require.NoError(t, tx.SetHealth(ctx, "p-life", 250))
		p, err := tx.Player(ctx, "p-life")
		require.NoError(t, err)
		assert.Equal(t, 100, p.Health, "health is clamped to max")

		require.NoError(t, tx.SetHealth(ctx, "p-life", 37))
		require.NoError(t, tx.SetInDuel(ctx, "p-life", true))
		require.NoError(t, tx.AddKill(ctx, "p-life"))
		require.NoError(t, tx.AddDeath(ctx, "p-life"))
		require.NoError(t, tx.AddXP(ctx, "p-life", 15))
		require.NoError(t, tx.AddXP(ctx, "p-life", 5))
		require.NoError(t, tx.SetLocationLevel(ctx, "p-life", 2))
		return nil
	})
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(tx storage.Tx) error {
		p, err := tx.Player(ctx, "p-life")
		require.NoError(t, err)
		assert.Equal(t, 37, p.Health)
		assert.True(t, p.InDuel)
		assert.Equal(t, 1, p.Kills)
		assert.Equal(t, 1, p.Deaths)
		assert.Equal(t, 20, p.XP)
		assert.Equal(t, 2, p.LocationLevel)
		assert.Equal(t, "outskirts", p.Location)

		_, err = tx.Player(ctx, "nobody")
		assert.ErrorIs(t, err, storage.ErrPlayerNotFound)
		assert.ErrorIs(t, tx.SetInDuel(ctx, "nobody", false), storage.ErrPlayerNotFound)
		return nil
	})
	require.NoError(t, err)
}

func testItems(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seed(t, s, "p-items")

	var gunID, ammoID string
	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		gun, err := tx.CreateItem(ctx, "p-items", rifle)
		require.NoError(t, err)
		assert.Equal(t, 3, gun.Durability)
		gunID = gun.ID
		ammo, err := tx.CreateItem(ctx, "p-items", rounds)
		require.NoError(t, err)
		ammoID = ammo.ID
		return nil
	})
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(tx storage.Tx) error {
		items, err := tx.Items(ctx, "p-items")
		require.NoError(t, err)
		require.Len(t, items, 2)

		got, err := tx.Item(ctx, gunID)
		require.NoError(t, err)
		assert.Equal(t, "rifle", got.DefID)
		assert.Equal(t, "p-items", got.OwnerID)

		left, err := tx.LowerDurability(ctx, gunID, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, left)
		left, err = tx.LowerDurability(ctx, gunID, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, left)
		_, err = tx.Item(ctx, gunID)
		assert.ErrorIs(t, err, storage.ErrItemNotFound, "exhausted rows are deleted")

		require.NoError(t, tx.DeleteItem(ctx, ammoID))
		assert.ErrorIs(t, tx.DeleteItem(ctx, ammoID), storage.ErrItemNotFound)
		return nil
	})
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(tx storage.Tx) error {
		for i := 0; i < 3; i++ {
			_, err := tx.CreateItem(ctx, "p-items", rounds)
			require.NoError(t, err)
		}
		require.NoError(t, tx.DeleteItems(ctx, "p-items"))
		items, err := tx.Items(ctx, "p-items")
		require.NoError(t, err)
		assert.Empty(t, items)
		return nil
	})
	require.NoError(t, err)
}

func testCooldowns(t *testing.T, s storage.Store) {
	ctx := context.Background()
	until := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		_, ok, err := tx.Cooldown(ctx, "p-cool", storage.CooldownHunt)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, tx.SetCooldown(ctx, "p-cool", storage.CooldownHunt, until))
		require.NoError(t, tx.SetCooldown(ctx, "p-cool", storage.CooldownHunt, until.Add(time.Minute)))
		got, ok, err := tx.Cooldown(ctx, "p-cool", storage.CooldownHunt)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Equal(until.Add(time.Minute)), "got %s", got)

		require.NoError(t, tx.ClearCooldown(ctx, "p-cool", storage.CooldownHunt))
		_, ok, err = tx.Cooldown(ctx, "p-cool", storage.CooldownHunt)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func testQuests(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seed(t, s, "p-quest")
	obj := character.KillObjective("feral_dog")

	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		require.NoError(t, tx.StartQuest(ctx, "p-quest", character.QuestProgress{QuestID: "dogs", Objective: obj, Required: 2}))
		require.NoError(t, tx.StartQuest(ctx, "p-quest", character.QuestProgress{QuestID: "rats", Objective: character.KillObjective("rat"), Required: 5}))
		for i := 0; i < 3; i++ {
			require.NoError(t, tx.AdvanceQuest(ctx, "p-quest", obj, 1))
		}
		qs, err := tx.Quests(ctx, "p-quest")
		require.NoError(t, err)
		require.Len(t, qs, 2)
		assert.Equal(t, "dogs", qs[0].QuestID)
		assert.Equal(t, 2, qs[0].Progress, "progress is capped at required")
		assert.True(t, qs[0].Complete())
		assert.Equal(t, 0, qs[1].Progress)
		return nil
	})
	require.NoError(t, err)
}

func testRollback(t *testing.T, s storage.Store) {
	ctx := context.Background()
	seed(t, s, "p-rollback")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		require.NoError(t, tx.SetHealth(ctx, "p-rollback", 1))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.WithinTx(ctx, func(tx storage.Tx) error {
		p, err := tx.Player(ctx, "p-rollback")
		require.NoError(t, err)
		assert.Equal(t, 100, p.Health)
		return nil
	})
	require.NoError(t, err)
}
