package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/wasteland/internal/game/character"
)

func TestKillObjective(t *testing.T) {
	obj := character.KillObjective("feral_dog")
	assert.Equal(t, "kill:feral_dog", obj)
	assert.True(t, character.IsKillObjective(obj))
	assert.False(t, character.IsKillObjective("collect:scrap"))
}

func TestQuestProgress_Complete(t *testing.T) {
	q := character.QuestProgress{QuestID: "q1", Objective: "kill:rat", Progress: 2, Required: 3}
	assert.False(t, q.Complete())
	q.Progress++
	assert.True(t, q.Complete())
}

func TestPlayer_IsDead(t *testing.T) {
	p := &character.Player{Health: 1, MaxHealth: 100}
	assert.False(t, p.IsDead())
	p.Health = 0
	assert.True(t, p.IsDead())
}

func TestNewPlayer(t *testing.T) {
	p := character.NewPlayer("p1", "", "outskirts")
	assert.Equal(t, "p1", p.Name)
	assert.Equal(t, character.DefaultMaxHealth, p.Health)
	assert.Equal(t, character.DefaultMaxHealth, p.MaxHealth)
	assert.Zero(t, p.LocationLevel)
	assert.False(t, p.InDuel)
}
