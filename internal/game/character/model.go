// Package character defines the persistent player model the duel engine reads
// and updates.
package character

import "strings"

// DefaultMaxHealth is the health pool of a newly registered player.
const DefaultMaxHealth = 100

// Player is a player's persistent state as seen by the duel engine.
//
// ID is assigned by the chat platform; zero values indicate an unknown player.
type Player struct {
	ID        string
	Name      string
	Health    int
	MaxHealth int
	// InDuel is set while the player participates in an active duel.
	InDuel bool
	Kills  int
	Deaths int
	XP     int
	// Location is the ID of the location the player is currently at.
	Location string
	// LocationLevel is the highest location level the player has unlocked.
	LocationLevel int
}

// NewPlayer returns a fresh player at location with a full DefaultMaxHealth pool.
func NewPlayer(id, name, location string) *Player {
	if name == "" {
		name = id
	}
	return &Player{ID: id, Name: name, Health: DefaultMaxHealth, MaxHealth: DefaultMaxHealth, Location: location}
}

// IsDead reports whether the player has no health left.
func (p *Player) IsDead() bool { return p.Health <= 0 }

// QuestProgress is one objective counter on an accepted quest.
type QuestProgress struct {
	QuestID   string
	Objective string
	Progress  int
	Required  int
}

// Complete reports whether the objective has been met.
func (q QuestProgress) Complete() bool { return q.Progress >= q.Required }

// KillObjective returns the quest objective key for killing an NPC template.
func KillObjective(templateID string) string {
	return "kill:" + templateID
}

// IsKillObjective reports whether objective counts NPC kills.
func IsKillObjective(objective string) bool {
	return strings.HasPrefix(objective, "kill:")
}
