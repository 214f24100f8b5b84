// Package combat provides the duel aggregate, action choices, hit and damage
// math, speed ordering, and the per-scope duel registry.
package combat

import (
	"errors"

	"github.com/cory-johannsen/wasteland/internal/game/condition"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

// DefaultMaxStimulants is the per-duel cap on distinct active stimulants.
const DefaultMaxStimulants = 4

// ErrStimulantActive is returned when injecting a stimulant that is already active.
var ErrStimulantActive = errors.New("stimulant already active")

// ErrStimulantCap is returned when injecting beyond the stimulant cap.
var ErrStimulantCap = errors.New("stimulant limit reached")

// Kind distinguishes players from NPCs.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// Side identifies which team an actor fights for. In PvE duels players are
// SideA and the NPC is SideB.
type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

// Opposing returns the other side.
func (s Side) Opposing() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	default:
		return SideNone
	}
}

// Actor is a duel-scoped snapshot of a player or NPC.
//
// Players carry only identity and health; their weapon, ammo, armor and
// helmet are derived from inventory rows whenever an action resolves. NPCs
// carry a fixed loadout copied from their template.
type Actor struct {
	ID        string
	Name      string
	Kind      Kind
	Side      Side
	Health    int
	MaxHealth int

	TemplateID      string
	Boss            bool
	Weapon          *inventory.ItemDef
	Ammo            *inventory.ItemDef
	Armor           *inventory.Protection
	Helmet          *inventory.Protection
	BaseDamage      float64
	BasePenetration float64
	BiteChance      float64
	HealPool        []*inventory.ItemDef
	StimPool        []*inventory.ItemDef
	AIHook          string

	// Stimulants holds the active stimulants in injection order.
	Stimulants  []*inventory.ItemDef
	Afflictions *condition.Set
	Fled        bool
}

// IsPlayer reports whether the actor is a human player.
func (a *Actor) IsPlayer() bool { return a.Kind == KindPlayer }

// IsDead reports whether the actor's health has reached zero.
func (a *Actor) IsDead() bool { return a.Health <= 0 }

// IsLive reports whether the actor still participates: alive and not fled.
func (a *Actor) IsLive() bool { return !a.IsDead() && !a.Fled }

// Missing returns how much health the actor can regain.
//
// Postcondition: Never negative.
func (a *Actor) Missing() int {
	if m := a.MaxHealth - a.Health; m > 0 {
		return m
	}
	return 0
}

// ApplyDamage reduces Health by dmg, flooring at zero.
//
// Postcondition: Health >= 0.
func (a *Actor) ApplyDamage(dmg int) {
	a.Health -= dmg
	if a.Health < 0 {
		a.Health = 0
	}
}

// Heal restores up to amount health without exceeding MaxHealth.
//
// Postcondition: Returns the health actually restored, min(Missing(), amount).
func (a *Actor) Heal(amount int) int {
	if amount < 0 {
		amount = 0
	}
	healed := min(a.Missing(), amount)
	a.Health += healed
	return healed
}

// HasStimulant reports whether a stimulant with the given definition ID is active.
func (a *Actor) HasStimulant(defID string) bool {
	for _, s := range a.Stimulants {
		if s.ID == defID {
			return true
		}
	}
	return false
}

// Inject activates stim for the rest of the duel.
//
// Precondition: stim is a stimulant definition.
// Postcondition: On success the stimulant is appended; the active set never
// exceeds limit entries and never holds the same definition twice.
func (a *Actor) Inject(stim *inventory.ItemDef, limit int) error {
	if a.HasStimulant(stim.ID) {
		return ErrStimulantActive
	}
	if len(a.Stimulants) >= limit {
		return ErrStimulantCap
	}
	a.Stimulants = append(a.Stimulants, stim)
	return nil
}

// Modifiers aggregates the actor's current stimulants and afflictions.
// The result reflects state at the moment of the call.
func (a *Actor) Modifiers() condition.Modifiers {
	bundles := make([]condition.Modifiers, 0, len(a.Stimulants))
	for _, s := range a.Stimulants {
		if s.Stimulant != nil {
			bundles = append(bundles, s.Stimulant.Effects)
		}
	}
	return condition.Aggregate(bundles, a.Afflictions)
}

// AfflictionSet returns the actor's affliction set, creating it on first use.
func (a *Actor) AfflictionSet() *condition.Set {
	if a.Afflictions == nil {
		a.Afflictions = condition.NewSet()
	}
	return a.Afflictions
}
