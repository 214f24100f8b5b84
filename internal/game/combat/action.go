package combat

import (
	"math"

	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

// ActionType identifies which variant a Choice is.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionAttack
	ActionHeal
	ActionStimulant
	ActionFlee
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionHeal:
		return "heal"
	case ActionStimulant:
		return "stimulant"
	case ActionFlee:
		return "flee"
	default:
		return "none"
	}
}

// Choice is one actor's submitted action for a turn. The concrete types are
// Attack, Heal, Stimulant and Flee; each is consumed exactly once.
type Choice interface {
	// Actor returns the ID of the acting actor.
	Actor() string
	// Speed returns the resolved ordering speed.
	Speed() int
	// Action returns the variant tag.
	Action() ActionType
	isChoice()
}

// Attack targets an opponent with a weapon.
//
// Players reference inventory rows by ID; NPCs leave the item IDs empty and
// attack with their fixed loadout. An empty TargetID picks a random live
// opponent at resolution time.
type Attack struct {
	ActorID       string
	TargetID      string
	WeaponItemID  string
	AmmoItemID    string
	Limb          *Limb
	ResolvedSpeed int
}

func (c Attack) Actor() string    { return c.ActorID }
func (c Attack) Speed() int       { return c.ResolvedSpeed }
func (Attack) Action() ActionType { return ActionAttack }
func (Attack) isChoice()          {}

// Heal uses a medical item. Players reference an inventory row; NPCs carry the
// definition drawn from their heal pool.
type Heal struct {
	ActorID       string
	ItemID        string
	Def           *inventory.ItemDef
	ResolvedSpeed int
}

func (c Heal) Actor() string    { return c.ActorID }
func (c Heal) Speed() int       { return c.ResolvedSpeed }
func (Heal) Action() ActionType { return ActionHeal }
func (Heal) isChoice()          {}

// Stimulant injects a stimulant. Players reference an inventory row; NPCs
// carry the definition drawn from their stimulant pool.
type Stimulant struct {
	ActorID       string
	ItemID        string
	Def           *inventory.ItemDef
	ResolvedSpeed int
}

func (c Stimulant) Actor() string    { return c.ActorID }
func (c Stimulant) Speed() int       { return c.ResolvedSpeed }
func (Stimulant) Action() ActionType { return ActionStimulant }
func (Stimulant) isChoice()          {}

// Flee attempts to leave the duel.
type Flee struct {
	ActorID       string
	ResolvedSpeed int
}

func (c Flee) Actor() string    { return c.ActorID }
func (c Flee) Speed() int       { return c.ResolvedSpeed }
func (Flee) Action() ActionType { return ActionFlee }
func (Flee) isChoice()          {}

// AttackSpeed applies an actor's fire-rate modifier to a base item speed.
//
// Postcondition: Never negative.
func AttackSpeed(base int, a *Actor) int {
	return int(math.Round(float64(base) * a.Modifiers().SpeedMultiplier()))
}
