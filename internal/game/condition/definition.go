// Package condition models the status effects that shape an actor's combat
// numbers for the rest of a duel: injected stimulants and afflictions.
package condition

import (
	"fmt"
	"strings"
)

// Affliction names a debuff applied by combat events.
type Affliction string

const (
	Burning   Affliction = "Burning"
	BrokenArm Affliction = "Broken Arm"
	Bitten    Affliction = "Bitten"
)

// afflictionEffects holds the fixed contribution of each affliction.
var afflictionEffects = map[Affliction]Modifiers{
	Bitten:    {DamageBonus: -20, DamageReduction: -20},
	BrokenArm: {FireRate: -15},
	Burning:   {DamageReduction: -25},
}

// Known returns every affliction in a stable order.
func Known() []Affliction {
	return []Affliction{Burning, BrokenArm, Bitten}
}

// Effect returns the fixed modifier bundle of a.
//
// Postcondition: Returns the zero Modifiers for an unknown affliction.
func (a Affliction) Effect() Modifiers {
	return afflictionEffects[a]
}

// ParseAffliction resolves a content-file spelling ("broken_arm", "Broken Arm",
// "burning") to an Affliction.
//
// Postcondition: Returns an error naming s when it matches no affliction.
func ParseAffliction(s string) (Affliction, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	for _, a := range Known() {
		if strings.ToLower(string(a)) == norm {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown affliction %q", s)
}
