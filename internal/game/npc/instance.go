package npc

import (
	"fmt"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/condition"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

// ValidateRefs checks that every item the template references exists in reg
// with the expected category.
//
// Postcondition: Returns nil iff all references resolve.
func (t *Template) ValidateRefs(reg *inventory.Registry) error {
	check := func(id string, want inventory.Category) error {
		d, ok := reg.Item(id)
		if !ok {
			return fmt.Errorf("npc template %q: unknown item %q", t.ID, id)
		}
		if want != "" && d.Category != want {
			return fmt.Errorf("npc template %q: item %q is %s, want %s", t.ID, id, d.Category, want)
		}
		return nil
	}
	if t.Weapon != "" {
		if err := check(t.Weapon, inventory.CategoryWeapon); err != nil {
			return err
		}
	}
	if t.Ammo != "" {
		if err := check(t.Ammo, inventory.CategoryAmmo); err != nil {
			return err
		}
	}
	for _, id := range t.Heals {
		if err := check(id, inventory.CategoryMedical); err != nil {
			return err
		}
	}
	for _, id := range t.Stimulants {
		if err := check(id, inventory.CategoryStimulant); err != nil {
			return err
		}
	}
	if t.Drops != nil {
		for _, id := range t.Drops.ItemIDs() {
			if err := check(id, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewActor builds a duel actor for the template on side with a fresh
// health pool.
//
// Precondition: t passed ValidateRefs against reg.
// Postcondition: The actor is live with Health == MaxHealth.
func NewActor(id string, t *Template, reg *inventory.Registry, side combat.Side) *combat.Actor {
	a := &combat.Actor{
		ID:              id,
		Name:            t.Name,
		Kind:            combat.KindNPC,
		Side:            side,
		Health:          t.MaxHealth,
		MaxHealth:       t.MaxHealth,
		TemplateID:      t.ID,
		Boss:            t.Boss,
		BaseDamage:      t.Damage,
		BasePenetration: t.Penetration,
		BiteChance:      t.BiteChance,
		AIHook:          t.AIHook,
		Afflictions:     condition.NewSet(),
	}
	if d, ok := reg.Item(t.Weapon); ok {
		a.Weapon = d
	}
	if d, ok := reg.Item(t.Ammo); ok {
		a.Ammo = d
	}
	if t.Armor > 0 {
		a.Armor = &inventory.Protection{Level: t.Armor}
	}
	if t.Helmet > 0 {
		a.Helmet = &inventory.Protection{Level: t.Helmet}
	}
	for _, id := range t.Heals {
		if d, ok := reg.Item(id); ok {
			a.HealPool = append(a.HealPool, d)
		}
	}
	for _, id := range t.Stimulants {
		if d, ok := reg.Item(id); ok {
			a.StimPool = append(a.StimPool, d)
		}
	}
	return a
}
