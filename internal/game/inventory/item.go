// Package inventory provides the static item definitions used in duels and
// the helpers that derive a player's loadout from persisted item rows.
package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/wasteland/internal/game/condition"
)

// Category classifies an ItemDef.
type Category string

const (
	CategoryWeapon    Category = "weapon"
	CategoryAmmo      Category = "ammo"
	CategoryArmor     Category = "armor"
	CategoryHelmet    Category = "helmet"
	CategoryMedical   Category = "medical"
	CategoryStimulant Category = "stimulant"
	CategoryJunk      Category = "junk"
)

var validCategories = map[Category]bool{
	CategoryWeapon:    true,
	CategoryAmmo:      true,
	CategoryArmor:     true,
	CategoryHelmet:    true,
	CategoryMedical:   true,
	CategoryStimulant: true,
	CategoryJunk:      true,
}

// ItemDef defines the static properties of an item loaded from YAML.
//
// Exactly one of the category blocks is set, matching Category. Armor and
// helmets share the Protection block.
type ItemDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    Category `yaml:"category"`
	Weight      float64  `yaml:"weight"`
	// Durability is the number of uses a fresh item row starts with. For
	// ammo it is the number of rounds in the stack.
	Durability int `yaml:"durability"`
	// Speed orders the action that uses this item within a turn.
	Speed int `yaml:"speed"`

	Weapon     *WeaponStats    `yaml:"weapon,omitempty"`
	Ammo       *AmmoStats      `yaml:"ammo,omitempty"`
	Protection *Protection     `yaml:"protection,omitempty"`
	Medical    *MedicalStats   `yaml:"medical,omitempty"`
	Stimulant  *StimulantStats `yaml:"stimulant,omitempty"`
}

// Protection is the rated level of a piece of body armor or a helmet.
type Protection struct {
	Level float64 `yaml:"level"`
}

// MedicalStats describes a healing item.
type MedicalStats struct {
	HealsFor int      `yaml:"heals_for"`
	Cures    []string `yaml:"cures"`
}

// CuredAfflictions resolves Cures to afflictions.
//
// Precondition: the owning ItemDef passed Validate.
func (m *MedicalStats) CuredAfflictions() []condition.Affliction {
	out := make([]condition.Affliction, 0, len(m.Cures))
	for _, c := range m.Cures {
		if a, err := condition.ParseAffliction(c); err == nil {
			out = append(out, a)
		}
	}
	return out
}

// StimulantStats describes an injectable stimulant.
type StimulantStats struct {
	Effects condition.Modifiers `yaml:"effects"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validCategories[d.Category] {
		errs = append(errs, fmt.Errorf("Category must be one of weapon, ammo, armor, helmet, medical, stimulant, junk; got %q", d.Category))
	}
	if d.Weight < 0 {
		errs = append(errs, errors.New("Weight must be >= 0"))
	}
	if d.Durability < 1 {
		errs = append(errs, errors.New("Durability must be >= 1"))
	}
	if d.Speed < 0 {
		errs = append(errs, errors.New("Speed must be >= 0"))
	}
	switch d.Category {
	case CategoryWeapon:
		if d.Weapon == nil {
			errs = append(errs, errors.New("weapon block is required when Category is weapon"))
		} else if err := d.Weapon.Validate(); err != nil {
			errs = append(errs, err)
		}
	case CategoryAmmo:
		if d.Ammo == nil {
			errs = append(errs, errors.New("ammo block is required when Category is ammo"))
		} else if err := d.Ammo.Validate(); err != nil {
			errs = append(errs, err)
		}
	case CategoryArmor, CategoryHelmet:
		if d.Protection == nil {
			errs = append(errs, fmt.Errorf("protection block is required when Category is %s", d.Category))
		} else if d.Protection.Level <= 0 {
			errs = append(errs, errors.New("protection level must be > 0"))
		}
	case CategoryMedical:
		if d.Medical == nil {
			errs = append(errs, errors.New("medical block is required when Category is medical"))
		} else {
			if d.Medical.HealsFor < 0 {
				errs = append(errs, errors.New("heals_for must be >= 0"))
			}
			for _, c := range d.Medical.Cures {
				if _, err := condition.ParseAffliction(c); err != nil {
					errs = append(errs, err)
				}
			}
		}
	case CategoryStimulant:
		if d.Stimulant == nil {
			errs = append(errs, errors.New("stimulant block is required when Category is stimulant"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %v", d.ID, errs)
	}
	return nil
}
