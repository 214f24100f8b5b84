package inventory

import (
	"errors"
	"fmt"
)

// WeaponClass is the top-level weapon variant.
type WeaponClass string

const (
	// ClassRanged weapons fire ammo of a matching caliber.
	ClassRanged WeaponClass = "ranged"
	// ClassMelee weapons need nothing but durability.
	ClassMelee WeaponClass = "melee"
	// ClassThrowable weapons are consumed when used.
	ClassThrowable WeaponClass = "throwable"
)

// incendiarySubtypes set targets alight on any hit.
var incendiarySubtypes = map[string]bool{
	"flamethrower": true,
	"incendiary":   true,
	"molotov":      true,
}

// WeaponStats holds the combat attributes of a weapon.
type WeaponStats struct {
	Class       WeaponClass `yaml:"class"`
	Subtype     string      `yaml:"subtype"`
	Damage      float64     `yaml:"damage"`
	Accuracy    float64     `yaml:"accuracy"`
	Penetration float64     `yaml:"penetration"`
	// Spread is the pellet/fragment count; values below 2 mean a single hit.
	Spread int `yaml:"spread"`
	// Caliber names the ammo a ranged weapon accepts.
	Caliber string `yaml:"caliber"`
}

// IsRanged reports whether the weapon needs ammo.
func (w *WeaponStats) IsRanged() bool { return w.Class == ClassRanged }

// IsThrowable reports whether the weapon is consumed on use.
func (w *WeaponStats) IsThrowable() bool { return w.Class == ClassThrowable }

// Incendiary reports whether hits from this weapon apply Burning.
func (w *WeaponStats) Incendiary() bool { return incendiarySubtypes[w.Subtype] }

// Accepts reports whether ammo can be fired from this weapon.
func (w *WeaponStats) Accepts(ammo *AmmoStats) bool {
	return w.IsRanged() && ammo != nil && ammo.Caliber == w.Caliber
}

// Validate checks that the WeaponStats satisfy their invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponStats) Validate() error {
	var errs []error
	switch w.Class {
	case ClassRanged:
		if w.Caliber == "" {
			errs = append(errs, errors.New("ranged weapon caliber must not be empty"))
		}
	case ClassMelee, ClassThrowable:
	default:
		errs = append(errs, fmt.Errorf("weapon class must be one of ranged, melee, throwable; got %q", w.Class))
	}
	if w.Damage < 0 {
		errs = append(errs, errors.New("weapon damage must be >= 0"))
	}
	if w.Accuracy < 0 || w.Accuracy > 100 {
		errs = append(errs, fmt.Errorf("weapon accuracy must be in [0, 100], got %v", w.Accuracy))
	}
	if w.Penetration < 0 {
		errs = append(errs, errors.New("weapon penetration must be >= 0"))
	}
	if w.Spread < 0 {
		errs = append(errs, errors.New("weapon spread must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%v", errs)
	}
	return nil
}

// AmmoStats holds the combat attributes of a round of ammunition.
type AmmoStats struct {
	Caliber     string  `yaml:"caliber"`
	Damage      float64 `yaml:"damage"`
	Accuracy    float64 `yaml:"accuracy"`
	Penetration float64 `yaml:"penetration"`
	Spread      int     `yaml:"spread"`
}

// Validate checks that the AmmoStats satisfy their invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (a *AmmoStats) Validate() error {
	var errs []error
	if a.Caliber == "" {
		errs = append(errs, errors.New("ammo caliber must not be empty"))
	}
	if a.Damage < 0 {
		errs = append(errs, errors.New("ammo damage must be >= 0"))
	}
	if a.Penetration < 0 {
		errs = append(errs, errors.New("ammo penetration must be >= 0"))
	}
	if a.Spread < 0 {
		errs = append(errs, errors.New("ammo spread must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%v", errs)
	}
	return nil
}

// AttackProfile is the combined numeric input of one attack with a weapon and
// optional ammo.
type AttackProfile struct {
	Damage      float64
	Accuracy    float64
	Penetration float64
	Spread      int
	Incendiary  bool
}

// Profile combines weapon and ammo into an AttackProfile. Ammo damage and
// accuracy add to the weapon's; ammo penetration and spread replace the
// weapon's when set.
//
// Precondition: w is non-nil.
func Profile(w *WeaponStats, ammo *AmmoStats) AttackProfile {
	p := AttackProfile{
		Damage:      w.Damage,
		Accuracy:    w.Accuracy,
		Penetration: w.Penetration,
		Spread:      w.Spread,
		Incendiary:  w.Incendiary(),
	}
	if ammo != nil {
		p.Damage += ammo.Damage
		p.Accuracy += ammo.Accuracy
		if ammo.Penetration > 0 {
			p.Penetration = ammo.Penetration
		}
		if ammo.Spread > 0 {
			p.Spread = ammo.Spread
		}
	}
	return p
}
