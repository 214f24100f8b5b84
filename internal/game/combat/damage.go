package combat

import (
	"math"

	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

// headMultiplier scales head hits before helmet reduction.
const headMultiplier = 1.5

// DamageResult is the damage one limb hit deals and how much protection absorbed.
type DamageResult struct {
	Total   int
	Reduced int
}

// GetAttackDamage applies the hit-location and armor model to rawDamage.
//
// Chest hits are reduced by armor and head hits (after a 1.5x multiplier) by
// the helmet: when penetration is below the protection level, damage scales by
// penetration / (level + (level - penetration)). Arm and leg hits deal half of
// rawDamage and ignore protection.
//
// Postcondition: Total >= 1; Reduced >= 0.
func GetAttackDamage(rawDamage, penetration float64, limb Limb, armor, helmet *inventory.Protection) DamageResult {
	switch limb {
	case LimbArm, LimbLeg:
		return DamageResult{Total: atLeastOne(math.Round(rawDamage * 0.5))}
	case LimbHead:
		return reduce(atLeastOne(math.Round(rawDamage*headMultiplier)), penetration, helmet)
	default:
		return reduce(atLeastOne(math.Round(rawDamage)), penetration, armor)
	}
}

func reduce(dmg int, penetration float64, p *inventory.Protection) DamageResult {
	if p == nil || penetration >= p.Level {
		return DamageResult{Total: dmg}
	}
	scale := penetration / (p.Level + (p.Level - penetration))
	adjusted := atLeastOne(math.Round(scale * float64(dmg)))
	return DamageResult{Total: adjusted, Reduced: dmg - adjusted}
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

// Sum totals a set of per-limb results.
func Sum(results []DamageResult) DamageResult {
	var out DamageResult
	for _, r := range results {
		out.Total += r.Total
		out.Reduced += r.Reduced
	}
	return out
}
