package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/wasteland/internal/game/dice"
)

// MaxResample bounds how many times a pellet is re-rolled when it lands on a
// limb already hit by the same attack; after that a duplicate limb is kept.
const MaxResample = 8

// Limb is a body region an attack can land on.
type Limb int

const (
	LimbChest Limb = iota
	LimbHead
	LimbArm
	LimbLeg
)

// String returns the lowercase limb name.
func (l Limb) String() string {
	switch l {
	case LimbHead:
		return "head"
	case LimbArm:
		return "arm"
	case LimbLeg:
		return "leg"
	default:
		return "chest"
	}
}

// Limbs lists every limb in prompt order.
func Limbs() []Limb {
	return []Limb{LimbHead, LimbChest, LimbArm, LimbLeg}
}

// ParseLimb resolves a limb name.
func ParseLimb(s string) (Limb, error) {
	for _, l := range Limbs() {
		if strings.EqualFold(strings.TrimSpace(s), l.String()) {
			return l, nil
		}
	}
	return LimbChest, fmt.Errorf("unknown limb %q", s)
}

// HitResult is where an attack landed and whether a called shot connected.
// Accurate false with a targeted limb is a miss of the called shot.
type HitResult struct {
	Limb     Limb
	Accurate bool
}

// untargeted cumulative thresholds: head 10%, arm 15%, leg 15%, chest 60%.
const (
	headThreshold = 0.10
	armThreshold  = 0.25
	legThreshold  = 0.40
)

// GetBodyPartHit resolves where an attack lands from a single uniform draw.
//
// When target is set the hit is accurate iff draw <= accuracy/100, or
// draw <= accuracy/200 for a head shot. Otherwise the same draw selects an
// untargeted limb and Accurate is false.
//
// Precondition: src is non-nil.
func GetBodyPartHit(src dice.Source, accuracy float64, target *Limb) HitResult {
	r := src.Float64()
	if target != nil {
		threshold := accuracy / 100
		if *target == LimbHead {
			threshold = accuracy / 200
		}
		if r <= threshold {
			return HitResult{Limb: *target, Accurate: true}
		}
	}
	return HitResult{Limb: untargetedLimb(r)}
}

func untargetedLimb(r float64) Limb {
	switch {
	case r < headThreshold:
		return LimbHead
	case r < armThreshold:
		return LimbArm
	case r < legThreshold:
		return LimbLeg
	default:
		return LimbChest
	}
}

// SpreadHits rolls one untargeted limb per pellet, re-rolling limbs already
// hit by the same attack at most MaxResample times per pellet.
//
// Precondition: spread >= 1.
// Postcondition: len(result) == spread; limbs are distinct whenever spread <= 4
// and the resample budget was not exhausted.
func SpreadHits(src dice.Source, spread int) []HitResult {
	if spread < 1 {
		spread = 1
	}
	hits := make([]HitResult, 0, spread)
	seen := make(map[Limb]bool, spread)
	for i := 0; i < spread; i++ {
		h := GetBodyPartHit(src, 0, nil)
		for tries := 0; seen[h.Limb] && tries < MaxResample; tries++ {
			h = GetBodyPartHit(src, 0, nil)
		}
		seen[h.Limb] = true
		hits = append(hits, h)
	}
	return hits
}
