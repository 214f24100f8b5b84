package combat_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

func TestGetAttackDamage_ChestArmorScenario(t *testing.T) {
	got := combat.GetAttackDamage(20, 2.0, combat.LimbChest, &inventory.Protection{Level: 4}, nil)
	assert.Equal(t, combat.DamageResult{Total: 7, Reduced: 13}, got)
}

func TestGetAttackDamage_UnarmoredHeadScenario(t *testing.T) {
	got := combat.GetAttackDamage(20, 2.0, combat.LimbHead, &inventory.Protection{Level: 4}, nil)
	assert.Equal(t, combat.DamageResult{Total: 30, Reduced: 0}, got)
}

func TestGetAttackDamage_HelmetReducesHead(t *testing.T) {
	// 30 after the head multiplier, scaled by 1/(3+2) = 0.2 -> 6.
	got := combat.GetAttackDamage(20, 1.0, combat.LimbHead, nil, &inventory.Protection{Level: 3})
	assert.Equal(t, combat.DamageResult{Total: 6, Reduced: 24}, got)
}

func TestGetAttackDamage_ZeroPenetrationFloorsAtOne(t *testing.T) {
	got := combat.GetAttackDamage(50, 0, combat.LimbChest, &inventory.Protection{Level: 6}, nil)
	assert.Equal(t, combat.DamageResult{Total: 1, Reduced: 49}, got)
}

func TestGetAttackDamage_LimbsIgnoreArmor(t *testing.T) {
	armor := &inventory.Protection{Level: 10}
	assert.Equal(t, combat.DamageResult{Total: 10}, combat.GetAttackDamage(20, 0, combat.LimbArm, armor, armor))
	assert.Equal(t, combat.DamageResult{Total: 1}, combat.GetAttackDamage(0.4, 0, combat.LimbLeg, armor, armor))
}

func TestGetAttackDamage_Property_FloorOfOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.Float64Range(0, 500).Draw(rt, "raw")
		pen := rapid.Float64Range(0, 10).Draw(rt, "pen")
		limb := combat.Limb(rapid.IntRange(0, 3).Draw(rt, "limb"))
		var armor, helmet *inventory.Protection
		if rapid.Bool().Draw(rt, "armored") {
			armor = &inventory.Protection{Level: rapid.Float64Range(0.5, 10).Draw(rt, "armor")}
			helmet = &inventory.Protection{Level: rapid.Float64Range(0.5, 10).Draw(rt, "helmet")}
		}
		got := combat.GetAttackDamage(raw, pen, limb, armor, helmet)
		assert.GreaterOrEqual(rt, got.Total, 1)
		assert.GreaterOrEqual(rt, got.Reduced, 0)
	})
}

func TestGetAttackDamage_Property_PenetratingChestIsUnreduced(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.Float64Range(1, 500).Draw(rt, "raw")
		level := rapid.Float64Range(0.5, 10).Draw(rt, "level")
		pen := level + rapid.Float64Range(0, 5).Draw(rt, "excess")
		got := combat.GetAttackDamage(raw, pen, combat.LimbChest, &inventory.Protection{Level: level}, nil)
		assert.Equal(rt, 0, got.Reduced)
		assert.Equal(rt, int(math.Round(raw)), got.Total)
	})
}

func TestGetAttackDamage_Property_HeadMultiplier(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.Float64Range(1, 500).Draw(rt, "raw")
		got := combat.GetAttackDamage(raw, 0, combat.LimbHead, nil, nil)
		assert.Equal(rt, int(math.Round(raw*1.5)), got.Total)
	})
}

func TestGetAttackDamage_Property_LimbsHalf(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.Float64Range(0, 500).Draw(rt, "raw")
		limb := combat.LimbArm
		if rapid.Bool().Draw(rt, "leg") {
			limb = combat.LimbLeg
		}
		armor := &inventory.Protection{Level: rapid.Float64Range(0.5, 10).Draw(rt, "level")}
		want := int(math.Max(1, math.Round(raw*0.5)))
		assert.Equal(rt, want, combat.GetAttackDamage(raw, 0, limb, armor, armor).Total)
		assert.Equal(rt, want, combat.GetAttackDamage(raw, 0, limb, nil, nil).Total)
	})
}

func TestSum(t *testing.T) {
	got := combat.Sum([]combat.DamageResult{{Total: 3, Reduced: 1}, {Total: 4}})
	assert.Equal(t, combat.DamageResult{Total: 7, Reduced: 1}, got)
}
