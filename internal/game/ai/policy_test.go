package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wasteland/internal/game/ai"
	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/condition"
	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

type fixedSource struct {
	floats []float64
	ints   []int
}

func (f *fixedSource) Float64() float64 {
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v
}

func (f *fixedSource) Intn(n int) int {
	if len(f.ints) == 0 {
		return 0
	}
	v := f.ints[0]
	f.ints = f.ints[1:]
	return v % n
}

// mockScriptCaller always returns the given value for any hook call.
type mockScriptCaller struct {
	returnVal lua.LValue
	calls     int
}

func (m *mockScriptCaller) CallHook(locationID, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.calls++
	if m.returnVal == nil {
		return lua.LNil, nil
	}
	return m.returnVal, nil
}

var (
	medkit = &inventory.ItemDef{ID: "medkit", Name: "Medkit", Category: inventory.CategoryMedical, Durability: 1, Medical: &inventory.MedicalStats{HealsFor: 20}}
	rage   = &inventory.ItemDef{ID: "rage", Name: "Rage", Category: inventory.CategoryStimulant, Durability: 1, Stimulant: &inventory.StimulantStats{}}
	rifle  = &inventory.ItemDef{ID: "rifle", Name: "Rifle", Category: inventory.CategoryWeapon, Durability: 1, Speed: 55, Weapon: &inventory.WeaponStats{Class: inventory.ClassRanged, Caliber: "7.62"}}
)

func newNPC(health int) *combat.Actor {
	return &combat.Actor{
		ID: "npc", Kind: combat.KindNPC, Side: combat.SideB,
		Health: health, MaxHealth: 100,
		Weapon:   rifle,
		HealPool: []*inventory.ItemDef{medkit},
		StimPool: []*inventory.ItemDef{rage},
	}
}

func TestDecide_HealsBelowThresholdWhenHurt(t *testing.T) {
	p := ai.NewPolicy(&fixedSource{floats: []float64{0.10}}, nil, 4)
	c := p.Decide(newNPC(50), nil)
	heal, ok := c.(combat.Heal)
	require.True(t, ok)
	assert.Same(t, medkit, heal.Def)
	assert.Equal(t, 55, heal.Speed())
}

func TestDecide_FullHealthInjectsInsteadOfHealing(t *testing.T) {
	p := ai.NewPolicy(&fixedSource{floats: []float64{0.10}}, nil, 4)
	c := p.Decide(newNPC(100), nil)
	stim, ok := c.(combat.Stimulant)
	require.True(t, ok)
	assert.Same(t, rage, stim.Def)
}

func TestDecide_InjectBand(t *testing.T) {
	p := ai.NewPolicy(&fixedSource{floats: []float64{0.30}}, nil, 4)
	_, ok := p.Decide(newNPC(50), nil).(combat.Stimulant)
	assert.True(t, ok)
}

func TestDecide_AlreadyInjectedAttacks(t *testing.T) {
	npc := newNPC(100)
	require.NoError(t, npc.Inject(rage, 4))
	p := ai.NewPolicy(&fixedSource{floats: []float64{0.30}}, nil, 4)
	_, ok := p.Decide(npc, nil).(combat.Attack)
	assert.True(t, ok)
}

func TestDecide_AboveBandsAttacks(t *testing.T) {
	p := ai.NewPolicy(&fixedSource{floats: []float64{0.40}}, nil, 4)
	atk, ok := p.Decide(newNPC(10), nil).(combat.Attack)
	require.True(t, ok)
	assert.Equal(t, "npc", atk.Actor())
	assert.Empty(t, atk.TargetID)
}

func TestSpeed_UnarmedIsOne(t *testing.T) {
	walker := &combat.Actor{ID: "walker", Kind: combat.KindNPC, BaseDamage: 8}
	assert.Equal(t, ai.DefaultSpeed, ai.Speed(walker))
	walker.AfflictionSet().Apply(condition.BrokenArm)
	assert.Equal(t, 1, ai.Speed(walker))
}

func TestDecide_HookHoldsBackHeal(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LString("attack")}
	npc := newNPC(40)
	npc.AIHook = "raider_turn"
	p := ai.NewPolicy(&fixedSource{floats: []float64{0.10}}, caller, 4)
	_, ok := p.Decide(npc, &combat.Duel{LocationID: "ruins", Turn: 3}).(combat.Attack)
	assert.True(t, ok)
	assert.Equal(t, 1, caller.calls)
}

func TestDecide_HookCannotWidenBands(t *testing.T) {
	cases := []struct {
		name string
		hook string
		draw float64
	}{
		{"heal above heal band", "heal", 0.95},
		{"inject above inject band", "inject", 0.60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			caller := &mockScriptCaller{returnVal: lua.LString(tc.hook)}
			npc := newNPC(40)
			npc.AIHook = "raider_turn"
			p := ai.NewPolicy(&fixedSource{floats: []float64{tc.draw}}, caller, 4)
			_, ok := p.Decide(npc, nil).(combat.Attack)
			assert.True(t, ok)
			assert.Zero(t, caller.calls, "an attack intent is never offered to the hook")
		})
	}
}

func TestDecide_HookRedirectOnlyToAttack(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LString("inject")}
	npc := newNPC(40)
	npc.AIHook = "raider_turn"
	p := ai.NewPolicy(&fixedSource{floats: []float64{0.10}}, caller, 4)
	_, ok := p.Decide(npc, nil).(combat.Heal)
	assert.True(t, ok, "the heal band wins over a hooked inject")
}

func TestDecide_Property_AlwaysValidChoice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		npc := newNPC(rapid.IntRange(1, 100).Draw(rt, "health"))
		if rapid.Bool().Draw(rt, "no_heals") {
			npc.HealPool = nil
		}
		p := ai.NewPolicy(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), nil, 4)
		for turn := 0; turn < 5; turn++ {
			c := p.Decide(npc, nil)
			require.NotNil(rt, c)
			switch v := c.(type) {
			case combat.Heal:
				assert.Less(rt, npc.Health, npc.MaxHealth)
			case combat.Stimulant:
				assert.False(rt, npc.HasStimulant(v.Def.ID))
				_ = npc.Inject(v.Def, 4)
			case combat.Attack:
			default:
				rt.Fatalf("unexpected choice %T", c)
			}
		}
	})
}
