// Package ai decides what an NPC does on each duel turn.
package ai

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

// Policy thresholds on the single per-turn draw.
const (
	HealThreshold   = 0.25
	InjectThreshold = 0.40
)

// DefaultSpeed is the ordering speed of an NPC that carries no weapon.
const DefaultSpeed = 1

// ScriptCaller is the interface required by the Policy to consult Lua hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given location's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(locationID, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Intent is the class of action an NPC settles on.
type Intent string

const (
	IntentAttack Intent = "attack"
	IntentHeal   Intent = "heal"
	IntentInject Intent = "inject"
)

// Policy is the stateless per-turn NPC decision policy. It holds no memory of
// earlier turns and must be consulted afresh every turn.
type Policy struct {
	src           dice.Source
	caller        ScriptCaller
	maxStimulants int
}

// NewPolicy constructs a Policy.
//
// Precondition: src must not be nil; caller may be nil to disable hooks.
func NewPolicy(src dice.Source, caller ScriptCaller, maxStimulants int) *Policy {
	if src == nil {
		panic("ai.NewPolicy: src must not be nil")
	}
	if maxStimulants <= 0 {
		maxStimulants = combat.DefaultMaxStimulants
	}
	return &Policy{src: src, caller: caller, maxStimulants: maxStimulants}
}

// Speed returns the NPC's ordering speed: its weapon's speed, or DefaultSpeed
// when unarmed, adjusted by fire rate.
func Speed(npc *combat.Actor) int {
	base := DefaultSpeed
	if npc.Weapon != nil {
		base = npc.Weapon.Speed
	}
	return combat.AttackSpeed(base, npc)
}

// Decide draws once and classifies the draw into heal, inject, or attack.
//
// Heal requires a heal item, missing health, and draw < HealThreshold.
// Inject requires a stimulant not yet active this duel, room under the cap,
// and draw < InjectThreshold. Everything else attacks a random live opponent
// chosen at resolution time. A Lua hook named by the NPC may hold a heal or
// injection back by answering "attack"; it never widens the heal or inject bands.
//
// Precondition: npc is a live NPC in duel.
// Postcondition: Returns a non-nil Choice whose Actor() is npc.ID.
func (p *Policy) Decide(npc *combat.Actor, duel *combat.Duel) combat.Choice {
	draw := p.src.Float64()
	intent := classify(npc, p.available(npc), draw)
	if intent != IntentAttack {
		if hooked, ok := p.hookIntent(npc, duel, draw, intent); ok && hooked == IntentAttack {
			intent = IntentAttack
		}
	}
	speed := Speed(npc)
	switch intent {
	case IntentHeal:
		return combat.Heal{ActorID: npc.ID, Def: npc.HealPool[p.src.Intn(len(npc.HealPool))], ResolvedSpeed: speed}
	case IntentInject:
		avail := p.available(npc)
		return combat.Stimulant{ActorID: npc.ID, Def: avail[p.src.Intn(len(avail))], ResolvedSpeed: speed}
	default:
		return combat.Attack{ActorID: npc.ID, ResolvedSpeed: speed}
	}
}

func classify(npc *combat.Actor, stims []*inventory.ItemDef, draw float64) Intent {
	if len(npc.HealPool) > 0 && npc.Health < npc.MaxHealth && draw < HealThreshold {
		return IntentHeal
	}
	if len(stims) > 0 && draw < InjectThreshold {
		return IntentInject
	}
	return IntentAttack
}

// available returns the NPC's stimulants that can still be injected.
func (p *Policy) available(npc *combat.Actor) []*inventory.ItemDef {
	if len(npc.Stimulants) >= p.maxStimulants {
		return nil
	}
	var out []*inventory.ItemDef
	for _, s := range npc.StimPool {
		if !npc.HasStimulant(s.ID) {
			out = append(out, s)
		}
	}
	return out
}

// hookIntent asks the NPC's Lua hook for an intent. The hook receives
// (npc_id, health, max_health, turn, draw, intent) and returns "attack" to
// hold back, or nil to keep the classified intent.
func (p *Policy) hookIntent(npc *combat.Actor, duel *combat.Duel, draw float64, intent Intent) (Intent, bool) {
	if p.caller == nil || npc.AIHook == "" {
		return "", false
	}
	location, turn := "", 0
	if duel != nil {
		location, turn = duel.LocationID, duel.Turn
	}
	ret, err := p.caller.CallHook(location, npc.AIHook,
		lua.LString(npc.ID),
		lua.LNumber(npc.Health),
		lua.LNumber(npc.MaxHealth),
		lua.LNumber(turn),
		lua.LNumber(draw),
		lua.LString(intent),
	)
	if err != nil {
		return "", false
	}
	s, ok := ret.(lua.LString)
	if !ok {
		return "", false
	}
	return Intent(s), true
}
