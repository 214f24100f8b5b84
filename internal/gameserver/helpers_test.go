package gameserver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/condition"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/game/npc"
	"github.com/cory-johannsen/wasteland/internal/game/world"
	"github.com/cory-johannsen/wasteland/internal/storage"
	"github.com/cory-johannsen/wasteland/internal/storage/memory"
)

// queueSource replays fixed draws. Once a queue is drained Float64 returns
// 0.99 and Intn returns 0.
type queueSource struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (q *queueSource) Float64() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.floats) == 0 {
		return 0.99
	}
	v := q.floats[0]
	q.floats = q.floats[1:]
	return v
}

func (q *queueSource) Intn(n int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ints) == 0 {
		return 0
	}
	v := q.ints[0] % n
	q.ints = q.ints[1:]
	return v
}

var (
	knife = &inventory.ItemDef{
		ID: "knife", Name: "Knife", Category: inventory.CategoryWeapon, Weight: 1, Durability: 5, Speed: 30,
		Weapon: &inventory.WeaponStats{Class: inventory.ClassMelee, Damage: 20, Accuracy: 80, Penetration: 2},
	}
	rifle = &inventory.ItemDef{
		ID: "rifle", Name: "Rifle", Category: inventory.CategoryWeapon, Weight: 4, Durability: 10, Speed: 50,
		Weapon: &inventory.WeaponStats{Class: inventory.ClassRanged, Damage: 20, Accuracy: 60, Penetration: 2, Caliber: "762"},
	}
	molotov = &inventory.ItemDef{
		ID: "molotov", Name: "Molotov", Category: inventory.CategoryWeapon, Weight: 1, Durability: 1, Speed: 20,
		Weapon: &inventory.WeaponStats{Class: inventory.ClassThrowable, Subtype: "molotov", Damage: 10, Accuracy: 50},
	}
	scattergun = &inventory.ItemDef{
		ID: "scattergun", Name: "Scattergun", Category: inventory.CategoryWeapon, Weight: 3, Durability: 10, Speed: 45,
		Weapon: &inventory.WeaponStats{Class: inventory.ClassMelee, Damage: 20, Accuracy: 80, Penetration: 10, Spread: 4},
	}
	rounds = &inventory.ItemDef{
		ID: "rounds_762", Name: "7.62 Rounds", Category: inventory.CategoryAmmo, Weight: 0.5, Durability: 2,
		Ammo: &inventory.AmmoStats{Caliber: "762"},
	}
	medkit = &inventory.ItemDef{
		ID: "medkit", Name: "Medkit", Category: inventory.CategoryMedical, Weight: 1, Durability: 1, Speed: 40,
		Medical: &inventory.MedicalStats{HealsFor: 30, Cures: []string{"bitten"}},
	}
	rage = &inventory.ItemDef{
		ID: "rage", Name: "Rage", Category: inventory.CategoryStimulant, Weight: 0.2, Durability: 1, Speed: 60,
		Stimulant: &inventory.StimulantStats{Effects: condition.Modifiers{DamageBonus: 10}},
	}
	vest = &inventory.ItemDef{
		ID: "vest", Name: "Vest", Category: inventory.CategoryArmor, Weight: 5, Durability: 1,
		Protection: &inventory.Protection{Level: 4},
	}

	raider = &npc.Template{
		ID: "raider", Name: "Raider", MaxHealth: 50, Damage: 5, Armor: 4, XP: 10,
		Drops: &npc.DropTable{Rolls: 1, Common: []string{"medkit"}},
	}
	ghoul = &npc.Template{
		ID: "ghoul", Name: "Ghoul", MaxHealth: 40, Damage: 4, BiteChance: 1,
	}
	dummy = &npc.Template{
		ID: "dummy", Name: "Training Dummy", MaxHealth: 10000, Damage: 1,
	}
	warlord = &npc.Template{
		ID: "warlord", Name: "Warlord", MaxHealth: 5, Damage: 1, Boss: true, XP: 100, RespawnDelay: "30m",
	}
)

func testContent(t *testing.T) Content {
	t.Helper()
	reg := inventory.NewRegistry()
	for _, d := range []*inventory.ItemDef{knife, rifle, scattergun, molotov, rounds, medkit, rage, vest} {
		require.NoError(t, reg.Register(d))
	}
	npcs, err := npc.NewManager([]*npc.Template{raider, ghoul, dummy, warlord}, reg)
	require.NoError(t, err)
	locs, err := world.NewManager([]*world.Location{
		{ID: "outskirts", Name: "Outskirts", Level: 0, NPCs: []string{"raider"}, Boss: "warlord"},
		{ID: "yard", Name: "Training Yard", Level: 0, NPCs: []string{"dummy"}},
		{ID: "crater", Name: "Crater", Level: 3, NPCs: []string{"ghoul"}},
	})
	require.NoError(t, err)
	return Content{Items: reg, NPCs: npcs, Locations: locs}
}

func testDuelConfig() config.DuelConfig {
	return config.DuelConfig{
		TurnWindow:        2 * time.Second,
		SubPromptTimeout:  time.Second,
		MaxTurns:          combat.DefaultMaxTurns,
		MaxStimulants:     combat.DefaultMaxStimulants,
		FleeChanceHunt:    0.15,
		FleeChanceBoss:    0.10,
		BrokenArmChance:   0.20,
		FleeSpeed:         50,
		InventoryCapacity: 40,
		HuntCooldown:      2 * time.Minute,
		BossRespawn:       time.Hour,
	}
}

// seedPlayer stores a player and its items and returns the item row IDs by
// definition ID.
func seedPlayer(t *testing.T, s storage.Store, p character.Player, defs ...*inventory.ItemDef) map[string]string {
	t.Helper()
	ctx := context.Background()
	ids := make(map[string]string)
	err := s.WithinTx(ctx, func(tx storage.Tx) error {
		if err := tx.CreatePlayer(ctx, &p); err != nil {
			return err
		}
		for _, d := range defs {
			it, err := tx.CreateItem(ctx, p.ID, d)
			if err != nil {
				return err
			}
			ids[d.ID] = it.ID
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

func loadPlayer(t *testing.T, s storage.Store, id string) *character.Player {
	t.Helper()
	var p *character.Player
	err := s.WithinTx(context.Background(), func(tx storage.Tx) error {
		var err error
		p, err = tx.Player(context.Background(), id)
		return err
	})
	require.NoError(t, err)
	return p
}

func loadItems(t *testing.T, s storage.Store, owner string) []inventory.Item {
	t.Helper()
	var items []inventory.Item
	err := s.WithinTx(context.Background(), func(tx storage.Tx) error {
		var err error
		items, err = tx.Items(context.Background(), owner)
		return err
	})
	require.NoError(t, err)
	return items
}

func player(id, location string, health int) character.Player {
	return character.Player{ID: id, Name: "Player " + id, Health: health, MaxHealth: 100, Location: location}
}

func actorFor(p character.Player, side combat.Side) *combat.Actor {
	return playerActor(&p, side)
}

func npcActor(t *testing.T, content Content, templateID string) *combat.Actor {
	t.Helper()
	tmpl, ok := content.NPCs.Get(templateID)
	require.True(t, ok)
	return npc.NewActor("npc-"+templateID, tmpl, content.Items, combat.SideB)
}

func newTestResolver(s storage.Store, content Content, src *queueSource) *Resolver {
	return NewResolver(s, content, src, testDuelConfig(), zap.NewNop())
}

// scriptedPrompter answers each prompt through answer and records it.
type scriptedPrompter struct {
	mu     sync.Mutex
	answer func(p Prompt) (string, error)
	seen   []Prompt
}

func (s *scriptedPrompter) Prompt(ctx context.Context, p Prompt) (Selection, error) {
	s.mu.Lock()
	s.seen = append(s.seen, p)
	s.mu.Unlock()
	id, err := s.answer(p)
	if err != nil {
		return Selection{}, err
	}
	return Selection{OptionID: id}, nil
}

func (s *scriptedPrompter) prompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Prompt, len(s.seen))
	copy(out, s.seen)
	return out
}

// attackAnswers picks attack, the first weapon and ammo, and limb.
func attackAnswers(limb string) func(Prompt) (string, error) {
	return func(p Prompt) (string, error) {
		switch p.Step {
		case StepAction:
			return combat.ActionAttack.String(), nil
		case StepLimb:
			return limb, nil
		default:
			return p.Options[0].ID, nil
		}
	}
}

func silentAnswers(p Prompt) (string, error) {
	return "", context.DeadlineExceeded
}

// recordingSink keeps everything it is sent.
type recordingSink struct {
	mu      sync.Mutex
	reports []TurnReport
	ended   []Summary
}

func (r *recordingSink) TurnReport(_ context.Context, rep TurnReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func (r *recordingSink) DuelEnded(_ context.Context, s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, s)
}

func newTestHandler(t *testing.T, src *queueSource, prompter Prompter) (*DuelHandler, *memory.Store, *recordingSink, *combat.Engine) {
	t.Helper()
	store := memory.New()
	sink := &recordingSink{}
	engine := combat.NewEngine()
	h := NewDuelHandler(engine, store, testContent(t), nil, prompter, sink, src, testDuelConfig(), zap.NewNop())
	return h, store, sink, engine
}

func eventKinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}
