package gameserver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/ai"
	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/npc"
	"github.com/cory-johannsen/wasteland/internal/game/world"
	"github.com/cory-johannsen/wasteland/internal/scripting"
)

const contentRoot = "../../content"

func repoContentConfig() config.ContentConfig {
	return config.ContentConfig{
		ItemsDir:     filepath.Join(contentRoot, "items"),
		NPCsDir:      filepath.Join(contentRoot, "npcs"),
		LocationsDir: filepath.Join(contentRoot, "locations"),
		ScriptRoot:   filepath.Join(contentRoot, "scripts"),
	}
}

func TestLoadContent_ShippedContent(t *testing.T) {
	content, err := LoadContent(repoContentConfig())
	require.NoError(t, err)

	assert.Equal(t, 13, content.Items.Len())
	assert.Equal(t, 4, content.NPCs.Len())
	assert.Equal(t, 3, content.Locations.LocationCount())

	ruins, ok := content.Locations.Location("ruins")
	require.True(t, ok)
	assert.True(t, ruins.HasBoss())
	boss, ok := content.NPCs.Get(ruins.Boss)
	require.True(t, ok)
	assert.True(t, boss.Boss)

	crater, ok := content.Locations.Location("crater")
	require.True(t, ok)
	assert.False(t, crater.Unlocked(0))
	assert.True(t, crater.Unlocked(1))
}

func TestLoadContent_MissingDir(t *testing.T) {
	cfg := repoContentConfig()
	cfg.ItemsDir = filepath.Join(t.TempDir(), "nope")
	_, err := LoadContent(cfg)
	assert.ErrorContains(t, err, "loading items")
}

func TestLoadScripts_ShippedHooksKeepPolicyBands(t *testing.T) {
	cfg := repoContentConfig()
	content, err := LoadContent(cfg)
	require.NoError(t, err)

	mgr := scripting.NewManager(dice.NewSeededSource(7), zap.NewNop())
	t.Cleanup(mgr.Close)
	n, err := LoadScripts(mgr, content.Locations, cfg.ScriptRoot, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ret, err := mgr.CallHook("ruins", "gunner_intent",
		lua.LString("g1"), lua.LNumber(80), lua.LNumber(80), lua.LNumber(1), lua.LNumber(0.3), lua.LString("inject"))
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)

	actor := func(id, templateID string, health int) *combat.Actor {
		tmpl, ok := content.NPCs.Get(templateID)
		require.True(t, ok)
		a := npc.NewActor(id, tmpl, content.Items, combat.SideB)
		if health > 0 {
			a.Health = health
		}
		return a
	}
	decide := func(a *combat.Actor, draw float64) combat.Choice {
		d := combat.NewDuel("d1", "chan-1", combat.ModeBoss, "ruins",
			[]*combat.Actor{actorFor(player("p1", "ruins", 100), combat.SideA), a}, 0)
		return ai.NewPolicy(&queueSource{floats: []float64{draw}}, mgr, combat.DefaultMaxStimulants).Decide(a, d)
	}

	_, ok := decide(actor("g1", "raider_gunner", 0), 0.9).(combat.Attack)
	assert.True(t, ok, "a draw above the inject band attacks on turn one")

	stim, ok := decide(actor("g2", "raider_gunner", 0), 0.3).(combat.Stimulant)
	require.True(t, ok)
	assert.Equal(t, "adrenaline", stim.Def.ID)

	heal, ok := decide(actor("w1", "warlord", 200), 0.10).(combat.Heal)
	require.True(t, ok, "a hurt boss inside the heal band heals")
	assert.Equal(t, "field_kit", heal.Def.ID)

	_, ok = decide(actor("w2", "warlord", 200), 0.90).(combat.Attack)
	assert.True(t, ok)
}

func TestLoadScripts_SkipsMissingDir(t *testing.T) {
	locs, err := world.NewManager([]*world.Location{
		{ID: "nowhere", Name: "Nowhere", NPCs: []string{"x"}, ScriptDir: "does-not-exist"},
	})
	require.NoError(t, err)
	mgr := scripting.NewManager(dice.NewSeededSource(1), zap.NewNop())
	t.Cleanup(mgr.Close)

	n, err := LoadScripts(mgr, locs, t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, mgr.Locations())
}
