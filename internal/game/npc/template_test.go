package npc_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/game/npc"
)

const raiderYAML = `
id: raider
name: Raider
max_health: 60
weapon: pistol
ammo: 9mm
armor: 2
boss: true
xp: 120
bite_chance: 0
heals: [bandage]
stimulants: [adrenaline]
respawn_delay: 30m
drops:
  rolls: 2
  common: [bandage]
  rare: [pistol]
`

func registry(t *testing.T) *inventory.Registry {
	t.Helper()
	reg := inventory.NewRegistry()
	for _, d := range []*inventory.ItemDef{
		{ID: "pistol", Name: "Pistol", Category: inventory.CategoryWeapon, Durability: 30, Speed: 40, Weapon: &inventory.WeaponStats{Class: inventory.ClassRanged, Caliber: "9mm", Damage: 10}},
		{ID: "9mm", Name: "9mm", Category: inventory.CategoryAmmo, Durability: 12, Ammo: &inventory.AmmoStats{Caliber: "9mm", Damage: 8}},
		{ID: "bandage", Name: "Bandage", Category: inventory.CategoryMedical, Durability: 1, Medical: &inventory.MedicalStats{HealsFor: 15}},
		{ID: "adrenaline", Name: "Adrenaline", Category: inventory.CategoryStimulant, Durability: 1, Stimulant: &inventory.StimulantStats{}},
	} {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(raiderYAML))
	require.NoError(t, err)
	assert.Equal(t, "Raider", tmpl.Name)
	assert.True(t, tmpl.Boss)
	assert.Equal(t, 30*time.Minute, tmpl.Respawn())
	assert.Equal(t, 2, tmpl.Drops.Rolls)
}

func TestLoadTemplateFromBytes_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"no damage":     "id: x\nname: X\nmax_health: 5\n",
		"bad bite":      "id: x\nname: X\nmax_health: 5\ndamage: 3\nbite_chance: 2\n",
		"bad respawn":   "id: x\nname: X\nmax_health: 5\ndamage: 3\nrespawn_delay: soon\n",
		"unknown field": "id: x\nname: X\nmax_health: 5\ndamage: 3\nmana: 4\n",
	} {
		_, err := npc.LoadTemplateFromBytes([]byte(body))
		assert.Error(t, err, name)
	}
}

func TestLoadTemplates_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raider.yaml"), []byte(raiderYAML), 0o644))
	tmpls, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, tmpls, 1)
}

func TestNewManager_ChecksRefs(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(raiderYAML))
	require.NoError(t, err)
	m, err := npc.NewManager([]*npc.Template{tmpl}, registry(t))
	require.NoError(t, err)
	got, ok := m.Get("raider")
	require.True(t, ok)
	assert.Same(t, tmpl, got)

	_, err = npc.NewManager([]*npc.Template{tmpl, tmpl}, registry(t))
	assert.Error(t, err)

	broken := *tmpl
	broken.Weapon = "bandage"
	_, err = npc.NewManager([]*npc.Template{&broken}, registry(t))
	assert.Error(t, err)
}

func TestNewActor_CopiesLoadout(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(raiderYAML))
	require.NoError(t, err)
	a := npc.NewActor("raider#1", tmpl, registry(t), combat.SideB)
	assert.Equal(t, combat.KindNPC, a.Kind)
	assert.Equal(t, 60, a.Health)
	require.NotNil(t, a.Weapon)
	assert.Equal(t, "pistol", a.Weapon.ID)
	require.NotNil(t, a.Armor)
	assert.Equal(t, 2.0, a.Armor.Level)
	assert.Nil(t, a.Helmet)
	assert.Len(t, a.HealPool, 1)
	assert.Len(t, a.StimPool, 1)
	assert.True(t, a.IsLive())
}
