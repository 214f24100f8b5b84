package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/wasteland/internal/game/condition"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

const shotgunYAML = `
id: pump_shotgun
name: Pump Shotgun
category: weapon
weight: 3.5
durability: 40
speed: 30
weapon:
  class: ranged
  damage: 4
  accuracy: 55
  penetration: 1
  caliber: 12ga
`

const bandageYAML = `
id: bandage
name: Bandage
category: medical
weight: 0.2
durability: 1
speed: 60
medical:
  heals_for: 15
  cures: [burning, broken_arm]
`

func TestLoadItemFromBytes_Weapon(t *testing.T) {
	d, err := inventory.LoadItemFromBytes([]byte(shotgunYAML))
	require.NoError(t, err)
	assert.Equal(t, inventory.CategoryWeapon, d.Category)
	require.NotNil(t, d.Weapon)
	assert.True(t, d.Weapon.IsRanged())
	assert.Equal(t, "12ga", d.Weapon.Caliber)
}

func TestLoadItemFromBytes_RejectsUnknownField(t *testing.T) {
	_, err := inventory.LoadItemFromBytes([]byte(shotgunYAML + "colour: red\n"))
	assert.Error(t, err)
}

func TestLoadItemFromBytes_MedicalCures(t *testing.T) {
	d, err := inventory.LoadItemFromBytes([]byte(bandageYAML))
	require.NoError(t, err)
	assert.Equal(t, []condition.Affliction{condition.Burning, condition.BrokenArm}, d.Medical.CuredAfflictions())
}

func TestItemDef_Validate(t *testing.T) {
	cases := map[string]*inventory.ItemDef{
		"missing id":        {Name: "X", Category: inventory.CategoryJunk, Durability: 1},
		"bad category":      {ID: "x", Name: "X", Category: "gadget", Durability: 1},
		"zero durability":   {ID: "x", Name: "X", Category: inventory.CategoryJunk},
		"weapon no block":   {ID: "x", Name: "X", Category: inventory.CategoryWeapon, Durability: 1},
		"ranged no caliber": {ID: "x", Name: "X", Category: inventory.CategoryWeapon, Durability: 1, Weapon: &inventory.WeaponStats{Class: inventory.ClassRanged}},
		"armor zero level":  {ID: "x", Name: "X", Category: inventory.CategoryArmor, Durability: 1, Protection: &inventory.Protection{}},
		"unknown cure":      {ID: "x", Name: "X", Category: inventory.CategoryMedical, Durability: 1, Medical: &inventory.MedicalStats{Cures: []string{"plague"}}},
	}
	for name, d := range cases {
		assert.Error(t, d.Validate(), name)
	}
	ok := &inventory.ItemDef{ID: "vest", Name: "Vest", Category: inventory.CategoryArmor, Durability: 10, Protection: &inventory.Protection{Level: 3}}
	assert.NoError(t, ok.Validate())
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shotgun.yaml"), []byte(shotgunYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bandage.yml"), []byte(bandageYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	reg, err := inventory.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	all := reg.All()
	assert.Equal(t, "bandage", all[0].ID)
	assert.Equal(t, "pump_shotgun", all[1].ID)
}

func TestLoadDirectory_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(bandageYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(bandageYAML), 0o644))
	_, err := inventory.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestWeaponStats_Incendiary(t *testing.T) {
	assert.True(t, (&inventory.WeaponStats{Class: inventory.ClassThrowable, Subtype: "molotov"}).Incendiary())
	assert.False(t, (&inventory.WeaponStats{Class: inventory.ClassMelee, Subtype: "machete"}).Incendiary())
}

func TestProfile_CombinesAmmo(t *testing.T) {
	w := &inventory.WeaponStats{Class: inventory.ClassRanged, Damage: 4, Accuracy: 55, Penetration: 1, Caliber: "12ga"}
	buck := &inventory.AmmoStats{Caliber: "12ga", Damage: 36, Accuracy: 5, Penetration: 1.5, Spread: 3}
	p := inventory.Profile(w, buck)
	assert.Equal(t, inventory.AttackProfile{Damage: 40, Accuracy: 60, Penetration: 1.5, Spread: 3}, p)

	assert.Equal(t, 1.0, inventory.Profile(w, nil).Penetration)
	assert.True(t, w.Accepts(buck))
	assert.False(t, w.Accepts(&inventory.AmmoStats{Caliber: "9mm"}))
}
