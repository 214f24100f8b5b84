package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validLocationYAML = `
location:
  id: rust_yard
  name: "Rust Yard"
  description: |
    Stacked car hulks and the smell of oil.
  level: 1
  npcs: [scavenger, feral_dog]
  boss: yard_king
  script_dir: scripts/rust_yard
`

func TestLoadLocationFromBytes_Valid(t *testing.T) {
	loc, err := LoadLocationFromBytes([]byte(validLocationYAML))
	require.NoError(t, err)

	assert.Equal(t, "rust_yard", loc.ID)
	assert.Equal(t, "Rust Yard", loc.Name)
	assert.Equal(t, "Stacked car hulks and the smell of oil.", loc.Description)
	assert.Equal(t, 1, loc.Level)
	assert.Equal(t, []string{"scavenger", "feral_dog"}, loc.NPCs)
	assert.Equal(t, "yard_king", loc.Boss)
	assert.True(t, loc.HasBoss())
}

func TestLoadLocationFromBytes_UnknownField(t *testing.T) {
	_, err := LoadLocationFromBytes([]byte(`
location:
  id: x
  name: X
  npcs: [a]
  rooms: []
`))
	assert.Error(t, err)
}

func TestLoadLocationFromBytes_Invalid(t *testing.T) {
	_, err := LoadLocationFromBytes([]byte(`
location:
  id: empty
  name: Empty
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs at least one npc or a boss")
}

func TestLoadLocationsFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rust_yard.yaml"), []byte(validLocationYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	locs, err := LoadLocationsFromDir(dir)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "rust_yard", locs[0].ID)
}

func TestLoadLocationsFromDir_Empty(t *testing.T) {
	_, err := LoadLocationsFromDir(t.TempDir())
	assert.Error(t, err)
}
