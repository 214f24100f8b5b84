package gameserver

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/game/npc"
	"github.com/cory-johannsen/wasteland/internal/game/world"
)

// LoadContent reads the item, NPC and location YAML directories and checks
// every cross reference.
//
// Postcondition: Returns fully linked Content or the first error found.
func LoadContent(cfg config.ContentConfig) (Content, error) {
	items, err := inventory.LoadDirectory(cfg.ItemsDir)
	if err != nil {
		return Content{}, fmt.Errorf("loading items: %w", err)
	}
	templates, err := npc.LoadTemplates(cfg.NPCsDir)
	if err != nil {
		return Content{}, fmt.Errorf("loading npc templates: %w", err)
	}
	npcs, err := npc.NewManager(templates, items)
	if err != nil {
		return Content{}, fmt.Errorf("indexing npc templates: %w", err)
	}
	locs, err := world.LoadLocationsFromDir(cfg.LocationsDir)
	if err != nil {
		return Content{}, fmt.Errorf("loading locations: %w", err)
	}
	locations, err := world.NewManager(locs)
	if err != nil {
		return Content{}, fmt.Errorf("indexing locations: %w", err)
	}
	if err := locations.ValidateNPCs(npcs); err != nil {
		return Content{}, err
	}
	for _, l := range locations.All() {
		if l.HasBoss() {
			if t, _ := npcs.Get(l.Boss); !t.Boss {
				return Content{}, fmt.Errorf("location %q: template %q is not marked boss", l.ID, l.Boss)
			}
		}
	}
	return Content{Items: items, NPCs: npcs, Locations: locations}, nil
}

// ScriptLoader loads one location's Lua files into its own VM.
type ScriptLoader interface {
	LoadLocation(locationID, scriptDir string, instLimit int) error
}

// LoadScripts loads the AI hook scripts of every location that names a
// script_dir, resolved against root. Missing directories are skipped with a
// warning.
//
// Postcondition: Returns the number of locations loaded, or the first Lua load error.
func LoadScripts(loader ScriptLoader, locations *world.Manager, root string, logger *zap.Logger) (int, error) {
	loaded := 0
	for _, l := range locations.All() {
		if l.ScriptDir == "" {
			continue
		}
		dir := l.ScriptDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			logger.Warn("location script_dir not found, skipping",
				zap.String("location", l.ID),
				zap.String("dir", dir),
			)
			continue
		}
		if err := loader.LoadLocation(l.ID, dir, l.ScriptInstructionLimit); err != nil {
			return loaded, fmt.Errorf("loading scripts of %q: %w", l.ID, err)
		}
		loaded++
	}
	return loaded, nil
}
