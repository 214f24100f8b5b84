// Package npc provides NPC template definitions, their conversion into duel
// actors, and loot generation from their drop tables.
package npc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Template defines a reusable NPC archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	MaxHealth   int    `yaml:"max_health"`
	// Damage and Penetration are used when the NPC carries no weapon.
	Damage      float64 `yaml:"damage"`
	Penetration float64 `yaml:"penetration"`
	Weapon      string  `yaml:"weapon"`
	Ammo        string  `yaml:"ammo"`
	Armor       float64 `yaml:"armor"`
	Helmet      float64 `yaml:"helmet"`
	Boss        bool    `yaml:"boss"`
	XP          int     `yaml:"xp"`
	// BiteChance is the probability a landed hit inflicts Bitten.
	BiteChance float64  `yaml:"bite_chance"`
	Heals      []string `yaml:"heals"`
	Stimulants []string `yaml:"stimulants"`
	// AIHook names an optional Lua function consulted before the default policy.
	AIHook string `yaml:"ai_hook"`
	// RespawnDelay is the duration string (e.g. "30m") before a boss of this
	// template can be fought again. Empty means no cooldown.
	RespawnDelay string     `yaml:"respawn_delay"`
	Drops        *DropTable `yaml:"drops"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff all fields are valid; returns an error on the
// first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.MaxHealth < 1 {
		return fmt.Errorf("npc template %q: max_health must be >= 1", t.ID)
	}
	if t.Damage < 0 || t.Penetration < 0 {
		return fmt.Errorf("npc template %q: damage and penetration must be >= 0", t.ID)
	}
	if t.Weapon == "" && t.Damage == 0 {
		return fmt.Errorf("npc template %q: needs a weapon or a base damage", t.ID)
	}
	if t.Armor < 0 || t.Helmet < 0 {
		return fmt.Errorf("npc template %q: armor and helmet must be >= 0", t.ID)
	}
	if t.XP < 0 {
		return fmt.Errorf("npc template %q: xp must be >= 0", t.ID)
	}
	if t.BiteChance < 0 || t.BiteChance > 1 {
		return fmt.Errorf("npc template %q: bite_chance must be in [0, 1], got %v", t.ID, t.BiteChance)
	}
	if t.RespawnDelay != "" {
		if _, err := time.ParseDuration(t.RespawnDelay); err != nil {
			return fmt.Errorf("npc template %q: respawn_delay %q is not a valid duration: %w", t.ID, t.RespawnDelay, err)
		}
	}
	if t.Drops != nil {
		if err := t.Drops.Validate(); err != nil {
			return fmt.Errorf("npc template %q: %w", t.ID, err)
		}
	}
	return nil
}

// Respawn returns the parsed RespawnDelay, or zero when unset.
//
// Precondition: t passed Validate.
func (t *Template) Respawn() time.Duration {
	if t.RespawnDelay == "" {
		return 0
	}
	d, _ := time.ParseDuration(t.RespawnDelay)
	return d
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
// Unknown keys are rejected.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
