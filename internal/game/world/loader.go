package world

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlLocationFile is the top-level YAML structure for location files.
type yamlLocationFile struct {
	Location yamlLocation `yaml:"location"`
}

type yamlLocation struct {
	ID                     string   `yaml:"id"`
	Name                   string   `yaml:"name"`
	Description            string   `yaml:"description"`
	Level                  int      `yaml:"level"`
	NPCs                   []string `yaml:"npcs"`
	Boss                   string   `yaml:"boss"`
	ScriptDir              string   `yaml:"script_dir"`
	ScriptInstructionLimit int      `yaml:"script_instruction_limit"`
}

// LoadLocationFromFile reads and validates a single location YAML file.
//
// Precondition: path must point to a valid YAML location file.
// Postcondition: Returns a validated Location or a non-nil error.
func LoadLocationFromFile(path string) (*Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading location file %s: %w", path, err)
	}
	return LoadLocationFromBytes(data)
}

// LoadLocationFromBytes parses and validates a location from YAML bytes.
// Unknown keys are rejected.
//
// Postcondition: Returns a validated Location or a non-nil error.
func LoadLocationFromBytes(data []byte) (*Location, error) {
	var file yamlLocationFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing location YAML: %w", err)
	}
	yl := file.Location
	loc := &Location{
		ID:                     yl.ID,
		Name:                   yl.Name,
		Description:            strings.TrimSpace(yl.Description),
		Level:                  yl.Level,
		NPCs:                   yl.NPCs,
		Boss:                   yl.Boss,
		ScriptDir:              yl.ScriptDir,
		ScriptInstructionLimit: yl.ScriptInstructionLimit,
	}
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("validating location: %w", err)
	}
	return loc, nil
}

// LoadLocationsFromDir loads all YAML files in a directory as locations.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated locations or the first error encountered.
func LoadLocationsFromDir(dir string) ([]*Location, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading location directory %s: %w", dir, err)
	}

	var locs []*Location
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		loc, err := LoadLocationFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading location from %s: %w", name, err)
		}
		locs = append(locs, loc)
	}

	if len(locs) == 0 {
		return nil, fmt.Errorf("no location files found in %s", dir)
	}
	return locs, nil
}
