package inventory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registry holds all loaded item definitions indexed by ID. It is read-only
// after loading and safe for concurrent readers.
type Registry struct {
	items map[string]*ItemDef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*ItemDef)}
}

// Register adds d to the registry.
//
// Precondition:  d must not be nil and must pass Validate.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) Register(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.Register: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Item returns the ItemDef for the given id and whether it was found.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// All returns every registered ItemDef sorted by ID.
func (r *Registry) All() []*ItemDef {
	out := make([]*ItemDef, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered items.
func (r *Registry) Len() int {
	return len(r.items)
}

// LoadItemFromBytes parses and validates a single ItemDef. Unknown keys are
// rejected.
//
// Postcondition: Returns a validated *ItemDef, or an error.
func LoadItemFromBytes(data []byte) (*ItemDef, error) {
	var d ItemDef
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parsing item YAML: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDirectory reads every *.yaml and *.yml file in dir and returns a
// populated Registry.
//
// Precondition: dir is a readable directory path.
// Postcondition: Returns a Registry of all items or the first encountered error.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("inventory: cannot read directory %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("inventory: cannot read file %q: %w", path, err)
		}
		d, err := LoadItemFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("inventory: %q: %w", path, err)
		}
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
