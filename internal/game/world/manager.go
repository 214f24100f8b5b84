package world

import (
	"fmt"
	"sort"
	"sync"
)

// TemplateLookup resolves NPC template IDs.
type TemplateLookup interface {
	Has(id string) bool
}

// Manager provides thread-safe access to the loaded locations.
type Manager struct {
	mu        sync.RWMutex
	locations map[string]*Location
}

// NewManager creates a Manager from the given locations.
//
// Postcondition: Returns a Manager indexing every location by ID, or an error
// on duplicate IDs.
func NewManager(locs []*Location) (*Manager, error) {
	m := &Manager{locations: make(map[string]*Location, len(locs))}
	for _, l := range locs {
		if _, exists := m.locations[l.ID]; exists {
			return nil, fmt.Errorf("duplicate location ID: %q", l.ID)
		}
		m.locations[l.ID] = l
	}
	return m, nil
}

// ValidateNPCs checks that every NPC and boss reference resolves through
// templates. Call this after the NPC templates are loaded.
//
// Postcondition: Returns nil if all references resolve, or an error naming
// the first dangling one.
func (m *Manager) ValidateNPCs(templates TemplateLookup) error {
	for _, l := range m.All() {
		for _, id := range l.NPCs {
			if !templates.Has(id) {
				return fmt.Errorf("location %q: unknown npc %q", l.ID, id)
			}
		}
		if l.Boss != "" && !templates.Has(l.Boss) {
			return fmt.Errorf("location %q: unknown boss %q", l.ID, l.Boss)
		}
	}
	return nil
}

// Location returns the location with the given ID.
//
// Postcondition: Returns (location, true) if found, or (nil, false) otherwise.
func (m *Manager) Location(id string) (*Location, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.locations[id]
	return l, ok
}

// All returns every location ordered by level, then ID.
func (m *Manager) All() []*Location {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Location, 0, len(m.locations))
	for _, l := range m.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// LocationCount returns the number of loaded locations.
func (m *Manager) LocationCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.locations)
}
