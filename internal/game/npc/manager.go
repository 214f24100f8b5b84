package npc

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/wasteland/internal/game/inventory"
)

// Manager indexes loaded templates by ID. It is read-only after construction
// and safe for concurrent readers.
type Manager struct {
	templates map[string]*Template
}

// NewManager indexes templates and checks their item references against reg.
//
// Postcondition: Returns an error on duplicate IDs or unresolved references.
func NewManager(templates []*Template, reg *inventory.Registry) (*Manager, error) {
	m := &Manager{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := m.templates[t.ID]; dup {
			return nil, fmt.Errorf("npc.NewManager: duplicate template %q", t.ID)
		}
		if err := t.ValidateRefs(reg); err != nil {
			return nil, err
		}
		m.templates[t.ID] = t
	}
	return m, nil
}

// Get returns the template for id.
func (m *Manager) Get(id string) (*Template, bool) {
	t, ok := m.templates[id]
	return t, ok
}

// All returns every template sorted by ID.
func (m *Manager) All() []*Template {
	out := make([]*Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of templates.
func (m *Manager) Len() int {
	return len(m.templates)
}

// Has reports whether a template with id is loaded.
func (m *Manager) Has(id string) bool {
	_, ok := m.templates[id]
	return ok
}
