// Package memory provides an in-process storage.Store. Every transaction works
// on a copy of the data that replaces the committed state when fn succeeds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

type cooldownKey struct{ subject, name string }

type questKey struct{ player, quest, objective string }

type state struct {
	players   map[string]character.Player
	items     map[string]inventory.Item
	cooldowns map[cooldownKey]time.Time
	quests    map[questKey]character.QuestProgress
	seq       int64
}

func (s *state) clone() *state {
	c := &state{
		players:   make(map[string]character.Player, len(s.players)),
		items:     make(map[string]inventory.Item, len(s.items)),
		cooldowns: make(map[cooldownKey]time.Time, len(s.cooldowns)),
		quests:    make(map[questKey]character.QuestProgress, len(s.quests)),
		seq:       s.seq,
	}
	for k, v := range s.players {
		c.players[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.cooldowns {
		c.cooldowns[k] = v
	}
	for k, v := range s.quests {
		c.quests[k] = v
	}
	return c
}

// Store is a storage.Store held in memory. Transactions are serialized.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		state: &state{
			players:   make(map[string]character.Player),
			items:     make(map[string]inventory.Item),
			cooldowns: make(map[cooldownKey]time.Time),
			quests:    make(map[questKey]character.QuestProgress),
		},
		now: time.Now,
	}
}

// WithinTx runs fn against a private copy and commits it when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) CreatePlayer(_ context.Context, p *character.Player) error {
	if cur, ok := t.st.players[p.ID]; ok {
		cur.Name = p.Name
		cur.Location = p.Location
		t.st.players[p.ID] = cur
		return nil
	}
	cp := *p
	cp.InDuel, cp.Kills, cp.Deaths, cp.XP = false, 0, 0, 0
	t.st.players[p.ID] = cp
	return nil
}

func (t *tx) Player(_ context.Context, id string) (*character.Player, error) {
	p, ok := t.st.players[id]
	if !ok {
		return nil, storage.ErrPlayerNotFound
	}
	return &p, nil
}

func (t *tx) update(id string, fn func(p *character.Player)) error {
	p, ok := t.st.players[id]
	if !ok {
		return storage.ErrPlayerNotFound
	}
	fn(&p)
	t.st.players[id] = p
	return nil
}

func (t *tx) SetHealth(_ context.Context, id string, health int) error {
	return t.update(id, func(p *character.Player) { p.Health = max(0, min(health, p.MaxHealth)) })
}

func (t *tx) SetInDuel(_ context.Context, id string, inDuel bool) error {
	return t.update(id, func(p *character.Player) { p.InDuel = inDuel })
}

func (t *tx) AddKill(_ context.Context, id string) error {
	return t.update(id, func(p *character.Player) { p.Kills++ })
}

func (t *tx) AddDeath(_ context.Context, id string) error {
	return t.update(id, func(p *character.Player) { p.Deaths++ })
}

func (t *tx) AddXP(_ context.Context, id string, xp int) error {
	return t.update(id, func(p *character.Player) { p.XP += xp })
}

func (t *tx) SetLocationLevel(_ context.Context, id string, level int) error {
	return t.update(id, func(p *character.Player) { p.LocationLevel = level })
}

func (t *tx) Items(_ context.Context, ownerID string) ([]inventory.Item, error) {
	out := make([]inventory.Item, 0)
	for _, it := range t.st.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *tx) Item(_ context.Context, itemID string) (*inventory.Item, error) {
	it, ok := t.st.items[itemID]
	if !ok {
		return nil, storage.ErrItemNotFound
	}
	return &it, nil
}

func (t *tx) CreateItem(_ context.Context, ownerID string, def *inventory.ItemDef) (*inventory.Item, error) {
	t.st.seq++
	it := inventory.Item{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		DefID:      def.ID,
		Durability: def.Durability,
		// seq keeps creation order stable for rows created within one clock tick
		CreatedAt: t.now().Add(time.Duration(t.st.seq)),
	}
	t.st.items[it.ID] = it
	return &it, nil
}

func (t *tx) DeleteItem(_ context.Context, itemID string) error {
	if _, ok := t.st.items[itemID]; !ok {
		return storage.ErrItemNotFound
	}
	delete(t.st.items, itemID)
	return nil
}

func (t *tx) DeleteItems(_ context.Context, ownerID string) error {
	for id, it := range t.st.items {
		if it.OwnerID == ownerID {
			delete(t.st.items, id)
		}
	}
	return nil
}

func (t *tx) LowerDurability(_ context.Context, itemID string, by int) (int, error) {
	it, ok := t.st.items[itemID]
	if !ok {
		return 0, storage.ErrItemNotFound
	}
	it.Durability -= by
	if it.Durability <= 0 {
		delete(t.st.items, itemID)
	} else {
		t.st.items[itemID] = it
	}
	return it.Durability, nil
}

func (t *tx) Cooldown(_ context.Context, subject, key string) (time.Time, bool, error) {
	until, ok := t.st.cooldowns[cooldownKey{subject, key}]
	return until, ok, nil
}

func (t *tx) SetCooldown(_ context.Context, subject, key string, until time.Time) error {
	t.st.cooldowns[cooldownKey{subject, key}] = until
	return nil
}

func (t *tx) ClearCooldown(_ context.Context, subject, key string) error {
	delete(t.st.cooldowns, cooldownKey{subject, key})
	return nil
}

func (t *tx) StartQuest(_ context.Context, playerID string, q character.QuestProgress) error {
	t.st.quests[questKey{playerID, q.QuestID, q.Objective}] = q
	return nil
}

func (t *tx) Quests(_ context.Context, playerID string) ([]character.QuestProgress, error) {
	out := make([]character.QuestProgress, 0)
	for k, q := range t.st.quests {
		if k.player == playerID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuestID != out[j].QuestID {
			return out[i].QuestID < out[j].QuestID
		}
		return out[i].Objective < out[j].Objective
	})
	return out, nil
}

func (t *tx) AdvanceQuest(_ context.Context, playerID, objective string, n int) error {
	for k, q := range t.st.quests {
		if k.player == playerID && q.Objective == objective && !q.Complete() {
			q.Progress = min(q.Required, q.Progress+n)
			t.st.quests[k] = q
		}
	}
	return nil
}
