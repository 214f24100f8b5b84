package inventory

import (
	"sort"
	"time"
)

// Item is one persisted inventory row owned by a player.
type Item struct {
	ID         string
	OwnerID    string
	DefID      string
	Durability int
	CreatedAt  time.Time
}

// Find returns the row with the given id from items.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Owned pairs a row with its definition.
type Owned struct {
	Item Item
	Def  *ItemDef
}

// Resolve joins rows to their definitions, dropping rows whose definition is
// no longer registered. The result is ordered by definition name, then row ID.
func Resolve(items []Item, reg *Registry) []Owned {
	out := make([]Owned, 0, len(items))
	for _, it := range items {
		def, ok := reg.Item(it.DefID)
		if !ok {
			continue
		}
		out = append(out, Owned{Item: it, Def: def})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Def.Name != out[j].Def.Name {
			return out[i].Def.Name < out[j].Def.Name
		}
		return out[i].Item.ID < out[j].Item.ID
	})
	return out
}

// OfCategory filters owned items to one category.
func OfCategory(owned []Owned, c Category) []Owned {
	var out []Owned
	for _, o := range owned {
		if o.Def.Category == c {
			out = append(out, o)
		}
	}
	return out
}

// BestProtection returns the highest-rated armor or helmet among owned items.
//
// Precondition: c is CategoryArmor or CategoryHelmet.
// Postcondition: Returns nil when no item of category c is owned.
func BestProtection(owned []Owned, c Category) *Protection {
	var best *Protection
	for _, o := range OfCategory(owned, c) {
		if o.Def.Protection == nil {
			continue
		}
		if best == nil || o.Def.Protection.Level > best.Level {
			best = o.Def.Protection
		}
	}
	return best
}

// CompatibleAmmo returns the owned ammo that weapon accepts.
func CompatibleAmmo(owned []Owned, weapon *WeaponStats) []Owned {
	var out []Owned
	for _, o := range OfCategory(owned, CategoryAmmo) {
		if weapon.Accepts(o.Def.Ammo) {
			out = append(out, o)
		}
	}
	return out
}
