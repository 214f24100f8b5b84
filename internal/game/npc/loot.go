package npc

import (
	"fmt"

	"github.com/cory-johannsen/wasteland/internal/game/dice"
)

// Rarity is the band a drop was rolled from.
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
)

// Band upper bounds: common [0, 0.60), uncommon [0.60, 0.85), rare [0.85, 1.0].
const (
	commonCeiling   = 0.60
	uncommonCeiling = 0.85
)

// DropTable is an NPC's bucketed list of possible loot by rarity tier.
type DropTable struct {
	// Rolls is how many independent drops are rolled when the NPC dies.
	Rolls    int      `yaml:"rolls"`
	Common   []string `yaml:"common"`
	Uncommon []string `yaml:"uncommon"`
	Rare     []string `yaml:"rare"`
}

// Validate checks that the drop table satisfies its invariants.
//
// Postcondition: Returns nil iff Rolls >= 0 and no bucket lists an empty item id.
func (dt *DropTable) Validate() error {
	if dt.Rolls < 0 {
		return fmt.Errorf("drop table: rolls must be >= 0, got %d", dt.Rolls)
	}
	for rarity, bucket := range map[Rarity][]string{RarityCommon: dt.Common, RarityUncommon: dt.Uncommon, RarityRare: dt.Rare} {
		for i, id := range bucket {
			if id == "" {
				return fmt.Errorf("drop table: %s[%d] must have a non-empty item id", rarity, i)
			}
		}
	}
	return nil
}

// ItemIDs returns every item id referenced by the table.
func (dt *DropTable) ItemIDs() []string {
	out := make([]string, 0, len(dt.Common)+len(dt.Uncommon)+len(dt.Rare))
	out = append(out, dt.Common...)
	out = append(out, dt.Uncommon...)
	return append(out, dt.Rare...)
}

func (dt *DropTable) bucket(r Rarity) []string {
	switch r {
	case RarityUncommon:
		return dt.Uncommon
	case RarityRare:
		return dt.Rare
	default:
		return dt.Common
	}
}

// Drop is one rolled item with the band it came from.
type Drop struct {
	ItemID string
	Rarity Rarity
}

// RarityFor maps a uniform draw onto a rarity band.
func RarityFor(draw float64) Rarity {
	switch {
	case draw < commonCeiling:
		return RarityCommon
	case draw < uncommonCeiling:
		return RarityUncommon
	default:
		return RarityRare
	}
}

// GetMobDrop rolls a rarity band and then a uniformly random item from that
// band's bucket.
//
// Precondition: src is non-nil.
// Postcondition: ok is false when the rolled bucket is empty.
func GetMobDrop(dt *DropTable, src dice.Source) (Drop, bool) {
	if dt == nil {
		return Drop{}, false
	}
	r := RarityFor(src.Float64())
	bucket := dt.bucket(r)
	if len(bucket) == 0 {
		return Drop{}, false
	}
	return Drop{ItemID: bucket[src.Intn(len(bucket))], Rarity: r}, true
}

// RollDrops calls GetMobDrop Rolls times; each roll is independent and may
// repeat an item.
//
// Postcondition: len(result) <= dt.Rolls.
func RollDrops(dt *DropTable, src dice.Source) []Drop {
	if dt == nil {
		return nil
	}
	var out []Drop
	for i := 0; i < dt.Rolls; i++ {
		if d, ok := GetMobDrop(dt, src); ok {
			out = append(out, d)
		}
	}
	return out
}
