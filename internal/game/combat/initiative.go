package combat

import (
	"sort"

	"github.com/cory-johannsen/wasteland/internal/game/dice"
)

// Entry pairs an actor with the choice it submitted this turn. A nil Choice
// means the actor took no action.
type Entry struct {
	Actor  *Actor
	Choice Choice
}

// Speed returns the entry's ordering speed; entries without a choice sort as 0.
func (e Entry) Speed() int {
	if e.Choice == nil {
		return 0
	}
	return e.Choice.Speed()
}

// Order returns entries sorted by speed descending. Every entry receives a
// fresh tiebreak draw from src, so equal speeds are reshuffled each turn.
//
// Precondition: src is non-nil.
// Postcondition: len(result) == len(entries); entries is not modified.
func Order(entries []Entry, src dice.Source) []Entry {
	type keyed struct {
		entry Entry
		tie   float64
	}
	ks := make([]keyed, len(entries))
	for i, e := range entries {
		ks[i] = keyed{entry: e, tie: src.Float64()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		si, sj := ks[i].entry.Speed(), ks[j].entry.Speed()
		if si != sj {
			return si > sj
		}
		return ks[i].tie > ks[j].tie
	})
	out := make([]Entry, len(ks))
	for i, k := range ks {
		out[i] = k.entry
	}
	return out
}
