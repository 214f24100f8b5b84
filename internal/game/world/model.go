// Package world provides the duel locations: hunting grounds ranked by level,
// each with a pool of NPCs and an optional boss.
package world

import (
	"errors"
	"fmt"
)

// Location is a place where players hunt NPCs and fight its boss.
type Location struct {
	ID          string
	Name        string
	Description string
	// Level is the progression rank a player needs to enter. Level 0 is open to everyone.
	Level int
	// NPCs lists the template IDs a solo hunt draws from.
	NPCs []string
	// Boss is the template ID of the location boss; empty when there is none.
	Boss string
	// ScriptDir holds the Lua files providing this location's AI hooks.
	ScriptDir              string
	ScriptInstructionLimit int
}

// Validate checks structural invariants of the location.
//
// Postcondition: Returns nil iff the location is usable; otherwise lists every violation.
func (l *Location) Validate() error {
	var errs []error
	if l.ID == "" {
		errs = append(errs, errors.New("location id must not be empty"))
	}
	if l.Name == "" {
		errs = append(errs, fmt.Errorf("location %q: name must not be empty", l.ID))
	}
	if l.Level < 0 {
		errs = append(errs, fmt.Errorf("location %q: level must be >= 0", l.ID))
	}
	if len(l.NPCs) == 0 && l.Boss == "" {
		errs = append(errs, fmt.Errorf("location %q: needs at least one npc or a boss", l.ID))
	}
	if l.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Errorf("location %q: script_instruction_limit must be >= 0", l.ID))
	}
	return errors.Join(errs...)
}

// Unlocked reports whether a player at progression level may enter.
func (l *Location) Unlocked(level int) bool {
	return level >= l.Level
}

// HasBoss reports whether the location has a boss fight.
func (l *Location) HasBoss() bool { return l.Boss != "" }

// Advances reports whether killing this location's boss moves a player at
// level to the next level.
func (l *Location) Advances(level int) bool {
	return l.HasBoss() && level == l.Level
}
