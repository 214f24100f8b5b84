package combat

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultMaxTurns is the turn cap after which a duel ends in a tie.
const DefaultMaxTurns = 20

// ErrLeaseHeld is returned when a scope already hosts an active duel.
var ErrLeaseHeld = errors.New("scope already has an active duel")

// Mode is the kind of encounter a duel represents.
type Mode string

const (
	ModeHunt Mode = "hunt"
	ModeBoss Mode = "boss"
	ModePvP  Mode = "pvp"
)

// Phase is the turn state machine position.
type Phase int

const (
	PhaseAwaitingChoices Phase = iota
	PhaseOrdering
	PhaseExecuting
	PhaseNextTurn
	PhaseEnded
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseAwaitingChoices:
		return "awaiting_choices"
	case PhaseOrdering:
		return "ordering"
	case PhaseExecuting:
		return "executing"
	case PhaseNextTurn:
		return "next_turn"
	default:
		return "ended"
	}
}

// EndReason explains why a duel ended.
type EndReason string

const (
	// EndVictory means one side has no live actors and at least one of them died.
	EndVictory EndReason = "victory"
	// EndEscape means every actor of one side fled.
	EndEscape EndReason = "escape"
	// EndTie means the turn cap was reached.
	EndTie EndReason = "tie"
	// EndAbort means an unexpected failure stopped the duel.
	EndAbort EndReason = "abort"
)

// Outcome is the terminal result of a duel. Winner is SideNone for ties,
// aborts, and escapes.
type Outcome struct {
	Reason EndReason
	Winner Side
}

// Duel holds the live state of one combat session. It is owned by a single
// orchestrating goroutine and is not safe for concurrent mutation.
type Duel struct {
	ID         string
	Scope      string
	Mode       Mode
	LocationID string
	Actors     []*Actor
	Turn       int
	MaxTurns   int
	Phase      Phase
	Outcome    Outcome
	Active     bool
}

// NewDuel creates an active duel on turn 1.
//
// Precondition: actors holds at least one actor on each side; maxTurns >= 1.
// Postcondition: Turn == 1, Phase == PhaseAwaitingChoices, Active is true.
func NewDuel(id, scope string, mode Mode, locationID string, actors []*Actor, maxTurns int) *Duel {
	if maxTurns < 1 {
		maxTurns = DefaultMaxTurns
	}
	return &Duel{
		ID:         id,
		Scope:      scope,
		Mode:       mode,
		LocationID: locationID,
		Actors:     actors,
		Turn:       1,
		MaxTurns:   maxTurns,
		Phase:      PhaseAwaitingChoices,
		Active:     true,
	}
}

// Actor returns the actor with the given ID, or nil.
func (d *Duel) Actor(id string) *Actor {
	for _, a := range d.Actors {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Live returns the live actors in duel order.
func (d *Duel) Live() []*Actor {
	var out []*Actor
	for _, a := range d.Actors {
		if a.IsLive() {
			out = append(out, a)
		}
	}
	return out
}

// LiveOn returns the live actors of one side.
func (d *Duel) LiveOn(s Side) []*Actor {
	var out []*Actor
	for _, a := range d.Actors {
		if a.Side == s && a.IsLive() {
			out = append(out, a)
		}
	}
	return out
}

// Opponents returns the live actors opposing a.
func (d *Duel) Opponents(a *Actor) []*Actor {
	return d.LiveOn(a.Side.Opposing())
}

// Players returns every player actor regardless of state.
func (d *Duel) Players() []*Actor {
	var out []*Actor
	for _, a := range d.Actors {
		if a.IsPlayer() {
			out = append(out, a)
		}
	}
	return out
}

// Decided reports whether one side has been eliminated and, if so, the outcome.
func (d *Duel) Decided() (Outcome, bool) {
	for _, s := range []Side{SideA, SideB} {
		if len(d.LiveOn(s)) > 0 {
			continue
		}
		if d.allFled(s) {
			return Outcome{Reason: EndEscape}, true
		}
		return Outcome{Reason: EndVictory, Winner: s.Opposing()}, true
	}
	return Outcome{}, false
}

func (d *Duel) allFled(s Side) bool {
	for _, a := range d.Actors {
		if a.Side == s && !a.Fled {
			return false
		}
	}
	return true
}

// NextTurn advances the turn counter.
//
// Postcondition: Returns false without changing Turn when Turn >= MaxTurns;
// Turn never exceeds MaxTurns.
func (d *Duel) NextTurn() bool {
	d.Phase = PhaseNextTurn
	if d.Turn >= d.MaxTurns {
		return false
	}
	d.Turn++
	return true
}

// End marks the duel finished with outcome o.
//
// Postcondition: Active is false and Phase is PhaseEnded.
func (d *Duel) End(o Outcome) {
	d.Active = false
	d.Phase = PhaseEnded
	d.Outcome = o
}

// Engine is the process-wide registry of active duels keyed by exclusivity
// scope (for example a chat channel). All methods are safe for concurrent use.
type Engine struct {
	mu    sync.RWMutex
	duels map[string]*Duel
}

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{duels: make(map[string]*Duel)}
}

// Acquire takes the lease on d.Scope for d.
//
// Precondition: d.Scope is non-empty.
// Postcondition: Returns ErrLeaseHeld if another duel holds the scope.
func (e *Engine) Acquire(d *Duel) error {
	if d.Scope == "" {
		return fmt.Errorf("acquire: empty scope for duel %q", d.ID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, held := e.duels[d.Scope]; held {
		return fmt.Errorf("acquire %q: %w", d.Scope, ErrLeaseHeld)
	}
	e.duels[d.Scope] = d
	return nil
}

// Release frees scope if it is held by duelID.
//
// Postcondition: Returns true iff the lease was held by duelID and is now free.
func (e *Engine) Release(scope, duelID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.duels[scope]
	if !ok || d.ID != duelID {
		return false
	}
	delete(e.duels, scope)
	return true
}

// IsHeld reports whether scope has an active duel.
func (e *Engine) IsHeld(scope string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.duels[scope]
	return ok
}

// Get returns the duel holding scope.
func (e *Engine) Get(scope string) (*Duel, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.duels[scope]
	return d, ok
}

// Len returns the number of held scopes.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.duels)
}
