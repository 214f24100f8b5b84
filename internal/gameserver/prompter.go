package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Dialogue steps of a player's turn.
const (
	StepAction = "action"
	StepWeapon = "weapon"
	StepAmmo   = "ammo"
	StepLimb   = "limb"
	StepTarget = "target"
	StepItem   = "item"
)

// limbAny is the limb option that leaves the hit location to chance.
const limbAny = "any"

// ErrNoPendingPrompt is returned when answering a player who has no open prompt.
var ErrNoPendingPrompt = errors.New("no pending prompt")

// ErrUnknownOption is returned when an answer matches none of the prompt's options.
var ErrUnknownOption = errors.New("unknown option")

// ErrPromptPending is returned when a player is prompted while another prompt
// for them is still open.
var ErrPromptPending = errors.New("prompt already pending")

// Option is one selectable answer of a Prompt.
type Option struct {
	ID    string
	Label string
}

// Prompt is one step of the private choice dialogue shown to a single player.
type Prompt struct {
	DuelID   string
	PlayerID string
	Turn     int
	Step     string
	Text     string
	Options  []Option
}

// Has reports whether id is one of the prompt's options.
func (p Prompt) Has(id string) bool {
	for _, o := range p.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Selection is a player's answer to a Prompt.
type Selection struct {
	OptionID string
}

// Prompter delivers one dialogue step to a player and waits for the answer.
type Prompter interface {
	// Prompt blocks until the player answers or ctx is done.
	//
	// Postcondition: Returns ctx.Err() when the deadline passes first.
	Prompt(ctx context.Context, p Prompt) (Selection, error)
}

type pendingPrompt struct {
	prompt Prompt
	reply  chan Selection
}

// QueuePrompter is a Prompter fed by an external chat layer: notify announces
// each prompt and Answer delivers the player's pick. Each prompt accepts
// exactly one answer.
type QueuePrompter struct {
	mu      sync.Mutex
	pending map[string]*pendingPrompt
	notify  func(Prompt)
}

// NewQueuePrompter creates a QueuePrompter. notify may be nil when the chat
// layer polls Pending instead.
func NewQueuePrompter(notify func(Prompt)) *QueuePrompter {
	return &QueuePrompter{
		pending: make(map[string]*pendingPrompt),
		notify:  notify,
	}
}

// Prompt publishes p and waits for Answer.
//
// Precondition: p.PlayerID is non-empty.
// Postcondition: The prompt is no longer pending when Prompt returns.
func (q *QueuePrompter) Prompt(ctx context.Context, p Prompt) (Selection, error) {
	pp := &pendingPrompt{prompt: p, reply: make(chan Selection, 1)}
	q.mu.Lock()
	if _, busy := q.pending[p.PlayerID]; busy {
		q.mu.Unlock()
		return Selection{}, fmt.Errorf("prompting %q: %w", p.PlayerID, ErrPromptPending)
	}
	q.pending[p.PlayerID] = pp
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		if q.pending[p.PlayerID] == pp {
			delete(q.pending, p.PlayerID)
		}
		q.mu.Unlock()
	}()

	if q.notify != nil {
		q.notify(p)
	}

	select {
	case s := <-pp.reply:
		return s, nil
	case <-ctx.Done():
		return Selection{}, ctx.Err()
	}
}

// Pending returns the open prompt of playerID, if any.
func (q *QueuePrompter) Pending(playerID string) (Prompt, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	pp, ok := q.pending[playerID]
	if !ok {
		return Prompt{}, false
	}
	return pp.prompt, true
}

// Answer delivers optionID to the open prompt of playerID.
//
// Postcondition: Returns ErrNoPendingPrompt or ErrUnknownOption without
// consuming the prompt when the answer cannot be accepted.
func (q *QueuePrompter) Answer(playerID, optionID string) error {
	q.mu.Lock()
	pp, ok := q.pending[playerID]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("answering %q: %w", playerID, ErrNoPendingPrompt)
	}
	if !pp.prompt.Has(optionID) {
		q.mu.Unlock()
		return fmt.Errorf("answering %q with %q: %w", playerID, optionID, ErrUnknownOption)
	}
	delete(q.pending, playerID)
	q.mu.Unlock()
	pp.reply <- Selection{OptionID: optionID}
	return nil
}
