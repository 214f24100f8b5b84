package gameserver

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/ai"
	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/condition"
	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/game/npc"
	"github.com/cory-johannsen/wasteland/internal/game/world"
	"github.com/cory-johannsen/wasteland/internal/observability"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// Setup errors. They are returned before any duel state exists.
var (
	ErrAlreadyInDuel  = errors.New("already in a duel")
	ErrSelfInvite     = errors.New("cannot challenge yourself")
	ErrWrongLocation  = errors.New("not at the same location")
	ErrLocationLocked = errors.New("location is locked")
	ErrInventoryFull  = errors.New("inventory is full")
	ErrOnCooldown     = errors.New("still on cooldown")
	ErrScopeBusy      = errors.New("a duel is already running here")
	ErrNoEnemies      = errors.New("nothing to fight here")
)

// DuelHandler starts duels and runs their turn loop.
//
// Each duel is owned by the goroutine calling Run; only choice collection
// fans out. Cross-duel exclusivity is held through the combat.Engine lease on
// the duel's scope.
type DuelHandler struct {
	engine    *combat.Engine
	store     storage.Store
	content   Content
	policy    *ai.Policy
	collector *Collector
	resolver  *Resolver
	sink      Sink
	src       dice.Source
	cfg       config.DuelConfig
	now       func() time.Time
	logger    *zap.Logger
}

// NewDuelHandler wires a DuelHandler.
//
// Precondition: engine, store, prompter, sink, src and logger must be non-nil;
// scripts may be a nil interface to disable Lua AI hooks.
// Postcondition: Returns a non-nil DuelHandler.
func NewDuelHandler(
	engine *combat.Engine,
	store storage.Store,
	content Content,
	scripts ai.ScriptCaller,
	prompter Prompter,
	sink Sink,
	src dice.Source,
	cfg config.DuelConfig,
	logger *zap.Logger,
) *DuelHandler {
	return &DuelHandler{
		engine:    engine,
		store:     store,
		content:   content,
		policy:    ai.NewPolicy(src, scripts, cfg.MaxStimulants),
		collector: NewCollector(store, content.Items, prompter, cfg, logger),
		resolver:  NewResolver(store, content, src, cfg, logger),
		sink:      sink,
		src:       src,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// StartHunt opens a solo hunt of playerID against a random NPC of the
// player's location.
//
// Postcondition: On success the scope lease is held, the player is flagged
// in-duel, and the hunt cooldown is running.
func (h *DuelHandler) StartHunt(ctx context.Context, scope, playerID string) (*combat.Duel, error) {
	d, err := h.reserve(scope, combat.ModeHunt)
	if err != nil {
		return nil, err
	}
	err = h.store.WithinTx(ctx, func(tx storage.Tx) error {
		p, err := h.eligible(ctx, tx, playerID)
		if err != nil {
			return err
		}
		loc, err := h.locationOf(p)
		if err != nil {
			return err
		}
		if len(loc.NPCs) == 0 {
			return fmt.Errorf("hunting at %q: %w", loc.ID, ErrNoEnemies)
		}
		if err := h.checkCooldown(ctx, tx, p.ID, storage.CooldownHunt); err != nil {
			return err
		}
		if err := h.checkRoom(ctx, tx, p.ID); err != nil {
			return err
		}
		tmpl, err := h.template(loc.NPCs[dice.Pick(h.src, len(loc.NPCs))])
		if err != nil {
			return err
		}
		d.LocationID = loc.ID
		d.Actors = []*combat.Actor{
			playerActor(p, combat.SideA),
			npc.NewActor(uuid.NewString(), tmpl, h.content.Items, combat.SideB),
		}
		if err := tx.SetCooldown(ctx, p.ID, storage.CooldownHunt, h.now().Add(h.cfg.HuntCooldown)); err != nil {
			return err
		}
		return tx.SetInDuel(ctx, p.ID, true)
	})
	if err != nil {
		h.engine.Release(scope, d.ID)
		return nil, err
	}
	return d, nil
}

// StartBoss opens a boss fight of the party against the boss of the first
// member's location. Every member must stand at that location.
//
// Postcondition: On success the scope lease is held and every member is
// flagged in-duel.
func (h *DuelHandler) StartBoss(ctx context.Context, scope string, playerIDs []string) (*combat.Duel, error) {
	if len(playerIDs) == 0 {
		return nil, errors.New("boss fight needs at least one player")
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] {
			return nil, fmt.Errorf("party lists %q twice", id)
		}
		seen[id] = true
	}
	d, err := h.reserve(scope, combat.ModeBoss)
	if err != nil {
		return nil, err
	}
	err = h.store.WithinTx(ctx, func(tx storage.Tx) error {
		var loc *world.Location
		var party []*character.Player
		for _, id := range playerIDs {
			p, err := h.eligible(ctx, tx, id)
			if err != nil {
				return err
			}
			if loc != nil && p.Location != loc.ID {
				return fmt.Errorf("%q is at %q, not %q: %w", p.ID, p.Location, loc.ID, ErrWrongLocation)
			}
			l, err := h.locationOf(p)
			if err != nil {
				return err
			}
			if err := h.checkRoom(ctx, tx, p.ID); err != nil {
				return err
			}
			loc = l
			party = append(party, p)
		}
		if !loc.HasBoss() {
			return fmt.Errorf("%q has no boss: %w", loc.ID, ErrNoEnemies)
		}
		if err := h.checkCooldown(ctx, tx, loc.ID, storage.CooldownBoss); err != nil {
			return err
		}
		boss, err := h.template(loc.Boss)
		if err != nil {
			return err
		}
		d.LocationID = loc.ID
		for _, p := range party {
			d.Actors = append(d.Actors, playerActor(p, combat.SideA))
			if err := tx.SetInDuel(ctx, p.ID, true); err != nil {
				return err
			}
		}
		d.Actors = append(d.Actors, npc.NewActor(uuid.NewString(), boss, h.content.Items, combat.SideB))
		return nil
	})
	if err != nil {
		h.engine.Release(scope, d.ID)
		return nil, err
	}
	return d, nil
}

// StartPvP opens a duel between two players at the same location. Neither
// side can flee.
//
// Postcondition: On success the scope lease is held and both players are
// flagged in-duel.
func (h *DuelHandler) StartPvP(ctx context.Context, scope, challengerID, opponentID string) (*combat.Duel, error) {
	if challengerID == opponentID {
		return nil, fmt.Errorf("challenging %q: %w", challengerID, ErrSelfInvite)
	}
	d, err := h.reserve(scope, combat.ModePvP)
	if err != nil {
		return nil, err
	}
	err = h.store.WithinTx(ctx, func(tx storage.Tx) error {
		challenger, err := h.eligible(ctx, tx, challengerID)
		if err != nil {
			return err
		}
		opponent, err := h.eligible(ctx, tx, opponentID)
		if err != nil {
			return err
		}
		if challenger.Location != opponent.Location {
			return fmt.Errorf("%q is at %q, %q is at %q: %w",
				challenger.ID, challenger.Location, opponent.ID, opponent.Location, ErrWrongLocation)
		}
		d.LocationID = challenger.Location
		d.Actors = []*combat.Actor{
			playerActor(challenger, combat.SideA),
			playerActor(opponent, combat.SideB),
		}
		if err := tx.SetInDuel(ctx, challenger.ID, true); err != nil {
			return err
		}
		return tx.SetInDuel(ctx, opponent.ID, true)
	})
	if err != nil {
		h.engine.Release(scope, d.ID)
		return nil, err
	}
	return d, nil
}

// reserve takes the scope lease for a fresh duel.
func (h *DuelHandler) reserve(scope string, mode combat.Mode) (*combat.Duel, error) {
	d := combat.NewDuel(uuid.NewString(), scope, mode, "", nil, h.cfg.MaxTurns)
	if err := h.engine.Acquire(d); err != nil {
		if errors.Is(err, combat.ErrLeaseHeld) {
			return nil, fmt.Errorf("%w: %w", ErrScopeBusy, err)
		}
		return nil, err
	}
	return d, nil
}

func (h *DuelHandler) eligible(ctx context.Context, tx storage.Tx, playerID string) (*character.Player, error) {
	p, err := tx.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.InDuel {
		return nil, fmt.Errorf("%q: %w", playerID, ErrAlreadyInDuel)
	}
	return p, nil
}

func (h *DuelHandler) locationOf(p *character.Player) (*world.Location, error) {
	loc, ok := h.content.Locations.Location(p.Location)
	if !ok {
		return nil, fmt.Errorf("%q is at unknown location %q: %w", p.ID, p.Location, ErrWrongLocation)
	}
	if !loc.Unlocked(p.LocationLevel) {
		return nil, fmt.Errorf("%q needs level %d for %q: %w", p.ID, loc.Level, loc.ID, ErrLocationLocked)
	}
	return loc, nil
}

func (h *DuelHandler) checkCooldown(ctx context.Context, tx storage.Tx, subject, key string) error {
	until, ok, err := tx.Cooldown(ctx, subject, key)
	if err != nil {
		return err
	}
	if ok && h.now().Before(until) {
		return fmt.Errorf("%s cooldown of %q ends in %s: %w", key, subject, until.Sub(h.now()).Round(time.Second), ErrOnCooldown)
	}
	return nil
}

func (h *DuelHandler) checkRoom(ctx context.Context, tx storage.Tx, playerID string) error {
	items, err := tx.Items(ctx, playerID)
	if err != nil {
		return err
	}
	if !inventory.HasRoom(inventory.Resolve(items, h.content.Items), h.cfg.InventoryCapacity) {
		return fmt.Errorf("%q: %w", playerID, ErrInventoryFull)
	}
	return nil
}

func (h *DuelHandler) template(id string) (*npc.Template, error) {
	t, ok := h.content.NPCs.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown npc template %q", id)
	}
	return t, nil
}

func playerActor(p *character.Player, side combat.Side) *combat.Actor {
	return &combat.Actor{
		ID:          p.ID,
		Name:        p.Name,
		Kind:        combat.KindPlayer,
		Side:        side,
		Health:      p.Health,
		MaxHealth:   p.MaxHealth,
		Afflictions: condition.NewSet(),
	}
}

// Run drives d through its turns until it ends.
//
// Precondition: d was returned by one of the Start methods and is not yet run.
// Postcondition: The lease is released and every player's in-duel flag is
// cleared. An error means the duel was aborted.
func (h *DuelHandler) Run(ctx context.Context, d *combat.Duel) (combat.Outcome, error) {
	logger := observability.ForDuel(h.logger, d)
	logger.Info("duel started", zap.Int("actors", len(d.Actors)))
	for d.Active {
		if err := h.turn(ctx, d, logger); err != nil {
			return h.abort(ctx, d, logger, err)
		}
	}
	h.finish(ctx, d, logger)
	return d.Outcome, nil
}

// turn runs one AwaitingChoices, Ordering, Executing cycle and advances or
// ends the duel.
func (h *DuelHandler) turn(ctx context.Context, d *combat.Duel, logger *zap.Logger) error {
	d.Phase = combat.PhaseAwaitingChoices
	choices := make(map[string]combat.Choice)
	for _, a := range d.Live() {
		if !a.IsPlayer() {
			choices[a.ID] = h.policy.Decide(a, d)
		}
	}
	submitted, err := h.collector.Collect(ctx, d)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	maps.Copy(choices, submitted)

	d.Phase = combat.PhaseOrdering
	live := d.Live()
	entries := make([]combat.Entry, 0, len(live))
	for _, a := range live {
		entries = append(entries, combat.Entry{Actor: a, Choice: choices[a.ID]})
	}
	ordered := combat.Order(entries, h.src)

	d.Phase = combat.PhaseExecuting
	report := TurnReport{DuelID: d.ID, Scope: d.Scope, Turn: d.Turn}
	for _, e := range ordered {
		res, err := h.resolver.Resolve(ctx, d, e)
		if err != nil {
			return err
		}
		report.Events = append(report.Events, res.Events...)
		report.Rewards = append(report.Rewards, res.Rewards...)
		if o, done := d.Decided(); done {
			d.End(o)
			break
		}
	}
	h.sink.TurnReport(ctx, report)
	logger.Info("turn resolved",
		observability.Turn(d),
		zap.Int("submitted", len(submitted)),
		zap.Int("events", len(report.Events)),
	)

	if d.Active && !d.NextTurn() {
		d.End(combat.Outcome{Reason: combat.EndTie})
	}
	return nil
}

func (h *DuelHandler) abort(ctx context.Context, d *combat.Duel, logger *zap.Logger, cause error) (combat.Outcome, error) {
	d.End(combat.Outcome{Reason: combat.EndAbort})
	logger.Error("duel aborted", observability.Turn(d), zap.Error(cause))
	h.finish(ctx, d, logger)
	return d.Outcome, fmt.Errorf("duel %s aborted: %w", d.ID, cause)
}

// finish clears in-duel flags, releases the lease and announces the outcome.
// It runs on a context detached from cancellation so an aborted duel never
// leaves players stuck.
func (h *DuelHandler) finish(ctx context.Context, d *combat.Duel, logger *zap.Logger) {
	cleanup := context.WithoutCancel(ctx)
	err := h.store.WithinTx(cleanup, func(tx storage.Tx) error {
		for _, a := range d.Players() {
			err := tx.SetInDuel(cleanup, a.ID, false)
			if err != nil && !errors.Is(err, storage.ErrPlayerNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("clearing in-duel flags", zap.Error(err))
	}
	h.engine.Release(d.Scope, d.ID)

	var winners []string
	if d.Outcome.Winner != combat.SideNone {
		for _, a := range d.LiveOn(d.Outcome.Winner) {
			winners = append(winners, a.Name)
		}
	}
	h.sink.DuelEnded(cleanup, Summary{
		DuelID:  d.ID,
		Scope:   d.Scope,
		Turns:   d.Turn,
		Outcome: d.Outcome,
		Winners: winners,
		Text:    EndingText(d.Outcome, d.Mode, winners),
	})
	logger.Info("duel ended",
		zap.String("reason", string(d.Outcome.Reason)),
		observability.Turn(d),
	)
}
