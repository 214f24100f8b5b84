package gameserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// Collector gathers the human choices of one turn. Each live player runs a
// private dialogue in its own goroutine and writes only its own slot.
type Collector struct {
	store    storage.Store
	items    *inventory.Registry
	prompter Prompter
	cfg      config.DuelConfig
	logger   *zap.Logger
}

// NewCollector creates a Collector.
//
// Precondition: all arguments must be non-nil.
func NewCollector(store storage.Store, items *inventory.Registry, prompter Prompter, cfg config.DuelConfig, logger *zap.Logger) *Collector {
	return &Collector{store: store, items: items, prompter: prompter, cfg: cfg, logger: logger}
}

// Collect opens the turn window and returns the submitted choices keyed by
// actor ID. The window closes early once every live player has answered or
// timed out. A player whose window or sub-prompt expires is absent from the
// result.
//
// Precondition: d is active and owned by the caller.
// Postcondition: Returns an error only for storage or prompter failures.
func (c *Collector) Collect(ctx context.Context, d *combat.Duel) (map[string]combat.Choice, error) {
	var humans []*combat.Actor
	for _, a := range d.Live() {
		if a.IsPlayer() {
			humans = append(humans, a)
		}
	}
	slots := make([]combat.Choice, len(humans))

	window, cancel := context.WithTimeout(ctx, c.cfg.TurnWindow)
	defer cancel()

	g, gctx := errgroup.WithContext(window)
	for i, a := range humans {
		g.Go(func() error {
			choice, err := c.dialogue(gctx, d, a)
			if err != nil {
				return fmt.Errorf("collecting choice of %q: %w", a.ID, err)
			}
			slots[i] = choice
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]combat.Choice, len(humans))
	for i, a := range humans {
		if slots[i] != nil {
			out[a.ID] = slots[i]
		}
	}
	return out, nil
}

// loadout is a snapshot of a player's usable items at prompt time.
type loadout struct {
	owned      []inventory.Owned
	weapons    []inventory.Owned
	medical    []inventory.Owned
	stimulants []inventory.Owned
}

func (c *Collector) snapshot(ctx context.Context, a *combat.Actor) (loadout, error) {
	var items []inventory.Item
	err := c.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		items, err = tx.Items(ctx, a.ID)
		return err
	})
	if err != nil {
		return loadout{}, err
	}
	lo := loadout{owned: inventory.Resolve(items, c.items)}
	for _, o := range inventory.OfCategory(lo.owned, inventory.CategoryWeapon) {
		if o.Def.Weapon.IsRanged() && len(inventory.CompatibleAmmo(lo.owned, o.Def.Weapon)) == 0 {
			continue
		}
		lo.weapons = append(lo.weapons, o)
	}
	lo.medical = inventory.OfCategory(lo.owned, inventory.CategoryMedical)
	if len(a.Stimulants) < c.cfg.MaxStimulants {
		for _, o := range inventory.OfCategory(lo.owned, inventory.CategoryStimulant) {
			if !a.HasStimulant(o.Def.ID) {
				lo.stimulants = append(lo.stimulants, o)
			}
		}
	}
	return lo, nil
}

// dialogue runs one player's chain of prompts. An expired step yields a nil
// choice and no error.
func (c *Collector) dialogue(ctx context.Context, d *combat.Duel, a *combat.Actor) (combat.Choice, error) {
	lo, err := c.snapshot(ctx, a)
	if err != nil {
		if isExpired(err) {
			return nil, nil
		}
		return nil, err
	}

	var actions []Option
	if len(lo.weapons) > 0 {
		actions = append(actions, Option{ID: combat.ActionAttack.String(), Label: "Attack"})
	}
	if len(lo.medical) > 0 {
		actions = append(actions, Option{ID: combat.ActionHeal.String(), Label: "Heal"})
	}
	if len(lo.stimulants) > 0 {
		actions = append(actions, Option{ID: combat.ActionStimulant.String(), Label: "Inject a stimulant"})
	}
	if d.Mode != combat.ModePvP {
		actions = append(actions, Option{ID: combat.ActionFlee.String(), Label: "Flee"})
	}
	if len(actions) == 0 {
		return nil, nil
	}

	base := Prompt{DuelID: d.ID, PlayerID: a.ID, Turn: d.Turn}
	sel, ok, err := c.ask(ctx, base, StepAction, fmt.Sprintf("Turn %d: choose your action.", d.Turn), actions)
	if !ok || err != nil {
		return nil, err
	}

	switch sel {
	case combat.ActionAttack.String():
		return c.attackDialogue(ctx, base, d, a, lo)
	case combat.ActionHeal.String():
		o, ok, err := c.pickItem(ctx, base, "Choose a medical item.", lo.medical)
		if !ok || err != nil {
			return nil, err
		}
		return combat.Heal{ActorID: a.ID, ItemID: o.Item.ID, ResolvedSpeed: o.Def.Speed}, nil
	case combat.ActionStimulant.String():
		o, ok, err := c.pickItem(ctx, base, "Choose a stimulant.", lo.stimulants)
		if !ok || err != nil {
			return nil, err
		}
		return combat.Stimulant{ActorID: a.ID, ItemID: o.Item.ID, ResolvedSpeed: o.Def.Speed}, nil
	case combat.ActionFlee.String():
		return combat.Flee{ActorID: a.ID, ResolvedSpeed: c.cfg.FleeSpeed}, nil
	default:
		return nil, nil
	}
}

func (c *Collector) attackDialogue(ctx context.Context, base Prompt, d *combat.Duel, a *combat.Actor, lo loadout) (combat.Choice, error) {
	opts := make([]Option, 0, len(lo.weapons))
	for _, o := range lo.weapons {
		opts = append(opts, itemOption(o))
	}
	sel, ok, err := c.ask(ctx, base, StepWeapon, "Choose a weapon.", opts)
	if !ok || err != nil {
		return nil, err
	}
	weapon, found := findOwned(lo.weapons, sel)
	if !found {
		return nil, nil
	}
	choice := combat.Attack{
		ActorID:       a.ID,
		WeaponItemID:  weapon.Item.ID,
		ResolvedSpeed: combat.AttackSpeed(weapon.Def.Speed, a),
	}

	var ammoStats *inventory.AmmoStats
	if weapon.Def.Weapon.IsRanged() {
		compatible := inventory.CompatibleAmmo(lo.owned, weapon.Def.Weapon)
		ammo, ok, err := c.pickItemStep(ctx, base, StepAmmo, "Choose ammunition.", compatible)
		if !ok || err != nil {
			return nil, err
		}
		choice.AmmoItemID = ammo.Item.ID
		ammoStats = ammo.Def.Ammo
	}

	// pellets land on random limbs, so a spread attack cannot be aimed
	if inventory.Profile(weapon.Def.Weapon, ammoStats).Spread <= 1 {
		limbs := []Option{{ID: limbAny, Label: "Anywhere"}}
		for _, l := range combat.Limbs() {
			limbs = append(limbs, Option{ID: l.String(), Label: "Aim for the " + l.String()})
		}
		sel, ok, err = c.ask(ctx, base, StepLimb, "Where do you aim?", limbs)
		if !ok || err != nil {
			return nil, err
		}
		if sel != limbAny {
			limb, err := combat.ParseLimb(sel)
			if err != nil {
				return nil, nil
			}
			choice.Limb = &limb
		}
	}

	opponents := d.Opponents(a)
	if len(opponents) > 1 {
		targets := make([]Option, 0, len(opponents))
		for _, o := range opponents {
			targets = append(targets, Option{ID: o.ID, Label: fmt.Sprintf("%s (%d/%d)", o.Name, o.Health, o.MaxHealth)})
		}
		sel, ok, err = c.ask(ctx, base, StepTarget, "Choose a target.", targets)
		if !ok || err != nil {
			return nil, err
		}
		choice.TargetID = sel
	}
	return choice, nil
}

func (c *Collector) pickItem(ctx context.Context, base Prompt, text string, owned []inventory.Owned) (inventory.Owned, bool, error) {
	return c.pickItemStep(ctx, base, StepItem, text, owned)
}

func (c *Collector) pickItemStep(ctx context.Context, base Prompt, step, text string, owned []inventory.Owned) (inventory.Owned, bool, error) {
	opts := make([]Option, 0, len(owned))
	for _, o := range owned {
		opts = append(opts, itemOption(o))
	}
	sel, ok, err := c.ask(ctx, base, step, text, opts)
	if !ok || err != nil {
		return inventory.Owned{}, false, err
	}
	o, found := findOwned(owned, sel)
	return o, found, nil
}

// ask runs one time-boxed step.
//
// Postcondition: ok is false with a nil error when the step expired or the
// answer matched no option.
func (c *Collector) ask(ctx context.Context, base Prompt, step, text string, opts []Option) (string, bool, error) {
	if len(opts) == 0 {
		return "", false, nil
	}
	stepCtx, cancel := context.WithTimeout(ctx, c.cfg.SubPromptTimeout)
	defer cancel()

	p := base
	p.Step = step
	p.Text = text
	p.Options = opts
	start := time.Now()
	sel, err := c.prompter.Prompt(stepCtx, p)
	if err != nil {
		if isExpired(err) {
			c.logger.Debug("prompt expired",
				zap.String("player", p.PlayerID),
				zap.String("step", step),
				zap.Duration("waited", time.Since(start)),
			)
			return "", false, nil
		}
		return "", false, err
	}
	if !p.Has(sel.OptionID) {
		return "", false, nil
	}
	return sel.OptionID, true, nil
}

func isExpired(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func itemOption(o inventory.Owned) Option {
	return Option{ID: o.Item.ID, Label: fmt.Sprintf("%s (%d)", o.Def.Name, o.Item.Durability)}
}

func findOwned(owned []inventory.Owned, itemID string) (inventory.Owned, bool) {
	for _, o := range owned {
		if o.Item.ID == itemID {
			return o, true
		}
	}
	return inventory.Owned{}, false
}
