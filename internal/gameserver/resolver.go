package gameserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/condition"
	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/game/npc"
	"github.com/cory-johannsen/wasteland/internal/game/world"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// Content bundles the static definitions a duel reads.
type Content struct {
	Items     *inventory.Registry
	NPCs      *npc.Manager
	Locations *world.Manager
}

// Resolution is the narrated result of one executed action.
type Resolution struct {
	Events  []Event
	Rewards []Reward
}

func (r *Resolution) add(e Event) {
	r.Events = append(r.Events, e)
}

// Resolver executes ordered actions one at a time. Every persisted mutation of
// one action commits in a single transaction before the next action starts.
type Resolver struct {
	store   storage.Store
	content Content
	src     dice.Source
	cfg     config.DuelConfig
	now     func() time.Time
	logger  *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: store, src and logger must be non-nil; content must be fully loaded.
func NewResolver(store storage.Store, content Content, src dice.Source, cfg config.DuelConfig, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:   store,
		content: content,
		src:     src,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// Resolve executes the entry's choice against d.
//
// Actors that died or fled earlier in the turn do nothing. A choice naming an
// item that no longer exists is narrated as a skipped turn and is not an error.
//
// Precondition: d is owned by the caller and e.Actor belongs to d.
// Postcondition: Returns an error only when persistence fails or the choice
// variant is unknown; the duel should then be aborted.
func (r *Resolver) Resolve(ctx context.Context, d *combat.Duel, e combat.Entry) (Resolution, error) {
	a := e.Actor
	if !d.Active || !a.IsLive() {
		return Resolution{}, nil
	}
	if e.Choice == nil {
		return Resolution{Events: []Event{{
			Kind:    EventIdle,
			ActorID: a.ID,
			Text:    fmt.Sprintf("%s hesitates and does nothing.", a.Name),
		}}}, nil
	}

	var res Resolution
	err := r.store.WithinTx(ctx, func(tx storage.Tx) error {
		res = Resolution{}
		switch c := e.Choice.(type) {
		case combat.Attack:
			return r.attack(ctx, tx, d, a, c, &res)
		case combat.Heal:
			return r.heal(ctx, tx, a, c, &res)
		case combat.Stimulant:
			return r.inject(ctx, tx, a, c, &res)
		case combat.Flee:
			return r.flee(ctx, tx, d, a, &res)
		default:
			return fmt.Errorf("unsupported choice %T", c)
		}
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving %s of %q: %w", e.Choice.Action(), a.ID, err)
	}
	return res, nil
}

// armedWith is the weapon an attack is made with, re-validated at execution.
type armedWith struct {
	name    string
	profile inventory.AttackProfile
	// weapon and ammo are the consumed rows; nil for NPC loadouts.
	weapon    *inventory.Item
	weaponDef *inventory.ItemDef
	ammo      *inventory.Item
	ammoDef   *inventory.ItemDef
}

func (r *Resolver) attack(ctx context.Context, tx storage.Tx, d *combat.Duel, a *combat.Actor, c combat.Attack, res *Resolution) error {
	w, ok, err := r.weaponFor(ctx, tx, a, c)
	if err != nil {
		return err
	}
	if !ok {
		res.add(skipped(a, "weapon"))
		return nil
	}
	target := r.pickTarget(d, a, c.TargetID)
	if target == nil {
		res.add(Event{Kind: EventSkipped, ActorID: a.ID, Text: fmt.Sprintf("%s has no one left to attack.", a.Name)})
		return nil
	}

	atk := a.Modifiers()
	def := target.Modifiers()
	accuracy := w.profile.Accuracy + atk.AccuracyBonus
	raw := w.profile.Damage * atk.OutgoingMultiplier() * def.IncomingMultiplier()

	var hits []combat.HitResult
	if w.profile.Spread > 1 {
		// each pellet carries an equal share; the limb results are summed in land
		raw /= float64(w.profile.Spread)
		hits = combat.SpreadHits(r.src, w.profile.Spread)
	} else if h := combat.GetBodyPartHit(r.src, accuracy, c.Limb); c.Limb == nil || h.Accurate {
		hits = []combat.HitResult{h}
	}

	if len(hits) == 0 {
		res.add(Event{
			Kind:     EventMiss,
			ActorID:  a.ID,
			TargetID: target.ID,
			Text:     fmt.Sprintf("%s aims for %s's %s with %s and misses.", a.Name, target.Name, c.Limb.String(), w.name),
		})
	} else {
		if err := r.land(ctx, tx, a, target, w, raw, hits, res); err != nil {
			return err
		}
	}

	if err := r.consume(ctx, tx, a, w, res); err != nil {
		return err
	}
	if target.IsDead() {
		return r.kill(ctx, tx, d, a, target, res)
	}
	return nil
}

// land applies the damage of every hit to target and rolls on-hit afflictions.
func (r *Resolver) land(ctx context.Context, tx storage.Tx, a, target *combat.Actor, w armedWith, raw float64, hits []combat.HitResult, res *Resolution) error {
	armor, helmet, err := r.protection(ctx, tx, target)
	if err != nil {
		return err
	}
	results := make([]combat.DamageResult, 0, len(hits))
	limbs := make([]string, 0, len(hits))
	armHit := false
	for _, h := range hits {
		results = append(results, combat.GetAttackDamage(raw, w.profile.Penetration, h.Limb, armor, helmet))
		limbs = append(limbs, h.Limb.String())
		armHit = armHit || h.Limb == combat.LimbArm
	}
	total := combat.Sum(results)
	target.ApplyDamage(total.Total)
	if target.IsPlayer() {
		if err := tx.SetHealth(ctx, target.ID, target.Health); err != nil {
			return err
		}
	}

	text := fmt.Sprintf("%s hits %s in the %s with %s for %d damage", a.Name, target.Name, joinList(limbs), w.name, total.Total)
	if total.Reduced > 0 {
		text += fmt.Sprintf(" (%d absorbed)", total.Reduced)
	}
	res.add(Event{
		Kind:     EventAttack,
		ActorID:  a.ID,
		TargetID: target.ID,
		Damage:   total.Total,
		Reduced:  total.Reduced,
		Text:     fmt.Sprintf("%s. %s is at %d/%d.", text, target.Name, target.Health, target.MaxHealth),
	})

	if target.IsDead() {
		return nil
	}
	if w.profile.Incendiary {
		r.afflict(target, condition.Burning, res)
	}
	if armHit && dice.Chance(r.src, r.cfg.BrokenArmChance) {
		r.afflict(target, condition.BrokenArm, res)
	}
	if !a.IsPlayer() && dice.Chance(r.src, a.BiteChance) {
		r.afflict(target, condition.Bitten, res)
	}
	return nil
}

func (r *Resolver) afflict(target *combat.Actor, aff condition.Affliction, res *Resolution) {
	if !target.AfflictionSet().Apply(aff) {
		return
	}
	res.add(Event{
		Kind:    EventAffliction,
		ActorID: target.ID,
		Text:    fmt.Sprintf("%s suffers from %s.", target.Name, aff),
	})
}

// consume wears down the player's weapon and spends one round of ammo.
// Throwables are used up.
func (r *Resolver) consume(ctx context.Context, tx storage.Tx, a *combat.Actor, w armedWith, res *Resolution) error {
	if w.weapon == nil {
		return nil
	}
	if w.weaponDef.Weapon.IsThrowable() {
		if err := tx.DeleteItem(ctx, w.weapon.ID); err != nil {
			return err
		}
	} else {
		left, err := tx.LowerDurability(ctx, w.weapon.ID, 1)
		if err != nil {
			return err
		}
		if left <= 0 {
			res.add(Event{Kind: EventBreak, ActorID: a.ID, Text: fmt.Sprintf("%s's %s breaks.", a.Name, w.weaponDef.Name)})
		}
	}
	if w.ammo != nil {
		left, err := tx.LowerDurability(ctx, w.ammo.ID, 1)
		if err != nil {
			return err
		}
		if left <= 0 {
			res.add(Event{Kind: EventBreak, ActorID: a.ID, Text: fmt.Sprintf("%s is out of %s.", a.Name, w.ammoDef.Name)})
		}
	}
	return nil
}

// weaponFor resolves the weapon of an attack. Players must still own the
// chosen weapon and, for ranged weapons, compatible ammo.
func (r *Resolver) weaponFor(ctx context.Context, tx storage.Tx, a *combat.Actor, c combat.Attack) (armedWith, bool, error) {
	if !a.IsPlayer() {
		return npcWeapon(a), true, nil
	}
	row, def, ok, err := r.ownedItem(ctx, tx, a.ID, c.WeaponItemID, inventory.CategoryWeapon)
	if err != nil || !ok {
		return armedWith{}, false, err
	}
	w := armedWith{name: def.Name, weapon: row, weaponDef: def}
	if !def.Weapon.IsRanged() {
		w.profile = inventory.Profile(def.Weapon, nil)
		return w, true, nil
	}
	ammoRow, ammoDef, ok, err := r.ownedItem(ctx, tx, a.ID, c.AmmoItemID, inventory.CategoryAmmo)
	if err != nil || !ok {
		return armedWith{}, false, err
	}
	if !def.Weapon.Accepts(ammoDef.Ammo) {
		return armedWith{}, false, nil
	}
	w.ammo, w.ammoDef = ammoRow, ammoDef
	w.profile = inventory.Profile(def.Weapon, ammoDef.Ammo)
	return w, true, nil
}

func npcWeapon(a *combat.Actor) armedWith {
	if a.Weapon == nil || a.Weapon.Weapon == nil {
		return armedWith{
			name:    "its bare hands",
			profile: inventory.AttackProfile{Damage: a.BaseDamage, Penetration: a.BasePenetration, Accuracy: 100},
		}
	}
	var ammo *inventory.AmmoStats
	if a.Ammo != nil {
		ammo = a.Ammo.Ammo
	}
	return armedWith{name: a.Weapon.Name, profile: inventory.Profile(a.Weapon.Weapon, ammo)}
}

// protection returns the armor and helmet worn by target. A player's gear is
// the best rated piece of each category in the inventory.
func (r *Resolver) protection(ctx context.Context, tx storage.Tx, target *combat.Actor) (armor, helmet *inventory.Protection, err error) {
	if !target.IsPlayer() {
		return target.Armor, target.Helmet, nil
	}
	items, err := tx.Items(ctx, target.ID)
	if err != nil {
		return nil, nil, err
	}
	owned := inventory.Resolve(items, r.content.Items)
	return inventory.BestProtection(owned, inventory.CategoryArmor), inventory.BestProtection(owned, inventory.CategoryHelmet), nil
}

// pickTarget returns the chosen opponent while it is live, or a random live
// opponent otherwise.
func (r *Resolver) pickTarget(d *combat.Duel, a *combat.Actor, id string) *combat.Actor {
	if id != "" {
		if t := d.Actor(id); t != nil && t.IsLive() && t.Side != a.Side {
			return t
		}
	}
	opponents := d.Opponents(a)
	i := dice.Pick(r.src, len(opponents))
	if i < 0 {
		return nil
	}
	return opponents[i]
}

// ownedItem re-reads an item row chosen earlier in the turn.
//
// Postcondition: ok is false when the row is gone, belongs to someone else,
// or is no longer of category want.
func (r *Resolver) ownedItem(ctx context.Context, tx storage.Tx, ownerID, itemID string, want inventory.Category) (*inventory.Item, *inventory.ItemDef, bool, error) {
	if itemID == "" {
		return nil, nil, false, nil
	}
	it, err := tx.Item(ctx, itemID)
	if errors.Is(err, storage.ErrItemNotFound) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	if it.OwnerID != ownerID {
		return nil, nil, false, nil
	}
	def, ok := r.content.Items.Item(it.DefID)
	if !ok || def.Category != want {
		return nil, nil, false, nil
	}
	return it, def, true, nil
}

func (r *Resolver) heal(ctx context.Context, tx storage.Tx, a *combat.Actor, c combat.Heal, res *Resolution) error {
	def := c.Def
	var row *inventory.Item
	if a.IsPlayer() {
		it, d, ok, err := r.ownedItem(ctx, tx, a.ID, c.ItemID, inventory.CategoryMedical)
		if err != nil {
			return err
		}
		if !ok {
			res.add(skipped(a, "medical item"))
			return nil
		}
		row, def = it, d
	}
	if def == nil || def.Medical == nil {
		res.add(skipped(a, "medical item"))
		return nil
	}

	healed := a.Heal(def.Medical.HealsFor)
	res.add(Event{
		Kind:    EventHeal,
		ActorID: a.ID,
		Healed:  healed,
		Text:    fmt.Sprintf("%s uses %s and recovers %d health (%d/%d).", a.Name, def.Name, healed, a.Health, a.MaxHealth),
	})
	for _, aff := range def.Medical.CuredAfflictions() {
		if a.AfflictionSet().Cure(aff) {
			res.add(Event{Kind: EventCure, ActorID: a.ID, Text: fmt.Sprintf("%s is cured of %s.", a.Name, aff)})
		}
	}
	if row == nil {
		return nil
	}
	if err := r.spend(ctx, tx, a, row, def, res); err != nil {
		return err
	}
	return tx.SetHealth(ctx, a.ID, a.Health)
}

func (r *Resolver) inject(ctx context.Context, tx storage.Tx, a *combat.Actor, c combat.Stimulant, res *Resolution) error {
	def := c.Def
	var row *inventory.Item
	if a.IsPlayer() {
		it, d, ok, err := r.ownedItem(ctx, tx, a.ID, c.ItemID, inventory.CategoryStimulant)
		if err != nil {
			return err
		}
		if !ok {
			res.add(skipped(a, "stimulant"))
			return nil
		}
		row, def = it, d
	}
	if def == nil || def.Stimulant == nil {
		res.add(skipped(a, "stimulant"))
		return nil
	}

	if err := a.Inject(def, r.cfg.MaxStimulants); err != nil {
		if errors.Is(err, combat.ErrStimulantActive) || errors.Is(err, combat.ErrStimulantCap) {
			res.add(Event{Kind: EventRejected, ActorID: a.ID, Text: fmt.Sprintf("%s cannot inject %s: %v.", a.Name, def.Name, err)})
			return nil
		}
		return err
	}
	res.add(Event{Kind: EventStimulant, ActorID: a.ID, Text: fmt.Sprintf("%s injects %s.", a.Name, def.Name)})
	if row == nil {
		return nil
	}
	return r.spend(ctx, tx, a, row, def, res)
}

// spend takes one use off a consumable row.
func (r *Resolver) spend(ctx context.Context, tx storage.Tx, a *combat.Actor, row *inventory.Item, def *inventory.ItemDef, res *Resolution) error {
	left, err := tx.LowerDurability(ctx, row.ID, 1)
	if err != nil {
		return err
	}
	if left <= 0 {
		res.add(Event{Kind: EventBreak, ActorID: a.ID, Text: fmt.Sprintf("%s used up the last %s.", a.Name, def.Name)})
	}
	return nil
}

func (r *Resolver) flee(ctx context.Context, tx storage.Tx, d *combat.Duel, a *combat.Actor, res *Resolution) error {
	chance := r.cfg.FleeChanceHunt
	switch d.Mode {
	case combat.ModeBoss:
		chance = r.cfg.FleeChanceBoss
	case combat.ModePvP:
		chance = 0
	}
	if !dice.Chance(r.src, chance) {
		res.add(Event{Kind: EventFleeFailed, ActorID: a.ID, Text: fmt.Sprintf("%s tries to flee but cannot get away.", a.Name)})
		return nil
	}
	a.Fled = true
	res.add(Event{Kind: EventFlee, ActorID: a.ID, Text: fmt.Sprintf("%s escapes the fight.", a.Name)})
	if a.IsPlayer() {
		return tx.SetInDuel(ctx, a.ID, false)
	}
	return nil
}

// kill runs the death side effects of victim, slain by killer.
func (r *Resolver) kill(ctx context.Context, tx storage.Tx, d *combat.Duel, killer, victim *combat.Actor, res *Resolution) error {
	res.add(Event{
		Kind:     EventDeath,
		ActorID:  victim.ID,
		TargetID: killer.ID,
		Text:     DeathText(victim.Name, killer.Name, victim.IsPlayer()),
	})
	if victim.IsPlayer() {
		if err := r.playerDeath(ctx, tx, victim); err != nil {
			return err
		}
		if killer.IsPlayer() {
			return tx.AddKill(ctx, killer.ID)
		}
		return nil
	}
	if !killer.IsPlayer() {
		return nil
	}
	return r.npcKill(ctx, tx, d, killer, victim, res)
}

// playerDeath costs the player the carried inventory and restores health for
// the next fight.
func (r *Resolver) playerDeath(ctx context.Context, tx storage.Tx, p *combat.Actor) error {
	if err := tx.AddDeath(ctx, p.ID); err != nil {
		return err
	}
	if err := tx.DeleteItems(ctx, p.ID); err != nil {
		return err
	}
	if err := tx.SetHealth(ctx, p.ID, p.MaxHealth); err != nil {
		return err
	}
	return tx.SetInDuel(ctx, p.ID, false)
}

func (r *Resolver) npcKill(ctx context.Context, tx storage.Tx, d *combat.Duel, killer, victim *combat.Actor, res *Resolution) error {
	tmpl, ok := r.content.NPCs.Get(victim.TemplateID)
	if !ok {
		return fmt.Errorf("unknown npc template %q", victim.TemplateID)
	}
	if err := tx.AddKill(ctx, killer.ID); err != nil {
		return err
	}
	if err := tx.AddXP(ctx, killer.ID, tmpl.XP); err != nil {
		return err
	}
	if err := tx.AdvanceQuest(ctx, killer.ID, character.KillObjective(tmpl.ID), 1); err != nil {
		return err
	}

	reward := Reward{PlayerID: killer.ID, NPC: tmpl.Name, XP: tmpl.XP}
	items, err := tx.Items(ctx, killer.ID)
	if err != nil {
		return err
	}
	owned := inventory.Resolve(items, r.content.Items)
	capacity := inventory.Capacity(r.cfg.InventoryCapacity, killer.Modifiers().WeightBonus)
	for _, drop := range npc.RollDrops(tmpl.Drops, r.src) {
		def, ok := r.content.Items.Item(drop.ItemID)
		if !ok {
			r.logger.Warn("drop references unknown item", zap.String("npc", tmpl.ID), zap.String("item", drop.ItemID))
			continue
		}
		if !inventory.Fits(owned, def, capacity) {
			reward.LeftBehind = append(reward.LeftBehind, def.Name)
			res.add(Event{Kind: EventDrop, ActorID: killer.ID, Text: fmt.Sprintf("%s has no room for %s and leaves it behind.", killer.Name, def.Name)})
			continue
		}
		it, err := tx.CreateItem(ctx, killer.ID, def)
		if err != nil {
			return err
		}
		owned = append(owned, inventory.Owned{Item: *it, Def: def})
		reward.Items = append(reward.Items, def.Name)
		res.add(Event{Kind: EventDrop, ActorID: killer.ID, Text: fmt.Sprintf("%s loots %s (%s).", killer.Name, def.Name, drop.Rarity)})
	}
	res.Rewards = append(res.Rewards, reward)

	if victim.Boss {
		return r.bossDown(ctx, tx, d, tmpl, res)
	}
	return nil
}

// bossDown starts the location's boss cooldown and promotes every remaining
// player who was fighting at the location's level.
func (r *Resolver) bossDown(ctx context.Context, tx storage.Tx, d *combat.Duel, tmpl *npc.Template, res *Resolution) error {
	respawn := tmpl.Respawn()
	if respawn == 0 {
		respawn = r.cfg.BossRespawn
	}
	if err := tx.SetCooldown(ctx, d.LocationID, storage.CooldownBoss, r.now().Add(respawn)); err != nil {
		return err
	}
	loc, ok := r.content.Locations.Location(d.LocationID)
	if !ok {
		return nil
	}
	for _, a := range d.Players() {
		if !a.IsLive() {
			continue
		}
		p, err := tx.Player(ctx, a.ID)
		if err != nil {
			return err
		}
		if !loc.Advances(p.LocationLevel) {
			continue
		}
		if err := tx.SetLocationLevel(ctx, a.ID, loc.Level+1); err != nil {
			return err
		}
		res.add(Event{Kind: EventProgress, ActorID: a.ID, Text: fmt.Sprintf("%s has conquered %s and may travel further.", a.Name, loc.Name)})
	}
	return nil
}

func skipped(a *combat.Actor, what string) Event {
	return Event{
		Kind:    EventSkipped,
		ActorID: a.ID,
		Text:    fmt.Sprintf("%s reaches for a %s that is no longer there. Turn skipped.", a.Name, what),
	}
}

func joinList(parts []string) string {
	if len(parts) < 2 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
