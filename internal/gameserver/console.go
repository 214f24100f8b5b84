package gameserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/game/command"
	"github.com/cory-johannsen/wasteland/internal/game/inventory"
	"github.com/cory-johannsen/wasteland/internal/storage"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// ErrUnknownCommand is returned for a word the registry cannot resolve.
var ErrUnknownCommand = errors.New("unknown command")

// Console is a line-oriented operator front end. It stands in for a chat
// layer: prompts are printed, answers are typed, and narration is written to
// the same output. Console implements Sink.
type Console struct {
	handler  *DuelHandler
	store    storage.Store
	content  Content
	prompter *QueuePrompter
	registry *command.Registry
	cfg      config.DuelConfig
	logger   *zap.Logger

	mu  sync.Mutex
	out io.Writer
	wg  sync.WaitGroup
}

// NewConsole creates a Console writing to out.
//
// Precondition: every argument must be non-nil; handler must be wired to
// prompter.
func NewConsole(handler *DuelHandler, store storage.Store, content Content, prompter *QueuePrompter, cfg config.DuelConfig, out io.Writer, logger *zap.Logger) *Console {
	return &Console{
		handler:  handler,
		store:    store,
		content:  content,
		prompter: prompter,
		registry: command.DefaultRegistry(),
		cfg:      cfg,
		logger:   logger,
		out:      out,
	}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// ShowPrompt prints p with numbered options. It is the QueuePrompter notify hook.
func (c *Console) ShowPrompt(p Prompt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[%s] %s\n", p.PlayerID, p.Text)
	for i, o := range p.Options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, o.Label)
	}
}

// TurnReport prints the turn's narration.
func (c *Console) TurnReport(_ context.Context, r TurnReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "== %s turn %d ==\n", r.Scope, r.Turn)
	for _, line := range r.Lines() {
		fmt.Fprintln(c.out, line)
	}
	for _, rw := range r.Rewards {
		fmt.Fprintf(c.out, "%s earns %d XP for the %s.\n", rw.PlayerID, rw.XP, rw.NPC)
		if len(rw.Items) > 0 {
			fmt.Fprintf(c.out, "  looted: %s\n", strings.Join(rw.Items, ", "))
		}
		if len(rw.LeftBehind) > 0 {
			fmt.Fprintf(c.out, "  left behind: %s\n", strings.Join(rw.LeftBehind, ", "))
		}
	}
}

// DuelEnded prints the closing line.
func (c *Console) DuelEnded(_ context.Context, s Summary) {
	c.printf("== %s == %s", s.Scope, s.Text)
}

// Serve executes lines read from r until EOF, quit, or ctx is done. Command
// errors are printed and do not stop the loop.
func (c *Console) Serve(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		err := c.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			c.printf("error: %v", err)
		}
	}
	return scanner.Err()
}

// Wait blocks until every duel started through this console has ended.
func (c *Console) Wait() {
	c.wg.Wait()
}

// Exec runs one console line. Duels it starts run in their own goroutine on ctx.
func (c *Console) Exec(ctx context.Context, line string) error {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return nil
	}
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		return fmt.Errorf("%q: %w", parsed.Command, ErrUnknownCommand)
	}
	if len(parsed.Args) < cmd.MinArgs {
		return fmt.Errorf("usage: %s", cmd.Usage)
	}
	args := parsed.Args

	switch cmd.Handler {
	case command.HandlerHunt:
		d, err := c.handler.StartHunt(ctx, args[0], args[1])
		return c.launch(ctx, d, err)
	case command.HandlerBoss:
		d, err := c.handler.StartBoss(ctx, args[0], args[1:])
		return c.launch(ctx, d, err)
	case command.HandlerPvP:
		d, err := c.handler.StartPvP(ctx, args[0], args[1], args[2])
		return c.launch(ctx, d, err)
	case command.HandlerAnswer:
		return c.answer(args[0], args[1])
	case command.HandlerPending:
		p, ok := c.prompter.Pending(args[0])
		if !ok {
			c.printf("%s has no open prompt", args[0])
			return nil
		}
		c.ShowPrompt(p)
		return nil
	case command.HandlerStatus:
		return c.status(ctx, args[0])
	case command.HandlerInventory:
		return c.inventory(ctx, args[0])
	case command.HandlerPlayer:
		return c.createPlayer(ctx, args[0], args[1], strings.Join(args[2:], " "))
	case command.HandlerGive:
		return c.give(ctx, args[0], args[1])
	case command.HandlerQuest:
		return c.startQuest(ctx, args[0], args[1], args[2], args[3])
	case command.HandlerHelp:
		for _, l := range c.registry.Help(command.CategoryDuel, command.CategoryPlayer, command.CategoryAdmin, command.CategorySystem) {
			c.printf("%s", l)
		}
		return nil
	case command.HandlerQuit:
		return ErrQuit
	default:
		return fmt.Errorf("%q: %w", cmd.Name, ErrUnknownCommand)
	}
}

// launch runs a freshly started duel in the background.
func (c *Console) launch(ctx context.Context, d *combat.Duel, err error) error {
	if err != nil {
		return err
	}
	c.printf("duel %s started at %s", d.ID, d.LocationID)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.handler.Run(ctx, d); err != nil {
			c.logger.Warn("duel aborted", zap.String("duel_id", d.ID), zap.Error(err))
		}
	}()
	return nil
}

// answer accepts either an option ID or its 1-based position in the prompt.
func (c *Console) answer(playerID, raw string) error {
	optionID := raw
	if p, ok := c.prompter.Pending(playerID); ok && !p.Has(raw) {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= len(p.Options) {
			optionID = p.Options[n-1].ID
		}
	}
	return c.prompter.Answer(playerID, optionID)
}

func (c *Console) status(ctx context.Context, playerID string) error {
	var (
		p      *character.Player
		quests []character.QuestProgress
	)
	err := c.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		if p, err = tx.Player(ctx, playerID); err != nil {
			return err
		}
		quests, err = tx.Quests(ctx, playerID)
		return err
	})
	if err != nil {
		return err
	}
	duel := ""
	if p.InDuel {
		duel = " (in duel)"
	}
	c.printf("%s at %s%s: %d/%d hp, %d XP, %d kills, %d deaths, level %d",
		p.Name, p.Location, duel, p.Health, p.MaxHealth, p.XP, p.Kills, p.Deaths, p.LocationLevel)
	for _, q := range quests {
		c.printf("  quest %s %s: %d/%d", q.QuestID, q.Objective, q.Progress, q.Required)
	}
	return nil
}

func (c *Console) inventory(ctx context.Context, playerID string) error {
	var items []inventory.Item
	err := c.store.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.Player(ctx, playerID); err != nil {
			return err
		}
		var err error
		items, err = tx.Items(ctx, playerID)
		return err
	})
	if err != nil {
		return err
	}
	owned := inventory.Resolve(items, c.content.Items)
	c.printf("%s carries %.1f/%.1f", playerID, inventory.Carried(owned), c.cfg.InventoryCapacity)
	for _, o := range owned {
		c.printf("  %s %s (%d)", o.Item.ID, o.Def.Name, o.Item.Durability)
	}
	return nil
}

func (c *Console) createPlayer(ctx context.Context, id, location, name string) error {
	if _, ok := c.content.Locations.Location(location); !ok {
		return fmt.Errorf("unknown location %q", location)
	}
	p := character.NewPlayer(id, name, location)
	if err := c.store.WithinTx(ctx, func(tx storage.Tx) error {
		return tx.CreatePlayer(ctx, p)
	}); err != nil {
		return err
	}
	c.printf("%s is at %s", p.Name, location)
	return nil
}

func (c *Console) give(ctx context.Context, playerID, defID string) error {
	def, ok := c.content.Items.Item(defID)
	if !ok {
		return fmt.Errorf("unknown item %q", defID)
	}
	var row *inventory.Item
	err := c.store.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.Player(ctx, playerID); err != nil {
			return err
		}
		var err error
		row, err = tx.CreateItem(ctx, playerID, def)
		return err
	})
	if err != nil {
		return err
	}
	c.printf("gave %s %s (%s)", playerID, def.Name, row.ID)
	return nil
}

func (c *Console) startQuest(ctx context.Context, playerID, questID, templateID, count string) error {
	if _, ok := c.content.NPCs.Get(templateID); !ok {
		return fmt.Errorf("unknown npc template %q", templateID)
	}
	required, err := strconv.Atoi(count)
	if err != nil || required < 1 {
		return fmt.Errorf("count must be a positive number, got %q", count)
	}
	q := character.QuestProgress{QuestID: questID, Objective: character.KillObjective(templateID), Required: required}
	if err := c.store.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.Player(ctx, playerID); err != nil {
			return err
		}
		return tx.StartQuest(ctx, playerID, q)
	}); err != nil {
		return err
	}
	c.printf("%s started %s: kill %d %s", playerID, questID, required, templateID)
	return nil
}
