// Package command defines the operator console commands of the duel server:
// the line parser, the registry, and the built-in command table.
package command

// Categories for organizing commands.
const (
	CategoryDuel   = "duel"
	CategoryPlayer = "player"
	CategoryAdmin  = "admin"
	CategorySystem = "system"
)

// Handler identifiers dispatched by the console.
const (
	HandlerHunt      = "hunt"
	HandlerBoss      = "boss"
	HandlerPvP       = "pvp"
	HandlerAnswer    = "answer"
	HandlerPending   = "pending"
	HandlerStatus    = "status"
	HandlerInventory = "inventory"
	HandlerPlayer    = "player"
	HandlerGive      = "give"
	HandlerQuest     = "quest"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines one console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "hunt <scope> <player>".
	Usage string
	// Help is the one-line description.
	Help     string
	Category string
	Handler  string
	// MinArgs is the number of arguments the command cannot run without.
	MinArgs int
}

// BuiltinCommands returns every console command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "hunt", Aliases: []string{"h"}, Usage: "hunt <scope> <player>", Help: "Start a solo hunt at the player's location", Category: CategoryDuel, Handler: HandlerHunt, MinArgs: 2},
		{Name: "boss", Aliases: []string{"raid"}, Usage: "boss <scope> <player>...", Help: "Start a party fight against the location boss", Category: CategoryDuel, Handler: HandlerBoss, MinArgs: 2},
		{Name: "pvp", Aliases: []string{"duel", "challenge"}, Usage: "pvp <scope> <challenger> <opponent>", Help: "Start a duel between two players", Category: CategoryDuel, Handler: HandlerPvP, MinArgs: 3},
		{Name: "answer", Aliases: []string{"a"}, Usage: "answer <player> <option>", Help: "Answer the player's open prompt", Category: CategoryDuel, Handler: HandlerAnswer, MinArgs: 2},
		{Name: "pending", Aliases: []string{"pr"}, Usage: "pending <player>", Help: "Show the player's open prompt", Category: CategoryDuel, Handler: HandlerPending, MinArgs: 1},

		{Name: "status", Aliases: []string{"st"}, Usage: "status <player>", Help: "Show health, level and counters", Category: CategoryPlayer, Handler: HandlerStatus, MinArgs: 1},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Usage: "inventory <player>", Help: "List the player's items and carried weight", Category: CategoryPlayer, Handler: HandlerInventory, MinArgs: 1},

		{Name: "player", Aliases: []string{"mkplayer"}, Usage: "player <id> <location> [name]", Help: "Create or move a player", Category: CategoryAdmin, Handler: HandlerPlayer, MinArgs: 2},
		{Name: "give", Aliases: nil, Usage: "give <player> <item>", Help: "Add a fresh item row to a player", Category: CategoryAdmin, Handler: HandlerGive, MinArgs: 2},
		{Name: "quest", Aliases: nil, Usage: "quest <player> <quest> <npc> <count>", Help: "Start a kill quest for a player", Category: CategoryAdmin, Handler: HandlerQuest, MinArgs: 4},

		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Usage: "quit", Help: "Stop reading console input", Category: CategorySystem, Handler: HandlerQuit},
	}
}
