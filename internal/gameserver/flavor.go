package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
)

// DeathText returns the narration line for victim falling to killer.
//
// Postcondition: Returns a non-empty string naming both actors.
func DeathText(victim, killer string, victimIsPlayer bool) string {
	if victimIsPlayer {
		return fmt.Sprintf("%s falls to %s. Everything carried is lost to the wastes.", victim, killer)
	}
	return fmt.Sprintf("%s collapses under %s's final blow.", victim, killer)
}

// EndingText returns the closing line of a duel.
//
// Precondition: o.Reason is one of the combat.End* reasons.
// Postcondition: Returns a non-empty string; winners is only used for victories.
func EndingText(o combat.Outcome, mode combat.Mode, winners []string) string {
	switch o.Reason {
	case combat.EndVictory:
		if len(winners) == 0 {
			return "The dust settles over the fallen."
		}
		if mode == combat.ModePvP {
			return fmt.Sprintf("%s wins the duel.", winners[0])
		}
		return fmt.Sprintf("The fight is over. Standing: %s.", joinList(winners))
	case combat.EndEscape:
		return "The last of them slips away and the fight dissolves."
	case combat.EndTie:
		return "Exhaustion takes over. Both sides withdraw and the fight ends in a stalemate."
	default:
		return "The duel was interrupted by an unexpected failure. Nobody is stuck in it."
	}
}
