package gameserver_test

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
	"github.com/cory-johannsen/wasteland/internal/gameserver"
)

func TestDeathText_NamesBothActors(t *testing.T) {
	for _, isPlayer := range []bool{true, false} {
		got := gameserver.DeathText("Rook", "Ghoul", isPlayer)
		if !strings.Contains(got, "Rook") || !strings.Contains(got, "Ghoul") {
			t.Errorf("DeathText(player=%v) = %q, want both names", isPlayer, got)
		}
	}
	if got := gameserver.DeathText("Rook", "Ghoul", true); !strings.Contains(got, "lost") {
		t.Errorf("player death should mention the lost inventory, got %q", got)
	}
}

func TestEndingText_Victory(t *testing.T) {
	win := combat.Outcome{Reason: combat.EndVictory, Winner: combat.SideA}
	cases := []struct {
		mode    combat.Mode
		winners []string
		want    string
	}{
		{combat.ModePvP, []string{"Rook"}, "Rook wins the duel."},
		{combat.ModeBoss, []string{"Rook", "Vex", "Ash"}, "The fight is over. Standing: Rook, Vex and Ash."},
		{combat.ModeHunt, []string{"Rook"}, "The fight is over. Standing: Rook."},
	}
	for _, tc := range cases {
		if got := gameserver.EndingText(win, tc.mode, tc.winners); got != tc.want {
			t.Errorf("EndingText(%s, %v) = %q, want %q", tc.mode, tc.winners, got, tc.want)
		}
	}
}

func TestEndingText_AbortMentionsRelease(t *testing.T) {
	got := gameserver.EndingText(combat.Outcome{Reason: combat.EndAbort}, combat.ModeHunt, nil)
	if !strings.Contains(got, "unexpected failure") {
		t.Errorf("abort text = %q", got)
	}
}

func TestProperty_EndingText_NeverEmpty(t *testing.T) {
	reasons := []combat.EndReason{combat.EndVictory, combat.EndEscape, combat.EndTie, combat.EndAbort}
	modes := []combat.Mode{combat.ModeHunt, combat.ModeBoss, combat.ModePvP}
	rapid.Check(t, func(t *rapid.T) {
		r := reasons[rapid.IntRange(0, len(reasons)-1).Draw(t, "reason")]
		m := modes[rapid.IntRange(0, len(modes)-1).Draw(t, "mode")]
		winners := rapid.SliceOfN(rapid.StringMatching(`[A-Z][a-z]{2,8}`), 0, 4).Draw(t, "winners")
		if got := gameserver.EndingText(combat.Outcome{Reason: r}, m, winners); got == "" {
			t.Fatalf("EndingText(%s, %s, %v) is empty", r, m, winners)
		}
	})
}
