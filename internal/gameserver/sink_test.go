package gameserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
)

func TestTurnReport_Lines(t *testing.T) {
	r := TurnReport{Events: []Event{
		{Kind: EventAttack, Text: "Rook hits Raider in the chest for 7."},
		{Kind: EventDeath, Text: "Raider collapses under Rook's final blow."},
	}}
	assert.Equal(t, []string{
		"Rook hits Raider in the chest for 7.",
		"Raider collapses under Rook's final blow.",
	}, r.Lines())
}

func TestLogSink_WritesEventsAndSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(zap.New(core))

	sink.TurnReport(context.Background(), TurnReport{
		DuelID: "d1",
		Turn:   3,
		Events: []Event{{Kind: EventMiss, Text: "Rook misses."}},
		Rewards: []Reward{{
			PlayerID: "p1", NPC: "Raider", XP: 10, Items: []string{"Medkit"},
		}},
	})
	sink.DuelEnded(context.Background(), Summary{
		DuelID:  "d1",
		Turns:   3,
		Outcome: combat.Outcome{Reason: combat.EndVictory, Winner: combat.SideA},
		Winners: []string{"Rook"},
		Text:    "The fight is over. Standing: Rook.",
	})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "Rook misses.", entries[0].Message)
	assert.Equal(t, "miss", entries[0].ContextMap()["event"])
	assert.Equal(t, int64(3), entries[0].ContextMap()["turn"])
	assert.Equal(t, "reward", entries[1].Message)
	assert.Equal(t, int64(10), entries[1].ContextMap()["xp"])
	assert.Equal(t, "The fight is over. Standing: Rook.", entries[2].Message)
	assert.Equal(t, "victory", entries[2].ContextMap()["reason"])
}
