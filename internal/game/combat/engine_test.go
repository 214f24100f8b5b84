package combat_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
)

func newTestDuel(id, scope string) *combat.Duel {
	return combat.NewDuel(id, scope, combat.ModeHunt, "ruins", []*combat.Actor{
		{ID: "p1", Kind: combat.KindPlayer, Side: combat.SideA, Health: 50, MaxHealth: 50},
		{ID: "n1", Kind: combat.KindNPC, Side: combat.SideB, Health: 30, MaxHealth: 30},
	}, combat.DefaultMaxTurns)
}

func TestEngine_AcquireReleaseIsHeld(t *testing.T) {
	e := combat.NewEngine()
	d := newTestDuel("d1", "chan-1")
	require.NoError(t, e.Acquire(d))
	assert.True(t, e.IsHeld("chan-1"))

	err := e.Acquire(newTestDuel("d2", "chan-1"))
	assert.True(t, errors.Is(err, combat.ErrLeaseHeld))

	assert.False(t, e.Release("chan-1", "d2"), "only the holder may release")
	assert.True(t, e.Release("chan-1", "d1"))
	assert.False(t, e.IsHeld("chan-1"))
	assert.Equal(t, 0, e.Len())
}

func TestEngine_ConcurrentAcquireSingleWinner(t *testing.T) {
	e := combat.NewEngine()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if e.Acquire(newTestDuel(string(rune('A'+i)), "shared")) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestDuel_NextTurnNeverPassesCap(t *testing.T) {
	d := newTestDuel("d", "s")
	advanced := 0
	for d.NextTurn() {
		advanced++
	}
	assert.Equal(t, 19, advanced)
	assert.Equal(t, 20, d.Turn)
	assert.False(t, d.NextTurn())
	assert.Equal(t, 20, d.Turn)
}

func TestDuel_Property_TurnBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxTurns := rapid.IntRange(1, 40).Draw(rt, "max")
		calls := rapid.IntRange(0, 100).Draw(rt, "calls")
		d := combat.NewDuel("d", "s", combat.ModeBoss, "x", nil, maxTurns)
		for i := 0; i < calls; i++ {
			d.NextTurn()
		}
		assert.LessOrEqual(rt, d.Turn, maxTurns)
		assert.GreaterOrEqual(rt, d.Turn, 1)
	})
}

func TestDuel_Decided(t *testing.T) {
	d := newTestDuel("d", "s")
	_, over := d.Decided()
	assert.False(t, over)

	d.Actor("n1").ApplyDamage(100)
	out, over := d.Decided()
	require.True(t, over)
	assert.Equal(t, combat.Outcome{Reason: combat.EndVictory, Winner: combat.SideA}, out)
}

func TestDuel_DecidedEscape(t *testing.T) {
	d := newTestDuel("d", "s")
	d.Actor("p1").Fled = true
	out, over := d.Decided()
	require.True(t, over)
	assert.Equal(t, combat.EndEscape, out.Reason)
	assert.Equal(t, combat.SideNone, out.Winner)
}

func TestDuel_End(t *testing.T) {
	d := newTestDuel("d", "s")
	d.End(combat.Outcome{Reason: combat.EndTie})
	assert.False(t, d.Active)
	assert.Equal(t, combat.PhaseEnded, d.Phase)
	assert.Equal(t, "ended", d.Phase.String())
}
