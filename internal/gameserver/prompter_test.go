package gameserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoOptionPrompt(playerID string) Prompt {
	return Prompt{
		DuelID:   "d1",
		PlayerID: playerID,
		Turn:     1,
		Step:     StepAction,
		Options:  []Option{{ID: "attack"}, {ID: "flee"}},
	}
}

func TestQueuePrompter_AnswerDelivers(t *testing.T) {
	announced := make(chan Prompt, 1)
	q := NewQueuePrompter(func(p Prompt) { announced <- p })

	type result struct {
		sel Selection
		err error
	}
	done := make(chan result, 1)
	go func() {
		sel, err := q.Prompt(context.Background(), twoOptionPrompt("p1"))
		done <- result{sel, err}
	}()

	p := <-announced
	assert.Equal(t, "p1", p.PlayerID)
	pending, ok := q.Pending("p1")
	require.True(t, ok)
	assert.Equal(t, StepAction, pending.Step)

	assert.ErrorIs(t, q.Answer("p1", "dance"), ErrUnknownOption)
	require.NoError(t, q.Answer("p1", "flee"))

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "flee", r.sel.OptionID)
	_, ok = q.Pending("p1")
	assert.False(t, ok)
	assert.ErrorIs(t, q.Answer("p1", "flee"), ErrNoPendingPrompt)
}

func TestQueuePrompter_NoPendingPrompt(t *testing.T) {
	q := NewQueuePrompter(nil)
	assert.ErrorIs(t, q.Answer("ghost", "attack"), ErrNoPendingPrompt)
}

func TestQueuePrompter_DeadlineExpires(t *testing.T) {
	q := NewQueuePrompter(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Prompt(ctx, twoOptionPrompt("p1"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, ok := q.Pending("p1")
	assert.False(t, ok, "expired prompt must not linger")
	assert.ErrorIs(t, q.Answer("p1", "attack"), ErrNoPendingPrompt)
}

func TestQueuePrompter_OnePromptPerPlayer(t *testing.T) {
	announced := make(chan Prompt, 1)
	q := NewQueuePrompter(func(p Prompt) { announced <- p })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _, _ = q.Prompt(ctx, twoOptionPrompt("p1")) }()
	<-announced

	_, err := q.Prompt(context.Background(), twoOptionPrompt("p1"))
	assert.ErrorIs(t, err, ErrPromptPending)
}

func TestQueuePrompter_PlayersAreIndependent(t *testing.T) {
	announced := make(chan Prompt, 2)
	q := NewQueuePrompter(func(p Prompt) { announced <- p })

	results := make(chan string, 2)
	for _, id := range []string{"p1", "p2"} {
		go func() {
			sel, err := q.Prompt(context.Background(), twoOptionPrompt(id))
			if err == nil {
				results <- id + ":" + sel.OptionID
			}
		}()
	}
	<-announced
	<-announced

	require.NoError(t, q.Answer("p2", "attack"))
	require.NoError(t, q.Answer("p1", "flee"))
	got := []string{<-results, <-results}
	assert.ElementsMatch(t, []string{"p1:flee", "p2:attack"}, got)
}
