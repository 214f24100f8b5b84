package gameserver

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/game/combat"
)

// EventKind classifies one narrated duel event.
type EventKind string

const (
	EventAttack     EventKind = "attack"
	EventMiss       EventKind = "miss"
	EventHeal       EventKind = "heal"
	EventCure       EventKind = "cure"
	EventStimulant  EventKind = "stimulant"
	EventRejected   EventKind = "rejected"
	EventFlee       EventKind = "flee"
	EventFleeFailed EventKind = "flee_failed"
	EventSkipped    EventKind = "skipped"
	EventIdle       EventKind = "idle"
	EventAffliction EventKind = "affliction"
	EventBreak      EventKind = "break"
	EventDeath      EventKind = "death"
	EventDrop       EventKind = "drop"
	EventProgress   EventKind = "progress"
)

// Event is one narrated outcome. Text is the human-readable line; the other
// fields let a chat layer style it.
type Event struct {
	Kind     EventKind
	ActorID  string
	TargetID string
	Damage   int
	Reduced  int
	Healed   int
	Text     string
}

// Reward summarises what one player gained from an NPC kill.
type Reward struct {
	PlayerID string
	NPC      string
	XP       int
	// Items holds the names of drops added to the inventory.
	Items []string
	// LeftBehind holds the names of drops that did not fit.
	LeftBehind []string
}

// TurnReport is the ordered narration of one executed turn.
type TurnReport struct {
	DuelID  string
	Scope   string
	Turn    int
	Events  []Event
	Rewards []Reward
}

// Lines returns the narration text of every event in order.
func (r TurnReport) Lines() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Text)
	}
	return out
}

// Summary is the terminal notice of a duel.
type Summary struct {
	DuelID  string
	Scope   string
	Turns   int
	Outcome combat.Outcome
	// Winners holds the names of the live actors on the winning side.
	Winners []string
	Text    string
}

// Sink receives duel narration. Formatting and delivery belong to the caller.
type Sink interface {
	TurnReport(ctx context.Context, r TurnReport)
	DuelEnded(ctx context.Context, s Summary)
}

// LogSink writes narration to a zap logger. It is the sink used when no chat
// layer is attached.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink.
//
// Precondition: logger must be non-nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// TurnReport logs one line per event and one per reward.
func (s *LogSink) TurnReport(_ context.Context, r TurnReport) {
	for _, e := range r.Events {
		s.logger.Info(e.Text,
			zap.String("duel_id", r.DuelID),
			zap.Int("turn", r.Turn),
			zap.String("event", string(e.Kind)),
		)
	}
	for _, rw := range r.Rewards {
		s.logger.Info("reward",
			zap.String("duel_id", r.DuelID),
			zap.String("player", rw.PlayerID),
			zap.String("npc", rw.NPC),
			zap.Int("xp", rw.XP),
			zap.Strings("items", rw.Items),
			zap.Strings("left_behind", rw.LeftBehind),
		)
	}
}

// DuelEnded logs the summary.
func (s *LogSink) DuelEnded(_ context.Context, sum Summary) {
	s.logger.Info(sum.Text,
		zap.String("duel_id", sum.DuelID),
		zap.String("reason", string(sum.Outcome.Reason)),
		zap.Int("turns", sum.Turns),
		zap.Strings("winners", sum.Winners),
	)
}

// Tee fans every notice out to each sink in order.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) TurnReport(ctx context.Context, r TurnReport) {
	for _, s := range t {
		s.TurnReport(ctx, r)
	}
}

func (t teeSink) DuelEnded(ctx context.Context, sum Summary) {
	for _, s := range t {
		s.DuelEnded(ctx, sum)
	}
}
