package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/rally/internal/engine"
	"github.com/roach88/rally/internal/ir"
	"github.com/roach88/rally/internal/rules"
)

// Default display names, shown until the players are named.
const (
	DefaultNameA = "HOME"
	DefaultNameB = "GUEST"
)

// Recorder persists the session's journal. *store.Store implements it.
type Recorder interface {
	WriteMatch(ctx context.Context, m ir.MatchRecord) error
	WriteEvent(ctx context.Context, e ir.EventRecord) error
}

// Sequencer hands out the logical seq stamped on each event.
// *engine.Clock and *testutil.DeterministicClock implement it.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Names are the display names of the two sides.
type Names struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Of returns the name shown for side.
func (n Names) Of(side ir.Side) string {
	if side == ir.SideB {
		return n.B
	}
	return n.A
}

// Session owns one scorekeeping session: the live match, the rules in
// force, the stopwatch and the journal.
//
// A Session is single-owner. Dispatch and the helpers must not be called
// concurrently; only the stopwatch may be driven from another goroutine.
type Session struct {
	match ir.Match
	rules ir.RuleSet
	names Names

	matchID    string
	matchRules ir.RuleSet // rules at the start of the current match
	recorded   bool       // MatchRecord for matchID has been written

	recorder Recorder
	logger   zerolog.Logger
	ids      engine.MatchIDGenerator
	clock    Sequencer
	watch    *Stopwatch
}

// Option configures a Session.
type Option func(*Session)

// WithRules sets the starting rule set. Defaults to rules.Default().
func WithRules(r ir.RuleSet) Option {
	return func(s *Session) {
		s.rules = r
	}
}

// WithRecorder journals every dispatched event to rec.
func WithRecorder(rec Recorder) Option {
	return func(s *Session) {
		s.recorder = rec
	}
}

// WithLogger sets the logger. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithMatchIDGenerator sets the source of match IDs.
// Defaults to engine.UUIDv7Generator.
func WithMatchIDGenerator(g engine.MatchIDGenerator) Option {
	return func(s *Session) {
		s.ids = g
	}
}

// WithClock sets the seq source. Defaults to a fresh engine.Clock.
func WithClock(c Sequencer) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithNames sets the display names. Empty names keep the defaults.
func WithNames(a, b string) Option {
	return func(s *Session) {
		if a != "" {
			s.names.A = a
		}
		if b != "" {
			s.names.B = b
		}
	}
}

// New creates a session with a fresh match.
func New(opts ...Option) *Session {
	s := &Session{
		match:  engine.Reset(),
		rules:  rules.Default(),
		names:  Names{A: DefaultNameA, B: DefaultNameB},
		logger: zerolog.Nop(),
		ids:    engine.UUIDv7Generator{},
		clock:  engine.NewClock(),
		watch:  NewStopwatch(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMatch()
	return s
}

// Dispatch applies ev to the live match.
//
// The transition is committed before the journal is written, so a non-nil
// error means the event took effect but could not be recorded.
func (s *Session) Dispatch(ctx context.Context, ev engine.Event) (engine.Outcome, error) {
	var out engine.Outcome
	s.match, s.rules, out = engine.Dispatch(s.match, ev, s.rules)
	seq := s.clock.Next()

	s.driveStopwatch(ev, out)

	s.logger.Debug().
		Int64("seq", seq).
		Str("match_id", s.matchID).
		Stringer("event", ev).
		Bool("accepted", out.Accepted).
		Str("reason", string(out.Reason)).
		Int("history_depth", out.HistoryDepth).
		Msg("event dispatched")

	if out.MatchCompleted {
		st := s.match.State
		s.logger.Info().
			Str("match_id", s.matchID).
			Str("winner", s.names.Of(st.Winner)).
			Int("sets_a", st.SetsA).
			Int("sets_b", st.SetsB).
			Str("elapsed", s.watch.String()).
			Msg("match completed")
	}

	err := s.journal(ctx, seq, ev, out)

	if out.Accepted && (ev.Kind == engine.KindMatchReset || ev.Kind == engine.KindRuleSetChanged) {
		s.startMatch()
	}
	return out, err
}

// Award gives a point to side.
func (s *Session) Award(ctx context.Context, side ir.Side) (engine.Outcome, error) {
	return s.Dispatch(ctx, engine.PointAwarded(side))
}

// Retract takes a point back from side.
func (s *Session) Retract(ctx context.Context, side ir.Side) (engine.Outcome, error) {
	return s.Dispatch(ctx, engine.PointRetracted(side))
}

func (s *Session) Undo(ctx context.Context) (engine.Outcome, error) {
	return s.Dispatch(ctx, engine.UndoRequested())
}

func (s *Session) Reset(ctx context.Context) (engine.Outcome, error) {
	return s.Dispatch(ctx, engine.MatchReset())
}

// ChangeRules switches to the rule set for target and starts a new match.
func (s *Session) ChangeRules(ctx context.Context, target int) (engine.Outcome, error) {
	return s.Dispatch(ctx, engine.RuleSetChanged(target))
}

// Match returns a deep copy of the live match.
func (s *Session) Match() ir.Match {
	return s.match.Clone()
}

func (s *Session) State() ir.MatchState {
	return s.match.State.Clone()
}

func (s *Session) Rules() ir.RuleSet {
	return s.rules
}

func (s *Session) MatchID() string {
	return s.matchID
}

func (s *Session) Names() Names {
	return s.names
}

func (s *Session) Stopwatch() *Stopwatch {
	return s.watch
}

func (s *Session) CanUndo() bool {
	return s.match.CanUndo()
}

// startMatch assigns a new match ID. Its MatchRecord is written lazily
// with the first event so that abandoned matches leave no empty record.
func (s *Session) startMatch() {
	s.matchID = s.ids.Generate()
	s.matchRules = s.rules
	s.recorded = false
}

func (s *Session) driveStopwatch(ev engine.Event, out engine.Outcome) {
	if !out.Accepted {
		return
	}
	switch ev.Kind {
	case engine.KindPointAwarded:
		if out.MatchCompleted {
			s.watch.Stop()
			return
		}
		s.watch.autoStart()
	case engine.KindMatchReset, engine.KindRuleSetChanged:
		s.watch.Reset()
	}
}

func (s *Session) journal(ctx context.Context, seq int64, ev engine.Event, out engine.Outcome) error {
	if s.recorder == nil {
		return nil
	}

	if !s.recorded {
		rec := ir.MatchRecord{
			ID:    s.matchID,
			Seq:   seq,
			Rules: s.matchRules,
			NameA: s.names.A,
			NameB: s.names.B,
		}
		if err := s.recorder.WriteMatch(ctx, rec); err != nil {
			return fmt.Errorf("journal match %s: %w", s.matchID, err)
		}
		s.recorded = true
	}

	payload := ev.Payload()
	id, err := ir.EventID(s.matchID, seq, string(ev.Kind), payload)
	if err != nil {
		return fmt.Errorf("event id for seq %d: %w", seq, err)
	}
	hash, err := ir.StateHash(s.match.State)
	if err != nil {
		return fmt.Errorf("state hash for seq %d: %w", seq, err)
	}

	rec := ir.EventRecord{
		ID:        id,
		MatchID:   s.matchID,
		Seq:       seq,
		Kind:      string(ev.Kind),
		Payload:   payload,
		Accepted:  out.Accepted,
		Reason:    string(out.Reason),
		State:     s.match.State.Clone(),
		StateHash: hash,
	}
	if err := s.recorder.WriteEvent(ctx, rec); err != nil {
		return fmt.Errorf("journal event seq %d: %w", seq, err)
	}
	return nil
}
