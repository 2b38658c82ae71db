// Package engine implements the placement game state machine: factor
// selection, click and drag placement, scoring, the emergency patient-status
// model and one-shot level completion.
//
// An Engine is not safe for concurrent use. Exactly one owner drives it,
// either a bubbletea Update loop or a Runner.
package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/logging"
)

// FactorState is the session-mutable state of one factor.
type FactorState struct {
	catalog.Factor

	// Current is the last position the factor was put at; nil means not
	// yet attempted.
	Current *catalog.Point
}

// Placed reports whether the factor sits on its target. It is derived from
// Current and never stored.
func (f FactorState) Placed() bool {
	return f.Current != nil && *f.Current == f.Target
}

// Attempted reports whether the factor has a position, correct or not.
func (f FactorState) Attempted() bool {
	return f.Current != nil
}

// Session is the per-attempt game state.
type Session struct {
	ID        string
	StartedAt time.Time
	Started   bool

	// Order preserves catalog order for display.
	Order   []string
	Factors map[string]*FactorState

	// Selected is the armed factor for click placement; empty means none.
	Selected string

	Score   int
	Elapsed int

	Emergency bool
	Status    int
	Countdown int
	// EmergencyOutcome is set when the emergency ended before completion.
	EmergencyOutcome string

	Completed bool
	Result    *LevelCompleted
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder sets the action recorder.
func WithRecorder(r analytics.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the wall clock used for latencies and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithUser sets the user id stamped on action records.
func WithUser(id string) Option {
	return func(e *Engine) { e.userID = id }
}

// Engine owns one Session and processes input events against it.
type Engine struct {
	cat      *catalog.Catalog
	rules    Rules
	recorder analytics.Recorder
	log      *slog.Logger
	now      func() time.Time
	userID   string

	listeners []Listener

	s     *Session
	epoch uint64

	// armedAt and dragStart stamp the start of a response for latency.
	armedAt   time.Time
	dragStart map[string]time.Time
	lastInput time.Time
}

// New creates an Engine over the catalog with a fresh, not yet started session.
func New(cat *catalog.Catalog, rules Rules, opts ...Option) *Engine {
	e := &Engine{
		cat:   cat,
		rules: rules.normalize(),
		log:   logging.Discard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.s = e.newSession()
	return e
}

func (e *Engine) newSession() *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Factors: make(map[string]*FactorState, e.cat.Len()),
	}
	for _, f := range e.cat.Factors() {
		s.Order = append(s.Order, f.ID)
		s.Factors[f.ID] = &FactorState{Factor: f}
	}
	e.armedAt = time.Time{}
	e.dragStart = make(map[string]time.Time)
	e.lastInput = e.now()
	return s
}

// Subscribe registers a listener for engine events.
func (e *Engine) Subscribe(l Listener) {
	if l != nil {
		e.listeners = append(e.listeners, l)
	}
}

func (e *Engine) emit(ev Event) {
	for _, l := range e.listeners {
		l(ev)
	}
}

func (e *Engine) record(kind analytics.ActionKind, factorID string, latency time.Duration, correct bool) {
	if e.recorder == nil {
		return
	}
	e.recorder.RecordAction(analytics.ActionRecord{
		Kind:      kind,
		FactorID:  factorID,
		Latency:   latency,
		Correct:   correct,
		At:        e.now(),
		SessionID: e.s.ID,
		UserID:    e.userID,
	})
}

// Catalog returns the engine's factor catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Rules returns the effective rules.
func (e *Engine) Rules() Rules { return e.rules }

// SessionID returns the current session id.
func (e *Engine) SessionID() string { return e.s.ID }

// Score returns the current score.
func (e *Engine) Score() int { return e.s.Score }

// Elapsed returns elapsed session seconds.
func (e *Engine) Elapsed() int { return e.s.Elapsed }

// Selected returns the armed factor id, or "".
func (e *Engine) Selected() string { return e.s.Selected }

// Completed reports whether the level is complete.
func (e *Engine) Completed() bool { return e.s.Completed }

// Factor returns a copy of a factor's state.
func (e *Engine) Factor(id string) (FactorState, bool) {
	f, ok := e.s.Factors[id]
	if !ok {
		return FactorState{}, false
	}
	return copyState(f), true
}

// Snapshot returns a deep copy of the session for rendering or inspection.
func (e *Engine) Snapshot() Session {
	s := *e.s
	s.Order = append([]string(nil), e.s.Order...)
	s.Factors = make(map[string]*FactorState, len(e.s.Factors))
	for id, f := range e.s.Factors {
		c := copyState(f)
		s.Factors[id] = &c
	}
	if e.s.Result != nil {
		r := *e.s.Result
		s.Result = &r
	}
	return s
}

// PlacedCount returns how many factors are placed.
func (e *Engine) PlacedCount() int {
	n := 0
	for _, f := range e.s.Factors {
		if f.Placed() {
			n++
		}
	}
	return n
}

func copyState(f *FactorState) FactorState {
	c := *f
	c.Antagonists = append([]string(nil), f.Antagonists...)
	if f.Current != nil {
		p := *f.Current
		c.Current = &p
	}
	return c
}
