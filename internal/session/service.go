// Package session runs one level at a time on top of the engine: it wires
// action recording, persists session events, folds the finished level into
// the learner profile and builds the end-of-level summary.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/logging"
	"github.com/abhisek/cascade/internal/store"
)

// SnapshotsKept is how many profile snapshots are retained per user.
const SnapshotsKept = 20

// Deps are the collaborators of a Service. Events and Snapshots may be nil
// for an in-memory run.
type Deps struct {
	Catalog   *catalog.Catalog
	Rules     engine.Rules
	Events    store.EventRepo
	Snapshots store.SnapshotRepo
	Profiles  *analytics.ProfileCache
	UserID    string
	// Listeners are subscribed to every level's engine.
	Listeners []engine.Listener
	Log       *slog.Logger
	Now       func() time.Time
}

// Service creates and finishes levels for one user.
type Service struct {
	d   Deps
	log *slog.Logger
}

// NewService creates a Service.
func NewService(d Deps) *Service {
	if d.Profiles == nil {
		d.Profiles = analytics.NewProfileCache(analytics.MinDifficulty)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{d: d, log: logging.OrDiscard(d.Log)}
}

// Catalog returns the catalog levels are built from.
func (s *Service) Catalog() *catalog.Catalog { return s.d.Catalog }

// UserID returns the learner the service plays for.
func (s *Service) UserID() string { return s.d.UserID }

// LoadProfile seeds the profile cache from the latest stored snapshot and
// returns the learner's profile.
func (s *Service) LoadProfile(ctx context.Context) (analytics.Profile, error) {
	if s.d.Snapshots != nil {
		snap, err := s.d.Snapshots.Latest(ctx, s.d.UserID)
		if err != nil {
			return analytics.Profile{}, fmt.Errorf("load profile: %w", err)
		}
		if snap != nil {
			s.d.Profiles.Restore(analytics.Profile{
				UserID:     s.d.UserID,
				Difficulty: snap.Data.Difficulty,
				Sessions:   snap.Data.Sessions,
				Metrics:    snap.Data.Metrics,
				UpdatedAt:  snap.Timestamp,
			})
		}
	}
	return s.d.Profiles.Get(s.d.UserID), nil
}

// Profile returns the cached profile.
func (s *Service) Profile() analytics.Profile {
	return s.d.Profiles.Get(s.d.UserID)
}

// NewLevel builds an engine for a fresh level and records its start. The
// engine is returned unstarted unless start is set.
func (s *Service) NewLevel(ctx context.Context, emergency, start bool, opts ...engine.Option) (*Level, error) {
	lvl := &Level{
		Log:        analytics.NewLog(),
		Emergency:  emergency,
		Difficulty: s.Profile().Difficulty,
	}

	var rec analytics.Recorder = lvl.Log
	if s.d.Events != nil {
		rec = analytics.Tee(lvl.Log, store.NewActionRecorder(s.d.Events, s.log))
	}
	opts = append([]engine.Option{
		engine.WithRecorder(rec),
		engine.WithLogger(s.log),
		engine.WithUser(s.d.UserID),
		engine.WithClock(s.d.Now),
	}, opts...)

	lvl.Engine = engine.New(s.d.Catalog, s.d.Rules, opts...)
	for _, l := range s.d.Listeners {
		lvl.Engine.Subscribe(l)
	}

	if err := s.appendSession(ctx, lvl, store.SessionStart); err != nil {
		return nil, err
	}
	if start {
		lvl.Engine.Start(emergency)
	}
	return lvl, nil
}

// Restart resets the level's engine and records the abandoned attempt.
func (s *Service) Restart(ctx context.Context, lvl *Level) error {
	if !lvl.Engine.Completed() {
		if err := s.appendSession(ctx, lvl, store.SessionAbandon); err != nil {
			return err
		}
	}
	lvl.Engine.Reset()
	lvl.finished = false
	if err := s.appendSession(ctx, lvl, store.SessionStart); err != nil {
		return err
	}
	lvl.Engine.Start(lvl.Emergency)
	return nil
}

// Closing is a level's end state captured by Close. It holds no reference to
// the engine, so Persist may run on any goroutine.
type Closing struct {
	Summary *Summary
	event   *store.SessionEventData
	profile *analytics.Profile
}

// Finish closes the level and persists the result. A level that is not
// completed is recorded as abandoned. Finish is idempotent.
func (s *Service) Finish(ctx context.Context, lvl *Level) (*Summary, error) {
	return s.Persist(ctx, s.Close(lvl))
}

// Close freezes the level: it snapshots the engine, computes analytics over
// the level's actions and adapts the profile cache. It must run on the
// goroutine that owns the engine. Closing a closed level returns a Closing
// with nothing left to persist.
func (s *Service) Close(lvl *Level) *Closing {
	if lvl.finished {
		return &Closing{Summary: lvl.summary}
	}

	e := lvl.Engine
	snap := e.Snapshot()
	actions := lvl.Log.ForSession(snap.ID)
	concepts := analytics.ConceptMap(s.d.Catalog.ConceptMap())
	m := analytics.Analyze(actions, concepts)

	sum := &Summary{
		SessionID:        snap.ID,
		Result:           snap.Result,
		EmergencyOutcome: snap.EmergencyOutcome,
		Score:            snap.Score,
		Elapsed:          snap.Elapsed,
		Placed:           e.PlacedCount(),
		Total:            len(snap.Order),
		Metrics:          m,
		Concepts:         analytics.StatsByConcept(actions, concepts),
		Recommendations:  analytics.Recommend(m),
		Outcomes:         analytics.PredictOutcomes(m, s.d.Catalog.Concepts()),
		DifficultyBefore: lvl.Difficulty,
		DifficultyAfter:  lvl.Difficulty,
		FinishedAt:       s.d.Now(),
	}
	c := &Closing{Summary: sum}

	action := store.SessionAbandon
	if snap.Completed {
		action = store.SessionComplete
		p := s.d.Profiles.Update(s.d.UserID, m)
		sum.DifficultyAfter = p.Difficulty
		c.profile = &p
	}
	lvl.Difficulty = sum.DifficultyAfter
	ev := s.sessionEvent(lvl, action)
	c.event = &ev

	lvl.finished = true
	lvl.summary = sum
	return c
}

// Persist saves the profile snapshot and the session event captured by
// Close and returns the summary.
func (s *Service) Persist(ctx context.Context, c *Closing) (*Summary, error) {
	if c.event == nil {
		return c.Summary, nil
	}
	if c.profile != nil {
		if err := s.saveProfile(ctx, *c.profile); err != nil {
			return nil, err
		}
	}
	if err := s.appendEvent(ctx, *c.event); err != nil {
		return nil, err
	}
	sum := c.Summary
	s.log.Info("level finished", "session", sum.SessionID, "action", c.event.Action, "score", sum.Score,
		"accuracy", sum.Metrics.OverallAccuracy, "difficulty", sum.DifficultyAfter)
	return sum, nil
}

func (s *Service) appendSession(ctx context.Context, lvl *Level, action string) error {
	return s.appendEvent(ctx, s.sessionEvent(lvl, action))
}

func (s *Service) sessionEvent(lvl *Level, action string) store.SessionEventData {
	snap := lvl.Engine.Snapshot()
	return store.SessionEventData{
		SessionID:        snap.ID,
		UserID:           s.d.UserID,
		Action:           action,
		Score:            snap.Score,
		ElapsedSecs:      snap.Elapsed,
		Emergency:        lvl.Emergency,
		EmergencyOutcome: snap.EmergencyOutcome,
		Difficulty:       lvl.Difficulty,
		Placed:           lvl.Engine.PlacedCount(),
		Total:            len(snap.Order),
		At:               s.d.Now(),
	}
}

func (s *Service) appendEvent(ctx context.Context, ev store.SessionEventData) error {
	if s.d.Events == nil {
		return nil
	}
	if err := s.d.Events.AppendSessionEvent(ctx, ev); err != nil {
		return fmt.Errorf("record session %s: %w", ev.Action, err)
	}
	return nil
}

func (s *Service) saveProfile(ctx context.Context, p analytics.Profile) error {
	if s.d.Snapshots == nil {
		return nil
	}
	err := s.d.Snapshots.Save(ctx, &store.Snapshot{
		UserID:    s.d.UserID,
		Timestamp: p.UpdatedAt,
		Data: store.ProfileData{
			Difficulty: p.Difficulty,
			Sessions:   p.Sessions,
			Metrics:    p.Metrics,
		},
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := s.d.Snapshots.Prune(ctx, s.d.UserID, SnapshotsKept); err != nil {
		s.log.Warn("prune snapshots failed", "error", err)
	}
	return nil
}
