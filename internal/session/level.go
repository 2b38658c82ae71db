package session

import (
	"cmp"
	"slices"
	"time"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/engine"
)

// Level is one playable attempt: the engine plus the in-memory action log
// analytics read from.
type Level struct {
	Engine *engine.Engine
	Log    *analytics.Log

	Emergency bool
	// Difficulty is the learner's level when the attempt began. It is
	// displayed only; placement correctness ignores it.
	Difficulty int

	finished bool
	summary  *Summary
}

// Summary is the end-of-level report.
type Summary struct {
	SessionID        string
	Result           *engine.LevelCompleted
	EmergencyOutcome string
	Score            int
	Elapsed          int
	Placed           int
	Total            int

	Metrics         analytics.Metrics
	Concepts        []analytics.ConceptStats
	Recommendations []string
	Outcomes        []analytics.Outcome

	DifficultyBefore int
	DifficultyAfter  int
	FinishedAt       time.Time
}

// Completed reports whether the level was finished.
func (s *Summary) Completed() bool { return s.Result != nil }

// DueReviews returns the outcomes whose review date falls within d of the
// summary time, soonest first.
func (s *Summary) DueReviews(d time.Duration) []analytics.Outcome {
	var out []analytics.Outcome
	for _, o := range s.Outcomes {
		if o.ReviewIn <= d {
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b analytics.Outcome) int {
		return cmp.Compare(a.ReviewIn, b.ReviewIn)
	})
	return out
}
