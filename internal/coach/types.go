package coach

import (
	"time"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/engine"
)

// Debrief is an LLM-written narrative of one finished level.
type Debrief struct {
	Headline    string
	Summary     string
	Strengths   []string
	FocusAreas  []string
	NextStep    string
	GeneratedAt time.Time
}

// Input holds everything the coach sees about a level. It is read-only
// context: nothing in the debrief flows back into scoring or difficulty.
type Input struct {
	Metrics          analytics.Metrics
	Concepts         []analytics.ConceptStats
	Result           *engine.LevelCompleted
	EmergencyOutcome string
	Difficulty       int
	Recommendations  []string
}
