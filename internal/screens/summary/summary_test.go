package summary

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/coach"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/llm"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/session"
)

func testSummary() *session.Summary {
	return &session.Summary{
		SessionID: "s1",
		Result:    &engine.LevelCompleted{Score: 3200, Elapsed: 140, TimeBonus: 1600},
		Score:     3200,
		Elapsed:   140,
		Placed:    16,
		Total:     16,
		Metrics: analytics.Metrics{
			Attempts:        20,
			Correct:         16,
			OverallAccuracy: 0.8,
		},
		Concepts: []analytics.ConceptStats{
			{Concept: "initiation", Attempts: 4, Correct: 4},
			{Concept: "amplification", Attempts: 6, Correct: 2},
		},
		Recommendations:  []string{"Review amplification."},
		Outcomes:         []analytics.Outcome{{Concept: "amplification", Mastery: 0.3, ReviewIn: 24 * time.Hour}},
		DifficultyBefore: 2,
		DifficultyAfter:  3,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSummary(), nil)
	assert.Equal(t, "Level Summary", s.Title())
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testSummary(), nil)
	view := s.View(100, 40)
	assert.Contains(t, view, "Cascade complete!")
	assert.Contains(t, view, "Score: 3200")
	assert.Contains(t, view, "Difficulty 2 > 3")
	assert.Contains(t, view, "amplification")
	assert.Contains(t, view, "Review amplification.")
	assert.NotContains(t, view, "Coach")
}

func TestSummaryScreen_Abandoned(t *testing.T) {
	sum := testSummary()
	sum.Result = nil
	sum.EmergencyOutcome = engine.ReasonPatientLost
	view := New(sum, nil).View(100, 40)
	assert.Contains(t, view, "Level ended")
	assert.Contains(t, view, engine.ReasonPatientLost)
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, k := range []tea.KeyPressMsg{{Code: tea.KeyEnter}, {Code: tea.KeyEscape}} {
		s := New(testSummary(), nil)
		_, cmd := s.Update(k)
		require.NotNil(t, cmd)
		assert.IsType(t, router.PopScreenMsg{}, cmd())
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	assert.Len(t, New(testSummary(), nil).KeyHints(), 2)
}

func TestSummaryScreen_Debrief(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"headline": "Strong finish",
		"summary": "Fast and accurate.",
		"strengths": ["initiation"],
		"focus_areas": ["amplification"],
		"next_step": "Replay in emergency mode."
	}`)})
	s := New(testSummary(), coach.NewService(mock, coach.DefaultConfig(), nil))

	require.NotNil(t, s.Init())
	assert.Contains(t, s.View(100, 60), "Writing your debrief")

	require.Eventually(t, func() bool {
		s.Update(debriefPollMsg{})
		return !s.waiting
	}, 5*time.Second, 10*time.Millisecond)

	view := s.View(100, 60)
	assert.Contains(t, view, "Strong finish")
	assert.Contains(t, view, "Next: Replay in emergency mode.")
	assert.True(t, strings.Contains(mock.Calls[0].Messages[0].Content, "Final score: 3200"))
}
