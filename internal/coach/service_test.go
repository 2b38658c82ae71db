package coach

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/llm"
)

func validDebriefJSON() json.RawMessage {
	return json.RawMessage(`{
		"headline": "Solid common pathway, shaky intrinsic arm",
		"summary": "You placed every factor and kept the patient stable.",
		"strengths": ["fast thrombin placement"],
		"focus_areas": ["intrinsic pathway order"],
		"next_step": "Replay without hints and trace IX to X."
	}`)
}

func testInput() Input {
	return Input{
		Metrics: analytics.Metrics{
			Attempts:            10,
			Correct:             7,
			OverallAccuracy:     0.7,
			AverageResponseTime: 4200 * time.Millisecond,
			StrugglingConcepts:  []string{"intrinsic"},
		},
		Concepts:        []analytics.ConceptStats{{Concept: "intrinsic", Attempts: 4, Correct: 2}},
		Result:          &engine.LevelCompleted{Score: 2800, Elapsed: 240, TimeBonus: 600},
		Difficulty:      2,
		Recommendations: []string{"Review the intrinsic pathway."},
	}
}

func TestService_Generate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validDebriefJSON()})
	svc := NewService(mock, DefaultConfig(), nil)

	d, err := svc.Generate(t.Context(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "Solid common pathway, shaky intrinsic arm", d.Headline)
	assert.Equal(t, []string{"intrinsic pathway order"}, d.FocusAreas)
	assert.False(t, d.GeneratedAt.IsZero())

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, DebriefSchema, req.Schema)
	assert.Equal(t, DefaultConfig().MaxTokens, req.MaxTokens)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Final score: 2800")
	assert.Contains(t, msg, "intrinsic: 2/4 correct")
	assert.Contains(t, msg, "Review the intrinsic pathway.")
}

func TestService_GenerateError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("boom")})
	svc := NewService(mock, DefaultConfig(), nil)

	_, err := svc.Generate(t.Context(), testInput())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "debrief generation"))
}

// blockingProvider waits for the request context to end.
type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestService_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	svc := NewService(blockingProvider{}, cfg, nil)

	_, err := svc.Generate(t.Context(), testInput())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestService_BadJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`"nope"`)})
	svc := NewService(mock, DefaultConfig(), nil)

	_, err := svc.Generate(t.Context(), testInput())
	require.ErrorContains(t, err, "parse debrief response")
}

func TestService_RequestAndConsume(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validDebriefJSON()})
	svc := NewService(mock, DefaultConfig(), nil)

	_, ok, _ := svc.ConsumeDebrief()
	assert.False(t, ok, "nothing requested yet")

	svc.RequestDebrief(t.Context(), testInput())

	var (
		d   *Debrief
		err error
	)
	require.Eventually(t, func() bool {
		d, ok, err = svc.ConsumeDebrief()
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Replay without hints and trace IX to X.", d.NextStep)

	_, ok, _ = svc.ConsumeDebrief()
	assert.False(t, ok, "slot cleared after consumption")
}

func TestPrompt_IncompleteLevel(t *testing.T) {
	in := testInput()
	in.Result = nil
	in.EmergencyOutcome = engine.ReasonPatientLost

	msg := buildDebriefUserMessage(in)
	assert.Contains(t, msg, "Level not completed")
	assert.Contains(t, msg, "Emergency ended early: patient-lost")
	assert.Contains(t, msg, "Struggling concepts:\n- intrinsic")
	assert.NotContains(t, msg, "Mastered concepts")
}
