package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// debriefSchema mirrors the shape the coach requests.
func debriefSchema() *Schema {
	return &Schema{
		Name:        "test-debrief",
		Description: "Level debrief",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"headline":  map[string]any{"type": "string"},
				"next_step": map[string]any{"type": "string"},
				"strengths": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"maxItems": 3,
				},
				"tone": map[string]any{"type": "string", "enum": []any{"praise", "encourage", "caution"}},
			},
			"required":             []any{"headline", "next_step"},
			"additionalProperties": false,
		},
	}
}

const validDebrief = `{"headline":"Solid run","next_step":"Try emergency mode","strengths":["initiation"]}`

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(validDebrief), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "coach"})
	require.NoError(t, err)
	assert.JSONEq(t, validDebrief, string(resp.Content))
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, "mock", resp.Model)

	_, err = mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail, "empty queue")

	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "coach", mock.Calls[0].System)
	assert.Equal(t, "mock", mock.ModelID())
}

func TestMockProvider_AddResponse(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Content: json.RawMessage(`{}`)})
	_, err := mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
}

func TestFinish(t *testing.T) {
	usage := newUsage(3, 4)

	resp, err := finish(Request{}, json.RawMessage("free text"), usage, "m", StopMaxTokens)
	require.NoError(t, err, "free text is never validated")
	assert.Equal(t, StopMaxTokens, resp.StopReason)
	assert.Equal(t, 7, resp.Usage.TotalTokens)

	req := Request{Schema: debriefSchema()}
	_, err = finish(req, json.RawMessage(`{"headline":`), usage, "m", StopMaxTokens)
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)

	_, err = finish(req, json.RawMessage(`{"headline":"x"}`), usage, "m", StopEnd)
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)

	resp, err = finish(req, json.RawMessage(validDebrief), usage, "m-2025", StopEnd)
	require.NoError(t, err)
	assert.Equal(t, "m-2025", resp.Model)
}

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("cause")

	var rl *ErrRateLimit
	require.ErrorAs(t, classifyStatus(429, 2*time.Second, cause), &rl)
	assert.Equal(t, 2*time.Second, rl.RetryAfter)

	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, classifyStatus(503, 0, cause), &unavail)
	assert.ErrorAs(t, classifyStatus(0, 0, cause), &unavail)

	var rejected *ErrRejected
	require.ErrorAs(t, classifyStatus(401, 0, cause), &rejected)
	assert.Equal(t, 401, rejected.Status)
	assert.ErrorIs(t, rejected, cause)
}

func TestRetryAfterHeader(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Zero(t, retryAfter(nil))
	assert.Zero(t, retryAfter(resp))

	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, retryAfter(resp))

	resp.Header.Set("Retry-After", "Wed, 21 Oct 2026 07:28:00 GMT")
	assert.Zero(t, retryAfter(resp))
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-haiku-4-5", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "gpt-4o-mini", resolveModel("gpt-mini", openaiModels))
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gpt-4.1-nano", resolveModel("gpt-4.1-nano", openaiModels))
	assert.Equal(t, "vendor/model", resolveModel("vendor/model", nil))
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  *ModelCost
	}{
		{"claude-haiku-4-5", &ModelCost{1, 5}},
		{"claude-haiku-4-5-20251001", &ModelCost{1, 5}},
		{"gpt-4o-mini-2024-07-18", &ModelCost{0.15, 0.6}},
		{"google/gemini-2.5-flash", &ModelCost{0.3, 2.5}},
		{"mock", nil},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupCost(tt.model))
		})
	}

	c := LookupCost("gpt-4o")
	require.NotNil(t, c)
	assert.InDelta(t, 0.0125, c.Cost(1000, 1000), 1e-9)
}

func TestPurposeContext(t *testing.T) {
	assert.Equal(t, PurposeUnknown, PurposeFrom(context.Background()))
	ctx := WithPurpose(context.Background(), PurposeDebrief)
	assert.Equal(t, PurposeDebrief, PurposeFrom(ctx))
}
