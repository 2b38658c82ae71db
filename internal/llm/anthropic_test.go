package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anthropicServer answers every request with the given status and body and
// captures the last request body.
func anthropicServer(t *testing.T, status int, header http.Header, body string, got *map[string]any) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, got)
		}
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return p
}

func anthropicMessage(text, stop string) string {
	msg := map[string]any{
		"id":          "msg_01",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 45},
	}
	b, _ := json.Marshal(msg)
	return string(b)
}

func TestNewAnthropicProvider(t *testing.T) {
	_, err := NewAnthropicProvider(AnthropicConfig{})
	require.Error(t, err)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-sonnet"})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", p.ModelID())
}

func TestAnthropic_Generate(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, http.StatusOK, nil, anthropicMessage(validDebrief, "end_turn"), &body)

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a hematology coach.",
		Messages:  []Message{{Role: RoleUser, Content: "Level 3 metrics"}},
		Schema:    debriefSchema(),
		MaxTokens: 512,
	})
	require.NoError(t, err)
	assert.JSONEq(t, validDebrief, string(resp.Content))
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 120, OutputTokens: 45, TotalTokens: 165}, resp.Usage)

	assert.Equal(t, "claude-haiku-4-5", body["model"])
	assert.EqualValues(t, 512, body["max_tokens"])
	assert.NotNil(t, body["system"])
	assert.NotNil(t, body["output_config"], "schema requests native structured output")
}

func TestAnthropic_Truncated(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, nil, anthropicMessage(`{"headline":"Sol`, "max_tokens"), nil)

	_, err := p.Generate(context.Background(), Request{Schema: debriefSchema(), MaxTokens: 8,
		Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
}

func TestAnthropic_Errors(t *testing.T) {
	errBody := `{"type":"error","error":{"type":"api_error","message":"nope"}}`
	req := Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 16}

	t.Run("rate limit", func(t *testing.T) {
		p := anthropicServer(t, http.StatusTooManyRequests, http.Header{"Retry-After": {"4"}}, errBody, nil)
		_, err := p.Generate(context.Background(), req)
		var rl *ErrRateLimit
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, 4*time.Second, rl.RetryAfter)
	})
	t.Run("overloaded", func(t *testing.T) {
		p := anthropicServer(t, 529, nil, errBody, nil)
		_, err := p.Generate(context.Background(), req)
		var unavail *ErrProviderUnavailable
		require.ErrorAs(t, err, &unavail)
	})
	t.Run("bad key", func(t *testing.T) {
		p := anthropicServer(t, http.StatusUnauthorized, nil, errBody, nil)
		_, err := p.Generate(context.Background(), req)
		var rejected *ErrRejected
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, http.StatusUnauthorized, rejected.Status)
	})
}
