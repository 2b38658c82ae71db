package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(debriefSchema().Definition)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"headline", "next_step"}, s.Required)
	assert.Equal(t, s.Required, s.PropertyOrdering)
	require.Len(t, s.Properties, 4)

	strengths := s.Properties["strengths"]
	assert.Equal(t, genai.TypeArray, strengths.Type)
	require.NotNil(t, strengths.Items)
	assert.Equal(t, genai.TypeString, strengths.Items.Type)
	require.NotNil(t, strengths.MaxItems)
	assert.EqualValues(t, 3, *strengths.MaxItems)
	assert.Nil(t, strengths.MinItems)

	assert.Equal(t, []string{"praise", "encourage", "caution"}, s.Properties["tone"].Enum)
}

func TestGeminiSchema_UnknownTypeFallsBackToString(t *testing.T) {
	s := geminiSchema(map[string]any{"type": "null", "description": "d"})
	assert.Equal(t, genai.TypeString, s.Type)
	assert.Equal(t, "d", s.Description)
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), GeminiConfig{})
	require.Error(t, err)
}

func geminiServer(t *testing.T, status int, body string) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "k", Model: "gemini-flash", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return p
}

func TestGemini_Generate(t *testing.T) {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": validDebrief}}},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 40, "candidatesTokenCount": 12},
		"modelVersion":  "gemini-2.5-flash",
	})
	p := geminiServer(t, http.StatusOK, string(b))
	assert.Equal(t, "gemini-2.5-flash", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{
		System:   "coach",
		Messages: []Message{{Role: RoleUser, Content: "metrics"}},
		Schema:   debriefSchema(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, validDebrief, string(resp.Content))
	assert.Equal(t, 52, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)
}

func TestGemini_BadRequestRejected(t *testing.T) {
	p := geminiServer(t, http.StatusBadRequest, `{"error":{"code":400,"message":"bad schema","status":"INVALID_ARGUMENT"}}`)

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var rejected *ErrRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusBadRequest, rejected.Status)
}
