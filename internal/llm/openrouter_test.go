package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{})
	require.Error(t, err)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "google/gemini-2.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "google/gemini-2.5-flash", p.ModelID(), "no alias mapping")
}

func TestOpenRouter_UsesCompatibleEndpoint(t *testing.T) {
	srv, got := chatServer(t, http.StatusOK, chatCompletion("google/gemini-2.5-flash", "Keep practising.", "stop"))
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "or-key", Model: "google/gemini-2.5-flash", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "Keep practising.", string(resp.Content))
	assert.Equal(t, "Bearer or-key", got.auth)
	assert.Equal(t, "google/gemini-2.5-flash", got.body["model"])
	assert.NotNil(t, LookupCost(resp.Model))
}
