package home

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/session"
)

func newHome(t *testing.T) (*HomeScreen, *analytics.ProfileCache) {
	t.Helper()
	profiles := analytics.NewProfileCache(analytics.MinDifficulty)
	svc := session.NewService(session.Deps{
		Catalog:  catalog.Default(),
		Rules:    engine.DefaultRules(),
		Profiles: profiles,
		UserID:   "u",
	})
	return New(svc, nil, nil, nil), profiles
}

func TestHome_MenuPushesBoard(t *testing.T) {
	h, _ := newHome(t)

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Cascade Board", push.Screen.Title())

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push = cmd().(router.PushScreenMsg)
	assert.Equal(t, "Emergency", push.Screen.Title())
}

func TestHome_HistoryDisabledWithoutStore(t *testing.T) {
	h, _ := newHome(t)
	for range 3 {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	assert.Equal(t, itemQuit, h.menu.Selected, "history is skipped")
}

func TestHome_FactorsPushesFactorMap(t *testing.T) {
	h, _ := newHome(t)
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Factor Map", push.Screen.Title())
}

func TestHome_ViewShowsProfile(t *testing.T) {
	h, profiles := newHome(t)
	profiles.Restore(analytics.Profile{
		UserID:     "u",
		Difficulty: 4,
		Sessions:   3,
		Metrics:    analytics.Metrics{StrugglingConcepts: []string{"amplification"}, OverallAccuracy: 0.75},
	})

	view := h.View(120, 40)
	assert.Contains(t, view, "LEVEL 4")
	assert.Contains(t, view, "1 TO REVIEW")
	assert.Contains(t, view, "3 levels played")
	assert.Contains(t, view, "PLAY")
	assert.Contains(t, view, "coach debriefs")
}

func TestTraceFor(t *testing.T) {
	assert.Equal(t, TraceSteady, traceFor(stats{}, 6))
	assert.Equal(t, TraceUnstable, traceFor(stats{struggling: 1, mastered: 6}, 6))
	assert.Equal(t, TraceStrong, traceFor(stats{mastered: 3}, 6))
}
