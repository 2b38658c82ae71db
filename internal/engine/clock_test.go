package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cascade/internal/catalog"
)

func TestTick_RequiresStart(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.Tick(h.Epoch()))
	assert.Equal(t, 0, h.Elapsed())

	h.Start(false)
	assert.True(t, h.Tick(h.Epoch()))
	assert.Equal(t, 1, h.Elapsed())
	assert.Equal(t, 0, h.Status(), "no decay outside emergency")
}

func TestEmergency_DecayAndReplenish(t *testing.T) {
	h := newHarness(t)
	h.Start(true)
	require.Equal(t, 80, h.Status())
	require.Equal(t, 180, h.Countdown())

	h.tickN(5)
	assert.Equal(t, 70, h.Status())
	assert.Equal(t, 175, h.Countdown())
	assert.Equal(t, 5, h.Elapsed())

	h.Select("a")
	require.NoError(t, h.PlaceByClick("a"))
	assert.Equal(t, 85, h.Status())
}

func TestEmergency_ReplenishClamped(t *testing.T) {
	h := newHarness(t)
	h.Start(true)
	h.PlaceByDrag("a", catalog.Point{X: 100, Y: 100})
	assert.Equal(t, 95, h.Status())
	h.PlaceByDrag("b", catalog.Point{X: 300, Y: 100})
	assert.Equal(t, MaxStatus, h.Status())
}

func TestEmergency_PatientLost(t *testing.T) {
	h := newHarness(t)
	h.Start(true)
	h.tickN(45)

	assert.Equal(t, 0, h.Status(), "status floors at zero")
	assert.False(t, h.Emergency())
	assert.Equal(t, 45, h.Elapsed(), "session keeps running")

	var ended []EmergencyEnded
	for _, ev := range h.events {
		if e, ok := ev.(EmergencyEnded); ok {
			ended = append(ended, e)
		}
	}
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonPatientLost, ended[0].Reason)
	assert.Equal(t, ReasonPatientLost, h.Snapshot().EmergencyOutcome)

	// Replenish no longer applies once the emergency is over.
	h.PlaceByDrag("a", catalog.Point{X: 100, Y: 100})
	assert.Equal(t, 0, h.Status())
}

func TestEmergency_TimeUp(t *testing.T) {
	h := newHarness(t)
	h.Engine = New(threeFactorCatalog(t), Rules{ScenarioSeconds: 3, DecayPerTick: 1})
	h.Subscribe(func(ev Event) { h.events = append(h.events, ev) })
	h.Start(true)
	h.tickN(3)

	assert.Equal(t, 77, h.Status())
	assert.False(t, h.Emergency())
	assert.Equal(t, ReasonTimeUp, h.Snapshot().EmergencyOutcome)
}

func TestStopEmergency_KeepsStatus(t *testing.T) {
	h := newHarness(t)
	h.Start(true)
	h.tickN(4)
	h.StopEmergency()

	h.tickN(4)
	assert.Equal(t, 72, h.Status())
	assert.Equal(t, 8, h.Elapsed())
	assert.False(t, h.Emergency())
}

func TestStart_BumpsEpoch(t *testing.T) {
	h := newHarness(t)
	h.Start(false)
	first := h.Epoch()
	h.Start(true)
	assert.NotEqual(t, first, h.Epoch())
	assert.False(t, h.Tick(first))
	assert.Equal(t, 80, h.Status())
}

func TestRunner_SerialisesCommandsAndTicks(t *testing.T) {
	e := New(threeFactorCatalog(t), DefaultRules())
	r := NewRunner(e, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()

	require.NoError(t, r.Do(ctx, func(e *Engine) { e.Start(true) }))

	require.Eventually(t, func() bool {
		var elapsed int
		_ = r.Do(ctx, func(e *Engine) { elapsed = e.Elapsed() })
		return elapsed >= 2
	}, time.Second, 5*time.Millisecond)

	var score int
	require.NoError(t, r.Do(ctx, func(e *Engine) {
		e.Select("a")
		_ = e.PlaceByClick("a")
		score = e.Score()
	}))
	assert.Equal(t, 100, score)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.ErrorIs(t, r.Do(context.Background(), func(*Engine) {}), ErrRunnerStopped)
}
