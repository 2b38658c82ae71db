package board

import (
	"slices"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/ui/layout"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/session"
)

var (
	keyEnter = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyTab   = tea.KeyPressMsg{Code: tea.KeyTab}
	keyDown  = tea.KeyPressMsg{Code: tea.KeyDown}
	keyUp    = tea.KeyPressMsg{Code: tea.KeyUp}
	keyLeft  = tea.KeyPressMsg{Code: tea.KeyLeft}
	keyRight = tea.KeyPressMsg{Code: tea.KeyRight}
)

func runeKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// collect runs cmd and flattens batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func newBoard(t *testing.T, emergency bool) *BoardScreen {
	t.Helper()
	svc := session.NewService(session.Deps{
		Catalog: catalog.Default(),
		Rules:   engine.DefaultRules(),
		UserID:  "u",
	})
	b := New(svc, emergency, nil, nil)
	msgs := collect(b.Init())
	require.Len(t, msgs, 1)
	b.Update(msgs[0])
	require.NotNil(t, b.lvl)
	return b
}

// press feeds key presses and returns the messages of the last command.
func press(b *BoardScreen, keys ...tea.KeyPressMsg) []tea.Msg {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = b.Update(k)
	}
	return collect(cmd)
}

// placeCursorFactor places the factor under the list cursor by click.
func placeCursorFactor(t *testing.T, b *BoardScreen) []tea.Msg {
	t.Helper()
	id := b.cursorFactor()
	press(b, keyEnter, keyTab)
	slot := slices.Index(b.slots, id)
	require.GreaterOrEqual(t, slot, 0)
	for b.slotCursor != slot {
		press(b, keyDown)
	}
	msgs := press(b, keyEnter)
	press(b, keyTab)
	return msgs
}

func TestBoard_Title(t *testing.T) {
	b := newBoard(t, false)
	assert.Equal(t, "Cascade Board", b.Title())
	assert.Equal(t, "Emergency", newBoard(t, true).Title())
}

func TestBoard_ClickPlacement(t *testing.T) {
	b := newBoard(t, false)
	id := b.cursorFactor()

	placeCursorFactor(t, b)

	f, _ := b.lvl.Engine.Factor(id)
	assert.True(t, f.Placed())
	assert.Equal(t, engine.DefaultRules().BaseAward, b.lvl.Engine.Score())
	assert.Contains(t, b.notice, "placed")
	assert.False(t, b.noticeBad)
}

func TestBoard_ClickWrongSlot(t *testing.T) {
	b := newBoard(t, false)
	id := b.cursorFactor()
	press(b, keyEnter, keyTab)
	for b.slots[b.slotCursor] == id {
		press(b, keyDown)
	}
	press(b, keyEnter)

	assert.Equal(t, id, b.lvl.Engine.Selected(), "selection survives a miss")
	assert.True(t, b.noticeBad)
	assert.Zero(t, b.lvl.Engine.Score())
}

func TestBoard_ClickWithoutSelection(t *testing.T) {
	b := newBoard(t, false)
	press(b, keyTab, keyEnter)
	assert.Contains(t, b.notice, "Select a factor first")
}

func TestBoard_DragPlacement(t *testing.T) {
	b := newBoard(t, false)
	id := b.cursorFactor()
	f, _ := b.svc.Catalog().Get(id)

	press(b, runeKey('d'))
	require.Equal(t, focusDrag, b.focus)

	// Walk the drag cursor onto the target.
	for b.dragPos.X+dragStep/2 < f.Target.X {
		press(b, keyRight)
	}
	for b.dragPos.X-dragStep/2 > f.Target.X {
		press(b, keyLeft)
	}
	for b.dragPos.Y+dragStep/2 < f.Target.Y {
		press(b, keyDown)
	}
	for b.dragPos.Y-dragStep/2 > f.Target.Y {
		press(b, keyUp)
	}
	press(b, keyEnter)

	st, _ := b.lvl.Engine.Factor(id)
	assert.True(t, st.Placed())
	assert.Equal(t, focusFactors, b.focus)
}

func TestBoard_DragMissThenResetIncorrect(t *testing.T) {
	b := newBoard(t, false)
	id := b.cursorFactor()
	f, _ := b.svc.Catalog().Get(id)

	press(b, runeKey('d'))
	b.dragPos = catalog.Point{X: f.Target.X + 400, Y: f.Target.Y}
	press(b, keyEnter)

	st, _ := b.lvl.Engine.Factor(id)
	require.True(t, st.Attempted())
	require.False(t, st.Placed())
	assert.Contains(t, b.View(120, 40), strings.ToLower(id))

	press(b, runeKey('r'))
	st, _ = b.lvl.Engine.Factor(id)
	assert.False(t, st.Attempted())
	assert.Contains(t, b.notice, "Cleared 1")
}

func TestBoard_StaleTickIgnored(t *testing.T) {
	b := newBoard(t, false)
	old := b.lvl.Engine.Epoch()

	_, cmd := b.Update(tickMsg{epoch: old})
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, b.lvl.Engine.Elapsed())

	_, cmd = b.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	assert.NotNil(t, cmd, "restart re-arms the clock")
	require.NotEqual(t, old, b.lvl.Engine.Epoch())
	assert.Zero(t, b.lvl.Engine.Elapsed())

	_, cmd = b.Update(tickMsg{epoch: old})
	assert.Nil(t, cmd, "stale chain ends")
	assert.Zero(t, b.lvl.Engine.Elapsed())
}

func TestBoard_EmergencyStatus(t *testing.T) {
	b := newBoard(t, true)
	rules := engine.DefaultRules()

	b.Update(tickMsg{epoch: b.lvl.Engine.Epoch()})
	assert.Equal(t, rules.EmergencyStartStatus-rules.DecayPerTick, b.lvl.Engine.Status())
	assert.Contains(t, b.Status(), "♥")
	assert.Contains(t, b.View(120, 40), "Countdown")

	press(b, runeKey('x'))
	assert.False(t, b.lvl.Engine.Emergency())
	assert.NotContains(t, b.Status(), "♥")
}

func TestBoard_HintAndInfo(t *testing.T) {
	b := newBoard(t, false)
	id := b.cursorFactor()

	press(b, runeKey('?'))
	require.NotNil(t, b.hint)
	assert.Equal(t, id, b.hint.FactorID)
	assert.Contains(t, b.View(120, 40), "Its slot is")

	press(b, runeKey('i'))
	require.NotNil(t, b.info)
	assert.Equal(t, id, b.info.ID)
}

func TestBoard_CompletionReplacesWithSummary(t *testing.T) {
	b := newBoard(t, false)
	n := len(b.slots)

	var msgs []tea.Msg
	for i := range n {
		b.factorCursor = i
		msgs = placeCursorFactor(t, b)
	}
	require.True(t, b.lvl.Engine.Completed())

	var finished tea.Msg
	for _, m := range msgs {
		if _, ok := m.(levelFinishedMsg); ok {
			finished = m
		}
	}
	require.NotNil(t, finished)

	_, cmd := b.Update(finished)
	require.NotNil(t, cmd)
	replace, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Level Summary", replace.Screen.Title())
}

func TestBoard_QuitConfirm(t *testing.T) {
	b := newBoard(t, false)

	press(b, runeKey('q'))
	require.True(t, b.confirmQuit)
	press(b, runeKey('n'))
	assert.False(t, b.confirmQuit)

	press(b, runeKey('q'))
	msgs := press(b, runeKey('y'))
	require.Len(t, msgs, 1)
	_, cmd := b.Update(msgs[0])
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestBoard_AbandonStopsClock(t *testing.T) {
	b := newBoard(t, true)
	e := b.lvl.Engine
	b.Update(tickMsg{epoch: e.Epoch()})
	b.Update(tickMsg{epoch: e.Epoch()})
	require.Equal(t, 2, e.Elapsed())

	press(b, runeKey('q'))
	_, cmd := b.Update(runeKey('y'))
	require.NotNil(t, cmd)

	done := make(chan []tea.Msg)
	go func() { done <- collect(cmd) }()
	for range 50 {
		_, tick := b.Update(tickMsg{epoch: e.Epoch()})
		assert.Nil(t, tick, "no tick after the level is closed")
	}
	msgs := <-done

	assert.Equal(t, 2, e.Elapsed())
	var finished levelFinishedMsg
	for _, m := range msgs {
		if f, ok := m.(levelFinishedMsg); ok {
			finished = f
		}
	}
	require.NoError(t, finished.err)
	require.NotNil(t, finished.sum)
	assert.Equal(t, 2, finished.sum.Elapsed)
	assert.False(t, finished.sum.Completed())
}

func TestBoard_KeyHintsIncludeRestart(t *testing.T) {
	b := newBoard(t, false)
	assert.Contains(t, b.KeyHints(), layout.KeyHint{Key: "ctrl+r", Description: "restart"})
}

func TestCanvas_Label(t *testing.T) {
	c := newCanvas(10, 3, catalog.Point{X: 90, Y: 20})
	c.label(catalog.Point{X: 90, Y: 20}, "ABC", lipgloss.NewStyle())
	lines := strings.Split(c.String(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[2], "ABC"))
}
