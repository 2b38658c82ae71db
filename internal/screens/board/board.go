// Package board is the placement screen: a factor list, the target map and
// the patient monitor, driven by one engine owned by the Update loop.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/key"

	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/coach"
	"github.com/abhisek/cascade/internal/engine"
	"github.com/abhisek/cascade/internal/logging"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/screen"
	"github.com/abhisek/cascade/internal/screens/summary"
	"github.com/abhisek/cascade/internal/session"
	"github.com/abhisek/cascade/internal/ui/layout"
)

// TickPeriod is the session clock period.
const TickPeriod = time.Second

// dragStep is how far one arrow key moves a dragged factor, in board units.
const dragStep = 20

type focus int

const (
	focusFactors focus = iota
	focusSlots
	focusDrag
)

// BoardScreen implements screen.Screen for one level.
type BoardScreen struct {
	svc       *session.Service
	coach     *coach.Service
	emergency bool
	log       *slog.Logger

	lvl     *session.Level
	pending []engine.Event

	// slots lists target ids in reading order (top to bottom, left to right).
	slots  []string
	bounds catalog.Point

	focus        focus
	factorCursor int
	slotCursor   int
	dragID       string
	dragPos      catalog.Point

	notice      string
	noticeBad   bool
	info        *catalog.Factor
	hint        *engine.Hint
	confirmQuit bool
	finishing   bool
	errMsg      string
}

var _ screen.Screen = (*BoardScreen)(nil)
var _ screen.KeyHintProvider = (*BoardScreen)(nil)
var _ screen.StatusProvider = (*BoardScreen)(nil)

// New creates a board for a new level. coachSvc may be nil.
func New(svc *session.Service, emergency bool, coachSvc *coach.Service, log *slog.Logger) *BoardScreen {
	factors := svc.Catalog().Factors()
	slots := make([]string, len(factors))
	for i, f := range factors {
		slots[i] = f.ID
	}
	sort.SliceStable(slots, func(i, j int) bool {
		a, _ := svc.Catalog().Get(slots[i])
		b, _ := svc.Catalog().Get(slots[j])
		if a.Target.Y != b.Target.Y {
			return a.Target.Y < b.Target.Y
		}
		return a.Target.X < b.Target.X
	})
	return &BoardScreen{
		svc:       svc,
		coach:     coachSvc,
		emergency: emergency,
		log:       logging.OrDiscard(log),
		slots:     slots,
		bounds:    boardBounds(factors),
	}
}

type levelReadyMsg struct {
	lvl *session.Level
	err error
}

type levelFinishedMsg struct {
	sum *session.Summary
	err error
}

// tickMsg carries the epoch it was scheduled under; a reset or restart
// strands older ticks.
type tickMsg struct {
	epoch uint64
}

func tickCmd(epoch uint64) tea.Cmd {
	return tea.Tick(TickPeriod, func(time.Time) tea.Msg {
		return tickMsg{epoch: epoch}
	})
}

func (b *BoardScreen) Init() tea.Cmd {
	return func() tea.Msg {
		lvl, err := b.svc.NewLevel(context.Background(), b.emergency, true)
		return levelReadyMsg{lvl: lvl, err: err}
	}
}

func (b *BoardScreen) Title() string {
	if b.emergency {
		return "Emergency"
	}
	return "Cascade Board"
}

// Status renders the header status line.
func (b *BoardScreen) Status() string {
	if b.lvl == nil {
		return ""
	}
	e := b.lvl.Engine
	s := fmt.Sprintf("Score %d  Time %s  Lv %d", e.Score(), clock(e.Elapsed()), b.lvl.Difficulty)
	if e.Emergency() {
		s += fmt.Sprintf("  ♥ %d  ⏱ %s", e.Status(), clock(e.Countdown()))
	}
	return s
}

func (b *BoardScreen) KeyHints() []layout.KeyHint {
	switch {
	case b.confirmQuit:
		return []layout.KeyHint{{Key: "Y", Description: "End level"}, {Key: "N", Description: "Keep playing"}}
	case b.focus == focusDrag:
		return []layout.KeyHint{{Key: "←↑↓→", Description: "Move"}, {Key: "enter", Description: "Drop"}, {Key: "esc", Description: "Cancel"}}
	}
	hs := hints(keys.Focus, keys.Act, keys.Drag, keys.Hint, keys.Info, keys.ResetIncorrect, keys.Restart)
	if b.lvl != nil && b.lvl.Engine.Emergency() {
		hs = append(hs, hints(keys.StopEmergency)...)
	}
	return append(hs, hints(keys.Quit)...)
}

func (b *BoardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case levelReadyMsg:
		if msg.err != nil {
			b.errMsg = msg.err.Error()
			return b, nil
		}
		b.lvl = msg.lvl
		b.lvl.Engine.Subscribe(func(ev engine.Event) { b.pending = append(b.pending, ev) })
		return b, tickCmd(b.lvl.Engine.Epoch())

	case tickMsg:
		if b.lvl == nil || b.finishing || !b.lvl.Engine.Tick(msg.epoch) {
			return b, nil
		}
		return b, tea.Batch(b.drain(), tickCmd(msg.epoch))

	case levelFinishedMsg:
		return b.handleFinished(msg)

	case tea.KeyPressMsg:
		cmd := b.handleKey(msg)
		return b, tea.Batch(cmd, b.drain())
	}
	return b, nil
}

// drain processes buffered engine events after each mutation.
func (b *BoardScreen) drain() tea.Cmd {
	events := b.pending
	b.pending = nil

	var cmd tea.Cmd
	for _, ev := range events {
		switch ev := ev.(type) {
		case engine.PlacementSucceeded:
			f, _ := b.svc.Catalog().Get(ev.FactorID)
			b.setNotice(fmt.Sprintf("%s placed. +%d", f.Name, b.lvl.Engine.Rules().BaseAward), false)
			if b.hint != nil && b.hint.FactorID == ev.FactorID {
				b.hint = nil
			}
		case engine.PlacementFailed:
			f, _ := b.svc.Catalog().Get(ev.FactorID)
			b.setNotice(fmt.Sprintf("%s does not go there.", f.Name), true)
		case engine.EmergencyEnded:
			if ev.Reason == engine.ReasonPatientLost {
				b.setNotice("Patient lost. Finish the cascade to review.", true)
			} else {
				b.setNotice("Scenario time is up.", true)
			}
		case engine.LevelCompleted:
			cmd = b.finish()
		}
	}
	return cmd
}

func (b *BoardScreen) finish() tea.Cmd {
	if b.finishing {
		return nil
	}
	b.finishing = true
	c := b.svc.Close(b.lvl)
	return func() tea.Msg {
		sum, err := b.svc.Persist(context.Background(), c)
		return levelFinishedMsg{sum: sum, err: err}
	}
}

func (b *BoardScreen) handleFinished(msg levelFinishedMsg) (screen.Screen, tea.Cmd) {
	if msg.err != nil {
		b.log.Error("finish level failed", "error", msg.err)
		b.errMsg = msg.err.Error()
		return b, nil
	}
	if !msg.sum.Completed() {
		return b, func() tea.Msg { return router.PopScreenMsg{} }
	}
	next := summary.New(msg.sum, b.coach)
	return b, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (b *BoardScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if b.errMsg != "" {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	if b.lvl == nil || b.finishing {
		return nil
	}
	e := b.lvl.Engine

	if b.confirmQuit {
		switch msg.String() {
		case "y", "Y":
			b.confirmQuit = false
			return b.finish()
		case "n", "N", "esc":
			b.confirmQuit = false
		}
		return nil
	}

	if b.focus == focusDrag {
		return b.handleDragKey(msg)
	}

	b.info = nil
	switch {
	case key.Matches(msg, keys.Quit):
		b.confirmQuit = true
	case key.Matches(msg, keys.Focus):
		if b.focus == focusFactors {
			b.focus = focusSlots
		} else {
			b.focus = focusFactors
		}
	case key.Matches(msg, keys.Up):
		b.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		b.moveCursor(1)
	case key.Matches(msg, keys.Act):
		b.act()
	case key.Matches(msg, keys.Drag):
		b.beginDrag()
	case key.Matches(msg, keys.Hint):
		if h, ok := e.RequestHint(b.cursorFactor()); ok {
			b.hint = &h
		}
	case key.Matches(msg, keys.Info):
		if f, ok := e.ViewInfo(b.cursorFactor()); ok {
			b.info = &f
		}
	case key.Matches(msg, keys.ResetIncorrect):
		if n := e.ResetIncorrect(); n > 0 {
			b.setNotice(fmt.Sprintf("Cleared %d misplaced factor(s).", n), false)
		}
	case key.Matches(msg, keys.StopEmergency):
		if e.Emergency() {
			e.StopEmergency()
			b.setNotice("Patient stabilised. Decay stopped.", false)
		}
	case key.Matches(msg, keys.Restart):
		if err := b.svc.Restart(context.Background(), b.lvl); err != nil {
			b.setNotice(err.Error(), true)
			return nil
		}
		b.hint, b.dragID = nil, ""
		b.setNotice("Level restarted.", false)
		return tickCmd(e.Epoch())
	}
	return nil
}

func (b *BoardScreen) act() {
	e := b.lvl.Engine
	if b.focus == focusFactors {
		e.Select(b.cursorFactor())
		return
	}
	if err := e.PlaceByClick(b.slots[b.slotCursor]); errors.Is(err, engine.ErrNoSelection) {
		b.setNotice("Select a factor first (tab to the factor list).", true)
	}
}

func (b *BoardScreen) beginDrag() {
	id := b.cursorFactor()
	f, ok := b.lvl.Engine.Factor(id)
	if !ok || f.Placed() {
		return
	}
	b.lvl.Engine.BeginDrag(id)
	b.dragID = id
	if f.Current != nil {
		b.dragPos = *f.Current
	} else {
		b.dragPos = catalog.Point{X: b.bounds.X / 2, Y: b.bounds.Y / 2}
	}
	b.focus = focusDrag
}

func (b *BoardScreen) handleDragKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Up):
		b.dragPos.Y = max(b.dragPos.Y-dragStep, 0)
	case key.Matches(msg, keys.Down):
		b.dragPos.Y = min(b.dragPos.Y+dragStep, b.bounds.Y)
	case key.Matches(msg, keys.Left):
		b.dragPos.X = max(b.dragPos.X-dragStep, 0)
	case key.Matches(msg, keys.Right):
		b.dragPos.X = min(b.dragPos.X+dragStep, b.bounds.X)
	case key.Matches(msg, keys.Act):
		b.lvl.Engine.PlaceByDrag(b.dragID, b.dragPos)
		b.dragID = ""
		b.focus = focusFactors
	case key.Matches(msg, keys.Quit):
		b.dragID = ""
		b.focus = focusFactors
	}
	return nil
}

func (b *BoardScreen) moveCursor(delta int) {
	switch b.focus {
	case focusFactors:
		n := len(b.slots)
		b.factorCursor = (b.factorCursor + delta + n) % n
	case focusSlots:
		n := len(b.slots)
		b.slotCursor = (b.slotCursor + delta + n) % n
	}
}

// cursorFactor returns the factor under the list cursor.
func (b *BoardScreen) cursorFactor() string {
	order := b.svc.Catalog().IDs()
	if len(order) == 0 {
		return ""
	}
	return order[b.factorCursor%len(order)]
}

func (b *BoardScreen) setNotice(s string, bad bool) {
	b.notice = s
	b.noticeBad = bad
}

func clock(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
