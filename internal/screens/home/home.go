package home

import (
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cascade/internal/coach"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/screen"
	"github.com/abhisek/cascade/internal/screens/board"
	"github.com/abhisek/cascade/internal/screens/factormap"
	"github.com/abhisek/cascade/internal/screens/history"
	"github.com/abhisek/cascade/internal/session"
	"github.com/abhisek/cascade/internal/store"
	"github.com/abhisek/cascade/internal/ui/components"
)

// Menu indexes.
const (
	itemPlay = iota
	itemEmergency
	itemFactors
	itemHistory
	itemQuit
)

// HomeScreen is the main menu with the learner's profile at a glance.
type HomeScreen struct {
	svc        *session.Service
	coach      *coach.Service
	menu       components.Menu
	menuLabels []string
	disabled   map[int]bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen. events and coachSvc may be nil; history is
// disabled without an event store.
func New(svc *session.Service, events store.EventRepo, coachSvc *coach.Service, log *slog.Logger) *HomeScreen {
	labels := []string{"PLAY", "EMERGENCY", "FACTORS", "HISTORY", "QUIT"}
	disabled := map[int]bool{itemHistory: events == nil}

	push := func(s func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: s()} }
		}
	}

	items := []components.MenuItem{
		itemPlay: {Label: labels[itemPlay], Detail: "Build the cascade at your own pace",
			Action: push(func() screen.Screen { return board.New(svc, false, coachSvc, log) })},
		itemEmergency: {Label: labels[itemEmergency], Detail: "Keep the patient alive while you build",
			Action: push(func() screen.Screen { return board.New(svc, true, coachSvc, log) })},
		itemFactors: {Label: labels[itemFactors], Detail: "Study each factor and your standing on it",
			Action: push(func() screen.Screen { return factormap.New(svc.Catalog(), svc.Profile().Metrics) })},
		itemHistory: {Label: labels[itemHistory], Disabled: disabled[itemHistory],
			Action: push(func() screen.Screen { return history.New(events, svc.UserID(), svc.Catalog().ConceptMap()) })},
		itemQuit: {Label: labels[itemQuit], Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		svc:        svc,
		coach:      coachSvc,
		menu:       components.NewMenu(items),
		menuLabels: labels,
		disabled:   disabled,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// stats reads the cached profile, which Finish updates after each level.
func (h *HomeScreen) stats() stats {
	p := h.svc.Profile()
	return stats{
		difficulty: p.Difficulty,
		sessions:   p.Sessions,
		mastered:   len(p.Metrics.MasteredConcepts),
		struggling: len(p.Metrics.StrugglingConcepts),
		accuracy:   p.Metrics.OverallAccuracy,
	}
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and gaps.
	compact := height+8 < 34 || width < 100
	cw := contentWidth(width)
	st := h.stats()

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		sections = append(sections, RenderTrace(traceFor(st, len(h.svc.Catalog().Concepts()))))
	}
	sections = append(sections, renderStatsBar(st, cw, compact))
	if height+8 < 30 {
		sections = append(sections, renderMenuCompact(h.menuLabels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw, h.disabled))
	}
	if h.coach == nil && !compact {
		sections = append(sections, renderCoachBanner(cw))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
