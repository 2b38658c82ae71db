// Package history lists the learner's finished levels with a per-level
// drill-down computed from the stored action log.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/screen"
	"github.com/abhisek/cascade/internal/store"
	"github.com/abhisek/cascade/internal/ui/layout"
	"github.com/abhisek/cascade/internal/ui/theme"
)

const maxRows = 50

type levelsMsg struct {
	levels []store.SessionEvent
	err    error
}

type detailMsg struct {
	sessionID string
	metrics   analytics.Metrics
	err       error
}

// HistoryScreen lists finished levels, newest first. Enter expands a row
// with accuracy, hint use and the concepts that level exposed.
type HistoryScreen struct {
	repo     store.EventRepo
	userID   string
	concepts analytics.ConceptMap

	levels  []store.SessionEvent
	cursor  int
	open    map[string]bool
	details map[string]analytics.Metrics
	loaded  bool
	err     error
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

func New(repo store.EventRepo, userID string, concepts analytics.ConceptMap) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		userID:   userID,
		concepts: concepts,
		open:     make(map[string]bool),
		details:  make(map[string]analytics.Metrics),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, user := s.repo, s.userID
	return func() tea.Msg {
		events, err := repo.QuerySessionEvents(context.Background(), store.QueryOpts{UserID: user, Newest: true})
		return levelsMsg{levels: finished(events), err: err}
	}
}

// finished drops start events and caps the list.
func finished(events []store.SessionEvent) []store.SessionEvent {
	var out []store.SessionEvent
	for _, ev := range events {
		if ev.Action != store.SessionStart && len(out) < maxRows {
			out = append(out, ev)
		}
	}
	return out
}

func (s *HistoryScreen) loadDetail(sessionID string) tea.Cmd {
	repo, concepts := s.repo, s.concepts
	return func() tea.Msg {
		events, err := repo.QueryActions(context.Background(), store.QueryOpts{SessionID: sessionID})
		if err != nil {
			return detailMsg{sessionID: sessionID, err: err}
		}
		return detailMsg{sessionID: sessionID, metrics: analytics.Analyze(store.Records(events), concepts)}
	}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case levelsMsg:
		s.levels, s.err, s.loaded = msg.levels, msg.err, true
	case detailMsg:
		if msg.err != nil {
			s.err = msg.err
			break
		}
		s.details[msg.sessionID] = msg.metrics
	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = max(min(s.cursor+1, len(s.levels)-1), 0)
		case "enter":
			return s, s.toggle()
		}
	}
	return s, nil
}

func (s *HistoryScreen) toggle() tea.Cmd {
	if s.cursor >= len(s.levels) {
		return nil
	}
	id := s.levels[s.cursor].SessionID
	s.open[id] = !s.open[id]
	if _, ok := s.details[id]; s.open[id] && !ok && s.repo != nil {
		return s.loadDetail(id)
	}
	return nil
}

func (s *HistoryScreen) View(width, height int) string {
	note := func(text string) string {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n" + text)
	}
	switch {
	case s.err != nil:
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nError: " + s.err.Error())
	case !s.loaded:
		return note("Loading history...")
	case len(s.levels) == 0:
		return note("No levels played yet. Build your first cascade!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, lv := range s.levels {
		b.WriteString(layout.Centered(s.row(i, lv), width))
		b.WriteString("\n")
		if s.open[lv.SessionID] {
			b.WriteString(layout.Centered(theme.Hint.Render(s.detail(lv)), width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *HistoryScreen) row(i int, lv store.SessionEvent) string {
	marker, mode, result := "  ", "standard ", "complete"
	if i == s.cursor {
		marker = "> "
	}
	if lv.Emergency {
		mode = "emergency"
	}
	if lv.Action == store.SessionAbandon {
		result = "abandoned"
	}
	line := fmt.Sprintf("%s%s  %s  %d:%02d  %5d pts  %2d/%-2d  %s",
		marker, lv.At.Local().Format("Jan 02 15:04"), mode,
		lv.ElapsedSecs/60, lv.ElapsedSecs%60, lv.Score, lv.Placed, lv.Total, result)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.cursor {
		style = style.Foreground(theme.Primary).Bold(true)
	} else if lv.Action == store.SessionAbandon {
		style = style.Foreground(theme.TextDim)
	}
	return style.Render(line)
}

func (s *HistoryScreen) detail(lv store.SessionEvent) string {
	head := fmt.Sprintf("    level %d  session %s", lv.Difficulty, lv.SessionID)
	if lv.EmergencyOutcome != "" {
		head += "  " + lv.EmergencyOutcome
	}
	m, ok := s.details[lv.SessionID]
	if !ok {
		return head
	}
	head += fmt.Sprintf("\n    accuracy %.0f%%  hints %.0f%%  avg %.1fs",
		m.OverallAccuracy*100, m.HintUsageRate*100, m.AverageResponseTime.Seconds())
	if len(m.StrugglingConcepts) > 0 {
		head += "\n    review: " + strings.Join(m.StrugglingConcepts, ", ")
	}
	return head
}
