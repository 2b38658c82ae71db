package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/coach"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/screen"
	"github.com/abhisek/cascade/internal/session"
	"github.com/abhisek/cascade/internal/ui/layout"
	"github.com/abhisek/cascade/internal/ui/theme"
)

// debriefPoll is how often the screen checks for a finished debrief.
const debriefPoll = 250 * time.Millisecond

// reviewWindow limits the review list to concepts due within a week.
const reviewWindow = 7 * 24 * time.Hour

// SummaryScreen displays the end-of-level report and, when a coach is
// configured, its debrief.
type SummaryScreen struct {
	summary *session.Summary
	coach   *coach.Service

	debrief    *coach.Debrief
	debriefErr error
	waiting    bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. coachSvc may be nil.
func New(summary *session.Summary, coachSvc *coach.Service) *SummaryScreen {
	return &SummaryScreen{summary: summary, coach: coachSvc}
}

type debriefPollMsg struct{}

func pollDebrief() tea.Cmd {
	return tea.Tick(debriefPoll, func(time.Time) tea.Msg { return debriefPollMsg{} })
}

func (s *SummaryScreen) Init() tea.Cmd {
	if s.coach == nil || s.summary == nil {
		return nil
	}
	s.coach.RequestDebrief(context.Background(), coachInput(s.summary))
	s.waiting = true
	return pollDebrief()
}

func coachInput(sum *session.Summary) coach.Input {
	return coach.Input{
		Metrics:          sum.Metrics,
		Concepts:         sum.Concepts,
		Result:           sum.Result,
		EmergencyOutcome: sum.EmergencyOutcome,
		Difficulty:       sum.DifficultyAfter,
		Recommendations:  sum.Recommendations,
	}
}

func (s *SummaryScreen) Title() string {
	return "Level Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case debriefPollMsg:
		if !s.waiting {
			return s, nil
		}
		d, ok, err := s.coach.ConsumeDebrief()
		if !ok {
			return s, pollDebrief()
		}
		s.waiting = false
		s.debrief, s.debriefErr = d, err
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder
	center := func(st lipgloss.Style, text string) {
		b.WriteString(layout.Centered(st.Render(text), width))
		b.WriteString("\n")
	}

	if sum.Completed() {
		center(theme.Title, "Cascade complete!")
	} else {
		center(theme.Title, "Level ended")
	}
	b.WriteString("\n")

	center(theme.Body, fmt.Sprintf("Score: %d        Time: %d:%02d        Placed: %d/%d",
		sum.Score, sum.Elapsed/60, sum.Elapsed%60, sum.Placed, sum.Total))
	if r := sum.Result; r != nil && (r.TimeBonus > 0 || r.EmergencyBonus > 0) {
		center(theme.Hint, fmt.Sprintf("Time bonus +%d   Emergency bonus +%d", r.TimeBonus, r.EmergencyBonus))
	}
	if sum.EmergencyOutcome != "" {
		center(theme.Incorrect, "Emergency: "+sum.EmergencyOutcome)
	}
	center(theme.Body, fmt.Sprintf("Accuracy: %.0f%%   Hints: %.0f%%   Engagement: %.0f",
		sum.Metrics.OverallAccuracy*100, sum.Metrics.HintUsageRate*100, sum.Metrics.EngagementScore*100))

	diff := fmt.Sprintf("Difficulty %d", sum.DifficultyAfter)
	diffStyle := theme.Hint
	if sum.DifficultyAfter != sum.DifficultyBefore {
		diff = fmt.Sprintf("Difficulty %d > %d", sum.DifficultyBefore, sum.DifficultyAfter)
		diffStyle = theme.Correct
	}
	center(diffStyle, diff)

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	section := func(name string) {
		b.WriteString("\n")
		center(lipgloss.NewStyle().Foreground(theme.TextDim), name)
		b.WriteString(layout.Centered(divider, width))
		b.WriteString("\n")
	}

	if len(sum.Concepts) > 0 {
		section("Concepts")
		for _, c := range sum.Concepts {
			st := theme.Body
			switch {
			case c.Accuracy() >= 0.8:
				st = lipgloss.NewStyle().Foreground(theme.Success)
			case c.Accuracy() < 0.5:
				st = lipgloss.NewStyle().Foreground(theme.Error)
			}
			center(st, fmt.Sprintf("%-24s %d/%d correct", c.Concept, c.Correct, c.Attempts))
		}
	}

	compact := height < layout.CompactHeight+10
	if len(sum.Recommendations) > 0 {
		section("Next steps")
		for _, r := range sum.Recommendations {
			center(theme.Body, "• "+r)
		}
	}

	if due := sum.DueReviews(reviewWindow); len(due) > 0 && !compact {
		section("Review soon")
		for _, o := range due {
			center(theme.Hint, fmt.Sprintf("%s in %s (mastery %.0f%%)", o.Concept, humanDays(o.ReviewIn), o.Mastery*100))
		}
	}

	if s.coach != nil {
		section("Coach")
		b.WriteString(s.renderDebrief(width))
	}

	return b.String()
}

func (s *SummaryScreen) renderDebrief(width int) string {
	switch {
	case s.waiting:
		return layout.Centered(theme.Hint.Render("Writing your debrief..."), width)
	case s.debriefErr != nil || s.debrief == nil:
		return layout.Centered(theme.Hint.Render("Debrief unavailable."), width)
	}
	d := s.debrief
	var lines []string
	lines = append(lines, theme.Selected.Render(d.Headline), theme.Body.Render(d.Summary))
	for _, st := range d.Strengths {
		lines = append(lines, theme.Correct.Render("+ ")+theme.Body.Render(st))
	}
	for _, f := range d.FocusAreas {
		lines = append(lines, theme.Incorrect.Render("- ")+theme.Body.Render(f))
	}
	if d.NextStep != "" {
		lines = append(lines, theme.Hint.Render("Next: "+d.NextStep))
	}
	panel := theme.Panel.Width(min(width-8, 72)).Render(strings.Join(lines, "\n"))
	return layout.Centered(panel, width)
}

func humanDays(d time.Duration) string {
	days := int(d.Hours() / 24)
	switch days {
	case 0:
		return "today"
	case 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
