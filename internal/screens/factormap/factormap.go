// Package factormap lists the catalog's factors by pathway with the
// learner's standing on each factor's concept.
package factormap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/screen"
	"github.com/abhisek/cascade/internal/ui/layout"
	"github.com/abhisek/cascade/internal/ui/theme"
)

// Standing is the learner's state on a concept.
type Standing int

const (
	StandingNew Standing = iota
	StandingReview
	StandingMastered
)

func (s Standing) Icon() string {
	switch s {
	case StandingMastered:
		return "●"
	case StandingReview:
		return "!"
	default:
		return "○"
	}
}

func (s Standing) Label() string {
	switch s {
	case StandingMastered:
		return "mastered"
	case StandingReview:
		return "review"
	default:
		return "new"
	}
}

// Standings derives concept standings from profile metrics. Struggling wins
// over mastered when a concept appears in both.
func Standings(m analytics.Metrics) map[string]Standing {
	out := make(map[string]Standing, len(m.MasteredConcepts)+len(m.StrugglingConcepts))
	for _, c := range m.MasteredConcepts {
		out[c] = StandingMastered
	}
	for _, c := range m.StrugglingConcepts {
		out[c] = StandingReview
	}
	return out
}

type rowKind int

const (
	rowPathwayHeader rowKind = iota
	rowFactor
)

type row struct {
	kind    rowKind
	pathway catalog.Pathway
	factor  *catalog.Factor
}

// FactorMapScreen displays the catalog organized by pathway.
type FactorMapScreen struct {
	cat          *catalog.Catalog
	rows         []row
	cursor       int
	scrollOffset int
	standings    map[string]Standing
}

var _ screen.Screen = (*FactorMapScreen)(nil)

// New creates a FactorMapScreen over cat with the learner's current metrics.
func New(cat *catalog.Catalog, m analytics.Metrics) *FactorMapScreen {
	var rows []row
	for _, p := range catalog.AllPathways() {
		factors := cat.ByPathway(p)
		if len(factors) == 0 {
			continue
		}
		rows = append(rows, row{kind: rowPathwayHeader, pathway: p})
		for i := range factors {
			rows = append(rows, row{kind: rowFactor, pathway: p, factor: &factors[i]})
		}
	}

	s := &FactorMapScreen{cat: cat, rows: rows, standings: Standings(m)}
	for i, r := range s.rows {
		if r.kind == rowFactor {
			s.cursor = i
			break
		}
	}
	return s
}

func (s *FactorMapScreen) Init() tea.Cmd {
	return nil
}

func (s *FactorMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextPathway()
		case "shift+tab":
			s.prevPathway()
		case "enter":
			return s, s.selectFactor()
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *FactorMapScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return ""
	}
	s.adjustScroll(height)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < height; i++ {
		r := s.rows[i]
		switch r.kind {
		case rowPathwayHeader:
			lines = append(lines, renderPathwayHeader(r.pathway, width))
		case rowFactor:
			lines = append(lines, s.renderFactorRow(r, i == s.cursor, width))
		}
	}
	return strings.Join(lines, "\n")
}

func (s *FactorMapScreen) Title() string {
	return "Factor Map"
}

// KeyHints returns the key binding hints for the footer.
func (s *FactorMapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Pathway"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// Selected returns the factor under the cursor.
func (s *FactorMapScreen) Selected() (catalog.Factor, bool) {
	if s.cursor >= len(s.rows) || s.rows[s.cursor].factor == nil {
		return catalog.Factor{}, false
	}
	return *s.rows[s.cursor].factor, true
}

func (s *FactorMapScreen) standing(f catalog.Factor) Standing {
	return s.standings[f.Concept]
}

// moveCursor moves the cursor by delta, skipping pathway headers.
func (s *FactorMapScreen) moveCursor(delta int) {
	for next := s.cursor + delta; next >= 0 && next < len(s.rows); next += delta {
		if s.rows[next].kind == rowFactor {
			s.cursor = next
			return
		}
	}
}

// nextPathway jumps to the first factor of the next pathway.
func (s *FactorMapScreen) nextPathway() {
	current := s.rows[s.cursor].pathway
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowFactor && s.rows[i].pathway != current {
			s.cursor = i
			return
		}
	}
}

// prevPathway jumps to the first factor of the previous pathway.
func (s *FactorMapScreen) prevPathway() {
	current := s.rows[s.cursor].pathway
	target := -1
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].kind == rowPathwayHeader && s.rows[i].pathway != current {
			target = i + 1
			break
		}
	}
	if target >= 0 && target < len(s.rows) {
		s.cursor = target
	}
}

// adjustScroll keeps the cursor and its pathway header in view.
func (s *FactorMapScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowPathwayHeader {
		headerRow--
	}
	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *FactorMapScreen) selectFactor() tea.Cmd {
	f, ok := s.Selected()
	if !ok {
		return nil
	}
	detail := newFactorDetail(s.cat, f, s.standings)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

func renderPathwayHeader(p catalog.Pathway, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.PathwayColor(p)).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(p.DisplayName()))
}

func (s *FactorMapScreen) renderFactorRow(r row, selected bool, width int) string {
	f := *r.factor
	st := s.standing(f)

	const (
		indent     = 4
		iconWidth  = 3
		idWidth    = 6
		labelWidth = 10
		spacing    = 6
	)
	nameWidth := max(width-indent-iconWidth-idWidth-labelWidth-spacing, 10)
	name := f.Name
	if len(name) > nameWidth {
		name = name[:nameWidth-1] + "…"
	}

	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	labelStyle := dimStyle
	switch {
	case selected:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	case st == StandingMastered:
		labelStyle = lipgloss.NewStyle().Foreground(theme.Success)
	case st == StandingReview:
		labelStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	return fmt.Sprintf("  %s%s %s  %s  %s",
		cursor,
		st.Icon(),
		dimStyle.Render(fmt.Sprintf("%-*s", idWidth, f.ID)),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		labelStyle.Render(fmt.Sprintf("%9s", st.Label())),
	)
}
