package factormap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/screen"
	"github.com/abhisek/cascade/internal/ui/layout"
	"github.com/abhisek/cascade/internal/ui/theme"
)

// FactorDetailScreen shows one factor's teaching content.
type FactorDetailScreen struct {
	cat       *catalog.Catalog
	factor    catalog.Factor
	standings map[string]Standing
}

var _ screen.Screen = (*FactorDetailScreen)(nil)
var _ screen.KeyHintProvider = (*FactorDetailScreen)(nil)

func newFactorDetail(cat *catalog.Catalog, f catalog.Factor, standings map[string]Standing) *FactorDetailScreen {
	return &FactorDetailScreen{cat: cat, factor: f, standings: standings}
}

func (d *FactorDetailScreen) Init() tea.Cmd { return nil }
func (d *FactorDetailScreen) Title() string { return d.factor.Name }

func (d *FactorDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "esc", "q", "enter":
			return d, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return d, nil
}

func (d *FactorDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (d *FactorDetailScreen) View(width, height int) string {
	f := d.factor
	st := d.standings[f.Concept]
	contentWidth := min(width-8, 70)

	heading := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)
	para := lipgloss.NewStyle().Width(contentWidth).Foreground(theme.Text).PaddingLeft(2)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.PathwayColor(f.Pathway)).
		Bold(true).
		Render(fmt.Sprintf("  %s  %s (%s)", st.Icon(), f.Name, f.ID)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + st.Label()))
	b.WriteString("\n\n")

	if f.Description != "" {
		b.WriteString(para.Render(f.Description))
		b.WriteString("\n\n")
	}

	b.WriteString(dimStyle.Render("  Pathway:  ") + valStyle.Render(f.Pathway.DisplayName()) + "\n")
	b.WriteString(dimStyle.Render("  Concept:  ") + valStyle.Render(f.Concept) + "\n")
	b.WriteString(dimStyle.Render("  Slot:     ") + valStyle.Render(f.Target.String()) + "\n\n")

	if f.Clinical != "" {
		b.WriteString(heading.Render("  Clinical"))
		b.WriteString("\n")
		b.WriteString(para.Render(f.Clinical))
		b.WriteString("\n\n")
	}

	if len(f.Antagonists) > 0 {
		b.WriteString(heading.Render("  Antagonists"))
		b.WriteString("\n")
		for _, id := range f.Antagonists {
			name := id
			if a, ok := d.cat.Get(id); ok {
				name = a.Name
			}
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ⊣ %s", name)))
			b.WriteString("\n")
		}
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "\n"+b.String())
}
