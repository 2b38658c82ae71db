package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/ui/theme"
)

// MenuItem is one entry of the home menu. Detail is shown beside the
// selected item.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.step(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// step moves the selection to the next enabled item in direction dir,
// staying put when there is none.
func (m *Menu) step(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

// Update moves the selection or triggers the selected item's action.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(kmsg, KeyUp):
		m.step(-1)
	case key.Matches(kmsg, KeyDown):
		m.step(1)
	case key.Matches(kmsg, KeyEnter):
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			break
		}
		if it := m.Items[m.Selected]; it.Action != nil && !it.Disabled {
			return m, it.Action()
		}
	}
	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		style := lipgloss.NewStyle().Foreground(theme.Text)
		prefix := "    "
		switch {
		case item.Disabled:
			style = style.Foreground(theme.TextDim)
		case i == m.Selected:
			style = style.Foreground(theme.Primary).Bold(true)
			prefix = "  ▸ "
		}
		b.WriteString(style.Render(prefix + item.Label))
		if item.Detail != "" && i == m.Selected {
			b.WriteString("  " + theme.Hint.Render(item.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}
