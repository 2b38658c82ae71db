package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/ui/theme"
)

const titleFull = ` ██████╗ █████╗ ███████╗ ██████╗ █████╗ ██████╗ ███████╗
██╔════╝██╔══██╗██╔════╝██╔════╝██╔══██╗██╔══██╗██╔════╝
██║     ███████║███████╗██║     ███████║██║  ██║█████╗
██║     ██╔══██║╚════██║██║     ██╔══██║██║  ██║██╔══╝
╚██████╗██║  ██║███████║╚██████╗██║  ██║██████╔╝███████╗
 ╚═════╝╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚═════╝ ╚══════╝`

const titleCompact = "C · A · S · C · A · D · E"

// contentWidth returns the uniform inner width used for all sections so
// the boxes line up.
func contentWidth(frameWidth int) int {
	// Leave room for the frame border (2) and inner padding (4).
	return min(max(frameWidth-6, 20), 60)
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// stats is the dashboard line under the title.
type stats struct {
	difficulty int
	sessions   int
	mastered   int
	struggling int
	accuracy   float64
}

func renderStatsBar(s stats, cw int, compact bool) string {
	levelStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	masteredStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	weakStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	weak := dimStyle
	if s.struggling > 0 {
		weak = weakStyle
	}

	var line string
	if compact {
		line = fmt.Sprintf("%s %s %s",
			levelStyle.Render(fmt.Sprintf("LV%d", s.difficulty)),
			masteredStyle.Render(fmt.Sprintf("✓%d", s.mastered)),
			weak.Render(fmt.Sprintf("!%d", s.struggling)),
		)
	} else {
		line = fmt.Sprintf("%s  %s  %s",
			levelStyle.Render(fmt.Sprintf("LEVEL %d", s.difficulty)),
			masteredStyle.Render(fmt.Sprintf("✓ %d MASTERED", s.mastered)),
			weak.Render(fmt.Sprintf("! %d TO REVIEW", s.struggling)),
		)
		if s.sessions > 0 {
			line += "\n" + dimStyle.Render(fmt.Sprintf("%d levels played · last accuracy %.0f%%", s.sessions, s.accuracy*100))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(line)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	selectedBtn := base.Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Primary).
		BorderForeground(theme.Primary)
	normalBtn := base.Foreground(theme.Text).BorderForeground(theme.Border)
	disabledBtn := base.Foreground(theme.TextDim).BorderForeground(theme.Border)

	var buttons []string
	for i, label := range items {
		switch {
		case disabled[i]:
			buttons = append(buttons, disabledBtn.Render(label))
		case i == selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		default:
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as plain lines for terminals too
// short for bordered buttons.
func renderMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().Foreground(theme.TextDim).Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Primary).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().Foreground(theme.Text).Render("   " + label)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderCoachBanner notes that debriefs are off when no LLM key is set.
func renderCoachBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render("Set an LLM API key to get coach debriefs (see cascade --help)")
}

// renderFrame wraps content in a double-border frame, centered in the
// given dimensions.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
