package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/catalog"
)

// Color palette, clinical dark mode.
var (
	Primary   = lipgloss.Color("#E11D48") // Blood red
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Pathway colors.
var (
	Intrinsic    = lipgloss.Color("#60A5FA")
	Extrinsic    = lipgloss.Color("#F97316")
	Common       = lipgloss.Color("#A78BFA")
	Fibrinolysis = lipgloss.Color("#34D399")
	Regulatory   = lipgloss.Color("#FACC15")
)

// PathwayColor returns the display color of a pathway.
func PathwayColor(p catalog.Pathway) color.Color {
	switch p {
	case catalog.PathwayIntrinsic:
		return Intrinsic
	case catalog.PathwayExtrinsic:
		return Extrinsic
	case catalog.PathwayCommon:
		return Common
	case catalog.PathwayFibrinolysis:
		return Fibrinolysis
	case catalog.PathwayRegulatory:
		return Regulatory
	default:
		return Text
	}
}

// StatusColor grades a patient status from 0 to 100.
func StatusColor(status int) color.Color {
	switch {
	case status >= 60:
		return Success
	case status >= 30:
		return Accent
	default:
		return Error
	}
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)
