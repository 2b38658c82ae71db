package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/ui/theme"
)

// The board needs room for all four pathway columns.
const (
	MinWidth  = 80
	MinHeight = 24

	// CompactHeight is the content height below which screens drop
	// decorative sections.
	CompactHeight = 22
)

// KeyHint is one footer entry, e.g. {"enter", "place"}.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("The cascade needs at least %d x %d.\n\nCurrent size: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Accent).Render(msg))
}

// bar is the boxed style shared by header and footer.
func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader draws the app name on the left, title centred and status
// (score and patient status while a level runs) on the right.
func RenderHeader(title, status string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Cascade")
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	inner := max(width-4, 0)
	pre := max((inner-lipgloss.Width(mid))/2-lipgloss.Width(brand), 1)
	post := max(inner-lipgloss.Width(brand)-pre-lipgloss.Width(mid)-lipgloss.Width(right), 1)

	return bar(width).Render(brand + strings.Repeat(" ", pre) + mid + strings.Repeat(" ", post) + right)
}

// RenderFooter lists key hints.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("  ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description))
	}
	return bar(width).Render(b.String())
}

func Centered(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

// RenderFrame stacks header, content and footer, giving the content
// whatever height remains.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).Render(content),
		footer,
	)
}
