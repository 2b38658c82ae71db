package board

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/catalog"
	"github.com/abhisek/cascade/internal/ui/components"
	"github.com/abhisek/cascade/internal/ui/layout"
	"github.com/abhisek/cascade/internal/ui/theme"
)

const listWidth = 28

func (b *BoardScreen) View(width, height int) string {
	if b.errMsg != "" {
		return layout.Centered(theme.Incorrect.Render("Could not start the level: "+b.errMsg), width) +
			"\n\n" + layout.Centered(theme.Hint.Render("Press any key to go back"), width)
	}
	if b.lvl == nil {
		return layout.Centered(theme.Hint.Render("Preparing the cascade..."), width)
	}

	var bottom []string
	if b.lvl.Engine.Emergency() || b.lvl.Engine.Snapshot().EmergencyOutcome != "" {
		bottom = append(bottom, b.renderMonitor(width-4))
	}
	if b.notice != "" {
		st := theme.Correct
		if b.noticeBad {
			st = theme.Incorrect
		}
		bottom = append(bottom, "  "+st.Render(b.notice))
	}
	if p := b.renderPanel(width - 4); p != "" {
		bottom = append(bottom, p)
	}
	if b.confirmQuit {
		bottom = append(bottom, "  "+theme.Selected.Render("End this level? Progress is recorded as abandoned. (y/n)"))
	}
	footer := strings.Join(bottom, "\n")

	mapH := max(height-lipgloss.Height(footer)-1, 8)
	mapW := max(width-listWidth-6, 20)

	list := theme.Panel.Width(listWidth).Height(mapH).Render(b.renderList(mapH - 2))
	board := theme.Panel.Height(mapH).Render(b.renderMap(mapW, mapH-2))

	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", board) + "\n" + footer
}

func (b *BoardScreen) renderList(rows int) string {
	e := b.lvl.Engine
	ids := b.svc.Catalog().IDs()

	start := 0
	if b.factorCursor >= rows {
		start = b.factorCursor - rows + 1
	}

	var lines []string
	for i := start; i < len(ids) && len(lines) < rows; i++ {
		f, _ := e.Factor(ids[i])
		mark := "  "
		switch {
		case f.Placed():
			mark = "✓ "
		case f.Attempted():
			mark = "✗ "
		case e.Selected() == f.ID:
			mark = "● "
		}

		name := f.Name
		if len(name) > listWidth-6 {
			name = name[:listWidth-6]
		}
		st := lipgloss.NewStyle().Foreground(theme.PathwayColor(f.Pathway))
		switch {
		case f.Placed():
			st = st.Faint(true)
		case e.Selected() == f.ID:
			st = theme.Selected
		}
		line := mark + st.Render(name)
		if i == b.factorCursor && b.focus != focusSlots {
			line = theme.Selected.Render("▸") + line
		} else {
			line = " " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (b *BoardScreen) renderMap(w, h int) string {
	e := b.lvl.Engine
	c := newCanvas(w, h, b.bounds)

	slotStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	cursorStyle := theme.Selected.Reverse(true)
	for i, id := range b.slots {
		f, _ := e.Factor(id)
		label := fmt.Sprintf("[%d]", i+1)
		st := slotStyle
		if f.Placed() {
			label = strings.ToUpper(f.ID)
			st = lipgloss.NewStyle().Foreground(theme.PathwayColor(f.Pathway)).Bold(true)
		}
		if b.focus == focusSlots && i == b.slotCursor {
			st = cursorStyle
		}
		c.label(f.Target, label, st)
	}

	// Misplaced raw drops.
	for _, id := range b.svc.Catalog().IDs() {
		f, _ := e.Factor(id)
		if f.Attempted() && !f.Placed() {
			c.label(*f.Current, strings.ToLower(f.ID), theme.Incorrect)
		}
	}

	if b.focus == focusDrag {
		c.label(b.dragPos, "◎"+strings.ToUpper(b.dragID), theme.Selected)
	}
	return c.String()
}

func (b *BoardScreen) renderMonitor(width int) string {
	e := b.lvl.Engine
	bar := components.StatusBar(e.Status(), min(width, 60))
	line := "  " + bar + "   " + theme.Body.Render("Countdown "+clock(e.Countdown()))
	if out := e.Snapshot().EmergencyOutcome; out != "" && !e.Emergency() {
		line += "  " + theme.Incorrect.Render(out)
	}
	return line
}

func (b *BoardScreen) renderPanel(width int) string {
	switch {
	case b.info != nil:
		f := b.info
		body := theme.Selected.Render(f.Name) + "  " +
			lipgloss.NewStyle().Foreground(theme.PathwayColor(f.Pathway)).Render(f.Pathway.DisplayName()) + "\n" +
			theme.Body.Render(f.Description) + "\n" +
			theme.Hint.Render("Clinical: "+f.Clinical)
		if len(f.Antagonists) > 0 {
			body += "\n" + theme.Hint.Render("Inhibited by: "+strings.Join(f.Antagonists, ", "))
		}
		return theme.Panel.Width(width).Render(body)
	case b.hint != nil:
		h := b.hint
		return theme.Panel.Width(width).Render(theme.Hint.Render(fmt.Sprintf(
			"%s belongs to the %s pathway (%s). Its slot is %d.",
			h.FactorID, h.Pathway.DisplayName(), h.Concept, b.slotNumber(h.Target))))
	}
	return ""
}

// slotNumber returns the 1-based label of the slot at p.
func (b *BoardScreen) slotNumber(p catalog.Point) int {
	for i, id := range b.slots {
		if f, ok := b.svc.Catalog().Get(id); ok && f.Target == p {
			return i + 1
		}
	}
	return 0
}
