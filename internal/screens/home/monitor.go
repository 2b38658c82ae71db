package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/ui/theme"
)

// Trace selects the monitor art shown on the home screen.
type Trace int

const (
	TraceSteady   Trace = iota // no profile yet or nothing notable
	TraceStrong                // most concepts mastered
	TraceUnstable              // concepts need review
)

const traceSteady = `┌──────────────────────┐
│ ──╮  ╭──╮  ╭──╮  ╭── │
│   ╰──╯  ╰──╯  ╰──╯   │
└──────────────────────┘`

const traceStrong = `┌──────────────────────┐
│ ─╮ ╭─╮ ╭─╮ ╭─╮ ╭─╮ ╭ │
│  ╰─╯ ╰─╯ ╰─╯ ╰─╯ ╰─╯ │
└──────────────────────┘`

const traceUnstable = `┌──────────────────────┐
│ ──╮╭╮ ╭───╮╭─╮ ╭──── │ !
│   ╰╯╰─╯   ╰╯ ╰─╯     │
└──────────────────────┘`

// traceFor picks the monitor art for a profile summary.
func traceFor(s stats, concepts int) Trace {
	switch {
	case s.struggling > 0:
		return TraceUnstable
	case concepts > 0 && s.mastered*2 >= concepts:
		return TraceStrong
	default:
		return TraceSteady
	}
}

// RenderTrace returns the monitor art for the given trace.
func RenderTrace(t Trace) string {
	art, fg := traceSteady, theme.Secondary
	switch t {
	case TraceStrong:
		art, fg = traceStrong, theme.Success
	case TraceUnstable:
		art, fg = traceUnstable, theme.Accent
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
