// Package router keeps the stack of screens the app frame renders. Screens
// navigate by returning Push/Pop/Replace messages from their commands; the
// bottom screen (home) is never popped.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cascade/internal/screen"
)

// PushScreenMsg opens a screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg returns to the previous screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the active screen in place, as the board does
// when a level finishes and its summary takes over.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

// Push makes s active and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop drops the active screen unless it is the root.
func (r *Router) Pop() tea.Cmd {
	if r.top() > 0 {
		r.stack[r.top()] = nil
		r.stack = r.stack[:r.top()]
	}
	return nil
}

// Replace swaps the active screen for s and returns its Init command.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[r.top()] = s
	return s.Init()
}

func (r *Router) Active() screen.Screen { return r.stack[r.top()] }

func (r *Router) Depth() int { return len(r.stack) }

// Update applies navigation messages and forwards everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case PushScreenMsg:
		return r.Push(m.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(m.Screen)
	}
	next, cmd := r.Active().Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
