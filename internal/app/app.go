// Package app hosts the root bubbletea model: a screen router framed by a
// header and a key-hint footer.
package app

import (
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cascade/internal/coach"
	"github.com/abhisek/cascade/internal/logging"
	"github.com/abhisek/cascade/internal/router"
	"github.com/abhisek/cascade/internal/screen"
	"github.com/abhisek/cascade/internal/screens/home"
	"github.com/abhisek/cascade/internal/session"
	"github.com/abhisek/cascade/internal/store"
	"github.com/abhisek/cascade/internal/ui/layout"
)

// Options are the collaborators of the TUI. Events and Coach may be nil.
type Options struct {
	Session *session.Service
	Events  store.EventRepo
	Coach   *coach.Service
	Log     *slog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	homeScreen := home.New(opts.Session, opts.Events, opts.Coach, logging.OrDiscard(opts.Log))
	return AppModel{
		router: router.New(homeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if kp, ok := active.(screen.KeyHintProvider); ok {
		return append(kp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if opts.Session == nil {
		return fmt.Errorf("app: session service is required")
	}
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
