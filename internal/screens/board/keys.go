package board

import (
	"charm.land/bubbles/v2/key"

	"github.com/abhisek/cascade/internal/ui/components"
	"github.com/abhisek/cascade/internal/ui/layout"
)

type keyMap struct {
	Up, Down, Left, Right key.Binding
	Focus                 key.Binding
	Act                   key.Binding
	Drag                  key.Binding
	Hint                  key.Binding
	Info                  key.Binding
	ResetIncorrect        key.Binding
	StopEmergency         key.Binding
	Restart               key.Binding
	Quit                  key.Binding
}

var keys = keyMap{
	Up:    components.KeyUp,
	Down:  components.KeyDown,
	Left:  components.KeyLeft,
	Right: components.KeyRight,
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "factors/slots"),
	),
	Act: key.NewBinding(
		key.WithKeys("enter", "space"),
		key.WithHelp("enter", "select/place"),
	),
	Drag: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "drag"),
	),
	Hint: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "hint"),
	),
	Info: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "info"),
	),
	ResetIncorrect: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "clear misses"),
	),
	StopEmergency: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stabilise"),
	),
	Restart: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "restart"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "quit"),
	),
}

func hints(bs ...key.Binding) []layout.KeyHint {
	out := make([]layout.KeyHint, 0, len(bs))
	for _, b := range bs {
		h := b.Help()
		out = append(out, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return out
}
