package view

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Follow  key.Binding
	Focus   key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh all")),
	Follow:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow log")),
	Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
}

func helpLine() string {
	parts := make([]string, 0, 4)
	for _, b := range []key.Binding{keys.Quit, keys.Refresh, keys.Follow, keys.Focus} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return joinDot(parts)
}
