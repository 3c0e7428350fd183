package keyboard

import "github.com/charmbracelet/bubbles/key"

type Map struct {
	Help key.Binding
	Quit key.Binding
}

func New() Map {
	return Map{
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "details"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

func (m Map) ShortHelp() []key.Binding {
	return []key.Binding{m.Help, m.Quit}
}

func (m Map) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Help, m.Quit}}
}
