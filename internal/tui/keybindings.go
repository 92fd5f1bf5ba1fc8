package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the todo browser keybindings.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	Ignore        key.Binding
	Resolve       key.Binding
	Unignore      key.Binding
	ToggleIgnored key.Binding
	Refresh       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Ignore: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "ignore"),
		),
		Resolve: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resolve"),
		),
		Unignore: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unignore"),
		),
		ToggleIgnored: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "show ignored"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Ignore, k.Resolve, k.Unignore, k.Refresh, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up},
		{k.Ignore, k.Resolve, k.Unignore},
		{k.ToggleIgnored, k.Refresh},
		{k.Help, k.Quit},
	}
}
