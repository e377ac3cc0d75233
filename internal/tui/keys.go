package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Find   key.Binding
	Copy   key.Binding
	Delete key.Binding
	Scroll key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Left:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		Right:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		Find:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy code")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll code")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Find, k.Copy, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Find, k.Copy, k.Delete, k.Scroll},
		{k.Help, k.Quit},
	}
}
