package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of the memory inspector. It satisfies
// help.KeyMap so bubbles/help can render it.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Load     key.Binding
	LoadFit  key.Binding
	Unload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// Keys is the default inspector key map.
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous pid"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next pid"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("n", "right"),
		key.WithHelp("n/→", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("p", "left"),
		key.WithHelp("p/←", "prev page"),
	),
	Load: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "load random process"),
	),
	LoadFit: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "load into first page with room"),
	),
	Unload: key.NewBinding(
		key.WithKeys("u", "x"),
		key.WithHelp("u", "unload selected pid"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns the bindings shown in the compact help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Load, k.Unload, k.NextPage, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped in columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Load, k.LoadFit, k.Unload},
		{k.Help, k.Quit},
	}
}
