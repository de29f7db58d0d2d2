package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Rows
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Filter key.Binding
	Escape key.Binding
	Enter  key.Binding

	// Pages
	NextPage    key.Binding
	PrevPage    key.Binding
	SmallerPage key.Binding
	LargerPage  key.Binding
	Reload      key.Binding

	// Selection
	SelectPage   key.Binding
	DeselectPage key.Binding
	ClearAll     key.Binding
	SelectFirstN key.Binding
	Drawer       key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings
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
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle row"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter page"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),

		NextPage: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev page"),
		),
		SmallerPage: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "smaller pages"),
		),
		LargerPage: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "larger pages"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),

		SelectPage: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select page"),
		),
		DeselectPage: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "deselect page"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear all"),
		),
		SelectFirstN: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "select first N"),
		),
		Drawer: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "selection"),
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

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.NextPage, k.PrevPage, k.SelectFirstN, k.Drawer, k.Help}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Filter, k.Escape},
		{k.NextPage, k.PrevPage, k.SmallerPage, k.LargerPage, k.Reload},
		{k.SelectPage, k.DeselectPage, k.ClearAll, k.SelectFirstN, k.Drawer},
		{k.Help, k.Quit},
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
