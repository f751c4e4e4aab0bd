package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	ToggleLogs key.Binding
	Escape     key.Binding

	// Plot navigation
	Prev  key.Binding
	Next  key.Binding
	First key.Binding
	Last  key.Binding
	Alt   key.Binding

	// Zoom
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding

	// Server actions
	Remove       key.Binding
	RemoveOldest key.Binding
	Clear        key.Binding
	Pause        key.Binding
	Reconnect    key.Binding

	// Log scrolling
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Plots/logs"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to plots"),
		),

		Prev: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "Previous plot"),
		),
		Next: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "Next plot"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "Oldest plot"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "Newest plot"),
		),
		Alt: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Previously shown plot"),
		),

		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Zoom out"),
		),
		ZoomReset: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "Reset zoom"),
		),

		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Remove plot"),
		),
		RemoveOldest: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Remove oldest plot"),
		),
		Clear: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Clear history"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Pause queries"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reconnect"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),
	}
}

// ShortHelp implements help.KeyMap for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.ZoomIn, k.ZoomOut, k.Remove, k.Pause, k.ToggleLogs, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last, k.Alt},
		{k.ZoomIn, k.ZoomOut, k.ZoomReset},
		{k.Remove, k.RemoveOldest, k.Clear, k.Pause, k.Reconnect},
		{k.ToggleLogs, k.Up, k.Down, k.PageUp, k.PageDown},
		{k.CycleTheme, k.Help, k.Escape, k.Quit},
	}
}
