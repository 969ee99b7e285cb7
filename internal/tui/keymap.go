package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts. Letter bindings apply only on
// screens without a focused text input.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Next  key.Binding
	Prev  key.Binding

	// Actions
	Select key.Binding
	Back   key.Binding
	Toggle key.Binding
	Retry  key.Binding

	// Scanner
	Capture    key.Binding
	ToggleAuto key.Binding
	Pause      key.Binding
	Switch     key.Binding

	// Screens
	Scan     key.Binding
	Search   key.Binding
	Quiz     key.Binding
	Settings key.Binding
	Chat     key.Binding
	Report   key.Binding

	// Application
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "less"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "more"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("Shift+Tab", "previous field"),
		),

		// Actions
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("Space/x", "toggle"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "try again"),
		),

		// Scanner
		Capture: key.NewBinding(
			key.WithKeys("c", " "),
			key.WithHelp("c/Space", "capture"),
		),
		ToggleAuto: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "auto/manual"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause/resume"),
		),
		Switch: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "switch camera"),
		),

		// Screens
		Scan: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "scan"),
		),
		Search: key.NewBinding(
			key.WithKeys("2", "/"),
			key.WithHelp("2//", "search"),
		),
		Quiz: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "quiz"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Chat: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "ask about item"),
		),
		Report: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "report a mistake"),
		),

		// Application
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("Ctrl+C", "force quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Select, k.Back, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Next, k.Prev},
		{k.Select, k.Back, k.Toggle, k.Retry},
		{k.Capture, k.ToggleAuto, k.Pause, k.Switch},
		{k.Scan, k.Search, k.Quiz, k.Settings, k.Chat, k.Report},
		{k.Help, k.Quit},
	}
}
