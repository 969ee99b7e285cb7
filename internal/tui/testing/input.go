// Package testing holds key and message helpers for driving the TUI model
// in tests without a terminal.
package testing

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyPress creates a rune key message, e.g. KeyPress("a").
func KeyPress(key string) tea.KeyMsg {
	return tea.KeyMsg{
		Type:  tea.KeyRunes,
		Runes: []rune(key),
	}
}

// KeyDown creates a down arrow key message.
func KeyDown() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyDown} }

// KeyUp creates an up arrow key message.
func KeyUp() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyUp} }

// KeyLeft creates a left arrow key message.
func KeyLeft() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyLeft} }

// KeyRight creates a right arrow key message.
func KeyRight() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRight} }

// KeyEnter creates an enter key message.
func KeyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

// KeyEsc creates an escape key message.
func KeyEsc() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEsc} }

// KeyTab creates a tab key message.
func KeyTab() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyTab} }

// KeySpace creates a space key message.
func KeySpace() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}} }

// KeyBackspace creates a backspace key message.
func KeyBackspace() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyBackspace} }

// WindowSize creates a window size message.
func WindowSize(width, height int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: width, Height: height}
}

// Type returns one rune key message per character of text.
func Type(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

// Feed applies msgs to model in order and returns the final model along
// with the command from the last message. Commands are not run.
func Feed(model tea.Model, msgs ...tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		model, cmd = model.Update(msg)
	}
	return model, cmd
}
