package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// View renders the active screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.screen {
	case ScreenSetup:
		body = m.viewSetup()
	case ScreenScan:
		body = m.viewScan()
	case ScreenSearch:
		body = m.viewSearch()
	case ScreenResult, ScreenCompliment, ScreenNotFound:
		body = m.viewResult()
	case ScreenQuiz:
		body = m.viewQuiz()
	case ScreenChat:
		body = m.viewChat()
	case ScreenFeedback:
		body = m.viewFeedback()
	case ScreenSettings:
		body = m.viewSettings()
	}

	parts := []string{m.renderHeader(), body}
	if m.flash != "" {
		style := m.theme.StatusSuccess
		if m.flashErr {
			style = m.theme.StatusError
		}
		parts = append(parts, style.Render(m.flash))
	}
	if m.screen != ScreenSetup {
		parts = append(parts, m.renderHelp())
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderHeader() string {
	th := m.theme
	title := lipgloss.NewStyle().Bold(true).Foreground(th.Foreground).Render(m.t("header.title1")) +
		lipgloss.NewStyle().Bold(true).Foreground(th.Primary).Render(m.t("header.title2"))
	if m.screen == ScreenSetup {
		return title + "\n"
	}

	tabs := []struct {
		screen Screen
		label  string
	}{
		{ScreenScan, m.t("nav.camera")},
		{ScreenSearch, m.t("nav.search")},
		{ScreenQuiz, m.t("nav.game")},
		{ScreenSettings, m.t("settings.title")},
	}
	rendered := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(th.Muted)
		if tab.screen == m.screen {
			style = th.Selected.Padding(0, 1)
		}
		rendered = append(rendered, style.Render(tab.label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "   ", strings.Join(rendered, " ")) + "\n"
}

func (m Model) renderHelp() string {
	if m.showHelp {
		return m.help.FullHelpView(m.keymap.FullHelp())
	}
	return m.help.ShortHelpView(m.keymap.ShortHelp())
}

// option renders one line of a choice list.
func (m Model) option(label string, selected bool) string {
	if selected {
		return m.theme.Selected.Render("› "+label+" ") + "\n"
	}
	return m.theme.Normal.Render("  "+label) + "\n"
}

// field renders a labelled form value.
func (m Model) field(label, value string, focused bool) string {
	l := m.theme.Bold.Render(label)
	if focused {
		l = m.theme.Selected.Render(" " + label + " ")
	}
	return l + "\n  " + value + "\n"
}

// hint renders a key binding with a label, e.g. "[enter] Save".
func hint(b key.Binding, label string) string {
	return fmt.Sprintf("[%s] %s", b.Help().Key, label)
}

// progress renders a bar of the given width for percent in [0, 100].
func (m Model) progress(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := width * percent / 100
	return m.theme.ProgressFull.Render(strings.Repeat("█", filled)) +
		m.theme.ProgressEmpty.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %d%%", percent)
}
