package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/tui/themes"
)

type resultModel struct {
	dismisser *assistant.Dismisser
	items     []model.WasteInfo
	frame     []byte
	origin    Screen
	outcome   assistant.Outcome
	cursor    int
}

// showResult routes a classification to the result, compliment or
// not-found view. The not-found view dismisses itself after NotFoundDelay.
func (m Model) showResult(origin Screen, items []model.WasteInfo, frame []byte) (tea.Model, tea.Cmd) {
	outcome := assistant.Route(items)
	m.result.items = items
	m.result.frame = frame
	m.result.origin = origin
	m.result.outcome = outcome
	m.result.cursor = 0

	switch outcome {
	case assistant.OutcomeCompliment:
		m.switchTo(ScreenCompliment)
	case assistant.OutcomeNotFound:
		m.switchTo(ScreenNotFound)
		post := m.post
		m.result.dismisser.Arm(func() { post(dismissMsg{}) })
	default:
		m.switchTo(ScreenResult)
	}
	return m, nil
}

// leaveResult returns to the screen the result came from.
func (m Model) leaveResult() (tea.Model, tea.Cmd) {
	m.result.dismisser.Cancel()
	m.result.items = nil
	m.result.frame = nil
	if m.result.origin == ScreenSearch {
		return m, m.enterSearch()
	}
	return m, m.enterScan()
}

func (m Model) resultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen != ScreenResult {
		// Any key closes the compliment and not-found views.
		return m.leaveResult()
	}

	switch {
	case key.Matches(msg, m.keymap.Up):
		m.result.cursor = max(m.result.cursor-1, 0)
	case key.Matches(msg, m.keymap.Down):
		m.result.cursor = min(m.result.cursor+1, len(m.result.items)-1)
	case key.Matches(msg, m.keymap.Chat):
		return m, m.openChat(m.result.items[m.result.cursor])
	case key.Matches(msg, m.keymap.Report):
		return m, m.openFeedback(m.result.items[m.result.cursor])
	case key.Matches(msg, m.keymap.Back), key.Matches(msg, m.keymap.Select):
		return m.leaveResult()
	}
	return m, nil
}

func (m Model) viewResult() string {
	th := m.theme
	r := m.result

	switch m.screen {
	case ScreenCompliment:
		p := m.app.Profile()
		return th.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left,
			th.Title.Render(m.t("compliment.title", i18n.Vars{"salutation": p.Salutation, "name": p.Name})),
			th.Normal.Render(m.t("compliment.message")),
		))
	case ScreenNotFound:
		return th.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left,
			th.Title.Render(m.t("notFound.title")),
			th.Subtitle.Render(m.t("notFound.message")),
		))
	}

	var b strings.Builder
	b.WriteString(th.Title.Render(m.t("result.title")))
	b.WriteString("\n")
	if r.origin == ScreenSearch && len(r.items) > 0 && r.items[0].ImageURL != "" {
		b.WriteString(th.StatusPending.Render(r.items[0].ImageURL))
		b.WriteString("\n")
	} else if len(r.frame) > 0 {
		b.WriteString(th.StatusPending.Render(fmt.Sprintf("[%d KB]", (len(r.frame)+1023)/1024)))
		b.WriteString("\n")
	}

	for i, item := range r.items {
		name := themes.RecyclableIcon(item.Recyclable) + " " + item.WasteType
		if i == r.cursor {
			name = th.Selected.Render(" " + name + " ")
		} else {
			name = th.Bold.Render(name)
		}
		recyclable := m.t("result.recyclableValue." + string(item.Recyclable))
		card := lipgloss.JoinVertical(lipgloss.Left,
			name,
			fmt.Sprintf("%s: %s", m.t("result.material"), item.Material),
			fmt.Sprintf("%s: %s", m.t("result.recyclable"), th.RecyclableStyle(item.Recyclable).Render(recyclable)),
			fmt.Sprintf("%s: %s", m.t("result.instructions"), item.DisposalInstructions),
			th.Italic.Render(fmt.Sprintf("%s %s", m.t("result.funFact"), item.FunFact)),
		)
		b.WriteString(th.RoundedBox.Render(card))
		b.WriteString("\n")
	}

	b.WriteString(th.StatusPending.Render(strings.Join([]string{
		hint(m.keymap.Chat, m.t("result.askMore")),
		hint(m.keymap.Report, m.t("result.report")),
		hint(m.keymap.Back, m.t("result.scanAgain")),
	}, "  ")))
	return b.String()
}
