package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/trash-scanner/internal/chat"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
)

type chatModel struct {
	conv     *chat.Conversation
	input    textinput.Model
	viewport viewport.Model
	pending  string
}

func (m *Model) openChat(item model.WasteInfo) tea.Cmd {
	input := textinput.New()
	input.Placeholder = m.t("chat.placeholder")
	input.CharLimit = 500

	m.chat = chatModel{
		conv:     m.app.NewConversation(item),
		input:    input,
		viewport: viewport.New(m.width, max(m.height-10, 5)),
	}
	m.refreshTranscript()
	m.switchTo(ScreenChat)
	return m.chat.input.Focus()
}

func (c *chatModel) resize(width, height int) {
	c.viewport.Width = width
	c.viewport.Height = max(height-10, 5)
}

func (m Model) chatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := &m.chat
	switch msg.Type {
	case tea.KeyEsc:
		m.switchTo(ScreenResult)
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return m, cmd
	case tea.KeyEnter:
		text := strings.TrimSpace(c.input.Value())
		if text == "" || c.conv.Busy() || c.pending != "" {
			return m, nil
		}
		c.pending = text
		c.input.SetValue("")
		m.refreshTranscript()
		return m, tea.Batch(m.spinner.Tick, m.sendChat(text))
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return m, cmd
}

func (m Model) chatReplied(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	if m.chat.conv == nil {
		return m, nil
	}
	m.chat.pending = ""
	if errors.Is(msg.err, chat.ErrBusy) {
		m.setError(msg.err, "error.busy")
	}
	// A failed reply is already in the transcript as the localized error turn.
	m.refreshTranscript()
	return m, nil
}

func (m *Model) refreshTranscript() {
	th := m.theme
	c := &m.chat
	var lines []string
	for _, msg := range c.conv.Messages() {
		lines = append(lines, m.bubble(msg))
	}
	if c.pending != "" {
		if !hasUserTurn(c.conv.Messages(), c.pending) {
			lines = append(lines, m.bubble(model.ChatMessage{Role: model.RoleUser, Text: c.pending}))
		}
		lines = append(lines, th.StatusPending.Render(m.spinner.View()+" …"))
	}
	c.viewport.SetContent(strings.Join(lines, "\n"))
	c.viewport.GotoBottom()
}

func hasUserTurn(msgs []model.ChatMessage, text string) bool {
	return len(msgs) > 0 && msgs[len(msgs)-1].Role == model.RoleUser && msgs[len(msgs)-1].Text == text
}

func (m *Model) bubble(msg model.ChatMessage) string {
	th := m.theme
	width := max(m.width*2/3, 20)
	style := lipgloss.NewStyle().Padding(0, 1).Width(width)
	if msg.Role == model.RoleUser {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, style.Inherit(th.Selected).Render(msg.Text))
	}
	return style.Inherit(th.Highlighted).Render(msg.Text)
}

func (m Model) viewChat() string {
	th := m.theme
	c := m.chat
	var b strings.Builder
	b.WriteString(th.Title.Render(m.t("chat.title", i18n.Vars{"item": c.conv.Item()})))
	b.WriteString("\n")
	b.WriteString(c.viewport.View())
	b.WriteString("\n")
	b.WriteString(th.RoundedBox.Render(c.input.View()))
	b.WriteString("\n")
	b.WriteString(th.StatusPending.Render(hint(m.keymap.Select, m.t("chat.send")) + "  " + hint(m.keymap.Back, m.t("chat.back"))))
	return b.String()
}
