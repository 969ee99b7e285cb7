package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/trash-scanner/internal/model"
)

type feedbackModel struct {
	err      error
	selected map[model.FeedbackReason]bool
	item     model.WasteInfo
	comments textinput.Model
	cursor   int
	sending  bool
}

func (m *Model) openFeedback(item model.WasteInfo) tea.Cmd {
	comments := textinput.New()
	comments.Placeholder = m.t("feedback.comments")
	comments.CharLimit = 500

	m.feedback = feedbackModel{
		item:     item,
		selected: make(map[model.FeedbackReason]bool),
		comments: comments,
	}
	m.switchTo(ScreenFeedback)
	return nil
}

// onComments reports whether the cursor is on the comment field, after the
// reason list.
func (f *feedbackModel) onComments() bool {
	return f.cursor == len(model.FeedbackReasons())
}

func (m Model) feedbackKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.feedback
	if f.sending {
		return m, nil
	}
	reasons := model.FeedbackReasons()

	switch msg.Type {
	case tea.KeyEsc:
		m.switchTo(ScreenResult)
		return m, nil
	case tea.KeyUp, tea.KeyShiftTab:
		f.cursor = max(f.cursor-1, 0)
		return m, m.focusComments()
	case tea.KeyDown, tea.KeyTab:
		f.cursor = min(f.cursor+1, len(reasons))
		return m, m.focusComments()
	case tea.KeyEnter:
		var picked []model.FeedbackReason
		for _, r := range reasons {
			if f.selected[r] {
				picked = append(picked, r)
			}
		}
		f.sending = true
		f.err = nil
		return m, m.submitFeedback(f.item, picked, f.comments.Value())
	}

	if f.onComments() {
		var cmd tea.Cmd
		f.comments, cmd = f.comments.Update(msg)
		return m, cmd
	}
	if msg.Type == tea.KeySpace || (msg.Type == tea.KeyRunes && string(msg.Runes) == "x") {
		r := reasons[f.cursor]
		f.selected[r] = !f.selected[r]
	}
	return m, nil
}

func (m *Model) focusComments() tea.Cmd {
	if m.feedback.onComments() {
		return m.feedback.comments.Focus()
	}
	m.feedback.comments.Blur()
	return nil
}

func (m Model) feedbackSent(msg feedbackSentMsg) (tea.Model, tea.Cmd) {
	m.feedback.sending = false
	if msg.err != nil {
		m.feedback.err = msg.err
		return m, nil
	}
	m.setFlash(msg.message)
	m.switchTo(ScreenResult)
	return m, nil
}

func (m Model) viewFeedback() string {
	th := m.theme
	f := m.feedback
	var b strings.Builder

	b.WriteString(th.Title.Render(m.t("feedback.title")))
	b.WriteString("\n")
	b.WriteString(th.Bold.Render(f.item.WasteType))
	b.WriteString("\n\n")

	for i, r := range model.FeedbackReasons() {
		box := "[ ]"
		if f.selected[r] {
			box = "[x]"
		}
		b.WriteString(m.option(box+" "+m.t("feedback.reason."+string(r)), i == f.cursor))
	}
	b.WriteString("\n")
	label := m.t("feedback.comments")
	if f.onComments() {
		label = th.Selected.Render(" " + label + " ")
	}
	b.WriteString(label)
	b.WriteString("\n")
	b.WriteString(th.RoundedBox.Render(f.comments.View()))
	b.WriteString("\n")

	if f.err != nil {
		fallback := "error.title"
		if errors.Is(f.err, model.ErrEmptyFeedback) {
			fallback = "error.feedback"
		}
		b.WriteString(th.StatusError.Render(m.t(errKey(f.err, fallback))))
		b.WriteString("\n")
	}
	b.WriteString(th.StatusPending.Render(hint(m.keymap.Select, m.t("feedback.submit")) + "  " + hint(m.keymap.Back, m.t("common.cancel"))))
	return b.String()
}
