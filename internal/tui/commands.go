package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/quiz"
	"github.com/Veraticus/trash-scanner/internal/setup"
)

// storeTimeout bounds local storage operations.
const storeTimeout = 10 * time.Second

// post queues a message from a background goroutine. When the queue is full
// the message is dropped; every producer re-sends its full state later.
func (m Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
		m.logger.Warn("tui event dropped", "type", typeName(msg))
	}
}

// listen delivers the next background message.
func (m Model) listen() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return eventMsg{msg: <-events}
	}
}

func (m Model) startCamera() tea.Cmd {
	camera, ctx := m.scan.camera, m.ctx
	return func() tea.Msg {
		return cameraStartedMsg{err: camera.Start(ctx)}
	}
}

func (m Model) switchCamera() tea.Cmd {
	camera, ctx := m.scan.camera, m.ctx
	return func() tea.Msg {
		return cameraStartedMsg{err: camera.Switch(ctx)}
	}
}

func (m Model) runSearch(query string) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		outcome, items, err := app.Search(ctx, query)
		return searchDoneMsg{query: query, outcome: outcome, items: items, err: err}
	}
}

func (m Model) startQuiz(d quiz.Difficulty) tea.Cmd {
	game, ctx, lang := m.quiz.game, m.ctx, m.app.Settings().Language
	return func() tea.Msg {
		err := game.Start(ctx, d, lang)
		return quizStartedMsg{err: err, snap: game.Snapshot()}
	}
}

func (m Model) sendChat(text string) tea.Cmd {
	conv, ctx := m.chat.conv, m.ctx
	return func() tea.Msg {
		_, err := conv.Send(ctx, text)
		return chatReplyMsg{err: err}
	}
}

func (m Model) submitFeedback(item model.WasteInfo, reasons []model.FeedbackReason, comments string) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		_, message, err := app.SubmitFeedback(ctx, item, reasons, comments)
		return feedbackSentMsg{err: err, message: message}
	}
}

func (m Model) loadLocale(lang model.Language) tea.Cmd {
	loc, ctx := m.app.Localizer(), m.ctx
	return func() tea.Msg {
		return localeLoadedMsg{err: loc.Load(ctx, lang)}
	}
}

func (m Model) completeSetup(w *setup.Wizard) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		p, err := app.CompleteSetup(ctx, w)
		return setupSavedMsg{err: err, profile: p}
	}
}

// saveSettings stores the settings, then the profile when it changed. The
// settings go first so a language switch re-localizes the saved profile.
func (m Model) saveSettings(s model.AppSettings, p *model.UserProfile) tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		if err := app.UpdateSettings(ctx, s); err != nil {
			return settingsSavedMsg{err: err}
		}
		if p != nil {
			return settingsSavedMsg{err: app.UpdateProfile(ctx, *p)}
		}
		return settingsSavedMsg{}
	}
}

func (m Model) resetApp() tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		return resetDoneMsg{err: app.Reset(ctx)}
	}
}
