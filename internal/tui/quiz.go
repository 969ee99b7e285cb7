package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/quiz"
)

type quizModel struct {
	game   *quiz.Game
	snap   quiz.Snapshot
	cursor int
}

func (m *Model) enterQuiz() {
	if m.quiz.game == nil {
		post := m.post
		m.quiz.game = m.app.NewGame(func(s quiz.Snapshot) { post(quizChangedMsg{snap: s}) })
	}
	m.quiz.snap = m.quiz.game.Snapshot()
	if m.quiz.snap.Phase == quiz.PhaseIdle {
		m.quiz.cursor = max(slices.Index(quiz.Difficulties(), m.app.DefaultDifficulty()), 0)
	}
	m.switchTo(ScreenQuiz)
}

func (m Model) quizKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := &m.quiz
	game := q.game

	switch q.snap.Phase {
	case quiz.PhaseIdle:
		if next, cmd, ok := m.navigate(msg); ok {
			return next, cmd
		}
		levels := quiz.Difficulties()
		switch {
		case key.Matches(msg, m.keymap.Up):
			q.cursor = max(q.cursor-1, 0)
		case key.Matches(msg, m.keymap.Down):
			q.cursor = min(q.cursor+1, len(levels)-1)
		case key.Matches(msg, m.keymap.Select), key.Matches(msg, m.keymap.Retry):
			q.snap.Phase = quiz.PhaseLoading
			q.snap.Err = nil
			return m, tea.Batch(m.spinner.Tick, m.startQuiz(levels[q.cursor]))
		case key.Matches(msg, m.keymap.Back):
			return m, m.enterScan()
		}

	case quiz.PhaseLoading:
		if key.Matches(msg, m.keymap.Back) {
			game.Restart()
			q.snap = game.Snapshot()
		}

	case quiz.PhasePlaying:
		question := q.snap.Question
		if question == nil {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keymap.Back):
			game.Restart()
		case key.Matches(msg, m.keymap.Up):
			q.cursor = max(q.cursor-1, 0)
		case key.Matches(msg, m.keymap.Down):
			q.cursor = min(q.cursor+1, len(question.Options)-1)
		case !q.snap.Answered && isDigit(msg, len(question.Options)):
			q.cursor = int(msg.Runes[0] - '1')
			_, _ = game.Answer(question.Options[q.cursor])
		case key.Matches(msg, m.keymap.Select):
			if !q.snap.Answered {
				_, _ = game.Answer(question.Options[q.cursor])
			} else if err := game.Next(); err == nil {
				q.cursor = 0
			}
		}
		q.snap = game.Snapshot()

	case quiz.PhaseFinished:
		switch {
		case key.Matches(msg, m.keymap.Select), key.Matches(msg, m.keymap.Retry):
			game.Restart()
			q.snap = game.Snapshot()
		case key.Matches(msg, m.keymap.Back):
			game.Restart()
			q.snap = game.Snapshot()
			return m, m.enterScan()
		}
	}
	return m, nil
}

func (m Model) updateQuiz(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quiz.game == nil {
		return m, nil
	}
	switch msg := msg.(type) {
	case quizStartedMsg:
		m.quiz.snap = msg.snap
		m.quiz.cursor = 0
		if msg.err != nil && !errors.Is(msg.err, quiz.ErrWrongPhase) && !errors.Is(msg.err, quiz.ErrRestarted) {
			m.setError(msg.err, "error.quiz")
			m.quiz.cursor = max(slices.Index(quiz.Difficulties(), msg.snap.Difficulty), 0)
		}
	case quizChangedMsg:
		// Queued snapshots can be stale; the game holds the truth.
		snap := m.quiz.game.Snapshot()
		if snap.Index != m.quiz.snap.Index || snap.Phase != m.quiz.snap.Phase {
			m.quiz.cursor = 0
		}
		m.quiz.snap = snap
	}
	return m, nil
}

func (m Model) viewQuiz() string {
	th := m.theme
	s := m.quiz.snap
	var b strings.Builder

	b.WriteString(th.Title.Render(m.t("game.title")))
	b.WriteString("\n")

	switch s.Phase {
	case quiz.PhaseIdle:
		b.WriteString(th.Subtitle.Render(m.t("game.howToPlay")))
		b.WriteString("\n")
		b.WriteString(th.Bold.Render(m.t("game.difficulty.title")))
		b.WriteString("\n")
		for i, d := range quiz.Difficulties() {
			tier := d.Tier()
			label := fmt.Sprintf("%s  (%d, %s)", m.t("game.difficulty."+string(d)), tier.Questions, quiz.FormatRemaining(tier.Duration))
			b.WriteString(m.option(label, i == m.quiz.cursor))
		}
		b.WriteString(th.StatusPending.Render(hint(m.keymap.Select, m.t("game.start"))))

	case quiz.PhaseLoading:
		b.WriteString(m.loaderView("loader.generatingQuiz", true))

	case quiz.PhasePlaying:
		q := s.Question
		if q == nil {
			break
		}
		header := lipgloss.JoinHorizontal(lipgloss.Top,
			th.Bold.Render(m.t("game.question", i18n.Vars{"current": s.Index + 1, "total": s.Total})),
			"   ",
			th.StatusInfo.Render(m.t("game.score", i18n.Vars{"score": s.Score})),
			"   ",
			m.timerStyle(s).Render(m.t("game.timeLeft", i18n.Vars{"time": quiz.FormatRemaining(s.Remaining)})),
		)
		b.WriteString(header)
		b.WriteString("\n\n")
		if q.ImageURL != "" {
			b.WriteString(th.StatusPending.Render(q.ImageURL))
			b.WriteString("\n")
		}
		b.WriteString(th.Title.Render(q.QuestionText))
		b.WriteString("\n")
		for i, opt := range q.Options {
			label := fmt.Sprintf("%d. %s", i+1, opt)
			if s.Answered {
				switch opt {
				case q.CorrectAnswer:
					label = th.StatusSuccess.Render(label + " ✓")
				case s.Selected:
					label = th.StatusError.Render(label + " ✗")
				}
			}
			b.WriteString(m.option(label, !s.Answered && i == m.quiz.cursor))
		}
		if s.Answered {
			b.WriteString("\n")
			if s.Selected == q.CorrectAnswer {
				b.WriteString(th.StatusSuccess.Render(m.t("game.correct")))
			} else {
				b.WriteString(th.StatusError.Render(m.t("game.incorrect", i18n.Vars{"answer": q.CorrectAnswer})))
			}
			b.WriteString("\n")
			b.WriteString(th.Italic.Render(q.Explanation))
			b.WriteString("\n")
			next := m.t("game.nextQuestion")
			if s.Index == s.Total-1 {
				next = m.t("game.seeResults")
			}
			b.WriteString(th.StatusPending.Render(hint(m.keymap.Select, next)))
		}

	case quiz.PhaseFinished:
		title := m.t("game.result.completed")
		if s.TimeUp {
			title = m.t("game.result.timeUp")
		}
		lines := []string{th.Title.Render(title)}
		if s.TimeUp {
			lines = append(lines, th.Subtitle.Render(m.t("game.result.timeUpMessage")))
		}
		lines = append(lines,
			th.Bold.Render(m.t("game.result.score", i18n.Vars{"score": s.Score, "total": s.Total})),
			m.progress(s.Percent(), 30),
			th.Normal.Render(m.t(s.FeedbackKey())),
			th.Italic.Render(m.t("game.result.thanks", i18n.Vars{"name": m.app.Profile().Name})),
		)
		b.WriteString(th.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
		b.WriteString("\n")
		b.WriteString(th.StatusPending.Render(hint(m.keymap.Select, m.t("game.playAgain"))))
	}
	return b.String()
}

func (m Model) timerStyle(s quiz.Snapshot) lipgloss.Style {
	if s.Remaining <= time.Minute {
		return m.theme.StatusError
	}
	return m.theme.StatusPending
}

// isDigit reports whether msg is a digit key from 1 to n.
func isDigit(msg tea.KeyMsg, n int) bool {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return false
	}
	r := msg.Runes[0]
	return r >= '1' && r < '1'+rune(n)
}
