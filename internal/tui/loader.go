package tui

import (
	"strconv"
	"strings"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/quiz"
)

// loaderModel rotates recycling tips while any call is in flight and the
// quiz loading steps while questions are generated.
type loaderModel struct {
	tips  *assistant.Cycler
	steps *assistant.Cycler
	tip   int
	step  int
}

func (m *Model) initLoader() {
	post := m.post
	m.loader = loaderModel{
		tips:  assistant.NewTipCycler(m.app.Clock(), func(i int) { post(loaderTipMsg{index: i}) }),
		steps: assistant.NewStepCycler(m.app.Clock(), func(i int) { post(loaderStepMsg{index: i}) }),
	}
}

func (m Model) loading() bool {
	switch m.screen {
	case ScreenScan:
		return m.scan.state.Analyzing
	case ScreenSearch:
		return m.search.loading
	case ScreenQuiz:
		return m.quizLoading()
	}
	return false
}

func (m Model) quizLoading() bool {
	return m.screen == ScreenQuiz && m.quiz.snap.Phase == quiz.PhaseLoading
}

// syncLoader starts or stops the cyclers to match what is on screen.
func (m *Model) syncLoader() {
	l := &m.loader
	if l.tips == nil {
		return
	}
	syncCycler(l.tips, m.loading(), &l.tip)
	syncCycler(l.steps, m.quizLoading(), &l.step)
}

func syncCycler(c *assistant.Cycler, on bool, index *int) {
	switch {
	case on && !c.Running():
		c.Start()
		*index = c.Index()
	case !on && c.Running():
		c.Stop()
	}
}

func (m *Model) stopLoader() {
	if m.loader.tips != nil {
		m.loader.tips.Stop()
		m.loader.steps.Stop()
	}
}

// loaderView renders the spinner line, an optional step line and the
// current tip.
func (m Model) loaderView(messageKey string, withStep bool) string {
	th := m.theme
	lines := []string{m.spinner.View() + " " + m.t(messageKey)}
	if withStep {
		lines = append(lines, th.Subtitle.Render(m.t("loader.quiz.step"+strconv.Itoa(m.loader.step+1))))
	}
	tip := th.Bold.Render(m.t("loader.tip")+":") + " " + m.t("tips.tip"+strconv.Itoa(m.loader.tip+1))
	lines = append(lines, th.StatusPending.Render(tip))
	return strings.Join(lines, "\n")
}
