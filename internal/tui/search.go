package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/i18n"
)

type searchModel struct {
	timer       *assistant.SearchTimer
	input       textinput.Model
	suggestions []string
	remaining   time.Duration
	cursor      int
	loading     bool
	timeUp      bool
}

// enterSearch opens an empty search. Expert mode arms the countdown, which
// starts on the first character typed.
func (m *Model) enterSearch() tea.Cmd {
	if m.search.timer != nil {
		m.search.timer.Stop()
	}

	input := textinput.New()
	input.Placeholder = m.t("search.placeholder")
	input.CharLimit = 100

	m.search = searchModel{input: input, cursor: -1, remaining: assistant.SearchWindow}
	if m.app.Settings().ExpertMode {
		post := m.post
		m.search.timer = assistant.NewSearchTimer(m.app.Clock(), func(d time.Duration) {
			post(searchTickMsg{remaining: d})
		})
	}
	m.switchTo(ScreenSearch)
	return m.search.input.Focus()
}

func (m Model) searchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.search
	if s.loading {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		if s.timer != nil {
			s.timer.Stop()
		}
		return m, m.enterScan()
	case tea.KeyUp:
		if len(s.suggestions) > 0 {
			s.cursor = max(s.cursor-1, 0)
		}
		return m, nil
	case tea.KeyDown:
		if len(s.suggestions) > 0 {
			s.cursor = min(s.cursor+1, len(s.suggestions)-1)
		}
		return m, nil
	}

	if key.Matches(msg, m.keymap.Next) && s.cursor >= 0 {
		s.input.SetValue(s.suggestions[s.cursor])
		s.input.CursorEnd()
		s.suggestions = nil
		s.cursor = -1
		return m, nil
	}

	if key.Matches(msg, m.keymap.Select) {
		query := strings.TrimSpace(s.input.Value())
		if s.cursor >= 0 {
			query = s.suggestions[s.cursor]
		}
		if query == "" {
			return m, nil
		}
		if s.timer != nil {
			s.timer.Stop()
		}
		s.loading = true
		s.suggestions = nil
		return m, tea.Batch(m.spinner.Tick, m.runSearch(query))
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	value := s.input.Value()
	if s.timer != nil {
		s.timer.Input(value)
		s.remaining = s.timer.Remaining()
		s.timeUp = false
	}
	s.suggestions = m.app.Suggestions(value)
	s.cursor = -1
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchTickMsg:
		if m.screen != ScreenSearch || m.search.timer == nil {
			return m, nil
		}
		m.search.remaining = msg.remaining
		if msg.remaining <= 0 {
			m.search.timeUp = true
		}

	case searchDoneMsg:
		m.search.loading = false
		if m.screen != ScreenSearch {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err, "error.search")
			return m, nil
		}
		return m.showResult(ScreenSearch, msg.items, nil)
	}
	return m, nil
}

func (m Model) viewSearch() string {
	th := m.theme
	s := m.search
	var b strings.Builder

	b.WriteString(th.Title.Render(m.t("search.title")))
	b.WriteString("\n")
	b.WriteString(th.Subtitle.Render(m.t("search.subtitle")))
	b.WriteString("\n")

	if s.timer != nil {
		secs := int(s.remaining / time.Second)
		switch {
		case s.timeUp:
			b.WriteString(th.StatusError.Render(m.t("search.timeUp")))
		case s.timer.Active():
			style := th.StatusInfo
			if secs <= 5 {
				style = th.StatusWarning
			}
			b.WriteString(style.Render(m.t("search.timeLeft", i18n.Vars{"seconds": secs})))
		default:
			b.WriteString(th.StatusPending.Render(m.t("search.expertNote", i18n.Vars{"seconds": secs})))
		}
		b.WriteString("\n")
	}

	b.WriteString(th.RoundedBox.Render(s.input.View()))
	b.WriteString("\n")

	if s.loading {
		b.WriteString(m.loaderView("loader.searching", false) + "\n")
	}
	for i, sug := range s.suggestions {
		b.WriteString(m.option(sug, i == s.cursor))
	}
	return b.String()
}
