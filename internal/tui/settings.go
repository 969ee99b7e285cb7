package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/trash-scanner/internal/capture"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// Settings rows.
const (
	rowTheme = iota
	rowLanguage
	rowGender
	rowSalutation
	rowInterval
	rowSound
	rowExpert
	rowReminder
	rowReset
	settingsRows
)

// intervalStep is how much left/right moves the auto-scan interval.
const intervalStep = 500

type settingsModel struct {
	draft        model.AppSettings
	profile      model.UserProfile
	cursor       int
	confirmReset bool
	saving       bool
}

func (m *Model) enterSettings() {
	m.settings = settingsModel{
		draft:   m.app.Settings(),
		profile: m.app.Profile(),
	}
	m.switchTo(ScreenSettings)
}

func (m Model) settingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.settings
	if s.saving {
		return m, nil
	}
	if s.cursor != rowReset {
		s.confirmReset = false
	}

	switch {
	case key.Matches(msg, m.keymap.Back):
		return m, m.enterScan()
	case key.Matches(msg, m.keymap.Up):
		s.cursor = max(s.cursor-1, 0)
		return m, nil
	case key.Matches(msg, m.keymap.Down):
		s.cursor = min(s.cursor+1, settingsRows-1)
		return m, nil
	case key.Matches(msg, m.keymap.Select):
		if s.cursor == rowReset {
			if !s.confirmReset {
				s.confirmReset = true
				return m, nil
			}
			s.saving = true
			return m, m.resetApp()
		}
		var profile *model.UserProfile
		if cur := m.app.Profile(); s.profile != cur && cur.SetupComplete {
			p := s.profile
			profile = &p
		}
		s.saving = true
		return m, m.saveSettings(s.draft, profile)
	}

	dir := 0
	switch {
	case key.Matches(msg, m.keymap.Left):
		dir = -1
	case key.Matches(msg, m.keymap.Right), key.Matches(msg, m.keymap.Toggle):
		dir = 1
	default:
		return m, nil
	}

	d := &s.draft
	switch s.cursor {
	case rowTheme:
		d.Theme = step(model.Themes(), d.Theme, dir)
	case rowLanguage:
		d.Language = step(model.Languages(), d.Language, dir)
		s.profile = s.profile.Localize(d.Language)
	case rowGender:
		s.profile.Gender = step(model.GendersFor(d.Language), s.profile.Gender.Localize(d.Language), dir)
	case rowSalutation:
		s.profile.Salutation = step(model.SalutationsFor(d.Language), s.profile.Salutation.Localize(d.Language), dir)
	case rowInterval:
		d.AutoScanInterval = model.ClampInterval(d.AutoScanInterval + dir*intervalStep)
	case rowSound:
		d.SoundEffects = !d.SoundEffects
	case rowExpert:
		d.ExpertMode = !d.ExpertMode
	case rowReminder:
		d.EnableReminder = !d.EnableReminder
	}
	return m, nil
}

// step moves through values with wrap-around.
func step[T comparable](values []T, cur T, dir int) T {
	i := slices.Index(values, cur)
	if i < 0 {
		return values[0]
	}
	n := len(values)
	return values[(i+dir+n)%n]
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.settings.saving = false
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.setError(msg.err, "error.settings")
			return m, nil
		}
		m.applyTheme()
		m.settings.draft = m.app.Settings()
		m.settings.profile = m.app.Profile()
		m.scanDispatch(capture.SetInterval(m.app.Settings().ScanInterval()))
		if m.quiz.game != nil {
			m.quiz.snap = m.quiz.game.Snapshot()
		}
		m.setFlash(m.t("settings.saved"))

	case resetDoneMsg:
		if msg.err != nil {
			m.setError(msg.err, "error.title")
			return m, nil
		}
		m.closeScanner()
		if m.quiz.game != nil {
			m.quiz.game.Close()
		}
		m.quiz = quizModel{}
		m.applyTheme()
		m.setup = newSetupModel(m.app.NewWizard())
		m.screen = ScreenSetup
	}
	return m, nil
}

func (m Model) viewSettings() string {
	th := m.theme
	s := m.settings
	d := s.draft
	var b strings.Builder

	b.WriteString(th.Title.Render(m.t("settings.title")))
	b.WriteString("\n")

	onOff := func(v bool) string {
		if v {
			return "[x]"
		}
		return "[ ]"
	}
	rows := []string{
		rowTheme:      fmt.Sprintf("%s: ‹ %s ›", m.t("theme.theme"), m.t("theme."+string(d.Theme))),
		rowLanguage:   fmt.Sprintf("%s: ‹ %s ›", m.t("settings.language"), d.Language.DisplayName()),
		rowGender:     fmt.Sprintf("%s: ‹ %s ›", m.t("settings.genders"), s.profile.Gender),
		rowSalutation: fmt.Sprintf("%s: ‹ %s ›", m.t("settings.salutations"), s.profile.Salutation),
		rowInterval: fmt.Sprintf("%s: ‹ %s ›", m.t("settings.camera.scanInterval"),
			m.t("settings.camera.seconds", i18n.Vars{"value": fmt.Sprintf("%.1f", float64(d.AutoScanInterval)/1000)})),
		rowSound:    fmt.Sprintf("%s %s", onOff(d.SoundEffects), m.t("settings.camera.soundEffects")),
		rowExpert:   fmt.Sprintf("%s %s", onOff(d.ExpertMode), m.t("settings.expertMode.enable")),
		rowReminder: fmt.Sprintf("%s %s (%s)", onOff(d.EnableReminder), m.t("settings.notifications.enable"), d.ReminderTime),
		rowReset:    th.StatusError.Render(m.t("settings.data.reset")),
	}
	for i, row := range rows {
		b.WriteString(m.option(row, i == s.cursor))
	}

	b.WriteString("\n")
	switch s.cursor {
	case rowExpert:
		b.WriteString(th.Subtitle.Render(m.t("settings.expertMode.description")))
	case rowSound:
		b.WriteString(th.Subtitle.Render(m.t("settings.camera.soundEffectsDescription")))
	case rowReset:
		if s.confirmReset {
			b.WriteString(th.StatusWarning.Render(m.t("settings.data.confirmReset")))
		} else {
			b.WriteString(th.Subtitle.Render(m.t("settings.data.resetDescription")))
		}
	}
	b.WriteString("\n")
	b.WriteString(th.StatusPending.Render(hint(m.keymap.Select, m.t("common.save")) + "  " + hint(m.keymap.Back, m.t("common.back"))))
	return b.String()
}
