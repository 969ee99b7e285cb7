package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/setup"
)

// Fields on the details step.
const (
	fieldGender = iota
	fieldDOB
	fieldSalutation
	detailFields
)

var devices = []model.DeviceType{model.DevicePhone, model.DeviceComputer}

type setupModel struct {
	err        error
	wizard     *setup.Wizard
	name       textinput.Model
	dob        textinput.Model
	cursor     int
	field      int
	gender     int
	salutation int
	saving     bool
}

func newSetupModel(w *setup.Wizard) setupModel {
	name := textinput.New()
	name.CharLimit = 50

	dob := textinput.New()
	dob.Placeholder = "DD/MM/YYYY"
	dob.CharLimit = 10

	return setupModel{wizard: w, name: name, dob: dob}
}

func (m Model) setupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.setup
	if s.saving {
		return m, nil
	}
	w := s.wizard

	if key.Matches(msg, m.keymap.Back) {
		s.err = nil
		w.Prev()
		return m, m.focusSetup()
	}

	switch w.Step() {
	case setup.StepLanguage:
		langs := model.Languages()
		switch {
		case key.Matches(msg, m.keymap.Up):
			s.cursor = max(s.cursor-1, 0)
		case key.Matches(msg, m.keymap.Down):
			s.cursor = min(s.cursor+1, len(langs)-1)
		case key.Matches(msg, m.keymap.Select):
			w.SetLanguage(langs[s.cursor])
			return m.advanceSetup(m.loadLocale(langs[s.cursor]))
		}
		return m, nil

	case setup.StepName:
		if key.Matches(msg, m.keymap.Select) {
			w.SetName(s.name.Value())
			return m.advanceSetup(nil)
		}
		var cmd tea.Cmd
		s.name, cmd = s.name.Update(msg)
		return m, cmd

	case setup.StepDevice:
		switch {
		case key.Matches(msg, m.keymap.Up):
			s.cursor = max(s.cursor-1, 0)
		case key.Matches(msg, m.keymap.Down):
			s.cursor = min(s.cursor+1, len(devices)-1)
		case key.Matches(msg, m.keymap.Select):
			w.SetDevice(devices[s.cursor])
			return m.advanceSetup(nil)
		}
		return m, nil

	case setup.StepDetails:
		return m.detailsKey(msg)

	case setup.StepConfirm:
		if key.Matches(msg, m.keymap.Select) {
			s.saving = true
			s.err = nil
			return m, tea.Batch(m.spinner.Tick, m.completeSetup(w))
		}
	}
	return m, nil
}

func (m Model) detailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.setup
	w := s.wizard
	genders := model.GendersFor(w.Language())
	salutations := model.SalutationsFor(w.Language())

	switch {
	case key.Matches(msg, m.keymap.Next):
		s.field = (s.field + 1) % detailFields
		return m, m.focusSetup()
	case key.Matches(msg, m.keymap.Prev):
		s.field = (s.field + detailFields - 1) % detailFields
		return m, m.focusSetup()
	case key.Matches(msg, m.keymap.Select):
		w.SetGender(genders[s.gender])
		w.SetSalutation(salutations[s.salutation])
		w.SetDateOfBirth(strings.TrimSpace(s.dob.Value()))
		return m.advanceSetup(nil)
	}

	switch s.field {
	case fieldDOB:
		var cmd tea.Cmd
		s.dob, cmd = s.dob.Update(msg)
		return m, cmd
	case fieldGender:
		s.gender = cycle(s.gender, len(genders), msg, m.keymap)
	case fieldSalutation:
		s.salutation = cycle(s.salutation, len(salutations), msg, m.keymap)
	}
	return m, nil
}

// advanceSetup runs the wizard's Next and shows its error, if any.
func (m Model) advanceSetup(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	s := &m.setup
	if err := s.wizard.Next(m.app.Clock().Now()); err != nil {
		s.err = err
		return m, cmd
	}
	s.err = nil
	s.cursor = 0
	if s.wizard.Step() == setup.StepDevice {
		for i, d := range devices {
			if d == s.wizard.Profile().DeviceType {
				s.cursor = i
			}
		}
	}
	return m, tea.Batch(cmd, m.focusSetup())
}

// focusSetup focuses the text input of the current step.
func (m *Model) focusSetup() tea.Cmd {
	s := &m.setup
	s.name.Blur()
	s.dob.Blur()
	switch s.wizard.Step() {
	case setup.StepName:
		s.name.Placeholder = m.t("setup.name.placeholder")
		return s.name.Focus()
	case setup.StepDetails:
		if s.field == fieldDOB {
			return s.dob.Focus()
		}
	}
	return nil
}

func (m Model) setupSaved(msg setupSavedMsg) (tea.Model, tea.Cmd) {
	m.setup.saving = false
	if msg.err != nil {
		m.setup.err = msg.err
		return m, nil
	}
	m.applyTheme()
	m.setFlash(m.t("setup.confirm.title", i18n.Vars{"salutation": msg.profile.Salutation, "name": msg.profile.Name}))
	m.initScanner()
	m.screen = ScreenScan
	return m, m.startCamera()
}

func (m Model) viewSetup() string {
	s := m.setup
	w := s.wizard
	th := m.theme
	var b strings.Builder

	b.WriteString(th.StatusPending.Render(m.t("setup.step", i18n.Vars{"current": int(w.Step()), "total": setup.TotalSteps})))
	b.WriteString("\n\n")

	switch w.Step() {
	case setup.StepLanguage:
		b.WriteString(th.Title.Render(m.t("setup.language.title")))
		b.WriteString("\n")
		for i, lang := range model.Languages() {
			b.WriteString(m.option(lang.DisplayName(), i == s.cursor))
		}

	case setup.StepName:
		b.WriteString(th.Title.Render(m.t("setup.name.title")))
		b.WriteString("\n")
		b.WriteString(th.Subtitle.Render(m.t("setup.name.subtitle")))
		b.WriteString("\n")
		b.WriteString(s.name.View())
		b.WriteString("\n")

	case setup.StepDevice:
		b.WriteString(th.Title.Render(m.t("setup.device.title")))
		b.WriteString("\n")
		for i, d := range devices {
			b.WriteString(m.option(m.t("setup.device."+string(d)), i == s.cursor))
		}

	case setup.StepDetails:
		genders := model.GendersFor(w.Language())
		salutations := model.SalutationsFor(w.Language())
		b.WriteString(th.Title.Render(m.t("setup.details.title")))
		b.WriteString("\n")
		b.WriteString(m.field(m.t("setup.details.gender"), "‹ "+string(genders[s.gender])+" ›", s.field == fieldGender))
		b.WriteString(m.field(m.t("setup.details.dob"), s.dob.View(), s.field == fieldDOB))
		b.WriteString(m.field(m.t("setup.details.salutation"), "‹ "+string(salutations[s.salutation])+" ›", s.field == fieldSalutation))

	case setup.StepConfirm:
		p := w.Profile()
		b.WriteString(th.Title.Render(m.t("setup.confirm.title", i18n.Vars{"salutation": p.Salutation, "name": strings.TrimSpace(p.Name)})))
		b.WriteString("\n")
		b.WriteString(th.Subtitle.Render(m.t("setup.confirm.subtitle")))
		b.WriteString("\n")
		b.WriteString(th.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left,
			fmt.Sprintf("%s: %s", m.t("setup.details.name"), p.Name),
			fmt.Sprintf("%s: %s", m.t("setup.details.device"), m.t("setup.device."+string(p.DeviceType))),
			fmt.Sprintf("%s: %s", m.t("setup.details.gender"), p.Gender),
			fmt.Sprintf("%s: %s", m.t("setup.details.dob"), p.DateOfBirth),
			fmt.Sprintf("%s: %s", m.t("setup.details.salutation"), p.Salutation),
		)))
		b.WriteString("\n")
		if s.saving {
			b.WriteString(m.spinner.View() + " " + m.t("common.loading") + "\n")
		}
	}

	if s.err != nil {
		b.WriteString("\n")
		b.WriteString(th.StatusError.Render(m.t(errKey(s.err, "setup.error.info"))))
		b.WriteString("\n")
	}
	return b.String()
}

// cycle moves a choice index with left/right, wrapping around.
func cycle(i, n int, msg tea.KeyMsg, km KeyMap) int {
	switch {
	case key.Matches(msg, km.Left):
		return (i + n - 1) % n
	case key.Matches(msg, km.Right), key.Matches(msg, km.Toggle):
		return (i + 1) % n
	}
	return i
}
