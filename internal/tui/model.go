// Package tui is the terminal front end: onboarding, the scanner, search,
// the quiz and follow-up chat.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/i18n"
	"github.com/Veraticus/trash-scanner/internal/setup"
	"github.com/Veraticus/trash-scanner/internal/tui/themes"
)

// Screen is the active view.
type Screen int

// Screens.
const (
	ScreenSetup Screen = iota
	ScreenScan
	ScreenSearch
	ScreenResult
	ScreenCompliment
	ScreenNotFound
	ScreenQuiz
	ScreenChat
	ScreenFeedback
	ScreenSettings
)

func (s Screen) String() string {
	switch s {
	case ScreenSetup:
		return "setup"
	case ScreenScan:
		return "scan"
	case ScreenSearch:
		return "search"
	case ScreenResult:
		return "result"
	case ScreenCompliment:
		return "compliment"
	case ScreenNotFound:
		return "not_found"
	case ScreenQuiz:
		return "quiz"
	case ScreenChat:
		return "chat"
	case ScreenFeedback:
		return "feedback"
	case ScreenSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// eventBuffer is the capacity of the background message queue.
const eventBuffer = 64

// Model holds the main TUI state.
type Model struct {
	ctx      context.Context
	app      *assistant.App
	logger   *slog.Logger
	events   chan tea.Msg
	theme    themes.Theme
	keymap   KeyMap
	config   Config
	help     help.Model
	spinner  spinner.Model
	flash    string
	flashErr bool
	setup    setupModel
	scan     scanModel
	search   searchModel
	result   resultModel
	quiz     quizModel
	chat     chatModel
	feedback feedbackModel
	settings settingsModel
	loader   loaderModel
	screen   Screen
	width    int
	height   int
	showHelp bool
	quitting bool
}

// New creates the model. The app must already be loaded.
func New(ctx context.Context, app *assistant.App, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		app:     app,
		logger:  cfg.Logger,
		events:  make(chan tea.Msg, eventBuffer),
		config:  cfg,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: s,
		width:   cfg.Width,
		height:  cfg.Height,
	}
	m.applyTheme()
	m.result.dismisser = assistant.NewDismisser(app.Clock())
	m.initLoader()

	if app.SetupComplete() && !cfg.Setup {
		m.screen = ScreenScan
		m.initScanner()
	} else {
		m.screen = ScreenSetup
		m.setup = newSetupModel(app.NewWizard())
	}
	return m
}

// Screen returns the active view.
func (m Model) Screen() Screen { return m.screen }

// Init starts the background listener, the spinner and the camera.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listen(), m.spinner.Tick}
	if m.screen == ScreenScan {
		cmds = append(cmds, m.startCamera())
	}
	return tea.Batch(cmds...)
}

// Close stops every background timer and releases the camera.
func (m Model) Close() {
	m.result.dismisser.Cancel()
	m.stopLoader()
	if m.search.timer != nil {
		m.search.timer.Stop()
	}
	if m.quiz.game != nil {
		m.quiz.game.Close()
	}
	m.closeScanner()
}

// Update handles messages, then starts or stops the loader rotation to
// match the new screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if nm, ok := next.(Model); ok {
		nm.syncLoader()
		return nm, cmd
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		next, cmd := m.update(msg.msg)
		return next, tea.Batch(cmd, m.listen())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.chat.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.flash = ""
		return m.handleKey(msg)

	case localeLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err, "error.title")
		}
		return m, nil

	case setupSavedMsg:
		return m.setupSaved(msg)

	case cameraStartedMsg, captureStateMsg, captureResultMsg, shutterMsg:
		return m.updateScan(msg)

	case searchDoneMsg, searchTickMsg:
		return m.updateSearch(msg)

	case loaderTipMsg:
		m.loader.tip = msg.index
		return m, nil

	case loaderStepMsg:
		m.loader.step = msg.index
		return m, nil

	case dismissMsg:
		if m.screen == ScreenNotFound {
			return m.leaveResult()
		}
		return m, nil

	case quizChangedMsg, quizStartedMsg:
		return m.updateQuiz(msg)

	case chatReplyMsg:
		return m.chatReplied(msg)

	case feedbackSentMsg:
		return m.feedbackSent(msg)

	case settingsSavedMsg, resetDoneMsg:
		return m.updateSettings(msg)
	}
	return m.forwardInput(msg)
}

// forwardInput hands anything else, such as cursor blinks, to the focused
// text input.
func (m Model) forwardInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenSetup:
		m.setup.name, cmd = m.setup.name.Update(msg)
		var dobCmd tea.Cmd
		m.setup.dob, dobCmd = m.setup.dob.Update(msg)
		cmd = tea.Batch(cmd, dobCmd)
	case ScreenSearch:
		m.search.input, cmd = m.search.input.Update(msg)
	case ScreenChat:
		m.chat.input, cmd = m.chat.input.Update(msg)
	case ScreenFeedback:
		m.feedback.comments, cmd = m.feedback.comments.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case ScreenSetup:
		return m.setupKey(msg)
	case ScreenSearch:
		return m.searchKey(msg)
	case ScreenChat:
		return m.chatKey(msg)
	case ScreenFeedback:
		return m.feedbackKey(msg)
	}

	// Screens without text input share the global bindings.
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	switch m.screen {
	case ScreenScan:
		return m.scanKey(msg)
	case ScreenResult, ScreenCompliment, ScreenNotFound:
		return m.resultKey(msg)
	case ScreenQuiz:
		return m.quizKey(msg)
	case ScreenSettings:
		return m.settingsKey(msg)
	}
	return m, nil
}

// navigate handles the screen switch keys available from the scanner and
// the quiz menu.
func (m Model) navigate(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Scan):
		cmd := m.enterScan()
		return m, cmd, true
	case key.Matches(msg, m.keymap.Search):
		cmd := m.enterSearch()
		return m, cmd, true
	case key.Matches(msg, m.keymap.Quiz):
		m.enterQuiz()
		return m, nil, true
	case key.Matches(msg, m.keymap.Settings):
		m.enterSettings()
		return m, nil, true
	}
	return m, nil, false
}

// switchTo changes screens, hiding the capture view whenever the scanner
// is not shown.
func (m *Model) switchTo(s Screen) {
	m.screen = s
	if m.scan.scheduler == nil {
		return
	}
	if s == ScreenScan {
		m.scanDispatchShow()
	} else {
		m.scanDispatchHide()
	}
}

func (m *Model) applyTheme() {
	m.theme = themes.Get(m.app.Settings().Theme)
	m.spinner.Style = lipgloss.NewStyle().Foreground(m.theme.Primary)
}

// t translates key in the current language.
func (m *Model) t(key string, vars ...i18n.Vars) string {
	return m.app.Localizer().T(key, vars...)
}

func (m *Model) setFlash(text string) {
	m.flash = text
	m.flashErr = false
}

// setError shows err localized by its key, or fallback.
func (m *Model) setError(err error, fallback string) {
	m.flash = m.t(errKey(err, fallback))
	m.flashErr = true
	m.logger.Debug("tui error", "error", err)
}

func errKey(err error, fallback string) string {
	var setupErr *setup.Error
	if errors.As(err, &setupErr) {
		return setupErr.Key()
	}
	return common.UserErrorKey(err, fallback)
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }
