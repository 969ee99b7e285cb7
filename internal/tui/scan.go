package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/trash-scanner/internal/capture"
	"github.com/Veraticus/trash-scanner/internal/media"
	"github.com/Veraticus/trash-scanner/internal/model"
)

type scanModel struct {
	err       error
	camera    *media.Camera
	scheduler *capture.Scheduler
	state     capture.State
}

// noCamera is used when no frame source is configured.
var noCamera = media.OpenerFunc(func(context.Context, media.Facing) (media.Source, error) {
	return nil, media.ErrAccess
})

// initScanner builds the camera and scheduler for the current profile.
func (m *Model) initScanner() {
	m.closeScanner()

	opener := m.config.Opener
	if opener == nil {
		opener = noCamera
	}
	camera := media.NewCamera(opener, m.app.Profile().DeviceType, m.logger)

	app := m.app
	analyze := capture.AnalyzerFunc(func(ctx context.Context, jpeg []byte) ([]model.WasteInfo, error) {
		_, items, err := app.Analyze(ctx, jpeg)
		return items, err
	})

	post := m.post
	m.scan = scanModel{camera: camera}
	m.scan.state = capture.NewState(m.app.Settings().ScanInterval())
	m.scan.scheduler = capture.NewScheduler(camera, analyze, m.scan.state,
		capture.WithClock(m.app.Clock()),
		capture.WithLogger(m.logger),
		capture.WithResultHandler(func(r capture.Result) { post(captureResultMsg{result: r}) }),
		capture.WithShutter(func() { post(shutterMsg{}) }),
		capture.WithStateHandler(func(s capture.State) { post(captureStateMsg{state: s}) }),
	)
}

func (m *Model) closeScanner() {
	if m.scan.scheduler != nil {
		m.scan.scheduler.Close()
	}
	if m.scan.camera != nil {
		_ = m.scan.camera.Close()
	}
	m.scan = scanModel{}
}

func (m *Model) scanDispatch(ev capture.Event) {
	if m.scan.scheduler != nil {
		m.scan.state = m.scan.scheduler.Dispatch(ev)
	}
}

func (m *Model) scanDispatchShow() { m.scanDispatch(capture.Show()) }
func (m *Model) scanDispatchHide() { m.scanDispatch(capture.Hide()) }

// enterScan returns to the scanner, starting the camera if it never came up.
func (m *Model) enterScan() tea.Cmd {
	if m.scan.scheduler == nil {
		m.initScanner()
	}
	m.switchTo(ScreenScan)
	if !m.scan.state.MediaReady {
		return m.startCamera()
	}
	return nil
}

func (m Model) scanKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.navigate(msg); ok {
		return next, cmd
	}

	switch {
	case key.Matches(msg, m.keymap.ToggleAuto):
		m.scanDispatch(capture.ToggleAuto())
	case key.Matches(msg, m.keymap.Pause):
		m.scanDispatch(capture.TogglePause())
	case key.Matches(msg, m.keymap.Capture):
		if err := m.scan.scheduler.CaptureNow(); err != nil && !errors.Is(err, capture.ErrCaptureNotAllowed) {
			m.setError(err, "error.analysis")
		}
		m.scan.state = m.scan.scheduler.State()
	case key.Matches(msg, m.keymap.Switch):
		m.scanDispatch(capture.MediaLost())
		return m, m.switchCamera()
	case key.Matches(msg, m.keymap.Retry):
		if m.scan.state.MediaFailed {
			return m, m.startCamera()
		}
	}
	return m, nil
}

func (m Model) updateScan(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.scan.scheduler == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case cameraStartedMsg:
		m.scan.err = msg.err
		if msg.err != nil {
			m.scanDispatch(capture.MediaFailed())
			return m, nil
		}
		m.scanDispatch(capture.MediaReady())

	case captureStateMsg:
		m.scan.state = msg.state

	case shutterMsg:
		if m.app.Settings().SoundEffects && m.config.Bell != nil {
			m.config.Bell()
		}

	case captureResultMsg:
		m.scan.state = m.scan.scheduler.State()
		if msg.result.Err != nil {
			m.setError(msg.result.Err, "error.analysis")
			return m, nil
		}
		if m.screen != ScreenScan {
			// The user left the scanner while the frame was in flight.
			return m, nil
		}
		return m.showResult(ScreenScan, msg.result.Items, msg.result.Frame)
	}
	return m, nil
}

func (m Model) viewScan() string {
	th := m.theme
	st := m.scan.state
	var b strings.Builder

	mode := m.t("camera.manualMode")
	if st.AutoMode {
		mode = m.t("camera.auto")
	}

	status := st.Status()
	label := m.t("camera.status." + string(status))
	style := th.StatusSuccess
	switch status {
	case capture.StatusError:
		style = th.StatusError
	case capture.StatusInitializing, capture.StatusPaused:
		style = th.StatusPending
	case capture.StatusAnalyzing:
		style = th.StatusInfo
		label = m.spinner.View() + " " + label
	}

	b.WriteString(th.Bold.Render(m.t("nav.camera")))
	b.WriteString("  ")
	b.WriteString(th.Selected.Render(" " + mode + " "))
	b.WriteString("  ")
	b.WriteString(style.Render(label))
	b.WriteString("\n\n")

	var body string
	switch {
	case st.MediaFailed:
		body = th.StatusError.Render(m.t("camera.error.access"))
	case st.Paused:
		body = th.Title.Render(m.t("camera.paused.title")) + "\n" + th.Subtitle.Render(m.t("camera.paused.subtitle"))
	case st.Analyzing:
		body = m.loaderView("loader.analyzing", false)
	case st.AutoMode && st.MediaReady:
		body = th.Subtitle.Render(m.t("header.subtitle"))
	default:
		body = th.Subtitle.Render(m.t("camera.capture"))
	}
	b.WriteString(th.RoundedBox.Render(body))
	b.WriteString("\n")

	hints := []string{
		hint(m.keymap.ToggleAuto, mode),
		hint(m.keymap.Pause, m.pauseLabel()),
		hint(m.keymap.Switch, m.t("camera.switch")),
	}
	if !st.AutoMode {
		hints = append([]string{hint(m.keymap.Capture, m.t("camera.capture"))}, hints...)
	}
	if st.MediaFailed {
		hints = append(hints, hint(m.keymap.Retry, m.t("common.retry")))
	}
	b.WriteString(th.StatusPending.Render(strings.Join(hints, "  ")))
	return b.String()
}

func (m Model) pauseLabel() string {
	if m.scan.state.Paused {
		return m.t("camera.resume")
	}
	return m.t("camera.pause")
}
