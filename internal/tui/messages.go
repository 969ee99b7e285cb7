package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/trash-scanner/internal/assistant"
	"github.com/Veraticus/trash-scanner/internal/capture"
	"github.com/Veraticus/trash-scanner/internal/model"
	"github.com/Veraticus/trash-scanner/internal/quiz"
)

// eventMsg carries a message posted from a background goroutine (scheduler,
// timers, quiz countdown).
type eventMsg struct {
	msg tea.Msg
}

// Camera and capture messages.
type cameraStartedMsg struct {
	err error
}

type captureStateMsg struct {
	state capture.State
}

type captureResultMsg struct {
	result capture.Result
}

type shutterMsg struct{}

// Search messages.
type searchDoneMsg struct {
	err     error
	query   string
	items   []model.WasteInfo
	outcome assistant.Outcome
}

type searchTickMsg struct {
	remaining time.Duration
}

// dismissMsg closes the not-found view.
type dismissMsg struct{}

// Loader rotation messages.
type loaderTipMsg struct {
	index int
}

type loaderStepMsg struct {
	index int
}

// Quiz messages.
type quizChangedMsg struct {
	snap quiz.Snapshot
}

type quizStartedMsg struct {
	err  error
	snap quiz.Snapshot
}

// Chat, feedback and settings messages.
type chatReplyMsg struct {
	err error
}

type feedbackSentMsg struct {
	err     error
	message string
}

type localeLoadedMsg struct {
	err error
}

type setupSavedMsg struct {
	err     error
	profile model.UserProfile
}

type settingsSavedMsg struct {
	err error
}

type resetDoneMsg struct {
	err error
}
