// Package capture decides when a frame may be captured and runs the
// auto-scan loop against an injectable clock.
package capture

import (
	"time"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// State is the capture scheduler state. All transitions go through Apply.
type State struct {
	Interval    time.Duration
	AutoMode    bool
	Paused      bool
	Analyzing   bool
	MediaReady  bool
	MediaFailed bool
	// Hidden is set while the capture view is replaced by a result screen.
	Hidden bool
}

// NewState returns the initial state: auto mode on, media not ready yet.
func NewState(interval time.Duration) State {
	return State{
		AutoMode: true,
		Interval: ClampInterval(interval),
	}
}

// CanAutoCapture reports whether the auto-scan timer may fire.
func (s State) CanAutoCapture() bool {
	return s.AutoMode && !s.Paused && !s.Analyzing && s.MediaReady && !s.Hidden
}

// CanManualCapture reports whether a manual capture may start.
func (s State) CanManualCapture() bool {
	return !s.AutoMode && !s.Analyzing && !s.Paused && s.MediaReady && !s.Hidden
}

// Status is the camera indicator shown to the user.
type Status string

// Statuses in priority order.
const (
	StatusError        Status = "error"
	StatusInitializing Status = "initializing"
	StatusPaused       Status = "paused"
	StatusAnalyzing    Status = "analyzing"
	StatusReady        Status = "ready"
)

// Status derives the indicator from the state.
func (s State) Status() Status {
	switch {
	case s.MediaFailed:
		return StatusError
	case !s.MediaReady:
		return StatusInitializing
	case s.Paused:
		return StatusPaused
	case s.Analyzing:
		return StatusAnalyzing
	default:
		return StatusReady
	}
}

// EventKind enumerates capture events.
type EventKind int

// Event kinds.
const (
	EventToggleAuto EventKind = iota
	EventSetAuto
	EventPause
	EventResume
	EventTogglePause
	EventMediaReady
	EventMediaLost
	EventMediaFailed
	EventAnalysisStarted
	EventAnalysisFinished
	EventSetInterval
	EventHide
	EventShow
)

// Event is one input to Apply.
type Event struct {
	Kind     EventKind
	On       bool
	Interval time.Duration
}

// Event constructors.
func ToggleAuto() Event                 { return Event{Kind: EventToggleAuto} }
func SetAuto(on bool) Event             { return Event{Kind: EventSetAuto, On: on} }
func Pause() Event                      { return Event{Kind: EventPause} }
func Resume() Event                     { return Event{Kind: EventResume} }
func TogglePause() Event                { return Event{Kind: EventTogglePause} }
func MediaReady() Event                 { return Event{Kind: EventMediaReady} }
func MediaLost() Event                  { return Event{Kind: EventMediaLost} }
func MediaFailed() Event                { return Event{Kind: EventMediaFailed} }
func AnalysisStarted() Event            { return Event{Kind: EventAnalysisStarted} }
func AnalysisFinished() Event           { return Event{Kind: EventAnalysisFinished} }
func SetInterval(d time.Duration) Event { return Event{Kind: EventSetInterval, Interval: d} }
func Hide() Event                       { return Event{Kind: EventHide} }
func Show() Event                       { return Event{Kind: EventShow} }

// Apply returns the state after ev. It never mutates s.
func Apply(s State, ev Event) State {
	switch ev.Kind {
	case EventToggleAuto:
		s = setAuto(s, !s.AutoMode)
	case EventSetAuto:
		s = setAuto(s, ev.On)
	case EventPause:
		// Pausing only means something while auto-scanning.
		if s.AutoMode {
			s.Paused = true
		}
	case EventResume:
		s.Paused = false
	case EventTogglePause:
		if s.Paused {
			s.Paused = false
		} else if s.AutoMode {
			s.Paused = true
		}
	case EventMediaReady:
		s.MediaReady = true
		s.MediaFailed = false
	case EventMediaLost:
		s.MediaReady = false
	case EventMediaFailed:
		s.MediaReady = false
		s.MediaFailed = true
	case EventAnalysisStarted:
		s.Analyzing = true
	case EventAnalysisFinished:
		s.Analyzing = false
	case EventSetInterval:
		s.Interval = ClampInterval(ev.Interval)
	case EventHide:
		s.Hidden = true
	case EventShow:
		s.Hidden = false
	}
	return s
}

func setAuto(s State, on bool) State {
	s.AutoMode = on
	if !on {
		s.Paused = false
	}
	return s
}

// ClampInterval forces d into the supported auto-scan range.
func ClampInterval(d time.Duration) time.Duration {
	ms := model.ClampInterval(int(d / time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}
