package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ready() State {
	s := NewState(2 * time.Second)
	return Apply(s, MediaReady())
}

func TestApply_Guards(t *testing.T) {
	tests := []struct {
		name       string
		events     []Event
		wantAuto   bool
		wantManual bool
	}{
		{name: "initial auto ready", events: nil, wantAuto: true},
		{name: "paused", events: []Event{Pause()}},
		{name: "analyzing", events: []Event{AnalysisStarted()}},
		{name: "analysis finished", events: []Event{AnalysisStarted(), AnalysisFinished()}, wantAuto: true},
		{name: "manual mode", events: []Event{ToggleAuto()}, wantManual: true},
		{name: "manual while analyzing", events: []Event{ToggleAuto(), AnalysisStarted()}},
		{name: "media lost", events: []Event{MediaLost()}},
		{name: "hidden behind result", events: []Event{Hide()}},
		{name: "shown again", events: []Event{Hide(), Show()}, wantAuto: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ready()
			for _, ev := range tt.events {
				s = Apply(s, ev)
			}
			assert.Equal(t, tt.wantAuto, s.CanAutoCapture())
			assert.Equal(t, tt.wantManual, s.CanManualCapture())
		})
	}
}

func TestApply_TurningAutoOffUnpauses(t *testing.T) {
	s := Apply(ready(), Pause())
	assert.True(t, s.Paused)

	s = Apply(s, SetAuto(false))
	assert.False(t, s.Paused)
	assert.True(t, s.CanManualCapture())

	s = Apply(s, Pause())
	assert.False(t, s.Paused, "pause is ignored in manual mode")
}

func TestApply_DoesNotMutate(t *testing.T) {
	s := ready()
	_ = Apply(s, AnalysisStarted())
	assert.False(t, s.Analyzing)
}

func TestClampInterval(t *testing.T) {
	assert.Equal(t, time.Second, ClampInterval(10*time.Millisecond))
	assert.Equal(t, 5*time.Second, ClampInterval(time.Minute))
	assert.Equal(t, 3*time.Second, Apply(ready(), SetInterval(3*time.Second)).Interval)
	assert.Equal(t, time.Second, NewState(0).Interval)
}

func TestState_Status(t *testing.T) {
	s := NewState(time.Second)
	assert.Equal(t, StatusInitializing, s.Status())
	assert.Equal(t, StatusError, Apply(s, MediaFailed()).Status())

	s = Apply(s, MediaReady())
	assert.Equal(t, StatusReady, s.Status())
	assert.Equal(t, StatusPaused, Apply(s, Pause()).Status())
	assert.Equal(t, StatusAnalyzing, Apply(s, AnalysisStarted()).Status())
}
