package capture

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/trash-scanner/internal/model"
)

type countingGrabber struct {
	grabs atomic.Int32
}

func (g *countingGrabber) Grab(context.Context) (image.Image, error) {
	g.grabs.Add(1)
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

type gatedAnalyzer struct {
	release chan struct{}
	items   []model.WasteInfo
	err     error
}

func (a *gatedAnalyzer) Analyze(ctx context.Context, _ []byte) ([]model.WasteInfo, error) {
	if a.release != nil {
		select {
		case <-a.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return a.items, a.err
}

func newTestScheduler(t *testing.T, analyzer Analyzer, opts ...Option) (*Scheduler, *countingGrabber, *clockwork.FakeClock, chan Result) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	grabber := &countingGrabber{}
	results := make(chan Result, 8)

	initial := Apply(NewState(time.Second), MediaReady())
	opts = append([]Option{
		WithClock(clock),
		WithResultHandler(func(r Result) { results <- r }),
	}, opts...)
	s := NewScheduler(grabber, analyzer, initial, opts...)
	t.Cleanup(s.Close)
	return s, grabber, clock, results
}

func waitResult(t *testing.T, results chan Result) Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no capture result")
		return Result{}
	}
}

func TestScheduler_AutoCaptureAfterInterval(t *testing.T) {
	analyzer := &gatedAnalyzer{items: []model.WasteInfo{{WasteType: "Can"}}}
	var shutters atomic.Int32
	s, grabber, clock, results := newTestScheduler(t, analyzer, WithShutter(func() { shutters.Add(1) }))

	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, int32(0), grabber.grabs.Load())

	clock.Advance(time.Millisecond)
	r := waitResult(t, results)
	require.NoError(t, r.Err)
	assert.True(t, r.Auto)
	assert.Equal(t, "Can", r.Items[0].WasteType)
	assert.NotEmpty(t, r.Frame)
	assert.Equal(t, int32(1), shutters.Load())
	assert.False(t, s.State().Analyzing)
}

func TestScheduler_NeverCapturesWhileAnalyzing(t *testing.T) {
	analyzer := &gatedAnalyzer{release: make(chan struct{})}
	s, grabber, clock, results := newTestScheduler(t, analyzer)

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return grabber.grabs.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, s.State().Analyzing)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
	}
	assert.Equal(t, int32(1), grabber.grabs.Load())
	assert.ErrorIs(t, s.CaptureNow(), ErrCaptureNotAllowed)

	close(analyzer.release)
	waitResult(t, results)
	assert.False(t, s.State().Analyzing)

	clock.Advance(time.Second)
	waitResult(t, results)
	assert.Equal(t, int32(2), grabber.grabs.Load())
}

func TestScheduler_NoCaptureAfterToggleOff(t *testing.T) {
	s, grabber, clock, _ := newTestScheduler(t, &gatedAnalyzer{})

	clock.Advance(500 * time.Millisecond)
	s.Dispatch(ToggleAuto())
	clock.Advance(10 * time.Second)

	assert.Equal(t, int32(0), grabber.grabs.Load())
	assert.False(t, s.State().AutoMode)
}

func TestScheduler_StateChangeRestartsTimer(t *testing.T) {
	s, grabber, clock, results := newTestScheduler(t, &gatedAnalyzer{})

	clock.Advance(500 * time.Millisecond)
	s.Dispatch(Pause())
	s.Dispatch(Resume())

	clock.Advance(600 * time.Millisecond)
	assert.Equal(t, int32(0), grabber.grabs.Load(), "timer restarts from resume")

	clock.Advance(400 * time.Millisecond)
	waitResult(t, results)
	assert.Equal(t, int32(1), grabber.grabs.Load())
}

func TestScheduler_SetIntervalClamps(t *testing.T) {
	s, grabber, clock, results := newTestScheduler(t, &gatedAnalyzer{})

	st := s.Dispatch(SetInterval(100 * time.Millisecond))
	assert.Equal(t, time.Second, st.Interval)

	s.Dispatch(SetInterval(9 * time.Second))
	clock.Advance(4999 * time.Millisecond)
	assert.Equal(t, int32(0), grabber.grabs.Load())
	clock.Advance(time.Millisecond)
	waitResult(t, results)
}

func TestScheduler_ManualCapture(t *testing.T) {
	analyzer := &gatedAnalyzer{err: errors.New("model down")}
	var shutters atomic.Int32
	s, _, _, results := newTestScheduler(t, analyzer, WithShutter(func() { shutters.Add(1) }))

	assert.ErrorIs(t, s.CaptureNow(), ErrCaptureNotAllowed, "auto mode forbids manual capture")

	s.Dispatch(SetAuto(false))
	require.NoError(t, s.CaptureNow())
	r := waitResult(t, results)
	assert.Error(t, r.Err)
	assert.False(t, r.Auto)
	assert.Equal(t, int32(0), shutters.Load())
	assert.False(t, s.State().Analyzing, "failure clears analyzing")
}

func TestScheduler_CloseStopsTimer(t *testing.T) {
	s, grabber, clock, _ := newTestScheduler(t, &gatedAnalyzer{})
	s.Close()
	clock.Advance(5 * time.Second)
	assert.Equal(t, int32(0), grabber.grabs.Load())
	assert.ErrorIs(t, s.CaptureNow(), ErrCaptureNotAllowed)
}
