package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/Veraticus/trash-scanner/internal/media"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// ErrCaptureNotAllowed is returned by CaptureNow when the state forbids it.
var ErrCaptureNotAllowed = errors.New("capture not allowed in current state")

// Grabber yields raw frames.
type Grabber interface {
	Grab(ctx context.Context) (image.Image, error)
}

// Analyzer classifies one JPEG frame.
type Analyzer interface {
	Analyze(ctx context.Context, jpeg []byte) ([]model.WasteInfo, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, jpeg []byte) ([]model.WasteInfo, error)

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, jpeg []byte) ([]model.WasteInfo, error) {
	return f(ctx, jpeg)
}

// Result is delivered once per finished capture.
type Result struct {
	Err   error
	Frame []byte
	Items []model.WasteInfo
	Auto  bool
}

// Scheduler drives State against a clock. While CanAutoCapture holds a single
// timer is armed for Interval; every state change re-arms or cancels it.
type Scheduler struct {
	clock     clockwork.Clock
	grabber   Grabber
	analyzer  Analyzer
	onResult  func(Result)
	onShutter func()
	onChange  func(State)
	logger    *slog.Logger
	timer     clockwork.Timer
	ctx       context.Context
	cancel    context.CancelFunc
	state     State
	wg        sync.WaitGroup
	gen       uint64
	mu        sync.Mutex
	closed    bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock. Defaults to the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithResultHandler receives every finished capture, including failures.
func WithResultHandler(fn func(Result)) Option {
	return func(s *Scheduler) { s.onResult = fn }
}

// WithShutter is called when an auto capture starts.
func WithShutter(fn func()) Option {
	return func(s *Scheduler) { s.onShutter = fn }
}

// WithStateHandler is called after every state change.
func WithStateHandler(fn func(State)) Option {
	return func(s *Scheduler) { s.onChange = fn }
}

// NewScheduler creates a scheduler starting from initial.
func NewScheduler(grabber Grabber, analyzer Analyzer, initial State, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		clock:    clockwork.NewRealClock(),
		grabber:  grabber,
		analyzer: analyzer,
		logger:   slog.Default(),
		state:    initial,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.rearmLocked()
	s.mu.Unlock()
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies ev and re-arms the timer.
func (s *Scheduler) Dispatch(ev Event) State {
	s.mu.Lock()
	st := s.applyLocked(ev)
	s.mu.Unlock()
	s.notify(st)
	return st
}

// CaptureNow starts a manual capture. It returns ErrCaptureNotAllowed unless
// CanManualCapture holds. The result arrives through the result handler.
func (s *Scheduler) CaptureNow() error {
	s.mu.Lock()
	if s.closed || !s.state.CanManualCapture() {
		s.mu.Unlock()
		return ErrCaptureNotAllowed
	}
	st := s.applyLocked(AnalysisStarted())
	s.wg.Add(1)
	s.mu.Unlock()

	s.notify(st)
	go s.capture(false)
	return nil
}

// Close stops the timer and waits for an in-flight capture to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) applyLocked(ev Event) State {
	prev := s.state
	s.state = Apply(s.state, ev)
	if s.state != prev {
		s.rearmLocked()
	}
	return s.state
}

func (s *Scheduler) rearmLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.closed || !s.state.CanAutoCapture() {
		return
	}
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.state.Interval, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	// A stale timer from before the last state change must not capture.
	if s.closed || gen != s.gen || !s.state.CanAutoCapture() {
		s.mu.Unlock()
		return
	}
	st := s.applyLocked(AnalysisStarted())
	s.wg.Add(1)
	s.mu.Unlock()

	s.notify(st)
	go s.capture(true)
}

func (s *Scheduler) capture(auto bool) {
	defer s.wg.Done()

	if auto && s.onShutter != nil {
		s.onShutter()
	}

	res := Result{Auto: auto}
	res.Frame, res.Items, res.Err = s.run()
	if res.Err != nil {
		s.logger.Error("capture failed", "auto", auto, "error", res.Err)
	} else {
		s.logger.Debug("capture analyzed", "auto", auto, "items", len(res.Items))
	}

	s.mu.Lock()
	st := s.applyLocked(AnalysisFinished())
	s.mu.Unlock()
	s.notify(st)

	if s.onResult != nil {
		s.onResult(res)
	}
}

func (s *Scheduler) run() ([]byte, []model.WasteInfo, error) {
	img, err := s.grabber.Grab(s.ctx)
	if err != nil {
		return nil, nil, err
	}
	frame, err := media.PrepareFrame(img)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.analyzer.Analyze(s.ctx, frame)
	if err != nil {
		return frame, nil, fmt.Errorf("analysis failed: %w", err)
	}
	return frame, items, nil
}

func (s *Scheduler) notify(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}
