package quiz

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Veraticus/trash-scanner/internal/llm"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// Generator produces quiz questions.
type Generator interface {
	GenerateQuiz(ctx context.Context, req llm.QuizRequest, lang model.Language) ([]model.QuizQuestion, error)
}

// Game runs a Session with a one second countdown on a clock.
type Game struct {
	gen      Generator
	clock    clockwork.Clock
	logger   *slog.Logger
	onChange func(Snapshot)
	stop     chan struct{}
	session  Session
	wg       sync.WaitGroup
	loadSeq  uint64
	mu       sync.Mutex
}

// GameOption configures a Game.
type GameOption func(*Game)

// WithClock sets the countdown clock.
func WithClock(c clockwork.Clock) GameOption {
	return func(g *Game) { g.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) GameOption {
	return func(g *Game) { g.logger = l }
}

// WithChangeHandler is called after every countdown tick and phase change.
func WithChangeHandler(fn func(Snapshot)) GameOption {
	return func(g *Game) { g.onChange = fn }
}

// NewGame creates an idle game.
func NewGame(gen Generator, opts ...GameOption) *Game {
	g := &Game{
		gen:    gen,
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start generates questions for d and begins the countdown. It blocks while
// the questions load. On failure the game is idle again and the error is
// returned.
func (g *Game) Start(ctx context.Context, d Difficulty, lang model.Language) error {
	g.mu.Lock()
	if err := g.session.Start(d); err != nil {
		g.mu.Unlock()
		return err
	}
	g.loadSeq++
	seq := g.loadSeq
	snap := g.session.Snapshot()
	g.mu.Unlock()
	g.notify(snap)

	tier := d.Tier()
	questions, err := g.gen.GenerateQuiz(ctx, llm.QuizRequest{
		Difficulty:     string(d),
		Questions:      tier.Questions,
		ImageQuestions: tier.ImageQuestions,
	}, lang)

	g.mu.Lock()
	if g.loadSeq != seq {
		g.mu.Unlock()
		return ErrRestarted
	}
	if err != nil {
		g.session.Failed(err)
	} else if lerr := g.session.Loaded(questions); lerr != nil {
		err = lerr
	} else {
		g.startTickerLocked()
	}
	snap = g.session.Snapshot()
	g.mu.Unlock()

	if err != nil {
		g.logger.Error("quiz generation failed", "difficulty", d, "error", err)
	} else {
		g.logger.Info("quiz started", "difficulty", d, "questions", snap.Total)
	}
	g.notify(snap)
	return err
}

// Answer records the first choice for the current question.
func (g *Game) Answer(option string) (bool, error) {
	g.mu.Lock()
	correct, err := g.session.Answer(option)
	snap := g.session.Snapshot()
	g.mu.Unlock()
	if err == nil {
		g.notify(snap)
	}
	return correct, err
}

// Next moves to the following question or finishes.
func (g *Game) Next() error {
	g.mu.Lock()
	err := g.session.Next()
	if err == nil && g.session.Phase() == PhaseFinished {
		g.stopTickerLocked()
	}
	snap := g.session.Snapshot()
	g.mu.Unlock()
	if err == nil {
		g.notify(snap)
	}
	return err
}

// Restart stops the countdown and returns to idle.
func (g *Game) Restart() {
	g.mu.Lock()
	g.stopTickerLocked()
	g.loadSeq++
	g.session.Restart()
	snap := g.session.Snapshot()
	g.mu.Unlock()
	g.wg.Wait()
	g.notify(snap)
}

// Snapshot returns the current session view.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.Snapshot()
}

// Close stops the countdown.
func (g *Game) Close() {
	g.mu.Lock()
	g.stopTickerLocked()
	g.mu.Unlock()
	g.wg.Wait()
}

func (g *Game) startTickerLocked() {
	g.stopTickerLocked()
	stop := make(chan struct{})
	g.stop = stop
	ticker := g.clock.NewTicker(time.Second)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				if !g.tick(stop) {
					return
				}
			}
		}
	}()
}

func (g *Game) tick(stop chan struct{}) bool {
	g.mu.Lock()
	if g.stop != stop {
		g.mu.Unlock()
		return false
	}
	running := g.session.Tick()
	if !running {
		g.stop = nil
	}
	snap := g.session.Snapshot()
	g.mu.Unlock()

	g.notify(snap)
	return running
}

func (g *Game) stopTickerLocked() {
	if g.stop != nil {
		close(g.stop)
		g.stop = nil
	}
}

func (g *Game) notify(s Snapshot) {
	if g.onChange != nil {
		g.onChange(s)
	}
}
