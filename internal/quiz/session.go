// Package quiz runs timed multiple choice sessions about recycling.
package quiz

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/trash-scanner/internal/model"
)

// Difficulty selects a quiz tier.
type Difficulty string

// Difficulties.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every tier in display order.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if _, ok := tiers[d]; !ok {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Tier is the size and time limit of a difficulty.
type Tier struct {
	Questions      int
	ImageQuestions int
	Duration       time.Duration
}

var tiers = map[Difficulty]Tier{
	Easy:   {Questions: 10, ImageQuestions: 5, Duration: 600 * time.Second},
	Medium: {Questions: 15, ImageQuestions: 7, Duration: 900 * time.Second},
	Hard:   {Questions: 20, ImageQuestions: 10, Duration: 900 * time.Second},
}

// Tier returns the tier for d; unknown values get the medium tier.
func (d Difficulty) Tier() Tier {
	if t, ok := tiers[d]; ok {
		return t
	}
	return tiers[Medium]
}

// DefaultDifficulty is hard for experts and medium otherwise.
func DefaultDifficulty(expert bool) Difficulty {
	if expert {
		return Hard
	}
	return Medium
}

// Phase is the session lifecycle.
type Phase int

// Phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Session errors.
var (
	ErrWrongPhase      = errors.New("not allowed in this quiz phase")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotAnswered     = errors.New("question not answered yet")
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrRestarted       = errors.New("quiz restarted while loading")
)

// Session is the quiz state machine. It holds no timers; callers drive the
// countdown with Tick once per second.
type Session struct {
	err        error
	difficulty Difficulty
	selected   string
	questions  []model.QuizQuestion
	remaining  time.Duration
	phase      Phase
	current    int
	score      int
	answered   bool
	timeUp     bool
	completed  bool
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Difficulty returns the tier being played.
func (s *Session) Difficulty() Difficulty { return s.difficulty }

// Err returns the last load error, shown while idle.
func (s *Session) Err() error { return s.err }

// Start moves Idle to Loading.
func (s *Session) Start(d Difficulty) error {
	if s.phase != PhaseIdle {
		return ErrWrongPhase
	}
	*s = Session{phase: PhaseLoading, difficulty: d}
	return nil
}

// Loaded moves Loading to Playing with the full time budget.
func (s *Session) Loaded(questions []model.QuizQuestion) error {
	if s.phase != PhaseLoading {
		return ErrWrongPhase
	}
	if len(questions) == 0 {
		s.Failed(ErrNoQuestions)
		return ErrNoQuestions
	}
	s.questions = questions
	s.remaining = s.difficulty.Tier().Duration
	s.phase = PhasePlaying
	return nil
}

// Failed returns a loading session to Idle, keeping err for display.
func (s *Session) Failed(err error) {
	if s.phase != PhaseLoading {
		return
	}
	*s = Session{err: err}
}

// Answer records the first choice for the current question. Later choices
// are rejected until Next.
func (s *Session) Answer(option string) (bool, error) {
	if s.phase != PhasePlaying {
		return false, ErrWrongPhase
	}
	if s.answered {
		return false, ErrAlreadyAnswered
	}
	s.answered = true
	s.selected = option
	correct := option == s.questions[s.current].CorrectAnswer
	if correct {
		s.score++
	}
	return correct, nil
}

// Next moves past an answered question, finishing after the last one.
func (s *Session) Next() error {
	if s.phase != PhasePlaying {
		return ErrWrongPhase
	}
	if !s.answered {
		return ErrNotAnswered
	}
	s.answered = false
	s.selected = ""
	if s.current+1 >= len(s.questions) {
		s.phase = PhaseFinished
		s.completed = true
		return nil
	}
	s.current++
	return nil
}

// Tick takes one second off the clock. At zero the session finishes as
// timed out. It reports whether the session is still running.
func (s *Session) Tick() bool {
	if s.phase != PhasePlaying {
		return false
	}
	s.remaining -= time.Second
	if s.remaining <= 0 {
		s.remaining = 0
		s.phase = PhaseFinished
		s.timeUp = true
		return false
	}
	return true
}

// Restart discards everything and returns to Idle.
func (s *Session) Restart() {
	*s = Session{}
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	Question   *model.QuizQuestion
	Err        error
	Difficulty Difficulty
	Selected   string
	Phase      Phase
	Index      int
	Total      int
	Score      int
	Remaining  time.Duration
	Answered   bool
	TimeUp     bool
	Completed  bool
}

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Err:        s.err,
		Difficulty: s.difficulty,
		Selected:   s.selected,
		Phase:      s.phase,
		Index:      s.current,
		Total:      len(s.questions),
		Score:      s.score,
		Remaining:  s.remaining,
		Answered:   s.answered,
		TimeUp:     s.timeUp,
		Completed:  s.completed,
	}
	if s.phase == PhasePlaying {
		q := s.questions[s.current]
		snap.Question = &q
	}
	return snap
}

// Percent is the score as a whole percentage of the questions.
func (s Snapshot) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Score * 100 / s.Total
}

// FeedbackKey picks the result message band.
func (s Snapshot) FeedbackKey() string {
	switch p := s.Percent(); {
	case p >= 80:
		return "game.result.feedback3"
	case p >= 50:
		return "game.result.feedback2"
	default:
		return "game.result.feedback1"
	}
}

// FormatRemaining renders the countdown as MM:SS.
func FormatRemaining(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
