package assistant

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// NotFoundDelay is how long the not-found view stays up.
const NotFoundDelay = 5 * time.Second

// Dismisser closes the not-found view after NotFoundDelay unless the user
// interacts first.
type Dismisser struct {
	clock clockwork.Clock
	timer clockwork.Timer
	mu    sync.Mutex
	gen   uint64
}

// NewDismisser creates an idle dismisser.
func NewDismisser(clock clockwork.Clock) *Dismisser {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Dismisser{clock: clock}
}

// Arm starts the countdown, replacing any pending one. fn runs on the
// clock's goroutine.
func (d *Dismisser) Arm(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(NotFoundDelay, func() {
		d.mu.Lock()
		live := d.gen == gen
		if live {
			d.timer = nil
		}
		d.mu.Unlock()
		if live {
			fn()
		}
	})
}

// Cancel stops a pending dismissal and reports whether one was pending.
func (d *Dismisser) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.timer != nil
	d.stopLocked()
	return pending
}

// Pending reports whether a dismissal is scheduled.
func (d *Dismisser) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Dismisser) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// SearchWindow is the expert-mode time allowed to type a query.
const SearchWindow = 15 * time.Second

// SearchTimer is the expert-mode search countdown. It starts on the first
// character typed and resets when the input is cleared.
type SearchTimer struct {
	clock     clockwork.Clock
	onChange  func(time.Duration)
	stop      chan struct{}
	remaining time.Duration
	mu        sync.Mutex
	wg        sync.WaitGroup
	active    bool
}

// NewSearchTimer creates a stopped timer. onChange, if set, receives the
// remaining time after every tick.
func NewSearchTimer(clock clockwork.Clock, onChange func(time.Duration)) *SearchTimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SearchTimer{clock: clock, onChange: onChange, remaining: SearchWindow}
}

// Input reacts to the current query text.
func (t *SearchTimer) Input(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case strings.TrimSpace(value) == "":
		t.haltLocked()
		t.active = false
		t.remaining = SearchWindow
	case !t.active:
		t.startLocked()
	}
}

// Stop freezes the countdown, as on submit. The timer stays visible.
func (t *SearchTimer) Stop() {
	t.mu.Lock()
	t.haltLocked()
	t.mu.Unlock()
	t.wg.Wait()
}

// Active reports whether the countdown has been started.
func (t *SearchTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Remaining returns the time left.
func (t *SearchTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// TimeUp reports whether an active countdown reached zero.
func (t *SearchTimer) TimeUp() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active && t.remaining == 0
}

func (t *SearchTimer) startLocked() {
	t.active = true
	t.remaining = SearchWindow
	stop := make(chan struct{})
	t.stop = stop
	ticker := t.clock.NewTicker(time.Second)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				t.mu.Lock()
				if t.stop != stop {
					t.mu.Unlock()
					return
				}
				t.remaining -= time.Second
				done := t.remaining <= 0
				if done {
					t.remaining = 0
					t.stop = nil
				}
				left := t.remaining
				t.mu.Unlock()
				if t.onChange != nil {
					t.onChange(left)
				}
				if done {
					return
				}
			}
		}
	}()
}

func (t *SearchTimer) haltLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// Loader rotation: tips change every TipInterval, quiz loading steps every
// StepInterval.
const (
	TipCount     = 11
	TipInterval  = 4 * time.Second
	StepCount    = 4
	StepInterval = 2500 * time.Millisecond
)

// Cycler advances an index over n items on a fixed interval while running.
type Cycler struct {
	clock    clockwork.Clock
	pick     func(prev, n int) int
	onChange func(int)
	stop     chan struct{}
	every       time.Duration
	n           int
	index       int
	mu          sync.Mutex
	wg          sync.WaitGroup
	randomStart bool
}

// NewTipCycler shows a random tip first and then a different random tip on
// every interval.
func NewTipCycler(clock clockwork.Clock, onChange func(int)) *Cycler {
	c := newCycler(clock, TipInterval, TipCount, randomOther, onChange)
	c.randomStart = true
	return c
}

// NewStepCycler walks the quiz loading steps in order, wrapping around.
func NewStepCycler(clock clockwork.Clock, onChange func(int)) *Cycler {
	return newCycler(clock, StepInterval, StepCount, func(prev, n int) int { return (prev + 1) % n }, onChange)
}

func newCycler(clock clockwork.Clock, every time.Duration, n int, pick func(prev, n int) int, onChange func(int)) *Cycler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cycler{clock: clock, every: every, n: n, pick: pick, onChange: onChange}
}

// randomOther returns a random index in [0, n) other than prev. A negative
// prev allows any index.
func randomOther(prev, n int) int {
	if n <= 1 {
		return 0
	}
	if prev < 0 || prev >= n {
		return rand.IntN(n)
	}
	next := rand.IntN(n - 1)
	if next >= prev {
		next++
	}
	return next
}

// Start resets the index and begins cycling. Starting a running cycler is a
// no-op.
func (c *Cycler) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return
	}
	c.index = 0
	if c.randomStart {
		c.index = randomOther(-1, c.n)
	}
	stop := make(chan struct{})
	c.stop = stop
	ticker := c.clock.NewTicker(c.every)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				c.mu.Lock()
				if c.stop != stop {
					c.mu.Unlock()
					return
				}
				c.index = c.pick(c.index, c.n)
				index := c.index
				c.mu.Unlock()
				if c.onChange != nil {
					c.onChange(index)
				}
			}
		}
	}()
}

// Stop halts the cycle.
func (c *Cycler) Stop() {
	c.mu.Lock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Running reports whether the cycler is started.
func (c *Cycler) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Index returns the current item.
func (c *Cycler) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Suggest filters candidates by a case-insensitive substring of query.
func Suggest(candidates []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []string
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), q) {
			out = append(out, c)
		}
	}
	return out
}
