package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/trash-scanner/internal/model"
)

func TestRoute(t *testing.T) {
	bottle := model.WasteInfo{WasteType: "Bottle"}
	tests := []struct {
		name  string
		items []model.WasteInfo
		want  Outcome
	}{
		{"empty", nil, OutcomeNotFound},
		{"single human", []model.WasteInfo{{WasteType: "human"}}, OutcomeCompliment},
		{"human any case", []model.WasteInfo{{WasteType: "HUMAN"}}, OutcomeCompliment},
		{"human among items", []model.WasteInfo{{WasteType: "Human"}, bottle}, OutcomeResults},
		{"one item", []model.WasteInfo{bottle}, OutcomeResults},
		{"human substring", []model.WasteInfo{{WasteType: "Human hair"}}, OutcomeResults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.items))
		})
	}
}

func TestDismisser_FiresAfterExactlyFiveSeconds(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDismisser(clock)
	fired := make(chan struct{}, 1)

	d.Arm(func() { fired <- struct{}{} })
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	assert.True(t, d.Pending())

	clock.Advance(NotFoundDelay - time.Millisecond)
	select {
	case <-fired:
		t.Fatal("dismissed early")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Millisecond)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("not dismissed at 5s")
	}
	assert.False(t, d.Pending())
}

func TestDismisser_CancelOnInteraction(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDismisser(clock)
	fired := make(chan struct{}, 1)

	d.Arm(func() { fired <- struct{}{} })
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	clock.Advance(time.Minute)
	select {
	case <-fired:
		t.Fatal("cancelled dismissal fired")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSearchTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ticks := make(chan time.Duration, 32)
	st := NewSearchTimer(clock, func(d time.Duration) { ticks <- d })

	st.Input("")
	assert.False(t, st.Active())

	st.Input("b")
	assert.True(t, st.Active())
	assert.Equal(t, SearchWindow, st.Remaining())
	st.Input("bo")

	for i := 14; i >= 0; i-- {
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(time.Second)
		select {
		case got := <-ticks:
			assert.Equal(t, time.Duration(i)*time.Second, got)
		case <-time.After(time.Second):
			t.Fatalf("no tick at %ds", i)
		}
	}
	assert.True(t, st.TimeUp())

	st.Input("")
	assert.False(t, st.Active())
	assert.False(t, st.TimeUp())
	assert.Equal(t, SearchWindow, st.Remaining())
}

func TestSearchTimer_StopFreezes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	st := NewSearchTimer(clock, nil)

	st.Input("can")
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	st.Stop()
	clock.Advance(time.Minute)

	assert.True(t, st.Active())
	assert.Equal(t, SearchWindow, st.Remaining())
}

func TestSuggest(t *testing.T) {
	all := []string{"Plastic bottle", "Glass bottle", "Banana peel"}
	assert.Equal(t, []string{"Plastic bottle", "Glass bottle"}, Suggest(all, "BOTT"))
	assert.Nil(t, Suggest(all, "  "))
	assert.Empty(t, Suggest(all, "tyre"))
}

func TestStepCycler(t *testing.T) {
	clock := clockwork.NewFakeClock()
	steps := make(chan int, 8)
	c := NewStepCycler(clock, func(i int) { steps <- i })

	c.Start()
	defer c.Stop()
	assert.Equal(t, 0, c.Index())

	for _, want := range []int{1, 2, 3, 0} {
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(StepInterval)
		select {
		case got := <-steps:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("no step %d", want)
		}
	}
}

func TestTipCycler_NeverRepeats(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tips := make(chan int, 32)
	c := NewTipCycler(clock, func(i int) { tips <- i })

	c.Start()
	defer c.Stop()
	prev := c.Index()
	require.True(t, prev >= 0 && prev < TipCount)

	for range 20 {
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(TipInterval)
		select {
		case got := <-tips:
			assert.NotEqual(t, prev, got)
			assert.True(t, got >= 0 && got < TipCount)
			prev = got
		case <-time.After(time.Second):
			t.Fatal("no tip")
		}
	}
}

func TestCycler_StopHalts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var calls int
	c := NewStepCycler(clock, func(int) { calls++ })

	c.Start()
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	c.Stop()
	assert.False(t, c.Running())

	clock.Advance(time.Minute)
	assert.Zero(t, calls)

	c.Start()
	assert.True(t, c.Running())
	assert.Equal(t, 0, c.Index(), "restart resets the step")
	c.Stop()
}
