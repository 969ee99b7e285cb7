package llm

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("bucket drains and refills", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		rl := newRateLimiter(6, clock)
		defer rl.Close()

		for i := 0; i < 6; i++ {
			assert.True(t, rl.tryAcquire(), "attempt %d", i+1)
		}
		assert.False(t, rl.tryAcquire())

		// Refill ticker and nothing else is waiting on the clock.
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(10 * time.Second)
		require.Eventually(t, func() bool { return rl.available() == 1 }, time.Second, time.Millisecond)
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		rl := newRateLimiter(2, clock)
		defer rl.Close()

		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(5 * time.Minute)
		assert.Equal(t, 2, rl.available())
	})

	t.Run("context cancellation", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		rl := newRateLimiter(1, clock)
		defer rl.Close()

		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- rl.wait(ctx)
		}()
		cancel()

		err := <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
	})

	t.Run("default rate", func(t *testing.T) {
		rl := newRateLimiter(0, nil)
		defer rl.Close()
		assert.Equal(t, 30, rl.capacity)
	})
}
