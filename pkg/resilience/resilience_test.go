package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastRetry(), func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastRetry(), func() error {
		calls++
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls)
}

func TestRetrySkipsNonRetryable(t *testing.T) {
	calls := 0
	cfg := fastRetry()
	cfg.Retryable = func(err error) bool { return !errors.Is(err, errBoom) }
	err := Retry(context.Background(), "op", cfg, func() error {
		calls++
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}

func TestBreakerTripsAndRecovers(t *testing.T) {
	b := NewBreaker("redis", BreakerConfig{FailureThreshold: 2, Cooldown: time.Minute})
	clock := time.Unix(1000, 0)
	b.now = func() time.Time { return clock }

	fail := func() error { return errBoom }
	ok := func() error { return nil }

	assert.ErrorIs(t, b.Execute(fail), errBoom)
	assert.ErrorIs(t, b.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clock = clock.Add(2 * time.Minute)
	require.NoError(t, b.Execute(ok))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := NewBreaker("redis", BreakerConfig{FailureThreshold: 1, Cooldown: time.Second})
	clock := time.Unix(1000, 0)
	b.now = func() time.Time { return clock }

	_ = b.Execute(func() error { return errBoom })
	clock = clock.Add(2 * time.Second)
	_ = b.Execute(func() error { return errBoom })
	assert.Equal(t, StateOpen, b.State())
}

func TestWithTimeout(t *testing.T) {
	v, err := WithTimeout(context.Background(), time.Second, "fast", func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
