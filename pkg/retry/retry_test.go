package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTimer fires immediately and records the requested delays.
type instantTimer struct {
	c     chan time.Time
	slept []time.Duration
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(d time.Duration) {
	t.slept = append(t.slept, d)
	t.c <- time.Time{}
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time {
	return t.c
}

func TestPolicy_SucceedsAfterRetries(t *testing.T) {
	var retried []int

	timer := newInstantTimer()
	p := New(3, Constant(time.Second))
	p.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }
	p.timer = timer

	calls := 0
	err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, timer.slept)
}

func TestPolicy_ExhaustedCallsTerminalCallbackOnce(t *testing.T) {
	var exhausted []error

	boom := errors.New("boom")
	timer := newInstantTimer()
	p := New(3, Constant(time.Second))
	p.OnExhausted = func(err error) { exhausted = append(exhausted, err) }
	p.timer = timer

	calls := 0
	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.Len(t, timer.slept, 2)
	require.Len(t, exhausted, 1)
	assert.ErrorIs(t, exhausted[0], boom)
}

func TestPolicy_ZeroAttemptsRunsOnce(t *testing.T) {
	p := New(0, nil)

	calls := 0
	_ = p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errors.New("fail")
	})

	assert.Equal(t, 1, calls)
}

func TestPolicy_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := New(5, Constant(time.Hour))

	calls := 0
	err := p.Do(ctx, func(context.Context, int) error {
		calls++
		cancel()
		return errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_ExponentialDelays(t *testing.T) {
	timer := newInstantTimer()
	p := New(5, Exponential(100*time.Millisecond, 300*time.Millisecond))
	p.timer = timer

	_ = p.Do(context.Background(), func(context.Context, int) error {
		return errors.New("fail")
	})

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		300 * time.Millisecond,
	}, timer.slept)
}
