// Package retry runs an operation under a bounded attempt policy.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backoff builds a fresh delay schedule for one Do call.
type Backoff func() backoff.BackOff

// Constant waits the same delay between attempts.
func Constant(d time.Duration) Backoff {
	return func() backoff.BackOff {
		return backoff.NewConstantBackOff(d)
	}
}

// Exponential doubles base on every attempt, capped at max.
func Exponential(base, max time.Duration) Backoff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = base
		b.MaxInterval = max
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxElapsedTime = 0
		b.Reset()

		return b
	}
}

type Policy struct {
	MaxAttempts int
	Backoff     Backoff

	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error)
	// OnExhausted is called once when Do gives up.
	OnExhausted func(err error)

	timer backoff.Timer
}

func New(maxAttempts int, b Backoff) *Policy {
	return &Policy{
		MaxAttempts: maxAttempts,
		Backoff:     b,
	}
}

// Do runs op until it succeeds, the attempts run out or ctx is done.
// The error of the last attempt, or the context error, is returned.
func (p *Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var schedule backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Backoff != nil {
		schedule = p.Backoff()
	}
	schedule = backoff.WithContext(backoff.WithMaxRetries(schedule, uint64(attempts-1)), ctx)

	attempt := 0
	operation := func() error {
		attempt++

		return op(ctx, attempt)
	}

	notify := func(err error, _ time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}

	err := backoff.RetryNotifyWithTimer(operation, schedule, notify, p.timer)
	if err != nil && p.OnExhausted != nil {
		p.OnExhausted(err)
	}

	return err
}
