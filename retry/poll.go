// Package retry provides a bounded polling helper with a configurable
// backoff schedule.
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrExhausted is returned when the attempt budget runs out before the
// polled condition is met.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Schedule describes the delay between polling attempts.
type Schedule struct {
	// MaxAttempts is the total number of attempts. Values below 1 are
	// treated as 1.
	MaxAttempts int

	// Interval is the delay after the first attempt.
	Interval time.Duration

	// Multiplier is the factor by which the delay grows between attempts.
	// Values at or below 1 keep the interval fixed.
	Multiplier float64

	// MaxInterval caps the delay. Zero means no cap.
	MaxInterval time.Duration
}

// Fixed returns a schedule with a constant delay between attempts.
func Fixed(interval time.Duration, maxAttempts int) Schedule {
	return Schedule{MaxAttempts: maxAttempts, Interval: interval}
}

// Exponential returns a doubling schedule starting at one second and capped
// at thirty seconds.
func Exponential(maxAttempts int) Schedule {
	return Schedule{
		MaxAttempts: maxAttempts,
		Interval:    time.Second,
		Multiplier:  2,
		MaxInterval: 30 * time.Second,
	}
}

// Delay returns the delay to apply after the given 1-based attempt.
func (s Schedule) Delay(attempt int) time.Duration {
	d := s.Interval
	if s.Multiplier > 1 {
		d = time.Duration(float64(s.Interval) * math.Pow(s.Multiplier, float64(attempt-1)))
	}
	if s.MaxInterval > 0 && d > s.MaxInterval {
		d = s.MaxInterval
	}
	return d
}

// CondFunc is one polling attempt. Returning done stops the loop
// successfully; returning an error aborts it immediately.
type CondFunc func(ctx context.Context) (done bool, err error)

// Poll invokes fn until it reports done, it returns an error, the schedule's
// attempt budget is exhausted (ErrExhausted), or the context is cancelled.
func Poll(ctx context.Context, s Schedule, fn CondFunc) error {
	attempts := s.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if attempt >= attempts {
			return ErrExhausted
		}

		timer := time.NewTimer(s.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
