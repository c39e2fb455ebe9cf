package runner

import (
	"context"
	"time"
)

// Pacer turns simulated time units into real elapsed time.
type Pacer interface {
	Pace(ctx context.Context, units int) error
}

// SleepPacer sleeps Unit per simulated time unit. A zero Unit returns
// immediately, which tests and the HTTP API use to replay without delay.
type SleepPacer struct {
	Unit time.Duration
}

// Pace blocks for units*Unit or until ctx is cancelled.
func (p SleepPacer) Pace(ctx context.Context, units int) error {
	if units <= 0 || p.Unit <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(units) * p.Unit)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
