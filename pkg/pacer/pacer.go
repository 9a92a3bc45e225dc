// Package pacer throttles the batch-processing loop. The default is a
// fixed inter-batch delay; the interface exists so callers can swap in
// adaptive policies without touching the generation loop.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay is the standard pause between completion batches.
const DefaultDelay = 2 * time.Second

// FixedDelay waits a constant interval between events. The first Wait
// passes immediately, so the delay lands between batches rather than
// before the first or after the last.
type FixedDelay struct {
	limiter *rate.Limiter
}

func NewFixedDelay(delay time.Duration) *FixedDelay {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &FixedDelay{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

func (p *FixedDelay) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Nop never waits. Used in tests and dry runs.
type Nop struct{}

func (Nop) Wait(context.Context) error { return nil }
