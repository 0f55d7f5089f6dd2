package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out consecutive actions against a downstream service.
type Pacer interface {
	// Wait blocks until the next action is allowed or ctx is done
	Wait(ctx context.Context) error
}

// IntervalPacer lets the first action through immediately and every
// following one after at least the configured interval.
type IntervalPacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer with one action per interval and no burst.
// A non-positive interval disables pacing.
func NewPacer(interval time.Duration) *IntervalPacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &IntervalPacer{
		limiter: rate.NewLimiter(limit, 1),
	}
}

var _ Pacer = (*IntervalPacer)(nil)

func (p *IntervalPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
