package sync

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RatePacer spaces upstream requests using a token bucket with one slot,
// so each Wait blocks for the configured delay. The wait is context-aware
// and returns early when the run is cancelled.
type RatePacer struct {
	limiter *rate.Limiter
}

// NewRatePacer builds a pacer enforcing delay between consecutive waits.
func NewRatePacer(delay time.Duration) *RatePacer {
	if delay <= 0 {
		delay = time.Second
	}
	return &RatePacer{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Wait blocks until the next request is allowed or ctx finishes.
func (p *RatePacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
