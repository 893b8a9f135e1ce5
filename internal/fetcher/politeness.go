package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/episodepdf/internal/types"
)

// PoliteFetcher waits a fixed delay before every request, including the
// first, so consecutive requests are never closer than the delay.
type PoliteFetcher struct {
	next   Fetcher
	delay  time.Duration
	logger *slog.Logger
}

// NewPolite wraps a fetcher with a politeness delay.
func NewPolite(next Fetcher, delay time.Duration, logger *slog.Logger) *PoliteFetcher {
	return &PoliteFetcher{
		next:   next,
		delay:  delay,
		logger: logger.With("component", "politeness"),
	}
}

// Fetch sleeps for the delay, then delegates. Cancelling ctx during the
// wait returns ctx.Err() without fetching.
func (p *PoliteFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return p.next.Fetch(ctx, req)
}

// Close closes the wrapped fetcher.
func (p *PoliteFetcher) Close() error { return p.next.Close() }

// Type returns the wrapped fetcher's type.
func (p *PoliteFetcher) Type() string { return p.next.Type() }
