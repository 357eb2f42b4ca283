// Package ratelimit paces outbound requests per source. Job boards
// tolerate polite scraping; a randomized delay between consecutive
// requests to the same board keeps the pipeline under their thresholds.
package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"fdescout/internal/model"
)

// SourceLimiter enforces a randomized minimum delay between requests to
// the same source. The delay for each gap is drawn uniformly from
// [minDelay, maxDelay].
type SourceLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: source name
	minDelay time.Duration
	maxDelay time.Duration
}

// NewSourceLimiter creates a limiter. maxDelay below minDelay collapses
// to a fixed minDelay gap.
func NewSourceLimiter(minDelay, maxDelay time.Duration) *SourceLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &SourceLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Wait blocks until the randomized delay since the last request to
// source has elapsed. Returns an error only if ctx is cancelled while
// waiting.
func (l *SourceLimiter) Wait(ctx context.Context, source string) error {
	l.mu.Lock()
	last, ok := l.lastCall[source]
	now := time.Now()

	if !ok {
		// First request for this source.
		l.lastCall[source] = now
		l.mu.Unlock()
		return nil
	}

	required := l.delay()
	elapsed := now.Sub(last)
	if elapsed >= required {
		l.lastCall[source] = now
		l.mu.Unlock()
		return nil
	}

	remaining := required - elapsed
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", source, ctx.Err())
	case <-time.After(remaining):
	}

	l.mu.Lock()
	l.lastCall[source] = time.Now()
	l.mu.Unlock()

	return nil
}

func (l *SourceLimiter) delay() time.Duration {
	if l.maxDelay == l.minDelay {
		return l.minDelay
	}
	spread := l.maxDelay - l.minDelay
	return l.minDelay + time.Duration(rand.Int64N(int64(spread)))
}

// LimitedSource is a decorator that waits on the shared limiter before
// delegating to the wrapped source. All decorators for the same board
// should share one limiter instance.
type LimitedSource struct {
	inner   model.Source
	limiter *SourceLimiter
}

// WrapSource wraps src with rate limiting. If src also fetches details,
// the returned source does too, with detail requests paced the same way.
func WrapSource(src model.Source, limiter *SourceLimiter) model.Source {
	ls := &LimitedSource{inner: src, limiter: limiter}
	if df, ok := src.(model.DetailFetcher); ok {
		return &limitedDetailSource{LimitedSource: ls, detail: df}
	}
	return ls
}

func (s *LimitedSource) Name() string { return s.inner.Name() }

// Search waits for the limiter, then delegates.
func (s *LimitedSource) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	if err := s.limiter.Wait(ctx, s.inner.Name()); err != nil {
		return nil, err
	}
	return s.inner.Search(ctx, q)
}

// limitedDetailSource adds paced detail fetching for sources that
// support it.
type limitedDetailSource struct {
	*LimitedSource
	detail model.DetailFetcher
}

func (s *limitedDetailSource) FetchDetails(ctx context.Context, jobURL string) (*model.Detail, error) {
	if err := s.limiter.Wait(ctx, s.inner.Name()); err != nil {
		return nil, err
	}
	return s.detail.FetchDetails(ctx, jobURL)
}
