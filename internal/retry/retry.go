// Package retry adds transient-failure retries around source searches.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"fdescout/internal/model"
)

// RetrySource is a decorator that retries transient search failures
// with exponential backoff and jitter before giving up.
type RetrySource struct {
	inner      model.Source
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// WrapSource wraps src with retry logic. maxRetries is the number of
// additional attempts after the first failure; baseDelay is the delay
// before the first retry, doubled on each subsequent one. Detail
// fetching passes through unretried; the aggregator treats a failed
// detail fetch as a degraded listing, not a lost one.
func WrapSource(src model.Source, maxRetries int, baseDelay time.Duration, logger *slog.Logger) model.Source {
	rs := &RetrySource{
		inner:      src,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
	if df, ok := src.(model.DetailFetcher); ok {
		return &retryDetailSource{RetrySource: rs, detail: df}
	}
	return rs
}

func (s *RetrySource) Name() string { return s.inner.Name() }

// Search attempts the search, retrying on transient errors.
func (s *RetrySource) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	listings, err := s.inner.Search(ctx, q)
	if err == nil {
		return listings, nil
	}

	if !isRetryable(err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		delay := s.backoffDelay(attempt, lastErr)

		s.logger.Warn("retrying after transient error",
			"source", s.inner.Name(),
			"attempt", attempt,
			"max_retries", s.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		listings, err = s.inner.Search(ctx, q)
		if err == nil {
			return listings, nil
		}

		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After duration from the server (HTTP 429) takes precedence.
func (s *RetrySource) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := s.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable reports whether the error represents a transient failure.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		if httpErr.StatusCode >= 500 {
			return true
		}
		// Other 4xx means the request itself is wrong.
		return false
	}

	// Non-HTTP errors (network, DNS) are worth another try.
	return true
}

// retryDetailSource preserves detail fetching on wrapped sources.
type retryDetailSource struct {
	*RetrySource
	detail model.DetailFetcher
}

func (s *retryDetailSource) FetchDetails(ctx context.Context, jobURL string) (*model.Detail, error) {
	return s.detail.FetchDetails(ctx, jobURL)
}
