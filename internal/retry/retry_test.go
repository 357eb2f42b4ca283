package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fdescout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSource calls a function on each invocation, tracking call count.
type mockSource struct {
	calls int
	fn    func(attempt int) ([]model.Listing, error)
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Search(_ context.Context, _ model.SearchQuery) ([]model.Listing, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	listings := []model.Listing{{Title: "Forward Deployed Engineer", JobURL: "https://example.com/1"}}
	mock := &mockSource{fn: func(_ int) ([]model.Listing, error) {
		return listings, nil
	}}

	src := WrapSource(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := src.Search(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].JobURL != "https://example.com/1" {
		t.Fatalf("unexpected listings: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	listings := []model.Listing{{JobURL: "https://example.com/1"}}
	mock := &mockSource{fn: func(attempt int) ([]model.Listing, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return listings, nil
	}}

	src := WrapSource(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := src.Search(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.Listing, error) {
		return nil, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
	}}

	src := WrapSource(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := src.Search(context.Background(), model.SearchQuery{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected HTTPError with status 404, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_RetryAfterTakesPrecedence(t *testing.T) {
	mock := &mockSource{fn: func(attempt int) ([]model.Listing, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 429, RetryAfter: 50 * time.Millisecond, Err: errors.New("rate limited")}
		}
		return nil, nil
	}}

	// Base delay is long; Retry-After should override it.
	src := WrapSource(mock, 2, 10*time.Second, discardLogger())

	start := time.Now()
	if _, err := src.Search(context.Background(), model.SearchQuery{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("expected Retry-After delay (~50ms), waited %v", elapsed)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.Listing, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	src := WrapSource(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := src.Search(context.Background(), model.SearchQuery{})
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.Listing, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	src := WrapSource(mock, 2, time.Second, discardLogger())
	_, err := src.Search(ctx, model.SearchQuery{})
	if err == nil {
		t.Fatal("expected error from context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

// mockDetailSource adds detail support to mockSource.
type mockDetailSource struct {
	mockSource
	detailCalls int
}

func (m *mockDetailSource) FetchDetails(_ context.Context, _ string) (*model.Detail, error) {
	m.detailCalls++
	return &model.Detail{RawDescription: "full text"}, nil
}

func TestWrapSource_PreservesDetailFetcher(t *testing.T) {
	mock := &mockDetailSource{mockSource: mockSource{fn: func(_ int) ([]model.Listing, error) {
		return nil, nil
	}}}

	src := WrapSource(mock, 2, 10*time.Millisecond, discardLogger())
	df, ok := src.(model.DetailFetcher)
	if !ok {
		t.Fatal("wrapped detail-capable source lost FetchDetails")
	}
	detail, err := df.FetchDetails(context.Background(), "https://example.com/1")
	if err != nil {
		t.Fatalf("fetch details: %v", err)
	}
	if detail.RawDescription != "full text" {
		t.Errorf("detail = %+v", detail)
	}
	if mock.detailCalls != 1 {
		t.Errorf("detail calls = %d, want 1", mock.detailCalls)
	}
}
