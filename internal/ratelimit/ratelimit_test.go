package ratelimit

import (
	"context"
	"testing"
	"time"

	"fdescout/internal/model"
)

func TestWait_SameSource_EnforcesMinDelay(t *testing.T) {
	limiter := NewSourceLimiter(100*time.Millisecond, 100*time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentSources_NoCrossBlocking(t *testing.T) {
	limiter := NewSourceLimiter(200*time.Millisecond, 200*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("greenhouse wait: %v", err)
	}

	// Immediately call for lever, which should not block.
	start := time.Now()
	if err := limiter.Wait(ctx, "lever"); err != nil {
		t.Fatalf("lever wait: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Errorf("expected lever wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_JitterStaysWithinBounds(t *testing.T) {
	limiter := NewSourceLimiter(10*time.Millisecond, 30*time.Millisecond)
	for i := 0; i < 100; i++ {
		d := limiter.delay()
		if d < 10*time.Millisecond || d >= 30*time.Millisecond {
			t.Fatalf("delay %v outside [10ms, 30ms)", d)
		}
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewSourceLimiter(5*time.Second, 5*time.Second)
	ctx := context.Background()

	// First call to seed the last-call time.
	if err := limiter.Wait(ctx, "greenhouse"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "greenhouse"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

// --- Mocks for the decorator tests ---

type recordingSource struct {
	name        string
	searchCalls int
	detailCalls int
}

func (s *recordingSource) Name() string { return s.name }

func (s *recordingSource) Search(_ context.Context, _ model.SearchQuery) ([]model.Listing, error) {
	s.searchCalls++
	return nil, nil
}

type recordingDetailSource struct {
	recordingSource
}

func (s *recordingDetailSource) FetchDetails(_ context.Context, _ string) (*model.Detail, error) {
	s.detailCalls++
	return &model.Detail{}, nil
}

func TestWrapSource_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewSourceLimiter(100*time.Millisecond, 100*time.Millisecond)
	inner := &recordingSource{name: "greenhouse"}
	src := WrapSource(inner, limiter)
	ctx := context.Background()

	if _, err := src.Search(ctx, model.SearchQuery{}); err != nil {
		t.Fatalf("first search: %v", err)
	}
	if inner.searchCalls != 1 {
		t.Fatal("inner source was not called on first search")
	}

	start := time.Now()
	if _, err := src.Search(ctx, model.SearchQuery{}); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second search, got %v", elapsed)
	}
	if inner.searchCalls != 2 {
		t.Errorf("search calls = %d, want 2", inner.searchCalls)
	}
}

func TestWrapSource_PreservesDetailFetcher(t *testing.T) {
	limiter := NewSourceLimiter(time.Millisecond, time.Millisecond)
	inner := &recordingDetailSource{recordingSource{name: "lever"}}
	src := WrapSource(inner, limiter)

	df, ok := src.(model.DetailFetcher)
	if !ok {
		t.Fatal("wrapped detail-capable source lost FetchDetails")
	}
	if _, err := df.FetchDetails(context.Background(), "https://example.com/job"); err != nil {
		t.Fatalf("fetch details: %v", err)
	}
	if inner.detailCalls != 1 {
		t.Errorf("detail calls = %d, want 1", inner.detailCalls)
	}
}

func TestWrapSource_PlainSourceDoesNotGainDetails(t *testing.T) {
	limiter := NewSourceLimiter(time.Millisecond, time.Millisecond)
	src := WrapSource(&recordingSource{name: "rss"}, limiter)

	if _, ok := src.(model.DetailFetcher); ok {
		t.Error("plain source should not advertise FetchDetails after wrapping")
	}
}
