package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"fdescout/internal/model"
	"fdescout/internal/section"
	"fdescout/internal/taxonomy"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource returns canned listings or an error.
type fakeSource struct {
	name     string
	listings []model.Listing
	err      error
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Search(_ context.Context, _ model.SearchQuery) ([]model.Listing, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.listings, nil
}

// fakeDetailSource adds canned detail fetching.
type fakeDetailSource struct {
	fakeSource
	detail      *model.Detail
	detailErr   error
	detailCalls int
}

func (s *fakeDetailSource) FetchDetails(_ context.Context, _ string) (*model.Detail, error) {
	s.detailCalls++
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return s.detail, nil
}

// fakeStore keeps records in memory and remembers batch boundaries.
type fakeStore struct {
	mu      sync.Mutex
	saved   map[string]model.Record
	batches []int
	runLogs []string
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]model.Record)}
}

func (s *fakeStore) Exists(jobURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.saved[jobURL]
	return ok, nil
}

func (s *fakeStore) SaveBatch(records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.batches = append(s.batches, len(records))
	for _, r := range records {
		if _, ok := s.saved[r.JobURL]; !ok {
			s.saved[r.JobURL] = r
		}
	}
	return nil
}

func (s *fakeStore) RecordRunLog(runID, source string, found, added int, errs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runLogs = append(s.runLogs, source)
	return nil
}

// stubExtractor returns an empty skill set without any provider calls.
type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, _ string) (model.SkillSet, string) {
	return model.EmptySkillSet(), "taxonomy"
}

func listing(source, url, title string) model.Listing {
	return model.Listing{
		Title:          title,
		JobURL:         url,
		Source:         source,
		RawDescription: "Some description text.",
	}
}

func newTestAggregator(st model.Store, progress model.ProgressFunc, srcs ...model.Source) *Aggregator {
	return New(srcs, st, section.NewSegmenter(), stubExtractor{}, nil, 3, 10, progress, discardLogger())
}

func TestRun_NoSources(t *testing.T) {
	agg := newTestAggregator(newFakeStore(), nil)

	if _, err := agg.Run(context.Background(), model.SearchQuery{}); err == nil {
		t.Fatal("expected error with no sources, got nil")
	}
}

func TestRun_SavesAndCounts(t *testing.T) {
	st := newFakeStore()
	agg := newTestAggregator(st, nil,
		&fakeSource{name: "greenhouse", listings: []model.Listing{
			listing("greenhouse", "https://gh.example.com/jobs/1", "Forward Deployed Engineer"),
			listing("greenhouse", "https://gh.example.com/jobs/2", "Solutions Engineer"),
		}},
		&fakeSource{name: "lever", listings: []model.Listing{
			listing("lever", "https://lv.example.com/jobs/3", "Field Engineer"),
		}},
	)

	summary, err := agg.Run(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalFound != 3 || summary.Unique != 3 || summary.Saved != 3 || summary.Skipped != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Sources["greenhouse"].Found != 2 || summary.Sources["greenhouse"].Added != 2 {
		t.Errorf("greenhouse stats = %+v", summary.Sources["greenhouse"])
	}
	if summary.Sources["lever"].Added != 1 {
		t.Errorf("lever stats = %+v", summary.Sources["lever"])
	}
	if summary.RunID == "" {
		t.Error("expected a run id")
	}

	rec, ok := st.saved["https://gh.example.com/jobs/1"]
	if !ok {
		t.Fatal("record not saved")
	}
	if rec.Relevance == 0 {
		t.Error("expected a non-zero relevance for a Forward Deployed Engineer title")
	}
}

func TestRun_DedupNormalizesURLs(t *testing.T) {
	st := newFakeStore()
	agg := newTestAggregator(st, nil,
		&fakeSource{name: "greenhouse", listings: []model.Listing{
			listing("greenhouse", "https://example.com/Jobs/1/", "Engineer"),
		}},
		&fakeSource{name: "lever", listings: []model.Listing{
			listing("lever", "https://example.com/jobs/1", "Engineer"),
			listing("lever", "HTTPS://EXAMPLE.COM/JOBS/1", "Engineer"),
		}},
	)

	summary, err := agg.Run(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Unique != 1 {
		t.Fatalf("unique = %d, want 1 after normalization", summary.Unique)
	}
	if summary.Saved != 1 {
		t.Fatalf("saved = %d, want 1", summary.Saved)
	}
	// First discovery wins: the greenhouse variant, URL kept as reported.
	if _, ok := st.saved["https://example.com/Jobs/1/"]; !ok {
		t.Errorf("saved urls = %v, want the first-seen raw form", keys(st.saved))
	}
}

func TestRun_ExistsCheckUsesRawURL(t *testing.T) {
	st := newFakeStore()
	st.saved["https://example.com/jobs/1"] = model.Record{}

	agg := newTestAggregator(st, nil,
		&fakeSource{name: "greenhouse", listings: []model.Listing{
			// Exact raw match: skipped.
			listing("greenhouse", "https://example.com/jobs/1", "Engineer"),
			// Differs only in case; dedup would collapse it, the
			// existence check does not.
			listing("greenhouse", "https://example.com/Jobs/2", "Engineer"),
		}},
	)

	summary, err := agg.Run(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", summary.Skipped)
	}
	if summary.Saved != 1 {
		t.Errorf("saved = %d, want 1", summary.Saved)
	}
}

func TestRun_SourceErrorIsolation(t *testing.T) {
	st := newFakeStore()
	agg := newTestAggregator(st, nil,
		&fakeSource{name: "greenhouse", err: errors.New("boom")},
		&fakeSource{name: "lever", listings: []model.Listing{
			listing("lever", "https://lv.example.com/jobs/1", "Engineer"),
		}},
	)

	summary, err := agg.Run(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("one failing source must not fail the run: %v", err)
	}

	if len(summary.Sources["greenhouse"].Errors) != 1 {
		t.Errorf("greenhouse errors = %v, want 1 entry", summary.Sources["greenhouse"].Errors)
	}
	if summary.Saved != 1 {
		t.Errorf("saved = %d, want the healthy source's listing", summary.Saved)
	}
}

func TestRun_SecondRunAddsNothing(t *testing.T) {
	st := newFakeStore()
	src := &fakeSource{name: "greenhouse", listings: []model.Listing{
		listing("greenhouse", "https://example.com/jobs/1", "Engineer"),
		listing("greenhouse", "https://example.com/jobs/2", "Engineer"),
	}}
	agg := newTestAggregator(st, nil, src)

	first, err := agg.Run(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Saved != 2 {
		t.Fatalf("first run saved = %d, want 2", first.Saved)
	}

	second, err := agg.Run(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Saved != 0 || second.Skipped != 2 {
		t.Errorf("second run = saved %d skipped %d, want 0 and 2", second.Saved, second.Skipped)
	}
}

func TestRun_BatchBoundaries(t *testing.T) {
	st := newFakeStore()
	var listings []model.Listing
	for _, u := range []string{"a", "b", "c", "d", "e"} {
		listings = append(listings, listing("greenhouse", "https://example.com/jobs/"+u, "Engineer"))
	}
	src := &fakeSource{name: "greenhouse", listings: listings}

	agg := New([]model.Source{src}, st, section.NewSegmenter(), stubExtractor{}, nil, 3, 2, nil, discardLogger())

	if _, err := agg.Run(context.Background(), model.SearchQuery{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{2, 2, 1}
	if len(st.batches) != len(want) {
		t.Fatalf("batches = %v, want %v", st.batches, want)
	}
	for i := range want {
		if st.batches[i] != want[i] {
			t.Errorf("batch %d = %d, want %d", i, st.batches[i], want[i])
		}
	}
}

func TestRun_FetchesDetailsForEmptyDescriptions(t *testing.T) {
	st := newFakeStore()
	src := &fakeDetailSource{
		fakeSource: fakeSource{name: "greenhouse", listings: []model.Listing{
			{Title: "Engineer", JobURL: "https://example.com/jobs/1", Source: "greenhouse"},
		}},
		detail: &model.Detail{RawDescription: "Full description text.", ApplyURL: "https://example.com/apply"},
	}
	agg := newTestAggregator(st, nil, src)

	if _, err := agg.Run(context.Background(), model.SearchQuery{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.detailCalls != 1 {
		t.Errorf("detail calls = %d, want 1", src.detailCalls)
	}
	rec := st.saved["https://example.com/jobs/1"]
	if rec.RawDescription != "Full description text." {
		t.Errorf("description = %q", rec.RawDescription)
	}
	if rec.ApplyURL != "https://example.com/apply" {
		t.Errorf("apply url = %q", rec.ApplyURL)
	}
}

func TestRun_DetailFetchFailureDegrades(t *testing.T) {
	st := newFakeStore()
	src := &fakeDetailSource{
		fakeSource: fakeSource{name: "greenhouse", listings: []model.Listing{
			{Title: "Engineer", JobURL: "https://example.com/jobs/1", Source: "greenhouse"},
		}},
		detailErr: errors.New("gone"),
	}
	agg := newTestAggregator(st, nil, src)

	summary, err := agg.Run(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The listing is saved without a description instead of dropped.
	if summary.Saved != 1 {
		t.Errorf("saved = %d, want 1", summary.Saved)
	}
	if rec := st.saved["https://example.com/jobs/1"]; rec.RawDescription != "" {
		t.Errorf("description = %q, want empty", rec.RawDescription)
	}
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	st := newFakeStore()
	var mu sync.Mutex
	var percents []int
	progress := func(step string, percent int, current string, added int) {
		mu.Lock()
		percents = append(percents, percent)
		mu.Unlock()
	}

	agg := newTestAggregator(st, progress,
		&fakeSource{name: "greenhouse", listings: []model.Listing{
			listing("greenhouse", "https://example.com/jobs/1", "Engineer"),
			listing("greenhouse", "https://example.com/jobs/2", "Engineer"),
			listing("greenhouse", "https://example.com/jobs/3", "Engineer"),
		}},
		&fakeSource{name: "lever", listings: nil},
	)

	if _, err := agg.Run(context.Background(), model.SearchQuery{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(percents) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("percent decreased: %v", percents)
		}
	}
	if last := percents[len(percents)-1]; last != 100 {
		t.Errorf("final percent = %d, want 100", last)
	}
}

func TestRun_RecordsRunLogPerSource(t *testing.T) {
	st := newFakeStore()
	agg := newTestAggregator(st, nil,
		&fakeSource{name: "greenhouse"},
		&fakeSource{name: "lever"},
	)

	if _, err := agg.Run(context.Background(), model.SearchQuery{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(st.runLogs) != 2 {
		t.Errorf("run logs = %v, want one per source", st.runLogs)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	st := newFakeStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := newTestAggregator(st, nil,
		&fakeSource{name: "greenhouse", listings: []model.Listing{
			listing("greenhouse", "https://example.com/jobs/1", "Engineer"),
		}},
	)

	if _, err := agg.Run(ctx, model.SearchQuery{}); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

func TestRun_BatchSaveFailureContinues(t *testing.T) {
	st := newFakeStore()
	st.saveErr = errors.New("disk full")

	agg := newTestAggregator(st, nil,
		&fakeSource{name: "greenhouse", listings: []model.Listing{
			listing("greenhouse", "https://example.com/jobs/1", "Engineer"),
		}},
	)

	summary, err := agg.Run(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("a save failure must not fail the run: %v", err)
	}
	if summary.Saved != 0 {
		t.Errorf("saved = %d, want 0", summary.Saved)
	}
}

// fakeFrequencyStore adds the rollup surface to fakeStore.
type fakeFrequencyStore struct {
	*fakeStore
	upserted map[string]map[string]int
}

func (s *fakeFrequencyStore) ActiveDescriptions() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.saved {
		if r.RawDescription != "" {
			out = append(out, r.RawDescription)
		}
	}
	return out, nil
}

func (s *fakeFrequencyStore) UpsertSkillFrequencies(counts map[string]map[string]int) error {
	s.upserted = counts
	return nil
}

func TestRun_SkillFrequencyRollup(t *testing.T) {
	st := &fakeFrequencyStore{fakeStore: newFakeStore()}
	src := &fakeSource{name: "greenhouse", listings: []model.Listing{
		{Title: "Engineer", JobURL: "https://example.com/jobs/1", Source: "greenhouse",
			RawDescription: "We use Python and Kubernetes."},
	}}

	agg := New([]model.Source{src}, st, section.NewSegmenter(), stubExtractor{},
		taxonomy.NewMatcher(), 3, 10, nil, discardLogger())

	if _, err := agg.Run(context.Background(), model.SearchQuery{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if st.upserted == nil {
		t.Fatal("expected a frequency rollup")
	}
	if st.upserted[model.CategoryProgram]["python"] != 1 {
		t.Errorf("python frequency = %d, want 1", st.upserted[model.CategoryProgram]["python"])
	}
	if st.upserted[model.CategoryCloud]["kubernetes"] != 1 {
		t.Errorf("kubernetes frequency = %d, want 1", st.upserted[model.CategoryCloud]["kubernetes"])
	}
}

func keys(m map[string]model.Record) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
