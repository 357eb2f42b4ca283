// Package aggregator owns the full scrape pipeline: concurrent source
// fan-out, dedup, enrichment, and batched persistence.
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"fdescout/internal/model"
	"fdescout/internal/score"
	"fdescout/internal/section"
	"fdescout/internal/taxonomy"
)

var errNoSources = errors.New("no sources configured")

// SkillExtractor is the enrichment hook. Implemented by extract.Engine.
type SkillExtractor interface {
	Extract(ctx context.Context, text string) (model.SkillSet, string)
}

// FrequencyStore is the optional rollup surface of a store. The
// aggregator recomputes skill frequencies after a run when its store
// supports it.
type FrequencyStore interface {
	ActiveDescriptions() ([]string, error)
	UpsertSkillFrequencies(counts map[string]map[string]int) error
}

// Aggregator runs one end-to-end scrape: search every source, dedup,
// enrich, score, and persist.
type Aggregator struct {
	sources     []model.Source
	store       model.Store
	segmenter   *section.Segmenter
	extractor   SkillExtractor
	matcher     *taxonomy.Matcher
	concurrency int
	batchSize   int
	progress    model.ProgressFunc
	logger      *slog.Logger

	mu      sync.Mutex
	lastPct int
}

// New creates an aggregator wired with all its dependencies. progress
// may be nil.
func New(
	sources []model.Source,
	st model.Store,
	segmenter *section.Segmenter,
	extractor SkillExtractor,
	matcher *taxonomy.Matcher,
	concurrency int,
	batchSize int,
	progress model.ProgressFunc,
	logger *slog.Logger,
) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Aggregator{
		sources:     sources,
		store:       st,
		segmenter:   segmenter,
		extractor:   extractor,
		matcher:     matcher,
		concurrency: concurrency,
		batchSize:   batchSize,
		progress:    progress,
		logger:      logger,
	}
}

// sourceResult carries one source's listings to the merge step.
type sourceResult struct {
	listings []model.Listing
}

// Run executes one aggregation. A failing source never fails the run;
// its error lands in the summary. Run itself errors only when no
// sources are configured or the context is cancelled.
func (a *Aggregator) Run(ctx context.Context, q model.SearchQuery) (*model.RunSummary, error) {
	if len(a.sources) == 0 {
		return nil, errNoSources
	}

	a.mu.Lock()
	a.lastPct = 0
	a.mu.Unlock()

	summary := &model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Sources:   make(map[string]*model.SourceStats, len(a.sources)),
	}
	for _, src := range a.sources {
		summary.Sources[src.Name()] = &model.SourceStats{}
	}

	a.report("searching", 0, "", 0)

	results, err := a.fanOut(ctx, q, summary)
	if err != nil {
		summary.FinishedAt = time.Now()
		return summary, err
	}

	unique := a.dedup(results)
	summary.Unique = len(unique)

	if err := a.enrichAndSave(ctx, unique, summary); err != nil {
		summary.FinishedAt = time.Now()
		return summary, err
	}

	a.recordRunLogs(summary)
	a.rollupFrequencies()

	summary.FinishedAt = time.Now()
	a.report("done", 100, "", summary.Saved)

	a.logger.Info("run finished",
		"run_id", summary.RunID,
		"total_found", summary.TotalFound,
		"unique", summary.Unique,
		"saved", summary.Saved,
		"skipped", summary.Skipped,
		"duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond),
	)

	return summary, nil
}

// fanOut searches every source concurrently, bounded by the
// concurrency ceiling. Source errors are isolated into the summary;
// only context cancellation aborts the whole fan-out.
func (a *Aggregator) fanOut(ctx context.Context, q model.SearchQuery, summary *model.RunSummary) ([]sourceResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(a.concurrency))

	results := make([]sourceResult, len(a.sources))
	var smu sync.Mutex
	done := 0

	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			listings, err := src.Search(gctx, q)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			smu.Lock()
			stats := summary.Sources[src.Name()]
			if err != nil {
				stats.Errors = append(stats.Errors, err.Error())
			} else {
				stats.Found = len(listings)
				summary.TotalFound += len(listings)
				results[i] = sourceResult{listings: listings}
			}
			done++
			pct := 5 + 25*done/len(a.sources)
			smu.Unlock()

			if err != nil {
				a.logger.Warn("source search failed", "source", src.Name(), "error", err)
			} else {
				a.logger.Info("source searched", "source", src.Name(), "found", len(listings))
			}
			a.report("searching", pct, src.Name(), 0)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// dedup merges per-source listings preserving discovery order: sources
// in configuration order, listings in the order each source returned
// them. The first listing for a normalized URL wins.
func (a *Aggregator) dedup(results []sourceResult) []model.Listing {
	seen := make(map[string]bool)
	var unique []model.Listing
	for _, res := range results {
		for _, l := range res.listings {
			if l.JobURL == "" {
				continue
			}
			key := normalizeURL(l.JobURL)
			if seen[key] {
				continue
			}
			seen[key] = true
			unique = append(unique, l)
		}
	}
	return unique
}

// normalizeURL lowercases and strips one trailing slash. Only the
// dedup key is normalized; listings keep their URL as reported.
func normalizeURL(url string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(url)), "/")
}

// enrichAndSave runs the per-listing pipeline: existence check, detail
// fetch, segmentation, extraction, scoring, and batched saves.
func (a *Aggregator) enrichAndSave(ctx context.Context, unique []model.Listing, summary *model.RunSummary) error {
	detailFetchers := a.detailFetchers()
	batch := make([]model.Record, 0, a.batchSize)

	for i, listing := range unique {
		if err := ctx.Err(); err != nil {
			return err
		}

		pct := 30 + 65*(i+1)/maxInt(len(unique), 1)
		a.report("enriching", pct, listing.Title, summary.Saved)

		// Existence is checked on the URL exactly as the source
		// reported it; the store saw the same raw form at save time.
		exists, err := a.store.Exists(listing.JobURL)
		if err != nil {
			a.logger.Warn("existence check failed", "url", listing.JobURL, "error", err)
			continue
		}
		if exists {
			summary.Skipped++
			continue
		}

		if listing.RawDescription == "" {
			if df, ok := detailFetchers[listing.Source]; ok {
				a.applyDetails(ctx, df, &listing)
			}
		}

		batch = append(batch, a.enrich(ctx, listing))

		if len(batch) >= a.batchSize {
			a.saveBatch(batch, summary)
			batch = batch[:0]
		}
	}

	a.saveBatch(batch, summary)
	return nil
}

// applyDetails fills in the richer fields from a detail fetch. A failed
// fetch degrades the listing rather than dropping it.
func (a *Aggregator) applyDetails(ctx context.Context, df model.DetailFetcher, listing *model.Listing) {
	detail, err := df.FetchDetails(ctx, listing.JobURL)
	if err != nil {
		a.logger.Warn("detail fetch failed", "url", listing.JobURL, "error", err)
		return
	}
	listing.RawDescription = detail.RawDescription
	if detail.ApplyURL != "" {
		listing.ApplyURL = detail.ApplyURL
	}
	if detail.SalaryRange != "" {
		listing.SalaryRange = detail.SalaryRange
	}
	if detail.EmploymentType != "" {
		listing.EmploymentType = detail.EmploymentType
	}
}

// enrich produces the final record: sections, skills, relevance.
func (a *Aggregator) enrich(ctx context.Context, listing model.Listing) model.Record {
	sections := a.segmenter.SegmentRecord(listing.RawDescription)
	skills, servedBy := a.extractor.Extract(ctx, listing.RawDescription)

	a.logger.Debug("enriched listing",
		"url", listing.JobURL,
		"served_by", servedBy,
		"skills", countSkills(skills),
	)

	return model.Record{
		Listing:   listing,
		ScrapedAt: time.Now(),
		Sections:  sections,
		Skills:    skills,
		Relevance: score.Relevance(listing.Title, skills),
	}
}

// saveBatch persists one batch. A failed save is logged and the run
// moves on; later batches still get their chance.
func (a *Aggregator) saveBatch(batch []model.Record, summary *model.RunSummary) {
	if len(batch) == 0 {
		return
	}
	if err := a.store.SaveBatch(batch); err != nil {
		a.logger.Error("batch save failed", "size", len(batch), "error", err)
		return
	}
	summary.Saved += len(batch)
	for _, rec := range batch {
		if stats, ok := summary.Sources[rec.Source]; ok {
			stats.Added++
		}
	}
}

// recordRunLogs writes one run-history row per source.
func (a *Aggregator) recordRunLogs(summary *model.RunSummary) {
	for name, stats := range summary.Sources {
		if err := a.store.RecordRunLog(summary.RunID, name, stats.Found, stats.Added, stats.Errors); err != nil {
			a.logger.Warn("run log write failed", "source", name, "error", err)
		}
	}
}

// rollupFrequencies recomputes skill frequencies across all stored
// descriptions, when the store supports it.
func (a *Aggregator) rollupFrequencies() {
	fs, ok := a.store.(FrequencyStore)
	if !ok || a.matcher == nil {
		return
	}

	descriptions, err := fs.ActiveDescriptions()
	if err != nil {
		a.logger.Warn("frequency rollup read failed", "error", err)
		return
	}
	if len(descriptions) == 0 {
		return
	}
	if err := fs.UpsertSkillFrequencies(a.matcher.Frequencies(descriptions)); err != nil {
		a.logger.Warn("frequency rollup write failed", "error", err)
	}
}

func (a *Aggregator) detailFetchers() map[string]model.DetailFetcher {
	out := make(map[string]model.DetailFetcher)
	for _, src := range a.sources {
		if df, ok := src.(model.DetailFetcher); ok {
			out[src.Name()] = df
		}
	}
	return out
}

// report forwards progress with a percent that never decreases, even
// when phases interleave under concurrency.
func (a *Aggregator) report(step string, percent int, current string, added int) {
	if a.progress == nil {
		return
	}
	a.mu.Lock()
	if percent < a.lastPct {
		percent = a.lastPct
	}
	if percent > 100 {
		percent = 100
	}
	a.lastPct = percent
	a.mu.Unlock()

	a.progress(step, percent, current, added)
}

func countSkills(s model.SkillSet) int {
	n := 0
	for _, list := range s {
		n += len(list)
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
