package model

import (
	"context"
	"time"
)

// SearchQuery is the common search request every source understands.
type SearchQuery struct {
	Query      string
	Location   string
	Recency    time.Duration // only listings posted within this window
	MaxResults int
}

// Source translates one job board into listings. Implementations report
// ordinary network/parse failures as errors; the orchestrator isolates
// them per source.
type Source interface {
	Name() string
	Search(ctx context.Context, q SearchQuery) ([]Listing, error)
}

// DetailFetcher is implemented by sources that can fetch a richer
// description for a single posting on demand.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, jobURL string) (*Detail, error)
}

// Store is the persistence collaborator. Exists is keyed on the raw
// (unnormalized) job URL.
type Store interface {
	Exists(jobURL string) (bool, error)
	SaveBatch(records []Record) error
	RecordRunLog(runID, source string, found, added int, errs []string) error
}

// ProgressFunc receives live progress while a run executes. percent is
// monotonically non-decreasing within a run.
type ProgressFunc func(step string, percent int, current string, added int)
