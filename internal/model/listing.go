package model

import "time"

// Listing is a job posting as reported by one source, before enrichment.
// Adapters produce it; the pipeline never mutates it.
type Listing struct {
	Title          string
	Company        string
	Location       string
	JobURL         string     // canonical posting URL, dedup key
	ApplyURL       string     // separate apply link when the source has one
	Source         string     // source name ("greenhouse", "lever", "rss")
	PostedAt       *time.Time // nullable (not all sources provide this)
	RawDescription string     // may be empty until FetchDetails
	SalaryRange    string
	EmploymentType string
}

// Detail holds the richer fields a detail fetch can add to a listing.
type Detail struct {
	RawDescription string
	ApplyURL       string
	SalaryRange    string
	EmploymentType string
}

// Record is a listing after segmentation, skill extraction, and scoring.
// Created once per unique URL; never mutated after creation.
type Record struct {
	Listing

	ScrapedAt time.Time
	Sections  Sections
	Skills    SkillSet
	Relevance float64 // clamped to [0, 1]
}

// Sections are the labeled slices of a job description. Empty string
// means the section was not found.
type Sections struct {
	Responsibilities string
	Qualifications   string
	NiceToHave       string
	AboutRole        string
	AboutCompany     string
}

// SkillSet maps a canonical category name to lowercase, deduplicated
// skill strings. Order within a category carries no meaning.
type SkillSet map[string][]string

// Canonical skill category names. Both extraction paths emit these;
// see the engine for the mapping from provider-side names.
const (
	CategoryAIML     = "ai_ml"
	CategoryProgram  = "programming"
	CategoryFrontend = "frontend"
	CategoryCloud    = "cloud_devops"
	CategoryData     = "data_pipelines"
	CategorySoft     = "soft_skills"
	CategoryFDE      = "fde_specific"
	CategoryIndustry = "industry"
)

// Categories lists every canonical category in a stable order.
func Categories() []string {
	return []string{
		CategoryAIML,
		CategoryProgram,
		CategoryFrontend,
		CategoryCloud,
		CategoryData,
		CategorySoft,
		CategoryFDE,
		CategoryIndustry,
	}
}

// EmptySkillSet returns a SkillSet with every canonical category mapped
// to an empty slice.
func EmptySkillSet() SkillSet {
	s := make(SkillSet, len(Categories()))
	for _, c := range Categories() {
		s[c] = []string{}
	}
	return s
}

// Count returns the number of skills in the given category.
func (s SkillSet) Count(category string) int {
	return len(s[category])
}

// RunSummary reports the outcome of one aggregation run. It is
// observability data, not control flow.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	TotalFound int
	Unique     int
	Saved      int
	Skipped    int // already known to the store
	Sources    map[string]*SourceStats
}

// SourceStats tracks per-source counters for a run.
type SourceStats struct {
	Found  int
	Added  int
	Errors []string
}
