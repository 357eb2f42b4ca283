package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"fdescout/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever posting.
type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

type leverSalaryRange struct {
	Min      int64  `json:"min"`
	Max      int64  `json:"max"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

// leverPosting represents a single posting in the Lever API response.
type leverPosting struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	Description      string            `json:"description"`
	DescriptionPlain string            `json:"descriptionPlain"`
	Categories       leverCategories   `json:"categories"`
	SalaryRange      *leverSalaryRange `json:"salaryRange"`
	CreatedAt        int64             `json:"createdAt"`
	WorkplaceType    string            `json:"workplaceType"`
	HostedURL        string            `json:"hostedUrl"`
	ApplyURL         string            `json:"applyUrl"`
}

var leverPostingIDPattern = regexp.MustCompile(`([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})`)

// LeverSource searches one company's public Lever postings. The list
// endpoint already carries full descriptions; FetchDetails exists for
// the rare posting whose inline description is empty.
type LeverSource struct {
	name    string
	slug    string
	company string
	baseURL string
	client  *http.Client
}

// NewLeverSource creates a source for one Lever board.
func NewLeverSource(name, slug, company string, client *http.Client) *LeverSource {
	return &LeverSource{
		name:    name,
		slug:    slug,
		company: company,
		baseURL: leverBaseURL,
		client:  client,
	}
}

func (s *LeverSource) Name() string { return s.name }

// Search lists the board's postings and filters them against the query.
func (s *LeverSource) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	url := fmt.Sprintf("%s/%s?mode=json", s.baseURL, s.slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lever search for %s: %w", s.slug, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever search for %s: %w", s.slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, fmt.Sprintf("lever search for %s", s.slug))
	}

	var postings []leverPosting
	if err := json.NewDecoder(resp.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever search for %s: %w", s.slug, err)
	}

	listings := make([]model.Listing, 0, len(postings))
	for _, lp := range postings {
		location := lp.Categories.Location
		if len(lp.Categories.AllLocations) > 0 {
			location = strings.Join(lp.Categories.AllLocations, ", ")
		}

		var postedAt *time.Time
		if lp.CreatedAt > 0 {
			t := time.UnixMilli(lp.CreatedAt)
			postedAt = &t
		}

		description := lp.DescriptionPlain
		if description == "" {
			description = htmlToText(lp.Description)
		}

		l := model.Listing{
			Title:          lp.Text,
			Company:        s.company,
			Location:       location,
			JobURL:         lp.HostedURL,
			ApplyURL:       lp.ApplyURL,
			Source:         s.name,
			PostedAt:       postedAt,
			RawDescription: description,
			EmploymentType: lp.Categories.Commitment,
			SalaryRange:    formatSalaryRange(lp.SalaryRange),
		}

		listings = append(listings, l)
	}

	return filterListings(listings, q), nil
}

// FetchDetails retrieves one posting's JSON. The posting ID is
// recovered from the hosted URL.
func (s *LeverSource) FetchDetails(ctx context.Context, jobURL string) (*model.Detail, error) {
	m := leverPostingIDPattern.FindStringSubmatch(jobURL)
	if m == nil {
		return nil, fmt.Errorf("lever details: no posting id in url %q", jobURL)
	}

	url := fmt.Sprintf("%s/%s/%s", s.baseURL, s.slug, m[1])
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lever details for %s: %w", m[1], err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever details for %s: %w", m[1], err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, fmt.Sprintf("lever details for %s", m[1]))
	}

	var lp leverPosting
	if err := json.NewDecoder(resp.Body).Decode(&lp); err != nil {
		return nil, fmt.Errorf("lever details for %s: %w", m[1], err)
	}

	description := lp.DescriptionPlain
	if description == "" {
		description = htmlToText(lp.Description)
	}

	return &model.Detail{
		RawDescription: description,
		ApplyURL:       lp.ApplyURL,
	}, nil
}

func formatSalaryRange(r *leverSalaryRange) string {
	if r == nil || (r.Min == 0 && r.Max == 0) {
		return ""
	}
	out := fmt.Sprintf("%d-%d %s", r.Min, r.Max, r.Currency)
	if r.Interval != "" {
		out += " " + strings.ToLower(r.Interval)
	}
	return strings.TrimSpace(out)
}
