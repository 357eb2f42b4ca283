package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"fdescout/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the boards API list response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseListResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// greenhouseJobDetail is the single-job response carrying the full
// posting content.
type greenhouseJobDetail struct {
	Content     string `json:"content"`
	AbsoluteURL string `json:"absolute_url"`
}

var greenhouseJobIDPattern = regexp.MustCompile(`/jobs/(\d+)`)

// GreenhouseSource searches one company's public Greenhouse board. The
// list endpoint has no description text, so full content comes from
// FetchDetails per job.
type GreenhouseSource struct {
	name       string
	boardToken string
	company    string
	baseURL    string
	client     *http.Client
}

// NewGreenhouseSource creates a source for one Greenhouse board.
func NewGreenhouseSource(name, boardToken, company string, client *http.Client) *GreenhouseSource {
	return &GreenhouseSource{
		name:       name,
		boardToken: boardToken,
		company:    company,
		baseURL:    greenhouseBaseURL,
		client:     client,
	}
}

func (s *GreenhouseSource) Name() string { return s.name }

// Search lists the board's jobs and filters them against the query.
func (s *GreenhouseSource) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	url := fmt.Sprintf("%s/%s/jobs", s.baseURL, s.boardToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse search for %s: %w", s.boardToken, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse search for %s: %w", s.boardToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, fmt.Sprintf("greenhouse search for %s", s.boardToken))
	}

	var listResp greenhouseListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("greenhouse search for %s: %w", s.boardToken, err)
	}

	listings := make([]model.Listing, 0, len(listResp.Jobs))
	for _, gj := range listResp.Jobs {
		l := model.Listing{
			Title:    gj.Title,
			Company:  s.company,
			Location: gj.Location.Name,
			JobURL:   gj.AbsoluteURL,
			Source:   s.name,
		}

		if gj.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, gj.UpdatedAt); err == nil {
				l.PostedAt = &t
			}
		}

		listings = append(listings, l)
	}

	return filterListings(listings, q), nil
}

// FetchDetails retrieves the full posting content for a listing found
// by Search. The job ID is recovered from the posting URL.
func (s *GreenhouseSource) FetchDetails(ctx context.Context, jobURL string) (*model.Detail, error) {
	m := greenhouseJobIDPattern.FindStringSubmatch(jobURL)
	if m == nil {
		return nil, fmt.Errorf("greenhouse details: no job id in url %q", jobURL)
	}

	url := fmt.Sprintf("%s/%s/jobs/%s", s.baseURL, s.boardToken, m[1])
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse details for %s: %w", m[1], err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse details for %s: %w", m[1], err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, fmt.Sprintf("greenhouse details for %s", m[1]))
	}

	var detail greenhouseJobDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("greenhouse details for %s: %w", m[1], err)
	}

	return &model.Detail{
		RawDescription: htmlToText(detail.Content),
		ApplyURL:       detail.AbsoluteURL,
	}, nil
}
