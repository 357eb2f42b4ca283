// Package source contains the job board adapters. Each adapter is a
// thin translator from one board's API to the Source contract; shared
// query filtering lives here so every board behaves the same way.
package source

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fdescout/internal/model"
)

// filterListings applies client-side query, location, recency, and
// max-results filtering. Boards rarely support server-side search on
// their public APIs, so each adapter fetches its full list and trims
// it here.
func filterListings(listings []model.Listing, q model.SearchQuery) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	cutoff := time.Time{}
	if q.Recency > 0 {
		cutoff = time.Now().Add(-q.Recency)
	}

	for _, l := range listings {
		if !matchesQuery(l.Title, q.Query) {
			continue
		}
		if q.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(q.Location)) {
			continue
		}
		// Listings without a posting date pass the recency filter;
		// dropping them would silently hide boards that omit dates.
		if !cutoff.IsZero() && l.PostedAt != nil && l.PostedAt.Before(cutoff) {
			continue
		}
		out = append(out, l)
		if q.MaxResults > 0 && len(out) == q.MaxResults {
			break
		}
	}
	return out
}

// matchesQuery reports whether every term of the query appears in the
// title, case-insensitively. An empty query matches everything.
func matchesQuery(title, query string) bool {
	if query == "" {
		return true
	}
	lower := strings.ToLower(title)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

// statusError converts a non-200 response into an HTTPError so the
// retry decorator can classify it.
func statusError(resp *http.Response, context string) error {
	return &model.HTTPError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		Err:        fmt.Errorf("%s: unexpected status %d", context, resp.StatusCode),
	}
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports the seconds format; returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
