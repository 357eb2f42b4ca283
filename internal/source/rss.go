package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"fdescout/internal/model"
)

// rssFeed is an RSS 2.0 document, reduced to the fields job feeds
// actually populate.
type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// pubDateFormats are tried in order; feeds are loose about RFC 822.
var pubDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// RSSSource reads job postings from an RSS 2.0 feed. Descriptions come
// inline, usually as HTML.
type RSSSource struct {
	name    string
	feedURL string
	client  *http.Client
}

// NewRSSSource creates a source for one feed URL.
func NewRSSSource(name, feedURL string, client *http.Client) *RSSSource {
	return &RSSSource{name: name, feedURL: feedURL, client: client}
}

func (s *RSSSource) Name() string { return s.name }

// Search fetches the feed and filters its items against the query.
func (s *RSSSource) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rss fetch %s: %w", s.feedURL, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rss fetch %s: %w", s.feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, fmt.Sprintf("rss fetch %s", s.feedURL))
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("rss parse %s: %w", s.feedURL, err)
	}

	listings := make([]model.Listing, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if item.Link == "" {
			continue
		}

		l := model.Listing{
			Title:          item.Title,
			Company:        feed.Channel.Title,
			JobURL:         item.Link,
			Source:         s.name,
			PostedAt:       parsePubDate(item.PubDate),
			RawDescription: htmlToText(item.Description),
		}

		listings = append(listings, l)
	}

	return filterListings(listings, q), nil
}

func parsePubDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range pubDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
