// Package hackernews fetches top stories from the hnrss.org feed and
// downloads their linked pages for processing.
package hackernews

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/custodia-labs/briefcast/internal/core/domain"
	"github.com/custodia-labs/briefcast/internal/logger"
)

// SourceName identifies this fetcher in summaries and configuration.
const SourceName = "hackernews"

// maxPageBytes caps how much of a story page we download.
const maxPageBytes = 2 << 20

// Fetcher reads the HackerNews RSS feed and fetches story pages.
type Fetcher struct {
	cfg    Config
	parser *gofeed.Parser
	client *http.Client
}

// NewFetcher creates a HackerNews fetcher.
func NewFetcher(cfg Config) *Fetcher {
	cfg.applyDefaults()
	return &Fetcher{
		cfg:    cfg,
		parser: gofeed.NewParser(),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Source implements driven.Fetcher.
func (f *Fetcher) Source() string { return SourceName }

// Fetch returns up to MaxStories stories published since the given
// time, each carrying the linked page as HTML. Stories whose pages
// cannot be fetched are skipped. No matching stories yields an empty
// slice and no error.
func (f *Fetcher) Fetch(ctx context.Context, since time.Time) ([]domain.Document, error) {
	feedURL := buildFeedURL(f.cfg.FeedURL, f.cfg.MinScore)
	logger.Debug("hackernews: parsing feed %s", feedURL)

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var docs []domain.Document
	for _, item := range feed.Items {
		if len(docs) >= f.cfg.MaxStories {
			break
		}
		if item.Link == "" {
			continue
		}
		if item.PublishedParsed != nil && item.PublishedParsed.Before(since) {
			continue
		}
		if score, ok := parseScore(item.Description); ok && score < f.cfg.MinScore {
			continue
		}

		page, err := f.fetchPage(ctx, item.Link)
		if err != nil {
			logger.Warn("hackernews: skipping story %q: %v", item.Title, err)
			continue
		}

		published := time.Now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		docs = append(docs, domain.Document{
			Source:    SourceName,
			Title:     item.Title,
			Content:   page,
			MIMEType:  "text/html",
			URL:       item.Link,
			Timestamp: published,
			Metadata: map[string]any{
				"guid":         item.GUID,
				"comments_url": item.GUID,
			},
		})
	}

	logger.Info("hackernews: fetched %d of %d feed item(s)", len(docs), len(feed.Items))
	return docs, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "briefcast/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}
	return body, nil
}

// buildFeedURL appends the hnrss points filter so low-score stories
// are dropped server side.
func buildFeedURL(feedURL string, minScore int) string {
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	query := parsed.Query()
	query.Set("points", strconv.Itoa(minScore))
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

var scorePattern = regexp.MustCompile(`Points:\s*(\d+)`)

// parseScore extracts the story score from an hnrss item description.
// Used as a client-side check in case the feed ignores the points
// parameter.
func parseScore(description string) (int, bool) {
	match := scorePattern.FindStringSubmatch(description)
	if match == nil {
		return 0, false
	}
	score, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return score, true
}
