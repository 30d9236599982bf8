// Package fetch defines the ports shared between the feed-ingestion
// pipeline (internal/usecase/ingest) and its infra adapters: parsing a
// feed into items, fetching and extracting a single article's full
// content, and dispatching raw HTML to a content extractor.
package fetch

import (
	"context"
	"time"
)

// FeedFetcher parses a single feed URL (RSS, Atom, or a site-specific
// scraper) into its current items.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// FeedItem is a single item read off a parsed feed, before content
// enhancement or resolution.
type FeedItem struct {
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
}
