// Package ingest implements the scheduler's feed-refresh pipeline: parsing
// each subscribed feed, fetching and extracting full content for thin items,
// persisting new articles, evaluating notification rules, and summarizing.
package ingest

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/usecase/fetch"
	"catchup-feed/internal/usecase/notify"
)

// FeedParser fetches and parses a single feed URL into its items. The RSS
// scraper (internal/infra/scraper) implements this.
type FeedParser = fetch.FeedFetcher

// ContentFetcher retrieves and extracts content for a single article URL.
// internal/infra/fetcher.EnhancedFetcher implements this.
type ContentFetcher = fetch.Fetcher

// AggregatorResolver decodes an aggregator URL (Techmeme, Google News,
// Reddit, Hacker News) into the underlying publisher URL. internal/infra/resolver.Resolver
// implements this; a nil AggregatorResolver disables the step.
type AggregatorResolver interface {
	Resolve(ctx context.Context, rawURL, content string) ResolveResult
}

// ResolveResult mirrors resolver.Result without importing the concrete
// package, keeping ingest's dependency surface to interfaces.
type ResolveResult struct {
	SourceURL string
	Err       error
}

// ItemSummarizer produces a structured summary for one article's content.
// internal/usecase/summarize.Service implements this.
type ItemSummarizer interface {
	Summarize(ctx context.Context, content, url, title string) (SummaryResult, error)
}

// SummaryResult is the subset of summarize.Result the ingestion pipeline
// writes back onto an article.
type SummaryResult struct {
	SummaryShort string
	SummaryFull  string
	KeyPoints    []string
	ModelTier    string
}

// RelatedLinksFinder surfaces related coverage for a freshly ingested
// article (spec §4.11). internal/infra/relatedlinks.Service implements
// this; a nil finder disables the enrichment step entirely.
type RelatedLinksFinder interface {
	FindRelated(ctx context.Context, article *entity.Article, n int) ([]RelatedLink, error)
}

// RelatedLink mirrors relatedlinks.Link without importing the concrete
// package, keeping ingest's dependency surface to interfaces.
type RelatedLink struct {
	URL     string
	Title   string
	Domain  string
	Snippet string
}

// RefreshStats reports the outcome of one refresh-all invocation.
type RefreshStats struct {
	Feeds          int
	FeedsFailed    int
	ItemsSeen      int64
	ItemsInserted  int64
	ItemsDuplicate int64
	SummarizeError int64
	Matches        int64
	Duration       time.Duration
	Skipped        bool // true when a refresh was already in progress
}

// ItemMatch pairs an ingested article's id/url with the notification match
// it produced, for the process-wide last-refresh-notifications buffer.
type ItemMatch struct {
	ArticleID int64
	URL       string
	Title     string
	Match     notify.Match
}
