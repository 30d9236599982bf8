package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/observability/metrics"
	"catchup-feed/internal/observability/tracing"
	"catchup-feed/internal/repository"
	"catchup-feed/internal/usecase/fetch"
	"catchup-feed/internal/usecase/notify"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// minEmbeddedContentLength is the threshold below which a feed item's
// inline content is considered too thin and the full article is fetched.
const minEmbeddedContentLength = 500

// minRequestInterval is the minimum per-domain spacing enforced between
// feed parses and between content fetches.
const minRequestInterval = time.Second

// Service drives the scheduler's refresh-all pipeline (spec §4.9): parsing
// every subscribed feed, ingesting new items, evaluating notification
// rules, and summarizing. A single Service is shared by the cron scheduler
// and any on-demand refresh trigger; RefreshAll is safe to call
// concurrently — a second call while one is running is a no-op success.
type Service struct {
	FeedRepo    repository.FeedRepository
	ArticleRepo repository.ArticleRepository
	SettingRepo repository.SettingRepository

	Parser       FeedParser
	Fetcher      ContentFetcher
	Resolver     AggregatorResolver // optional
	Matcher      *notify.RuleMatcher
	Notifier     notify.Service     // optional; delivers matches to Discord/Slack
	Summarize    ItemSummarizer     // optional
	RelatedLinks RelatedLinksFinder // optional

	Now func() time.Time

	buffer notificationBuffer

	refreshMu         sync.Mutex
	refreshInProgress bool

	throttle *domainThrottle
}

// NewService builds a Service with the minimum required dependencies.
// Optional collaborators (Resolver, Notifier, Summarize) are left nil and
// may be set directly before first use.
func NewService(
	feedRepo repository.FeedRepository,
	articleRepo repository.ArticleRepository,
	settingRepo repository.SettingRepository,
	parser FeedParser,
	fetcher ContentFetcher,
	matcher *notify.RuleMatcher,
) *Service {
	return &Service{
		FeedRepo:    feedRepo,
		ArticleRepo: articleRepo,
		SettingRepo: settingRepo,
		Parser:      parser,
		Fetcher:     fetcher,
		Matcher:     matcher,
		Now:         time.Now,
		throttle:    newDomainThrottle(minRequestInterval),
	}
}

// DrainNotifications returns and clears the matches accumulated since the
// last drain, for the external HTTP surface's client-poll contract.
func (s *Service) DrainNotifications() []ItemMatch {
	return s.buffer.Drain()
}

// RefreshAll parses every subscribed feed (skipping the reserved standalone
// and newsletter pseudo-feeds) and ingests new items from each. A refresh
// already in progress causes this call to return immediately with
// Skipped=true rather than queuing.
func (s *Service) RefreshAll(ctx context.Context) (*RefreshStats, error) {
	s.refreshMu.Lock()
	if s.refreshInProgress {
		s.refreshMu.Unlock()
		return &RefreshStats{Skipped: true}, nil
	}
	s.refreshInProgress = true
	s.refreshMu.Unlock()

	defer func() {
		s.refreshMu.Lock()
		s.refreshInProgress = false
		s.refreshMu.Unlock()
	}()

	ctx, span := tracing.GetTracer().Start(ctx, "ingest.RefreshAll")
	defer span.End()

	start := s.now()
	stats := &RefreshStats{}
	logger := slog.Default()

	feedsWithCount, err := s.FeedRepo.List(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list feeds failed")
		return stats, fmt.Errorf("ingest: list feeds: %w", err)
	}

	autoSummarize := s.autoSummarizeEnabled(ctx)

	for _, fc := range feedsWithCount {
		f := fc.Feed
		if f.IsStandaloneFeed() || f.IsNewsletterFeed() {
			continue
		}
		stats.Feeds++
		s.refreshFeed(ctx, f, autoSummarize, stats)
	}

	stats.Duration = s.now().Sub(start)
	logger.Info("refresh-all completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int("feeds_failed", stats.FeedsFailed),
		slog.Int64("items_seen", stats.ItemsSeen),
		slog.Int64("items_inserted", stats.ItemsInserted),
		slog.Int64("items_duplicate", stats.ItemsDuplicate),
		slog.Int64("summarize_errors", stats.SummarizeError),
		slog.Int64("matches", stats.Matches),
		slog.Duration("duration", stats.Duration))

	span.SetAttributes(
		attribute.Int("feeds", stats.Feeds),
		attribute.Int("feeds_failed", stats.FeedsFailed),
		attribute.Int64("items_inserted", stats.ItemsInserted),
	)

	return stats, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// refreshFeed parses one feed and ingests every item, then records the
// crawl outcome on the feed itself. Failures here never abort the batch.
func (s *Service) refreshFeed(ctx context.Context, f *entity.Feed, autoSummarize bool, stats *RefreshStats) {
	ctx, span := tracing.GetTracer().Start(ctx, "ingest.refreshFeed")
	span.SetAttributes(attribute.Int64("feed_id", f.ID), attribute.String("feed_url", f.FeedURL))
	defer span.End()

	logger := slog.Default()

	if err := s.throttle.Wait(ctx, f.FeedURL); err != nil {
		return
	}

	items, err := s.Parser.Fetch(ctx, f.FeedURL)
	if err != nil {
		stats.FeedsFailed++
		errText := err.Error()
		logger.Warn("feed parse failed", slog.Int64("feed_id", f.ID), slog.String("feed_url", f.FeedURL), slog.Any("error", err))
		metrics.RecordFeedCrawlError(f.ID, "parse_failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "feed parse failed")
		if updateErr := s.FeedRepo.UpdateFetchStatus(ctx, f.ID, s.now(), &errText); updateErr != nil {
			logger.Warn("failed to record feed error", slog.Int64("feed_id", f.ID), slog.Any("error", updateErr))
		}
		return
	}

	for _, item := range items {
		stats.ItemsSeen++
		if item.URL == "" {
			continue
		}

		match, inserted, err := s.ingestItem(ctx, f, item, autoSummarize)
		if err != nil {
			logger.Warn("item ingestion failed",
				slog.Int64("feed_id", f.ID), slog.String("url", item.URL), slog.Any("error", err))
			continue
		}
		if !inserted {
			stats.ItemsDuplicate++
			continue
		}
		stats.ItemsInserted++
		if match != nil {
			stats.Matches++
		}
	}

	if err := s.FeedRepo.UpdateFetchStatus(ctx, f.ID, s.now(), nil); err != nil {
		logger.Warn("failed to update feed crawl timestamp", slog.Int64("feed_id", f.ID), slog.Any("error", err))
	}
}

// ingestItem runs the five per-item ingestion steps from spec §4.9. It
// returns the recorded notification match (nil if none), and whether a new
// article was inserted (false for skip-as-duplicate).
func (s *Service) ingestItem(ctx context.Context, f *entity.Feed, item fetch.FeedItem, autoSummarize bool) (*notify.Match, bool, error) {
	// Step 1: skip if this URL already has an article.
	existing, err := s.ArticleRepo.GetByURL(ctx, f.ID, item.URL)
	if err != nil {
		return nil, false, fmt.Errorf("check existing article: %w", err)
	}
	if existing != nil {
		return nil, false, nil
	}

	content := item.Content
	title := item.Title
	var sourceURL *string
	var publishedAt *time.Time
	if !item.PublishedAt.IsZero() {
		t := item.PublishedAt
		publishedAt = &t
	}

	// Step 2: thin embedded content triggers a full-content fetch.
	if len(content) < minEmbeddedContentLength {
		if err := s.throttle.Wait(ctx, item.URL); err == nil {
			if result, ferr := s.Fetcher.Fetch(ctx, item.URL, fetch.Options{}); ferr == nil && result != nil {
				content = result.Content
				if title == "" {
					title = result.Title
				}
				publishedAt = result.PublishedAt
			}
		}
	}

	if s.Resolver != nil {
		if res := s.Resolver.Resolve(ctx, item.URL, item.Content); res.Err == nil && res.SourceURL != "" {
			sourceURL = &res.SourceURL
		}
	}

	article := &entity.Article{
		FeedID:      f.ID,
		URL:         item.URL,
		SourceURL:   sourceURL,
		Title:       title,
		Content:     content,
		ContentHash: entity.ComputeContentHash(content),
		PublishedAt: publishedAt,
		CreatedAt:   s.now(),
	}

	// Step 3: insert. A zero id with no error means a concurrent insert
	// beat us to the same URL; treat it as a duplicate, not a failure.
	id, err := s.ArticleRepo.Create(ctx, article)
	if err != nil {
		return nil, false, fmt.Errorf("create article: %w", err)
	}
	if id == 0 {
		return nil, false, nil
	}
	article.ID = id

	// Step 4: evaluate notification rules and record at-most-once history.
	var match *notify.Match
	if s.Matcher != nil {
		match, err = s.Matcher.EvaluateAndRecord(ctx, article)
		if err != nil {
			slog.Warn("notification evaluation failed", slog.Int64("article_id", id), slog.Any("error", err))
		} else if match != nil {
			s.buffer.add(ItemMatch{ArticleID: id, URL: article.URL, Title: article.Title, Match: *match})
			if s.Notifier != nil {
				if nerr := s.Notifier.NotifyNewArticle(ctx, article, f); nerr != nil {
					slog.Warn("notification dispatch failed", slog.Int64("article_id", id), slog.Any("error", nerr))
				}
			}
		}
	}

	// Step 5: synchronous summarization when enabled.
	if autoSummarize && s.Summarize != nil {
		result, serr := s.Summarize.Summarize(ctx, content, article.URL, article.Title)
		if serr != nil {
			slog.Warn("summarization failed", slog.Int64("article_id", id), slog.Any("error", serr))
		} else {
			update := repository.ArticleUpdate{
				SummaryShort: &result.SummaryShort,
				SummaryLong:  &result.SummaryFull,
				KeyPoints:    result.KeyPoints,
				ModelTier:    &result.ModelTier,
			}
			if uerr := s.ArticleRepo.Update(ctx, id, update); uerr != nil {
				slog.Warn("failed to write summary", slog.Int64("article_id", id), slog.Any("error", uerr))
			}
		}
	}

	// Step 6: related-links enrichment. Never fatal, and the result has no
	// schema field to persist into yet, so it's logged for now rather than
	// silently discarded.
	if s.RelatedLinks != nil {
		if links, lerr := s.RelatedLinks.FindRelated(ctx, article, 5); lerr != nil {
			slog.Warn("related-links lookup failed", slog.Int64("article_id", id), slog.Any("error", lerr))
		} else if len(links) > 0 {
			slog.Debug("related links found", slog.Int64("article_id", id), slog.Int("count", len(links)))
		}
	}

	return match, true, nil
}

func (s *Service) autoSummarizeEnabled(ctx context.Context) bool {
	if s.SettingRepo == nil {
		return false
	}
	setting, err := s.SettingRepo.Get(ctx, entity.SettingAutoSummarize)
	if err != nil || setting == nil {
		return false
	}
	return setting.Value == "true"
}
