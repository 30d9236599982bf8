// Command worker runs the scheduler process: on a cron schedule, it parses
// every subscribed feed, fetches and extracts full content for thin items,
// resolves aggregator links, evaluates notification rules, dispatches to
// Discord/Slack, and summarizes new articles.
package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/adapter/persistence/sqlite"
	"catchup-feed/internal/infra/archive"
	"catchup-feed/internal/infra/cache"
	"catchup-feed/internal/infra/extractor"
	"catchup-feed/internal/infra/fetcher"
	"catchup-feed/internal/infra/gmail"
	"catchup-feed/internal/infra/jsrender"
	"catchup-feed/internal/infra/notifier"
	"catchup-feed/internal/infra/relatedlinks"
	"catchup-feed/internal/infra/resolver"
	"catchup-feed/internal/infra/scraper"
	"catchup-feed/internal/infra/summarizer"
	workerPkg "catchup-feed/internal/infra/worker"
	"catchup-feed/internal/pkg/sanitize"
	"catchup-feed/internal/usecase/ingest"
	"catchup-feed/internal/usecase/notify"
	"catchup-feed/internal/usecase/summarize"
)

func main() {
	logger := initLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("crawl_timeout", workerConfig.CrawlTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	notifyService := setupNotifyService(logger, database, workerConfig)

	startMetricsServer(ctx, logger, notifyService)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	svc := setupIngestService(logger, database, notifyService)

	if poller := setupGmailPoller(logger, database); poller != nil {
		go poller.Run(ctx)
	}

	startCronWorker(logger, svc, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the sqlite store, applying pragmas and migrations.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "./catchup-feed.db"
	}
	database, err := sqlite.Open(ctx, path)
	if err != nil {
		logger.Error("failed to open sqlite store", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupNotifyService wires the Discord/Slack channels and the rule-matched
// delivery service that sits in front of them.
func setupNotifyService(logger *slog.Logger, database *sql.DB, cfg *workerPkg.WorkerConfig) notify.Service {
	var channels []notify.Channel

	discordConfig := loadDiscordConfig(logger)
	if discordConfig.Enabled {
		channels = append(channels, notify.NewDiscordChannel(discordConfig))
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	slackConfig := loadSlackConfig(logger)
	if slackConfig.Enabled {
		channels = append(channels, notify.NewSlackChannel(slackConfig))
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	svc := notify.NewService(channels, cfg.NotifyMaxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", cfg.NotifyMaxConcurrent))

	_ = database
	return svc
}

// setupIngestService wires the scheduler's refresh-all pipeline: feed
// parsing, content fetch/extraction, aggregator resolution, notification
// matching, and summarization, all on top of the sqlite repositories.
func setupIngestService(logger *slog.Logger, database *sql.DB, notifyService notify.Service) *ingest.Service {
	feedRepo := sqlite.NewFeedRepo(database)
	articleRepo := sqlite.NewArticleRepo(database)
	settingRepo := sqlite.NewSettingRepo(database)
	notificationRepo := sqlite.NewNotificationRepo(database)

	httpClient := createHTTPClient()
	feedParser := scraper.NewRSSFetcher(httpClient)

	registry := extractor.NewRegistry()

	fetchConfig := fetcher.DefaultConfig()
	simple := fetcher.NewSimpleFetcher(registry, fetchConfig)

	var jsRenderer fetcher.JSRenderer
	if fetchConfig.JSRenderEnabled {
		jsRenderer = jsrender.NewRenderer()
	}

	var archiveChain fetcher.ArchiveFetcher
	if fetchConfig.ArchiveEnabled {
		archiveChain = archive.NewChain(archive.DefaultConfig())
	}

	contentFetcher := fetcher.NewEnhancedFetcher(simple, jsRenderer, archiveChain, registry, fetchConfig)

	matcher := notify.NewRuleMatcher(notificationRepo)

	svc := ingest.NewService(feedRepo, articleRepo, settingRepo, feedParser, contentFetcher, matcher)
	svc.Resolver = resolverAdapter{resolver.New(15 * time.Second)}
	svc.Notifier = notifyService

	summarizeService := setupSummarizeService(logger)
	if summarizeService != nil {
		svc.Summarize = summarizeAdapter{summarizeService}
	}

	if relatedLinksService := setupRelatedLinksService(logger); relatedLinksService != nil {
		svc.RelatedLinks = relatedLinksAdapter{relatedLinksService}
	}

	return svc
}

// resolverAdapter narrows resolver.Resolver to ingest.AggregatorResolver,
// keeping the usecase layer's dependency surface to interfaces.
type resolverAdapter struct {
	r *resolver.Resolver
}

func (a resolverAdapter) Resolve(ctx context.Context, rawURL, content string) ingest.ResolveResult {
	res := a.r.Resolve(ctx, rawURL, content)
	return ingest.ResolveResult{SourceURL: res.SourceURL, Err: res.Err}
}

// summarizeAdapter narrows summarize.Service to ingest.ItemSummarizer,
// dropping the fields the ingestion pipeline doesn't persist.
type summarizeAdapter struct {
	s *summarize.Service
}

func (a summarizeAdapter) Summarize(ctx context.Context, content, url, title string) (ingest.SummaryResult, error) {
	result, err := a.s.Summarize(ctx, content, url, title)
	if err != nil {
		return ingest.SummaryResult{}, err
	}
	return ingest.SummaryResult{
		SummaryShort: result.Headline,
		SummaryFull:  result.Summary,
		KeyPoints:    result.KeyPoints,
		ModelTier:    string(result.ModelTier),
	}, nil
}

// setupSummarizeService builds the summarization pipeline from whichever
// provider API keys are configured. Returns nil if none are set, which
// disables summarization entirely rather than failing startup.
func setupSummarizeService(logger *slog.Logger) *summarize.Service {
	keys := summarizer.Keys{
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Google:    os.Getenv("GOOGLE_API_KEY"),
	}
	if keys.Anthropic == "" && keys.OpenAI == "" && keys.Google == "" {
		logger.Info("no summarizer API keys configured, summarization disabled")
		return nil
	}

	provider, err := summarizer.New(context.Background(), os.Getenv("SUMMARIZER_PREFERRED"), keys)
	if err != nil {
		logger.Warn("failed to initialize summarizer provider, summarization disabled", slog.Any("error", sanitize.Error(err)))
		return nil
	}
	if provider == nil {
		logger.Info("no summarizer provider available, summarization disabled")
		return nil
	}

	memCache, err := cache.NewMemory(1024)
	if err != nil {
		logger.Warn("failed to initialize summary memory cache, continuing without it", slog.Any("error", err))
	}
	diskCache, err := cache.NewDisk(summaryCacheDir(), 30*24*time.Hour)
	if err != nil {
		logger.Warn("failed to initialize summary disk cache, continuing without it", slog.Any("error", err))
	}

	var summaryCache summarize.Cache
	if memCache != nil && diskCache != nil {
		summaryCache = cache.NewTiered(memCache, diskCache)
	}

	logger.Info("summarizer initialized")
	return summarize.NewService(provider, summaryCache, summarizer.TierFast, os.Getenv("SUMMARIZE_CRITIC_ENABLED") == "true")
}

// relatedLinksAdapter narrows relatedlinks.Service to ingest.RelatedLinksFinder.
type relatedLinksAdapter struct {
	s *relatedlinks.Service
}

func (a relatedLinksAdapter) FindRelated(ctx context.Context, article *entity.Article, n int) ([]ingest.RelatedLink, error) {
	links, err := a.s.FindRelated(ctx, article, n)
	if err != nil {
		return nil, err
	}
	out := make([]ingest.RelatedLink, len(links))
	for i, l := range links {
		out[i] = ingest.RelatedLink{URL: l.URL, Title: l.Title, Domain: l.Domain, Snippet: l.Snippet}
	}
	return out, nil
}

// setupRelatedLinksService builds the related-links enrichment service if
// ENABLE_RELATED_LINKS and EXA_API_KEY are configured. Returns nil
// otherwise, which disables the enrichment step entirely.
func setupRelatedLinksService(logger *slog.Logger) *relatedlinks.Service {
	cfg, err := relatedlinks.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("related-links misconfigured, disabling", slog.Any("error", err))
		return nil
	}
	if !cfg.Enabled {
		return nil
	}

	memCache, err := cache.NewMemory(512)
	if err != nil {
		logger.Warn("failed to initialize related-links memory cache, continuing without it", slog.Any("error", err))
	}
	diskCache, err := cache.NewDisk(relatedLinksCacheDir(), 30*24*time.Hour)
	if err != nil {
		logger.Warn("failed to initialize related-links disk cache, continuing without it", slog.Any("error", err))
	}
	var linksCache relatedlinks.Cache
	if memCache != nil && diskCache != nil {
		linksCache = cache.NewTiered(memCache, diskCache)
	}

	keys := summarizer.Keys{
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Google:    os.Getenv("GOOGLE_API_KEY"),
	}
	var provider summarizer.Provider
	if keys.Anthropic != "" || keys.OpenAI != "" || keys.Google != "" {
		if p, perr := summarizer.New(context.Background(), os.Getenv("SUMMARIZER_PREFERRED"), keys); perr == nil {
			provider = p
		}
	}

	logger.Info("related-links enrichment initialized")
	return relatedlinks.NewService(cfg, linksCache, provider)
}

func relatedLinksCacheDir() string {
	if dir := os.Getenv("RELATED_LINKS_CACHE_DIR"); dir != "" {
		return dir
	}
	return "./related-links-cache"
}

// setupGmailPoller builds the Gmail newsletter poller if a stored
// GmailConfig exists and OAuth client credentials are configured. Returns
// nil if Gmail polling isn't set up, leaving the worker unaffected.
func setupGmailPoller(logger *slog.Logger, database *sql.DB) *gmail.Poller {
	clientID := os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		logger.Info("Gmail OAuth credentials not configured, polling disabled")
		return nil
	}

	configRepo := sqlite.NewGmailConfigRepo(database)
	cfg, err := configRepo.Get(context.Background())
	if err != nil {
		logger.Warn("failed to load Gmail config, polling disabled", slog.Any("error", err))
		return nil
	}
	if cfg == nil || !cfg.Enabled {
		logger.Info("Gmail polling not configured or disabled")
		return nil
	}

	feedRepo := sqlite.NewFeedRepo(database)
	articleRepo := sqlite.NewArticleRepo(database)
	refresher := gmail.NewOAuthTokenRefresher(clientID, clientSecret)

	logger.Info("Gmail polling initialized", slog.String("label", cfg.MonitoredLabel))
	return gmail.NewPoller(configRepo, feedRepo, articleRepo, refresher)
}

func summaryCacheDir() string {
	if dir := os.Getenv("SUMMARY_CACHE_DIR"); dir != "" {
		return dir
	}
	return "./summary-cache"
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced for security.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
	}
}

// loadDiscordConfig loads Discord configuration from environment variables.
//
// Environment variables:
//   - DISCORD_ENABLED: Boolean flag to enable Discord notifications (default: false)
//   - DISCORD_WEBHOOK_URL: Discord webhook URL (required if enabled)
func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	enabled := os.Getenv("DISCORD_ENABLED") == "true"
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if !enabled {
		return notifier.DiscordConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Discord webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Discord webhook URL must use HTTPS, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Host != "discord.com" {
		logger.Warn("Invalid Discord webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.DiscordConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("Invalid Discord webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.DiscordConfig{Enabled: false}
	}

	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadSlackConfig loads Slack configuration from environment variables.
//
// Environment variables:
//   - SLACK_ENABLED: Boolean flag to enable Slack notifications (default: false)
//   - SLACK_WEBHOOK_URL: Slack webhook URL (required if enabled)
func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	enabled := os.Getenv("SLACK_ENABLED") == "true"
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")

	if !enabled {
		return notifier.SlackConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Slack webhook URL is empty, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Slack webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Slack webhook URL must use HTTPS, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Host != "hooks.slack.com" {
		logger.Warn("Invalid Slack webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.SlackConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("Invalid Slack webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.SlackConfig{Enabled: false}
	}

	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// startCronWorker starts the cron scheduler and runs the refresh-all job periodically.
func startCronWorker(logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runRefreshJob(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runRefreshJob executes a single refresh-all job with timeout and error handling.
func runRefreshJob(logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("refresh started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CrawlTimeout)
	defer cancel()

	stats, err := svc.RefreshAll(ctx)
	if err != nil {
		logger.Error("refresh failed", slog.String("error", sanitize.Error(err)))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}
	if stats.Skipped {
		logger.Info("refresh skipped, already in progress")
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordFeedsProcessed(stats.Feeds)
	metrics.RecordLastSuccess()

	logger.Info("refresh completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int("feeds_failed", stats.FeedsFailed),
		slog.Int64("items_seen", stats.ItemsSeen),
		slog.Int64("items_inserted", stats.ItemsInserted),
		slog.Int64("items_duplicate", stats.ItemsDuplicate),
		slog.Int64("matches", stats.Matches),
		slog.Duration("duration", stats.Duration),
	)
}
