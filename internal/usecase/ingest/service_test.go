package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
	"catchup-feed/internal/usecase/fetch"
	"catchup-feed/internal/usecase/ingest"
	"catchup-feed/internal/usecase/notify"
)

type stubFeedRepo struct {
	feeds     []*entity.Feed
	statusErr map[int64]*string
}

func (r *stubFeedRepo) Get(context.Context, int64) (*entity.Feed, error)          { return nil, nil }
func (r *stubFeedRepo) GetByURL(context.Context, string) (*entity.Feed, error)    { return nil, nil }
func (r *stubFeedRepo) Create(context.Context, *entity.Feed) error                { return nil }
func (r *stubFeedRepo) Update(context.Context, int64, repository.FeedUpdate) error { return nil }
func (r *stubFeedRepo) Delete(context.Context, int64) error                       { return nil }
func (r *stubFeedRepo) BulkDelete(context.Context, []int64, bool) error           { return nil }
func (r *stubFeedRepo) EnsureStandaloneFeed(context.Context) (*entity.Feed, error) {
	return nil, nil
}
func (r *stubFeedRepo) EnsureNewsletterFeed(context.Context, string) (*entity.Feed, error) {
	return nil, nil
}

func (r *stubFeedRepo) List(context.Context, *int64) ([]repository.FeedWithUnreadCount, error) {
	out := make([]repository.FeedWithUnreadCount, 0, len(r.feeds))
	for _, f := range r.feeds {
		out = append(out, repository.FeedWithUnreadCount{Feed: f})
	}
	return out, nil
}

func (r *stubFeedRepo) UpdateFetchStatus(_ context.Context, id int64, _ time.Time, fetchErr *string) error {
	if r.statusErr == nil {
		r.statusErr = make(map[int64]*string)
	}
	r.statusErr[id] = fetchErr
	return nil
}

type stubArticleRepo struct {
	byURL   map[string]*entity.Article
	created []*entity.Article
	updates map[int64]repository.ArticleUpdate
	nextID  int64
}

func (r *stubArticleRepo) Create(_ context.Context, a *entity.Article) (int64, error) {
	if _, exists := r.byURL[a.URL]; exists {
		return 0, nil
	}
	r.nextID++
	a.ID = r.nextID
	if r.byURL == nil {
		r.byURL = make(map[string]*entity.Article)
	}
	r.byURL[a.URL] = a
	r.created = append(r.created, a)
	return a.ID, nil
}
func (r *stubArticleRepo) Get(context.Context, int64) (*entity.Article, error) { return nil, nil }
func (r *stubArticleRepo) GetByURL(_ context.Context, _ int64, url string) (*entity.Article, error) {
	if a, ok := r.byURL[url]; ok {
		return a, nil
	}
	return nil, nil
}
func (r *stubArticleRepo) GetWithFeed(context.Context, int64) (*repository.ArticleWithFeed, error) {
	return nil, nil
}
func (r *stubArticleRepo) List(context.Context, repository.ArticleFilters) ([]*entity.Article, error) {
	return nil, nil
}
func (r *stubArticleRepo) ListWithFeed(context.Context, repository.ArticleFilters) ([]repository.ArticleWithFeed, error) {
	return nil, nil
}
func (r *stubArticleRepo) Count(context.Context, repository.ArticleFilters) (int64, error) {
	return 0, nil
}
func (r *stubArticleRepo) CountUnread(context.Context, *int64) (int64, error) { return 0, nil }
func (r *stubArticleRepo) GroupByDate(context.Context, repository.ArticleFilters) (map[string][]*entity.Article, error) {
	return nil, nil
}
func (r *stubArticleRepo) GroupByFeed(context.Context, repository.ArticleFilters) (map[int64][]*entity.Article, error) {
	return nil, nil
}
func (r *stubArticleRepo) Search(context.Context, string, repository.ArticleFilters) ([]*entity.Article, error) {
	return nil, nil
}
func (r *stubArticleRepo) Update(_ context.Context, id int64, update repository.ArticleUpdate) error {
	if r.updates == nil {
		r.updates = make(map[int64]repository.ArticleUpdate)
	}
	r.updates[id] = update
	return nil
}
func (r *stubArticleRepo) Delete(context.Context, int64) error { return nil }
func (r *stubArticleRepo) FindDuplicates(context.Context, *int64) ([]repository.DuplicateGroup, error) {
	return nil, nil
}
func (r *stubArticleRepo) ArchiveOlderThan(context.Context, time.Time, repository.ArchiveOptions) (int64, error) {
	return 0, nil
}

type stubParser struct {
	items map[string][]fetch.FeedItem
	err   map[string]error
}

func (p *stubParser) Fetch(_ context.Context, feedURL string) ([]fetch.FeedItem, error) {
	if err, ok := p.err[feedURL]; ok {
		return nil, err
	}
	return p.items[feedURL], nil
}

type stubFetcher struct{}

func (stubFetcher) Fetch(context.Context, string, fetch.Options) (*fetch.FetchResult, error) {
	return &fetch.FetchResult{Content: "fetched content that is long enough to pass the threshold check for real"}, nil
}

type stubSettingRepo struct{ values map[string]string }

func (r *stubSettingRepo) Get(_ context.Context, key string) (*entity.Setting, error) {
	v, ok := r.values[key]
	if !ok {
		return nil, nil
	}
	return &entity.Setting{Key: key, Value: v}, nil
}
func (r *stubSettingRepo) Set(context.Context, string, string) error  { return nil }
func (r *stubSettingRepo) List(context.Context) ([]*entity.Setting, error) { return nil, nil }
func (r *stubSettingRepo) Delete(context.Context, string) error      { return nil }

type stubNotificationRepo struct{}

func (stubNotificationRepo) ListRules(context.Context) ([]*entity.NotificationRule, error) {
	return nil, nil
}
func (stubNotificationRepo) GetRule(context.Context, int64) (*entity.NotificationRule, error) {
	return nil, nil
}
func (stubNotificationRepo) CreateRule(context.Context, *entity.NotificationRule) error { return nil }
func (stubNotificationRepo) UpdateRule(context.Context, *entity.NotificationRule) error { return nil }
func (stubNotificationRepo) DeleteRule(context.Context, int64) error                   { return nil }
func (stubNotificationRepo) HasNotified(context.Context, *int64, int64) (bool, error) {
	return false, nil
}
func (stubNotificationRepo) HasAnyNotification(context.Context, int64) (bool, error) {
	return false, nil
}
func (stubNotificationRepo) RecordNotification(context.Context, *entity.NotificationHistoryEntry) error {
	return nil
}
func (stubNotificationRepo) ListHistory(context.Context, int) ([]*entity.NotificationHistoryEntry, error) {
	return nil, nil
}

func newTestService(t *testing.T, feedRepo *stubFeedRepo, articleRepo *stubArticleRepo, parser *stubParser) *ingest.Service {
	t.Helper()
	matcher := notify.NewRuleMatcher(stubNotificationRepo{})
	svc := ingest.NewService(feedRepo, articleRepo, &stubSettingRepo{}, parser, stubFetcher{}, matcher)
	svc.Now = func() time.Time { return time.Unix(0, 0) }
	return svc
}

func TestRefreshAll_InsertsNewArticles(t *testing.T) {
	feed := &entity.Feed{ID: 1, Name: "Blog", FeedURL: "https://example.com/feed.xml"}
	feedRepo := &stubFeedRepo{feeds: []*entity.Feed{feed}}
	articleRepo := &stubArticleRepo{}
	parser := &stubParser{items: map[string][]fetch.FeedItem{
		feed.FeedURL: {
			{Title: "First post", URL: "https://example.com/a", Content: "enough content to skip the fetch step because it exceeds five hundred characters of padding text repeated repeated repeated repeated repeated repeated repeated repeated repeated text"},
		},
	}}

	svc := newTestService(t, feedRepo, articleRepo, parser)

	stats, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ItemsInserted != 1 {
		t.Fatalf("expected 1 inserted item, got %+v", stats)
	}
	if len(articleRepo.created) != 1 {
		t.Fatalf("expected article to be created, got %d", len(articleRepo.created))
	}
}

func TestRefreshAll_SkipsDuplicateURL(t *testing.T) {
	feed := &entity.Feed{ID: 1, FeedURL: "https://example.com/feed.xml"}
	feedRepo := &stubFeedRepo{feeds: []*entity.Feed{feed}}
	articleRepo := &stubArticleRepo{byURL: map[string]*entity.Article{
		"https://example.com/a": {ID: 99, FeedID: 1, URL: "https://example.com/a"},
	}}
	parser := &stubParser{items: map[string][]fetch.FeedItem{
		feed.FeedURL: {{Title: "Dup", URL: "https://example.com/a", Content: "irrelevant"}},
	}}

	svc := newTestService(t, feedRepo, articleRepo, parser)

	stats, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ItemsDuplicate != 1 || stats.ItemsInserted != 0 {
		t.Fatalf("expected duplicate skip, got %+v", stats)
	}
}

func TestRefreshAll_SkipsPseudoFeeds(t *testing.T) {
	standalone := &entity.Feed{ID: 1, FeedURL: entity.StandaloneFeedURL}
	newsletter := &entity.Feed{ID: 2, FeedURL: entity.NewsletterFeedURL("a@example.com")}
	feedRepo := &stubFeedRepo{feeds: []*entity.Feed{standalone, newsletter}}
	articleRepo := &stubArticleRepo{}
	parser := &stubParser{items: map[string][]fetch.FeedItem{}}

	svc := newTestService(t, feedRepo, articleRepo, parser)

	stats, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Feeds != 0 {
		t.Fatalf("expected pseudo-feeds to be skipped, got %+v", stats)
	}
}

func TestRefreshAll_RecordsFetchErrorOnParseFailure(t *testing.T) {
	feed := &entity.Feed{ID: 1, FeedURL: "https://example.com/feed.xml"}
	feedRepo := &stubFeedRepo{feeds: []*entity.Feed{feed}}
	articleRepo := &stubArticleRepo{}
	parser := &stubParser{err: map[string]error{feed.FeedURL: errors.New("connection refused")}}

	svc := newTestService(t, feedRepo, articleRepo, parser)

	stats, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FeedsFailed != 1 {
		t.Fatalf("expected 1 failed feed, got %+v", stats)
	}
	if feedRepo.statusErr[feed.ID] == nil {
		t.Fatalf("expected fetch error to be recorded on the feed")
	}
}

func TestDrainNotifications_ClearsBufferAfterRead(t *testing.T) {
	feed := &entity.Feed{ID: 1, FeedURL: "https://example.com/feed.xml"}
	feedRepo := &stubFeedRepo{feeds: []*entity.Feed{feed}}
	articleRepo := &stubArticleRepo{}
	parser := &stubParser{items: map[string][]fetch.FeedItem{
		feed.FeedURL: {{Title: "t", URL: "https://example.com/a", Content: "padding padding padding padding padding padding padding padding padding padding padding padding padding"}},
	}}
	matcher := notify.NewRuleMatcher(ruleRepoWithFeedRule{feedID: feed.ID})
	svc := ingest.NewService(feedRepo, articleRepo, &stubSettingRepo{}, parser, stubFetcher{}, matcher)
	svc.Now = func() time.Time { return time.Unix(0, 0) }

	if _, err := svc.RefreshAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	drained := svc.DrainNotifications()
	if len(drained) != 1 {
		t.Fatalf("expected 1 buffered match, got %d", len(drained))
	}
	if again := svc.DrainNotifications(); len(again) != 0 {
		t.Fatalf("expected buffer to be empty after drain, got %d", len(again))
	}
}

type ruleRepoWithFeedRule struct {
	stubNotificationRepo
	feedID int64
}

func (r ruleRepoWithFeedRule) ListRules(context.Context) ([]*entity.NotificationRule, error) {
	return []*entity.NotificationRule{{ID: 1, FeedID: &r.feedID, Priority: entity.PriorityNormal, Enabled: true}}, nil
}
