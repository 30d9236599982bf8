package repository

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// ArticleWithFeed pairs an article with the display name of the feed it
// belongs to, avoiding a join at every call site.
type ArticleWithFeed struct {
	Article *entity.Article
	FeedName string
}

// SortOrder controls how List orders its results.
type SortOrder string

const (
	SortNewestFirst SortOrder = "newest_first"
	SortOldestFirst SortOrder = "oldest_first"
)

// ArticleFilters narrows List/Search results. A nil pointer field leaves
// that dimension unfiltered.
type ArticleFilters struct {
	FeedID        *int64
	From          *time.Time
	To            *time.Time
	UnreadOnly    bool
	BookmarkedOnly bool
	Summarized    *bool // true: only summarized, false: only un-summarized, nil: either
	Offset        int
	Limit         int
	Sort          SortOrder
}

// ArticleUpdate carries the fields Update is allowed to change. A nil
// pointer leaves that field unchanged, matching the partial-update contract
// used throughout the store (spec §4.1: "update content", "update summary
// block", "update source URL" are independent operations).
type ArticleUpdate struct {
	Content      *string
	URL          *string
	SummaryShort *string
	SummaryLong  *string
	KeyPoints    []string
	ModelTier    *string
	IsRead       *bool
	IsBookmarked *bool
}

// DuplicateGroup is a set of articles sharing the same content hash,
// surfaced so the caller can decide which copy to keep.
type DuplicateGroup struct {
	ContentHash string
	ArticleIDs  []int64
}

// ArchiveOptions guards which articles ArchiveOlderThan is allowed to touch.
type ArchiveOptions struct {
	KeepBookmarked bool
	KeepUnread     bool
}

type ArticleRepository interface {
	// Create inserts article and fails soft on a duplicate URL within the
	// same feed: it returns (0, nil) rather than an error, per spec §4.1.
	Create(ctx context.Context, article *entity.Article) (id int64, err error)
	Get(ctx context.Context, id int64) (*entity.Article, error)
	GetByURL(ctx context.Context, feedID int64, url string) (*entity.Article, error)
	GetWithFeed(ctx context.Context, id int64) (*ArticleWithFeed, error)
	// List returns articles matching filters, most recent first unless
	// filters.Sort says otherwise.
	List(ctx context.Context, filters ArticleFilters) ([]*entity.Article, error)
	ListWithFeed(ctx context.Context, filters ArticleFilters) ([]ArticleWithFeed, error)
	Count(ctx context.Context, filters ArticleFilters) (int64, error)
	// CountUnread returns the unread count for a single feed, or across all
	// feeds when feedID is nil.
	CountUnread(ctx context.Context, feedID *int64) (int64, error)
	// GroupByDate buckets articles matching filters by their publication
	// date (UTC, per spec §4.2's digest grouping), most recent day first.
	GroupByDate(ctx context.Context, filters ArticleFilters) (map[string][]*entity.Article, error)
	// GroupByFeed buckets articles matching filters by feed ID.
	GroupByFeed(ctx context.Context, filters ArticleFilters) (map[int64][]*entity.Article, error)
	// Search performs a full-text query (spec §4.6) combined with filters.
	Search(ctx context.Context, query string, filters ArticleFilters) ([]*entity.Article, error)
	Update(ctx context.Context, id int64, update ArticleUpdate) error
	Delete(ctx context.Context, id int64) error
	// FindDuplicates returns groups of two or more articles sharing a
	// content hash, for the duplicate-detection operation in spec §4.1.
	FindDuplicates(ctx context.Context, feedID *int64) ([]DuplicateGroup, error)
	// ArchiveOlderThan deletes articles published before the cutoff,
	// honoring the guards in opts, and reports how many rows were removed.
	ArchiveOlderThan(ctx context.Context, cutoff time.Time, opts ArchiveOptions) (deleted int64, err error)
}
