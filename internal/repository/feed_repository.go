package repository

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// FeedWithUnreadCount pairs a feed with its unread-article count for a
// specific user, per spec §4.1's "list optionally scoped to a user" contract.
type FeedWithUnreadCount struct {
	Feed        *entity.Feed
	UnreadCount int64
}

// FeedUpdate carries the mutable display fields of a feed. Category == nil
// leaves the category unchanged; ClearCategory requests it be set to NULL.
type FeedUpdate struct {
	Name          *string
	Category      *string
	ClearCategory bool
}

// FeedRepository is the store's contract for feeds, including the two
// reserved pseudo-feeds (standalone library, per-sender newsletter).
type FeedRepository interface {
	Get(ctx context.Context, id int64) (*entity.Feed, error)
	GetByURL(ctx context.Context, feedURL string) (*entity.Feed, error)
	// List returns every feed. If userID is non-nil, each returned feed
	// carries its per-user unread count; absent per-user state counts as
	// unread (invariant 3 of spec §8).
	List(ctx context.Context, userID *int64) ([]FeedWithUnreadCount, error)
	Create(ctx context.Context, feed *entity.Feed) error
	Update(ctx context.Context, id int64, update FeedUpdate) error
	// UpdateFetchStatus records the outcome of a crawl attempt: success sets
	// LastCrawledAt and clears LastError; failure sets LastError and leaves
	// LastCrawledAt untouched.
	UpdateFetchStatus(ctx context.Context, id int64, fetchedAt time.Time, fetchErr *string) error
	Delete(ctx context.Context, id int64) error
	// BulkDelete deletes every feed whose ID is in ids. When
	// preserveNewsletters is true, newsletter pseudo-feeds are skipped.
	BulkDelete(ctx context.Context, ids []int64, preserveNewsletters bool) error
	// EnsureStandaloneFeed returns the reserved library pseudo-feed,
	// creating it on first use.
	EnsureStandaloneFeed(ctx context.Context) (*entity.Feed, error)
	// EnsureNewsletterFeed returns the reserved per-sender newsletter
	// pseudo-feed for senderEmail, creating it on first use.
	EnsureNewsletterFeed(ctx context.Context, senderEmail string) (*entity.Feed, error)
}
