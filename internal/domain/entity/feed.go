package entity

import (
	"strings"
	"time"
)

// StandaloneFeedURL is the reserved URL of the single pseudo-feed that holds
// library items (URL submissions and uploads).
const StandaloneFeedURL = "local://standalone"

// NewsletterFeedURLPrefix prefixes the reserved per-sender pseudo-feed URL
// scheme used for Gmail-polled newsletters: "newsletter://<sender-email>".
const NewsletterFeedURLPrefix = "newsletter://"

// Feed is a subscribed RSS/Atom source, or one of the two reserved
// pseudo-feeds (standalone library, per-sender newsletter) that group
// articles which did not arrive via feed crawling.
type Feed struct {
	ID            int64
	Name          string
	FeedURL       string
	Category      *string
	LastCrawledAt *time.Time
	LastError     *string
	CreatedAt     time.Time
}

// IsStandaloneFeed reports whether f is the reserved library pseudo-feed.
func (f *Feed) IsStandaloneFeed() bool {
	return f.FeedURL == StandaloneFeedURL
}

// IsNewsletterFeed reports whether f is a reserved per-sender newsletter
// pseudo-feed.
func (f *Feed) IsNewsletterFeed() bool {
	return strings.HasPrefix(f.FeedURL, NewsletterFeedURLPrefix)
}

// NewsletterSender extracts the sender email from a newsletter pseudo-feed
// URL. Returns "" if f is not a newsletter feed.
func (f *Feed) NewsletterSender() string {
	if !f.IsNewsletterFeed() {
		return ""
	}
	return strings.TrimPrefix(f.FeedURL, NewsletterFeedURLPrefix)
}

// NewsletterFeedURL builds the reserved pseudo-feed URL for a newsletter
// sender address.
func NewsletterFeedURL(senderEmail string) string {
	return NewsletterFeedURLPrefix + senderEmail
}
