package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeed_Struct(t *testing.T) {
	now := time.Now()

	feed := Feed{
		ID:            1,
		Name:          "Test Feed",
		FeedURL:       "https://example.com/feed.xml",
		LastCrawledAt: &now,
	}

	assert.Equal(t, int64(1), feed.ID)
	assert.Equal(t, "Test Feed", feed.Name)
	assert.Equal(t, "https://example.com/feed.xml", feed.FeedURL)
	assert.Equal(t, &now, feed.LastCrawledAt)
}

func TestFeed_IsStandaloneFeed(t *testing.T) {
	standalone := Feed{FeedURL: StandaloneFeedURL}
	ordinary := Feed{FeedURL: "https://example.com/feed.xml"}

	assert.True(t, standalone.IsStandaloneFeed())
	assert.False(t, ordinary.IsStandaloneFeed())
}

func TestFeed_IsNewsletterFeed(t *testing.T) {
	newsletter := Feed{FeedURL: NewsletterFeedURL("sender@example.com")}
	ordinary := Feed{FeedURL: "https://example.com/feed.xml"}

	assert.True(t, newsletter.IsNewsletterFeed())
	assert.Equal(t, "sender@example.com", newsletter.NewsletterSender())
	assert.False(t, ordinary.IsNewsletterFeed())
	assert.Equal(t, "", ordinary.NewsletterSender())
}

func TestNewsletterFeedURL(t *testing.T) {
	assert.Equal(t, "newsletter://alerts@substack.com", NewsletterFeedURL("alerts@substack.com"))
}
