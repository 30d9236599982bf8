package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArticle_ZeroValue(t *testing.T) {
	var article Article

	assert.Equal(t, int64(0), article.ID)
	assert.Equal(t, int64(0), article.FeedID)
	assert.Equal(t, "", article.Title)
	assert.Equal(t, "", article.URL)
	assert.Nil(t, article.SummaryShort)
	assert.Nil(t, article.PublishedAt)
	assert.True(t, article.CreatedAt.IsZero())
	assert.False(t, article.IsRead)
	assert.False(t, article.IsBookmarked)
}

func TestArticle_ContentTypeOrDefault(t *testing.T) {
	tests := []struct {
		name string
		ct   ContentType
		want ContentType
	}{
		{"unset defaults to url", "", ContentTypeURL},
		{"pdf stays pdf", ContentTypePDF, ContentTypePDF},
		{"newsletter stays newsletter", ContentTypeNewsletter, ContentTypeNewsletter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Article{ContentType: tt.ct}
			assert.Equal(t, tt.want, a.ContentTypeOrDefault())
		})
	}
}

func TestArticle_WithAllFields(t *testing.T) {
	publishedAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	createdAt := time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC)
	summary := "short summary"
	tier := "fast"

	article := Article{
		ID:           123,
		FeedID:       456,
		Title:        "Complete Article",
		URL:          "https://example.com/complete",
		SummaryShort: &summary,
		ModelTier:    &tier,
		KeyPoints:    []string{"k1", "k2"},
		PublishedAt:  &publishedAt,
		CreatedAt:    createdAt,
	}

	assert.NotZero(t, article.ID)
	assert.NotZero(t, article.FeedID)
	assert.Equal(t, "fast", *article.ModelTier)
	assert.Len(t, article.KeyPoints, 2)
	assert.Equal(t, publishedAt, *article.PublishedAt)
	assert.Equal(t, createdAt, article.CreatedAt)
}

func TestNotificationPriority_Less(t *testing.T) {
	assert.True(t, PriorityHigh.Less(PriorityNormal))
	assert.True(t, PriorityNormal.Less(PriorityLow))
	assert.False(t, PriorityLow.Less(PriorityHigh))
}

func TestNotificationRule_HasFilter(t *testing.T) {
	keyword := "OpenAI"
	feedID := int64(1)

	assert.False(t, (&NotificationRule{}).HasFilter())
	assert.True(t, (&NotificationRule{Keyword: &keyword}).HasFilter())
	assert.True(t, (&NotificationRule{FeedID: &feedID}).HasFilter())
}
