package sqlite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"catchup-feed/internal/infra/adapter/persistence/sqlite"
	"catchup-feed/internal/repository"
)

func TestQueryBuilder_BuildWhereClause_Empty(t *testing.T) {
	t.Parallel()
	qb := sqlite.NewArticleQueryBuilder()
	clause, args := qb.BuildWhereClause(repository.ArticleFilters{})
	assert.Equal(t, "", clause)
	assert.Empty(t, args)
}

func TestQueryBuilder_BuildWhereClause_FeedID(t *testing.T) {
	t.Parallel()
	qb := sqlite.NewArticleQueryBuilder()
	feedID := int64(5)
	clause, args := qb.BuildWhereClause(repository.ArticleFilters{FeedID: &feedID})
	assert.Equal(t, "WHERE feed_id = ?", clause)
	assert.Equal(t, []interface{}{int64(5)}, args)
}

func TestQueryBuilder_BuildWhereClause_Combined(t *testing.T) {
	t.Parallel()
	qb := sqlite.NewArticleQueryBuilder()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clause, args := qb.BuildWhereClause(repository.ArticleFilters{
		From:           &from,
		UnreadOnly:     true,
		BookmarkedOnly: true,
	})
	assert.Equal(t, "WHERE published_at >= ? AND is_read = 0 AND is_bookmarked = 1", clause)
	assert.Equal(t, []interface{}{from}, args)
}

func TestQueryBuilder_BuildWhereClause_Summarized(t *testing.T) {
	t.Parallel()
	qb := sqlite.NewArticleQueryBuilder()
	summarized := true
	clause, _ := qb.BuildWhereClause(repository.ArticleFilters{Summarized: &summarized})
	assert.Equal(t, "WHERE summarized_at IS NOT NULL", clause)

	unsummarized := false
	clause, _ = qb.BuildWhereClause(repository.ArticleFilters{Summarized: &unsummarized})
	assert.Equal(t, "WHERE summarized_at IS NULL", clause)
}

func TestQueryBuilder_OrderClause(t *testing.T) {
	t.Parallel()
	qb := sqlite.NewArticleQueryBuilder()
	assert.Equal(t, "ORDER BY published_at DESC", qb.OrderClause(repository.ArticleFilters{}))
	assert.Equal(t, "ORDER BY published_at ASC", qb.OrderClause(repository.ArticleFilters{Sort: repository.SortOldestFirst}))
}

func TestQueryBuilder_LimitClause(t *testing.T) {
	t.Parallel()
	qb := sqlite.NewArticleQueryBuilder()
	clause, args := qb.LimitClause(repository.ArticleFilters{})
	assert.Equal(t, "", clause)
	assert.Nil(t, args)

	clause, args = qb.LimitClause(repository.ArticleFilters{Limit: 20, Offset: 40})
	assert.Equal(t, "LIMIT ? OFFSET ?", clause)
	assert.Equal(t, []interface{}{20, 40}, args)
}
