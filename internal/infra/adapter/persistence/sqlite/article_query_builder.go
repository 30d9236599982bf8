// Package sqlite provides the SQLite implementation of every repository
// interface, backed by a single file plus an FTS5 full-text index.
package sqlite

import (
	"strings"

	"catchup-feed/internal/repository"
)

// ArticleQueryBuilder builds the WHERE clause shared by List, Count, and
// the non-FTS branches of Search, so filter logic lives in exactly one place.
type ArticleQueryBuilder struct{}

func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause translates filters into a WHERE clause and its
// positional arguments. The empty filters value yields no clause at all.
func (qb *ArticleQueryBuilder) BuildWhereClause(filters repository.ArticleFilters) (clause string, args []interface{}) {
	var conditions []string

	if filters.FeedID != nil {
		conditions = append(conditions, "feed_id = ?")
		args = append(args, *filters.FeedID)
	}
	if filters.From != nil {
		conditions = append(conditions, "published_at >= ?")
		args = append(args, *filters.From)
	}
	if filters.To != nil {
		conditions = append(conditions, "published_at <= ?")
		args = append(args, *filters.To)
	}
	if filters.UnreadOnly {
		conditions = append(conditions, "is_read = 0")
	}
	if filters.BookmarkedOnly {
		conditions = append(conditions, "is_bookmarked = 1")
	}
	if filters.Summarized != nil {
		if *filters.Summarized {
			conditions = append(conditions, "summarized_at IS NOT NULL")
		} else {
			conditions = append(conditions, "summarized_at IS NULL")
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// OrderClause translates filters.Sort into an ORDER BY clause, defaulting
// to newest-first when unset.
func (qb *ArticleQueryBuilder) OrderClause(filters repository.ArticleFilters) string {
	if filters.Sort == repository.SortOldestFirst {
		return "ORDER BY published_at ASC"
	}
	return "ORDER BY published_at DESC"
}

// LimitClause appends LIMIT/OFFSET when filters requests a positive limit.
func (qb *ArticleQueryBuilder) LimitClause(filters repository.ArticleFilters) (clause string, args []interface{}) {
	if filters.Limit <= 0 {
		return "", nil
	}
	return "LIMIT ? OFFSET ?", []interface{}{filters.Limit, filters.Offset}
}
