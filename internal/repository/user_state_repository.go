package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// UserStateRepository stores per-user, per-article read/bookmark state
// (spec §4.1, invariant 3: absence of a row means unread and not bookmarked).
type UserStateRepository interface {
	Get(ctx context.Context, userID, articleID int64) (*entity.UserArticleState, error)
	SetRead(ctx context.Context, userID, articleID int64, read bool) error
	SetBookmarked(ctx context.Context, userID, articleID int64, bookmarked bool) error
	// MarkAllRead marks every article in feedID read for userID. feedID nil
	// means every feed.
	MarkAllRead(ctx context.Context, userID int64, feedID *int64) error
	ListBookmarked(ctx context.Context, userID int64) ([]*entity.Article, error)
}
