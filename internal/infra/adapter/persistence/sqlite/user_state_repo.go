package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// UserStateRepo implements repository.UserStateRepository.
type UserStateRepo struct{ db *sql.DB }

func NewUserStateRepo(db *sql.DB) repository.UserStateRepository {
	return &UserStateRepo{db: db}
}

func (r *UserStateRepo) Get(ctx context.Context, userID, articleID int64) (*entity.UserArticleState, error) {
	const query = `
SELECT user_id, article_id, is_read, read_at, is_bookmarked, bookmarked_at
FROM user_article_state WHERE user_id = ? AND article_id = ? LIMIT 1`
	var s entity.UserArticleState
	err := r.db.QueryRowContext(ctx, query, userID, articleID).Scan(
		&s.UserID, &s.ArticleID, &s.IsRead, &s.ReadAt, &s.IsBookmarked, &s.BookmarkedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &s, nil
}

func (r *UserStateRepo) SetRead(ctx context.Context, userID, articleID int64, read bool) error {
	var readAt *time.Time
	if read {
		now := time.Now()
		readAt = &now
	}
	const query = `
INSERT INTO user_article_state (user_id, article_id, is_read, read_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id, article_id) DO UPDATE SET is_read = excluded.is_read, read_at = excluded.read_at`
	_, err := r.db.ExecContext(ctx, query, userID, articleID, read, readAt)
	if err != nil {
		return fmt.Errorf("SetRead: %w", err)
	}
	return nil
}

func (r *UserStateRepo) SetBookmarked(ctx context.Context, userID, articleID int64, bookmarked bool) error {
	var bookmarkedAt *time.Time
	if bookmarked {
		now := time.Now()
		bookmarkedAt = &now
	}
	const query = `
INSERT INTO user_article_state (user_id, article_id, is_bookmarked, bookmarked_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id, article_id) DO UPDATE SET is_bookmarked = excluded.is_bookmarked, bookmarked_at = excluded.bookmarked_at`
	_, err := r.db.ExecContext(ctx, query, userID, articleID, bookmarked, bookmarkedAt)
	if err != nil {
		return fmt.Errorf("SetBookmarked: %w", err)
	}
	return nil
}

func (r *UserStateRepo) MarkAllRead(ctx context.Context, userID int64, feedID *int64) error {
	var articleQuery string
	var args []interface{}
	if feedID != nil {
		articleQuery = `SELECT id FROM articles WHERE feed_id = ?`
		args = []interface{}{*feedID}
	} else {
		articleQuery = `SELECT id FROM articles`
	}
	rows, err := r.db.QueryContext(ctx, articleQuery, args...)
	if err != nil {
		return fmt.Errorf("MarkAllRead: select: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("MarkAllRead: scan: %w", err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now()
	for _, id := range ids {
		const upsert = `
INSERT INTO user_article_state (user_id, article_id, is_read, read_at)
VALUES (?, ?, 1, ?)
ON CONFLICT(user_id, article_id) DO UPDATE SET is_read = 1, read_at = excluded.read_at`
		if _, err := r.db.ExecContext(ctx, upsert, userID, id, now); err != nil {
			return fmt.Errorf("MarkAllRead: upsert: %w", err)
		}
	}
	return nil
}

func (r *UserStateRepo) ListBookmarked(ctx context.Context, userID int64) ([]*entity.Article, error) {
	query := "SELECT" + articleColumnsPrefixed + `
FROM articles a
JOIN user_article_state s ON s.article_id = a.id
WHERE s.user_id = ? AND s.is_bookmarked = 1
ORDER BY s.bookmarked_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ListBookmarked: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 20)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListBookmarked: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}
