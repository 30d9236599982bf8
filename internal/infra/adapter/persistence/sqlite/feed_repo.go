package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// FeedRepo implements repository.FeedRepository against the single-file store.
type FeedRepo struct{ db *sql.DB }

func NewFeedRepo(db *sql.DB) repository.FeedRepository {
	return &FeedRepo{db: db}
}

func scanFeed(row interface{ Scan(...any) error }) (*entity.Feed, error) {
	var f entity.Feed
	if err := row.Scan(&f.ID, &f.Name, &f.FeedURL, &f.Category, &f.LastCrawledAt, &f.LastError, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FeedRepo) Get(ctx context.Context, id int64) (*entity.Feed, error) {
	const query = `
SELECT id, name, feed_url, category, last_crawled_at, last_error, created_at
FROM feeds WHERE id = ? LIMIT 1`
	f, err := scanFeed(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return f, nil
}

func (r *FeedRepo) GetByURL(ctx context.Context, feedURL string) (*entity.Feed, error) {
	const query = `
SELECT id, name, feed_url, category, last_crawled_at, last_error, created_at
FROM feeds WHERE feed_url = ? LIMIT 1`
	f, err := scanFeed(r.db.QueryRowContext(ctx, query, feedURL))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	return f, nil
}

func (r *FeedRepo) List(ctx context.Context, userID *int64) ([]repository.FeedWithUnreadCount, error) {
	var rows *sql.Rows
	var err error
	if userID != nil {
		const query = `
SELECT f.id, f.name, f.feed_url, f.category, f.last_crawled_at, f.last_error, f.created_at,
    COALESCE((
        SELECT COUNT(*) FROM articles a
        LEFT JOIN user_article_state s ON s.article_id = a.id AND s.user_id = ?
        WHERE a.feed_id = f.id AND COALESCE(s.is_read, 0) = 0
    ), 0) AS unread_count
FROM feeds f
ORDER BY f.id ASC`
		rows, err = r.db.QueryContext(ctx, query, *userID)
	} else {
		const query = `
SELECT f.id, f.name, f.feed_url, f.category, f.last_crawled_at, f.last_error, f.created_at, 0
FROM feeds f
ORDER BY f.id ASC`
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]repository.FeedWithUnreadCount, 0, 50)
	for rows.Next() {
		var f entity.Feed
		var unread int64
		if err := rows.Scan(&f.ID, &f.Name, &f.FeedURL, &f.Category, &f.LastCrawledAt, &f.LastError, &f.CreatedAt, &unread); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		result = append(result, repository.FeedWithUnreadCount{Feed: &f, UnreadCount: unread})
	}
	return result, rows.Err()
}

func (r *FeedRepo) Create(ctx context.Context, feed *entity.Feed) error {
	const query = `
INSERT INTO feeds (name, feed_url, category, last_crawled_at, last_error, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		feed.Name, feed.FeedURL, feed.Category, feed.LastCrawledAt, feed.LastError, feed.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("Create: LastInsertId: %w", err)
	}
	feed.ID = id
	return nil
}

func (r *FeedRepo) Update(ctx context.Context, id int64, update repository.FeedUpdate) error {
	var sets []string
	var args []interface{}

	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.ClearCategory {
		sets = append(sets, "category = NULL")
	} else if update.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *update.Category)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := "UPDATE feeds SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("Update: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *FeedRepo) UpdateFetchStatus(ctx context.Context, id int64, fetchedAt time.Time, fetchErr *string) error {
	var query string
	var args []interface{}
	if fetchErr != nil {
		query = `UPDATE feeds SET last_error = ? WHERE id = ?`
		args = []interface{}{*fetchErr, id}
	} else {
		query = `UPDATE feeds SET last_crawled_at = ?, last_error = NULL WHERE id = ?`
		args = []interface{}{fetchedAt, id}
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("UpdateFetchStatus: %w", err)
	}
	return nil
}

func (r *FeedRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM feeds WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *FeedRepo) BulkDelete(ctx context.Context, ids []int64, preserveNewsletters bool) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := "DELETE FROM feeds WHERE id IN (" + strings.Join(placeholders, ",") + ")"
	if preserveNewsletters {
		query += " AND feed_url NOT LIKE 'newsletter://%'"
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("BulkDelete: %w", err)
	}
	return nil
}

func (r *FeedRepo) EnsureStandaloneFeed(ctx context.Context) (*entity.Feed, error) {
	return r.ensurePseudoFeed(ctx, entity.StandaloneFeedURL, "Library")
}

func (r *FeedRepo) EnsureNewsletterFeed(ctx context.Context, senderEmail string) (*entity.Feed, error) {
	return r.ensurePseudoFeed(ctx, entity.NewsletterFeedURL(senderEmail), senderEmail)
}

func (r *FeedRepo) ensurePseudoFeed(ctx context.Context, feedURL, name string) (*entity.Feed, error) {
	if existing, err := r.GetByURL(ctx, feedURL); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}
	feed := &entity.Feed{Name: name, FeedURL: feedURL}
	if err := r.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("ensurePseudoFeed: %w", err)
	}
	return feed, nil
}
