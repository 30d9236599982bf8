package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

type TopicHistoryRepo struct{ db *sql.DB }

func NewTopicHistoryRepo(db *sql.DB) repository.TopicHistoryRepository {
	return &TopicHistoryRepo{db: db}
}

func (r *TopicHistoryRepo) ListSince(ctx context.Context, since time.Time) ([]*entity.TopicHistoryEntry, error) {
	const query = `
SELECT id, label, label_hash, article_count, article_ids, clustered_at, period_start, period_end
FROM topic_history WHERE clustered_at >= ? ORDER BY clustered_at DESC`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("ListSince: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.TopicHistoryEntry, 0, 20)
	for rows.Next() {
		var e entity.TopicHistoryEntry
		var idsJSON string
		if err := rows.Scan(&e.ID, &e.Label, &e.LabelHash, &e.ArticleCount, &idsJSON, &e.ClusteredAt, &e.PeriodStart, &e.PeriodEnd); err != nil {
			return nil, fmt.Errorf("ListSince: Scan: %w", err)
		}
		_ = json.Unmarshal([]byte(idsJSON), &e.ArticleIDs)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *TopicHistoryRepo) Record(ctx context.Context, entry *entity.TopicHistoryEntry) error {
	idsJSON, err := json.Marshal(entry.ArticleIDs)
	if err != nil {
		return fmt.Errorf("Record: marshal article ids: %w", err)
	}
	const query = `
INSERT INTO topic_history (label, label_hash, article_count, article_ids, clustered_at, period_start, period_end)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, entry.Label, entry.LabelHash, entry.ArticleCount, string(idsJSON), entry.ClusteredAt, entry.PeriodStart, entry.PeriodEnd)
	if err != nil {
		return fmt.Errorf("Record: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("Record: LastInsertId: %w", err)
	}
	entry.ID = id
	return nil
}

func (r *TopicHistoryRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM topic_history WHERE clustered_at < ?`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("Prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("Prune: RowsAffected: %w", err)
	}
	return n, nil
}
