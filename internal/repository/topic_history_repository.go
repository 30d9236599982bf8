package repository

import (
	"context"
	"time"

	"catchup-feed/internal/domain/entity"
)

// TopicHistoryRepository stores the rolling window of recently clustered
// topics (spec §4.7) so the clusterer can avoid re-surfacing a topic within
// its TTL, grounded on original_source's clustering.py cache semantics.
type TopicHistoryRepository interface {
	ListSince(ctx context.Context, since time.Time) ([]*entity.TopicHistoryEntry, error)
	Record(ctx context.Context, entry *entity.TopicHistoryEntry) error
	// Prune removes entries older than before, bounding table growth.
	Prune(ctx context.Context, before time.Time) (deleted int64, err error)
}
