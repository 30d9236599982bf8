package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// GmailConfigRepository stores the singleton Gmail polling configuration
// (spec §4.11): OAuth token reference, monitored label, poll interval.
type GmailConfigRepository interface {
	Get(ctx context.Context) (*entity.GmailConfig, error)
	Upsert(ctx context.Context, config *entity.GmailConfig) error
	Delete(ctx context.Context) error
	// UpdateLastFetchedUID advances the IMAP watermark after a successful
	// poll cycle, without disturbing the rest of the configuration.
	UpdateLastFetchedUID(ctx context.Context, uid uint32) error
}
