package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

type GmailConfigRepo struct{ db *sql.DB }

func NewGmailConfigRepo(db *sql.DB) repository.GmailConfigRepository {
	return &GmailConfigRepo{db: db}
}

func (r *GmailConfigRepo) Get(ctx context.Context) (*entity.GmailConfig, error) {
	const query = `
SELECT email, access_token, refresh_token, token_expires_at, monitored_label,
    last_fetched_uid, poll_interval_mins, enabled
FROM gmail_config WHERE id = 1 LIMIT 1`
	var c entity.GmailConfig
	err := r.db.QueryRowContext(ctx, query).Scan(
		&c.Email, &c.AccessToken, &c.RefreshToken, &c.TokenExpiresAt, &c.MonitoredLabel,
		&c.LastFetchedUID, &c.PollIntervalMins, &c.Enabled,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &c, nil
}

func (r *GmailConfigRepo) Upsert(ctx context.Context, config *entity.GmailConfig) error {
	label := config.MonitoredLabel
	if label == "" {
		label = entity.DefaultMonitoredLabel
	}
	interval := config.PollIntervalMins
	if interval == 0 {
		interval = entity.DefaultPollIntervalMinutes
	}

	const query = `
INSERT INTO gmail_config (id, email, access_token, refresh_token, token_expires_at, monitored_label, last_fetched_uid, poll_interval_mins, enabled)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    email = excluded.email,
    access_token = excluded.access_token,
    refresh_token = excluded.refresh_token,
    token_expires_at = excluded.token_expires_at,
    monitored_label = excluded.monitored_label,
    last_fetched_uid = excluded.last_fetched_uid,
    poll_interval_mins = excluded.poll_interval_mins,
    enabled = excluded.enabled`
	_, err := r.db.ExecContext(ctx, query,
		config.Email, config.AccessToken, config.RefreshToken, config.TokenExpiresAt, label,
		config.LastFetchedUID, interval, config.Enabled,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (r *GmailConfigRepo) Delete(ctx context.Context) error {
	const query = `DELETE FROM gmail_config WHERE id = 1`
	_, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (r *GmailConfigRepo) UpdateLastFetchedUID(ctx context.Context, uid uint32) error {
	const query = `UPDATE gmail_config SET last_fetched_uid = ? WHERE id = 1`
	_, err := r.db.ExecContext(ctx, query, uid)
	if err != nil {
		return fmt.Errorf("UpdateLastFetchedUID: %w", err)
	}
	return nil
}
