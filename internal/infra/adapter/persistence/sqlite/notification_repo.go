package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) repository.NotificationRepository {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) ListRules(ctx context.Context) ([]*entity.NotificationRule, error) {
	const query = `
SELECT id, name, feed_id, keyword, author, priority, enabled
FROM notification_rules ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListRules: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rules := make([]*entity.NotificationRule, 0, 10)
	for rows.Next() {
		rule, err := scanNotificationRule(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRules: Scan: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func scanNotificationRule(row interface{ Scan(...any) error }) (*entity.NotificationRule, error) {
	var rule entity.NotificationRule
	var priority string
	if err := row.Scan(&rule.ID, &rule.Name, &rule.FeedID, &rule.Keyword, &rule.Author, &priority, &rule.Enabled); err != nil {
		return nil, err
	}
	rule.Priority = entity.NotificationPriority(priority)
	return &rule, nil
}

func (r *NotificationRepo) GetRule(ctx context.Context, id int64) (*entity.NotificationRule, error) {
	const query = `
SELECT id, name, feed_id, keyword, author, priority, enabled
FROM notification_rules WHERE id = ? LIMIT 1`
	rule, err := scanNotificationRule(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetRule: %w", err)
	}
	return rule, nil
}

func (r *NotificationRepo) CreateRule(ctx context.Context, rule *entity.NotificationRule) error {
	const query = `
INSERT INTO notification_rules (name, feed_id, keyword, author, priority, enabled)
VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, rule.Name, rule.FeedID, rule.Keyword, rule.Author, string(rule.Priority), rule.Enabled)
	if err != nil {
		return fmt.Errorf("CreateRule: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("CreateRule: LastInsertId: %w", err)
	}
	rule.ID = id
	return nil
}

func (r *NotificationRepo) UpdateRule(ctx context.Context, rule *entity.NotificationRule) error {
	const query = `
UPDATE notification_rules SET name = ?, feed_id = ?, keyword = ?, author = ?, priority = ?, enabled = ?
WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, rule.Name, rule.FeedID, rule.Keyword, rule.Author, string(rule.Priority), rule.Enabled, rule.ID)
	if err != nil {
		return fmt.Errorf("UpdateRule: ExecContext: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateRule: RowsAffected: %w", err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) DeleteRule(ctx context.Context, id int64) error {
	const query = `DELETE FROM notification_rules WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("DeleteRule: %w", err)
	}
	return nil
}

func (r *NotificationRepo) HasNotified(ctx context.Context, ruleID *int64, articleID int64) (bool, error) {
	const query = `SELECT 1 FROM notification_history WHERE article_id = ? AND rule_id IS ? LIMIT 1`
	var flag bool
	err := r.db.QueryRowContext(ctx, query, articleID, ruleID).Scan(&flag)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("HasNotified: %w", err)
	}
	return true, nil
}

func (r *NotificationRepo) HasAnyNotification(ctx context.Context, articleID int64) (bool, error) {
	const query = `SELECT 1 FROM notification_history WHERE article_id = ? LIMIT 1`
	var flag bool
	err := r.db.QueryRowContext(ctx, query, articleID).Scan(&flag)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("HasAnyNotification: %w", err)
	}
	return true, nil
}

func (r *NotificationRepo) RecordNotification(ctx context.Context, entry *entity.NotificationHistoryEntry) error {
	const query = `
INSERT INTO notification_history (article_id, rule_id, notified_at, dismissed)
VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, entry.ArticleID, entry.RuleID, entry.NotifiedAt, entry.Dismissed)
	if err != nil {
		return fmt.Errorf("RecordNotification: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("RecordNotification: LastInsertId: %w", err)
	}
	entry.ID = id
	return nil
}

func (r *NotificationRepo) ListHistory(ctx context.Context, limit int) ([]*entity.NotificationHistoryEntry, error) {
	const query = `
SELECT id, article_id, rule_id, notified_at, dismissed
FROM notification_history ORDER BY notified_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListHistory: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.NotificationHistoryEntry, 0, limit)
	for rows.Next() {
		var e entity.NotificationHistoryEntry
		if err := rows.Scan(&e.ID, &e.ArticleID, &e.RuleID, &e.NotifiedAt, &e.Dismissed); err != nil {
			return nil, fmt.Errorf("ListHistory: Scan: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
