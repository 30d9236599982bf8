package repository

import (
	"context"

	"catchup-feed/internal/domain/entity"
)

// NotificationRepository stores notification rules and the at-most-once
// delivery history keyed by (rule, article) described in spec §4.10.
type NotificationRepository interface {
	ListRules(ctx context.Context) ([]*entity.NotificationRule, error)
	GetRule(ctx context.Context, id int64) (*entity.NotificationRule, error)
	CreateRule(ctx context.Context, rule *entity.NotificationRule) error
	UpdateRule(ctx context.Context, rule *entity.NotificationRule) error
	DeleteRule(ctx context.Context, id int64) error

	// HasNotified reports whether ruleID has already fired for articleID,
	// enforcing the at-most-once guarantee. ruleID nil matches a
	// rule-less (e.g. digest) notification keyed only on articleID.
	HasNotified(ctx context.Context, ruleID *int64, articleID int64) (bool, error)

	// HasAnyNotification reports whether articleID has ever been notified
	// by any rule. The rules usecase uses this to suppress an article's
	// matches entirely once it has fired once, regardless of which rule
	// fired (spec §4.10).
	HasAnyNotification(ctx context.Context, articleID int64) (bool, error)

	RecordNotification(ctx context.Context, entry *entity.NotificationHistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]*entity.NotificationHistoryEntry, error)
}
