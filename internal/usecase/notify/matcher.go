package notify

import (
	"context"
	"fmt"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/repository"
)

// RuleMatcher evaluates newly ingested articles against the stored
// notification rules and records at-most-once history entries.
type RuleMatcher struct {
	repo repository.NotificationRepository
}

// NewRuleMatcher builds a RuleMatcher backed by repo.
func NewRuleMatcher(repo repository.NotificationRepository) *RuleMatcher {
	return &RuleMatcher{repo: repo}
}

// EvaluateAndRecord evaluates article against every enabled rule and records
// a history entry for the highest-priority match. An article that has ever
// been notified before, by any rule, is skipped entirely and yields no
// matches. Returns the match recorded, or nil if nothing matched.
func (m *RuleMatcher) EvaluateAndRecord(ctx context.Context, article *entity.Article) (*Match, error) {
	notified, err := m.repo.HasAnyNotification(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("notify: check notification history: %w", err)
	}
	if notified {
		return nil, nil
	}

	rules, err := m.repo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("notify: list rules: %w", err)
	}

	matches := Evaluate(article, rules)
	if len(matches) == 0 {
		return nil, nil
	}

	best := matches[0]
	entry := &entity.NotificationHistoryEntry{
		ArticleID:  article.ID,
		RuleID:     &best.Rule.ID,
		NotifiedAt: time.Now(),
	}
	if err := m.repo.RecordNotification(ctx, entry); err != nil {
		return nil, fmt.Errorf("notify: record notification: %w", err)
	}

	return &best, nil
}
