package notify

import (
	"fmt"
	"sort"
	"strings"

	"catchup-feed/internal/domain/entity"
)

// Match is a single notification rule firing against an article.
type Match struct {
	Rule   *entity.NotificationRule
	Reason string
}

// Evaluate checks article against every enabled rule and returns the rules
// that match, sorted by priority (high first). It does not consult
// notification history; callers that want at-most-once delivery should use
// RuleMatcher instead.
func Evaluate(article *entity.Article, rules []*entity.NotificationRule) []Match {
	var matches []Match
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		reason, ok := checkRule(article, rule)
		if !ok {
			continue
		}
		matches = append(matches, Match{Rule: rule, Reason: reason})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rule.Priority.Less(matches[j].Rule.Priority)
	})
	return matches
}

// checkRule reports whether article matches rule and, if so, why.
func checkRule(article *entity.Article, rule *entity.NotificationRule) (string, bool) {
	if rule.FeedID != nil && *rule.FeedID != article.FeedID {
		return "", false
	}

	if rule.Keyword == nil && rule.Author == nil {
		if rule.FeedID != nil {
			return "Feed notification", true
		}
		return "", false
	}

	if rule.Keyword != nil && *rule.Keyword != "" {
		if matchKeyword(article, *rule.Keyword) {
			return fmt.Sprintf("Keyword match: '%s'", *rule.Keyword), true
		}
	}

	if rule.Author != nil && *rule.Author != "" {
		if matchAuthor(article.Author, *rule.Author) {
			return fmt.Sprintf("Author match: '%s'", *rule.Author), true
		}
	}

	return "", false
}

// matchKeyword checks title, then short summary, then full content, in that
// order, for a case-insensitive substring match.
func matchKeyword(article *entity.Article, keyword string) bool {
	kw := strings.ToLower(keyword)
	if strings.Contains(strings.ToLower(article.Title), kw) {
		return true
	}
	if article.SummaryShort != nil && strings.Contains(strings.ToLower(*article.SummaryShort), kw) {
		return true
	}
	if strings.Contains(strings.ToLower(article.Content), kw) {
		return true
	}
	return false
}

func matchAuthor(articleAuthor *string, ruleAuthor string) bool {
	if articleAuthor == nil || *articleAuthor == "" {
		return false
	}
	return strings.Contains(strings.ToLower(*articleAuthor), strings.ToLower(ruleAuthor))
}
