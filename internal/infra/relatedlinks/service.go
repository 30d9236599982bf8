package relatedlinks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/summarizer"
)

// resultCacheTTL is how long a query's result set is cached, per spec.
const resultCacheTTL = 24 * time.Hour

// keywordCacheTTL is generous: concept keywords for a given article body
// never change once extracted, but the cache is not persisted to the
// store, so this just bounds how long the entry survives process restarts
// of the disk tier.
const keywordCacheTTL = 30 * 24 * time.Hour

// Cache is the minimal key/value contract relatedlinks needs; satisfied by
// internal/infra/cache's Disk and Tiered (Memory's Set has no error return
// and so only qualifies when wrapped by Tiered).
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// Service finds related coverage for an article (spec §4.11): it is an
// optional enrichment step, never required for ingestion to succeed.
type Service struct {
	client   *client
	cache    Cache
	provider summarizer.Provider // optional; enables step 2 of the query preference order
}

// NewService builds a Service. cfg.Enabled=false callers should not
// construct a Service at all; the ingestion pipeline treats a nil Service
// as "enrichment disabled".
func NewService(cfg Config, cache Cache, provider summarizer.Provider) *Service {
	return &Service{
		client:   newClient(cfg),
		cache:    cache,
		provider: provider,
	}
}

// FindRelated returns up to n related links for article, deduplicated by
// title and capped per source domain. A failure here is never fatal to
// ingestion; callers should log and continue.
func (s *Service) FindRelated(ctx context.Context, article *entity.Article, n int) ([]Link, error) {
	if n <= 0 {
		n = 5
	}

	query := s.buildQuery(ctx, article)
	if query == "" {
		return nil, fmt.Errorf("relatedlinks: empty query for article %d", article.ID)
	}

	cacheKey := normalizedQueryKey(query)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			var links []Link
			if err := json.Unmarshal(cached, &links); err == nil {
				return capResults(links, n), nil
			}
		}
	}

	raw, err := s.client.search(ctx, query, n+candidateOverfetch)
	if err != nil {
		return nil, fmt.Errorf("relatedlinks: search: %w", err)
	}

	links := s.dedupe(article, raw)

	if s.cache != nil {
		if encoded, err := json.Marshal(links); err == nil {
			if err := s.cache.Set(cacheKey, encoded, resultCacheTTL); err != nil {
				slog.Warn("relatedlinks: failed to cache result", slog.String("error", err.Error()))
			}
		}
	}

	return capResults(links, n), nil
}

// buildQuery implements the three-step preference order from spec §4.11:
// title+key-points, then title+LLM keywords, then title alone.
func (s *Service) buildQuery(ctx context.Context, article *entity.Article) string {
	if len(article.KeyPoints) > 0 {
		n := 2
		if len(article.KeyPoints) < n {
			n = len(article.KeyPoints)
		}
		return strings.TrimSpace(article.Title + " " + strings.Join(article.KeyPoints[:n], " "))
	}

	if keywords := s.extractKeywords(ctx, article); len(keywords) > 0 {
		return strings.TrimSpace(article.Title + " " + strings.Join(keywords, " "))
	}

	return strings.TrimSpace(article.Title)
}

// extractKeywords asks the configured LLM provider for 3-5 concept
// keywords, caching the result under the article's content hash so the
// same article never re-triggers a completion call.
func (s *Service) extractKeywords(ctx context.Context, article *entity.Article) []string {
	if s.provider == nil {
		return nil
	}

	cacheKey := "relatedlinks:keywords:" + article.ContentHash
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			var keywords []string
			if err := json.Unmarshal(cached, &keywords); err == nil {
				return keywords
			}
		}
	}

	resp, err := s.provider.Complete(ctx, summarizer.CompleteParams{
		SystemPrompt: "Extract 3 to 5 short concept keywords (2-3 words each) that best describe the subject of this article. Respond with a JSON array of strings only.",
		UserPrompt:   article.Title + "\n\n" + truncate(article.Content, 4000),
		MaxTokens:    200,
		JSONMode:     true,
	})
	if err != nil {
		slog.Warn("relatedlinks: keyword extraction failed", slog.Int64("article_id", article.ID), slog.Any("error", err))
		return nil
	}

	var keywords []string
	if err := json.Unmarshal([]byte(resp.Text), &keywords); err != nil {
		return nil
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(keywords); err == nil {
			_ = s.cache.Set(cacheKey, encoded, keywordCacheTTL)
		}
	}

	return keywords
}

// dedupe filters out the article's own URL/domain and exact-title matches,
// then caps at maxResultsPerDomain hits per domain.
func (s *Service) dedupe(article *entity.Article, raw []searchResponseItem) []Link {
	ownDomain := domainOf(article.URL)
	seenTitles := make(map[string]bool)
	perDomain := make(map[string]int)

	links := make([]Link, 0, len(raw))
	for _, item := range raw {
		domain := domainOf(item.URL)
		if domain == "" || item.URL == article.URL || domain == ownDomain {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" || strings.EqualFold(title, article.Title) || seenTitles[strings.ToLower(title)] {
			continue
		}
		if perDomain[domain] >= maxResultsPerDomain {
			continue
		}

		seenTitles[strings.ToLower(title)] = true
		perDomain[domain]++

		var published *time.Time
		if item.PublishedDate != "" {
			if t, err := time.Parse(time.RFC3339, item.PublishedDate); err == nil {
				published = &t
			}
		}

		snippet := item.Summary
		if snippet == "" {
			snippet = item.Text
		}

		links = append(links, Link{
			URL:           item.URL,
			Title:         title,
			Snippet:       truncate(snippet, maxSnippetLength),
			Domain:        domain,
			PublishedDate: published,
			Score:         item.Score,
		})
	}
	return links
}

func capResults(links []Link, n int) []Link {
	if len(links) > n {
		return links[:n]
	}
	return links
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizedQueryKey lower-cases, collapses whitespace, and prefixes with
// a SHA-256 hash, per spec §4.11's cache key rule.
func normalizedQueryKey(query string) string {
	normalized := whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "relatedlinks:" + hex.EncodeToString(sum[:])[:16] + ":" + normalized
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
