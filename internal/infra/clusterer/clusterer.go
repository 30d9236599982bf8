package clusterer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"catchup-feed/internal/infra/summarizer"
)

// cacheTTL is fixed at one hour regardless of the surrounding cache
// backend's own default TTL.
const cacheTTL = time.Hour

// descriptionPrefixLength caps how much raw content backs a topic
// description when no summary is available yet.
const descriptionPrefixLength = 150

// Clusterer groups articles into topic clusters with a single fixed
// fast-tier LLM call through summarizer.Provider.
type Clusterer struct {
	provider summarizer.Provider
	cache    Cache
}

// New builds a Clusterer. cache may be nil, in which case every call with
// two or more articles hits the provider.
func New(provider summarizer.Provider, cache Cache) *Clusterer {
	return &Clusterer{provider: provider, cache: cache}
}

// Cluster groups articles into topics. Fewer than two articles always
// produces a single "All Articles" group without touching the cache or
// the provider.
func (c *Clusterer) Cluster(ctx context.Context, articles []ArticleInput) (Result, error) {
	if len(articles) < 2 {
		return Result{Topics: []Topic{allArticlesTopic(articles)}}, nil
	}

	key := cacheKey(articles)
	if cached, ok := c.readCache(key); ok {
		return cached, nil
	}

	if c.provider == nil {
		return Result{}, ErrNoProvider
	}

	minClusters, maxClusters := clusterBounds(len(articles))
	prompt := buildPrompt(articles, minClusters, maxClusters)

	resp, err := c.provider.Complete(ctx, summarizer.CompleteParams{
		UserPrompt: prompt,
		Model:      c.provider.ModelForTier(summarizer.TierFast),
		MaxTokens:  1024,
	})
	if err != nil {
		return Result{}, fmt.Errorf("clusterer: completion failed: %w", err)
	}

	topics := parseTopics(resp.Text, articles)
	result := Result{Topics: topics}

	if len(topics) > 0 {
		c.writeCache(key, result)
	}
	return result, nil
}

func allArticlesTopic(articles []ArticleInput) Topic {
	ids := make([]int64, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	return Topic{ID: "all", Label: "All Articles", ArticleIDs: ids}
}

// clusterBounds scales the target cluster count to the article count,
// aiming for roughly 3-5 articles per topic.
func clusterBounds(n int) (min, max int) {
	min = maxInt(2, n/5)
	max = maxInt(min+2, maxInt(n/3, 10))
	return min, max
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func buildPrompt(articles []ArticleInput, minClusters, maxClusters int) string {
	var lines []string
	for _, a := range articles {
		description := a.SummaryShort
		if description == "" && a.Content != "" {
			description = truncateRunes(a.Content, descriptionPrefixLength) + "..."
		}
		lines = append(lines, fmt.Sprintf("[id=%d] %q - %s", a.ID, a.Title, description))
	}

	return fmt.Sprintf(`Analyze these article titles and summaries. Group them into %d-%d specific topic clusters.

Articles:
%s

Return your response as valid JSON with this exact structure:
{
  "topics": [
    {"label": "Topic Name", "article_ids": [1, 2, 3]}
  ]
}

Rules:
- Create SPECIFIC, NARROW topics, not broad categories
- BAD: "Technology" or "Politics" (too broad)
- GOOD: "OpenAI GPT Models", "EU AI Regulation", "Tesla Earnings" (specific)
- Each topic should ideally have 2-5 articles
- If a topic would have 6+ articles, split it into more specific subtopics
- Every article must be assigned to exactly one topic
- Use short but specific topic labels (2-5 words)
- If an article doesn't fit any group, put it in "Other" topic
- Return ONLY the JSON, no other text`, minClusters, maxClusters, strings.Join(lines, "\n"))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// parseTopics parses the LLM response into topics, filtering each topic's
// ids down to those present in articles and not already claimed by an
// earlier topic, then bucketing any leftover ids into "Other". An
// unparseable response falls back to a single "All Articles" group.
func parseTopics(text string, articles []ArticleInput) []Topic {
	validIDs := make(map[int64]bool, len(articles))
	for _, a := range articles {
		validIDs[a.ID] = true
	}

	var parsed clusterResponse
	if err := json.Unmarshal([]byte(stripJSONFence(text)), &parsed); err != nil {
		return []Topic{allArticlesTopic(articles)}
	}

	assigned := make(map[int64]bool, len(articles))
	topics := make([]Topic, 0, len(parsed.Topics)+1)

	for i, t := range parsed.Topics {
		label := t.Label
		if label == "" {
			label = "Topic " + strconv.Itoa(i+1)
		}

		var ids []int64
		for _, id := range t.ArticleIDs {
			if validIDs[id] && !assigned[id] {
				ids = append(ids, id)
				assigned[id] = true
			}
		}
		if len(ids) > 0 {
			topics = append(topics, Topic{ID: "topic_" + strconv.Itoa(i), Label: label, ArticleIDs: ids})
		}
	}

	var unassigned []int64
	for _, a := range articles {
		if !assigned[a.ID] {
			unassigned = append(unassigned, a.ID)
		}
	}
	if len(unassigned) > 0 {
		topics = append(topics, Topic{ID: "other", Label: "Other", ArticleIDs: unassigned})
	}

	return topics
}

func stripJSONFence(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "```")
	if start == -1 {
		return text
	}
	end := strings.LastIndex(text, "```")
	if end == start {
		return text
	}
	fenced := text[start+3 : end]
	if idx := strings.Index(fenced, "\n"); idx != -1 {
		return strings.TrimSpace(fenced[idx+1:])
	}
	return strings.TrimSpace(fenced)
}

func cacheKey(articles []ArticleInput) string {
	ids := make([]int64, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return "clustering:" + hex.EncodeToString(sum[:])[:16]
}

func (c *Clusterer) readCache(key string) (Result, bool) {
	if c.cache == nil {
		return Result{}, false
	}
	raw, ok := c.cache.Get(key)
	if !ok {
		return Result{}, false
	}

	var cached cachedResult
	if err := json.Unmarshal(raw, &cached); err != nil || len(cached.Topics) == 0 {
		return Result{}, false
	}

	topics := make([]Topic, len(cached.Topics))
	for i, t := range cached.Topics {
		topics[i] = Topic{ID: t.ID, Label: t.Label, ArticleIDs: t.ArticleIDs}
	}
	return Result{Topics: topics, Cached: true}, true
}

func (c *Clusterer) writeCache(key string, result Result) {
	if c.cache == nil {
		return
	}

	payload := cachedResult{Topics: make([]cachedTopic, len(result.Topics))}
	for i, t := range result.Topics {
		payload.Topics[i] = cachedTopic{ID: t.ID, Label: t.Label, ArticleIDs: t.ArticleIDs}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = c.cache.Set(key, data, cacheTTL)
}
