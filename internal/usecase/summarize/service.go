package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"catchup-feed/internal/infra/summarizer"
)

// Service orchestrates the generate-then-critique summarization pipeline
// on top of a single summarizer.Provider.
type Service struct {
	provider      summarizer.Provider
	cache         Cache
	defaultTier   summarizer.ModelTier
	criticEnabled bool
}

// NewService builds a Service. cache may be nil, in which case every call
// hits the provider. defaultTier is used for content that isn't long or
// technical enough to warrant the standard tier outright.
func NewService(provider summarizer.Provider, cache Cache, defaultTier summarizer.ModelTier, criticEnabled bool) *Service {
	if defaultTier == "" {
		defaultTier = summarizer.TierFast
	}
	return &Service{
		provider:      provider,
		cache:         cache,
		defaultTier:   defaultTier,
		criticEnabled: criticEnabled,
	}
}

// Summarize generates a structured summary for content fetched from url.
// A cache hit short-circuits the provider entirely; cache misses run the
// step-1 generate call, optionally followed by a critic pass, and write
// the result back to cache before returning.
func (s *Service) Summarize(ctx context.Context, content, url, title string) (Result, error) {
	if s.provider == nil {
		return Result{}, ErrNoProvider
	}

	if cached, ok := s.readCache(url, title); ok {
		return cached, nil
	}

	tier := s.selectTier(content)
	articleContent := buildArticleContent(content, title, url)

	stepOneText, err := s.complete(ctx, tier, instructionPrompt, articleContent)
	if err != nil {
		return Result{}, fmt.Errorf("summarize: step 1 generate failed: %w", err)
	}

	genre := extractGenre(stepOneText)
	finalText := stepOneText
	if s.criticEnabled && shouldCritique(content, genre) {
		if revised, ok := s.critique(ctx, stepOneText, title, url); ok {
			finalText = revised
		}
	}

	result := parseResponse(finalText, title)
	result.ModelTier = tier

	s.writeCache(url, result)
	return result, nil
}

// complete runs a single completion call for the given tier, routing
// through CompleteWithCacheablePrefix for providers that support prompt
// caching and falling back to a concatenated prompt otherwise.
func (s *Service) complete(ctx context.Context, tier summarizer.ModelTier, instruction, dynamicContent string) (string, error) {
	model := s.provider.ModelForTier(tier)

	if s.provider.Capabilities().SupportsPromptCaching {
		resp, err := s.provider.CompleteWithCacheablePrefix(ctx, systemPrompt, instruction, dynamicContent, model, 1024, 0)
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	}

	resp, err := s.provider.Complete(ctx, summarizer.CompleteParams{
		SystemPrompt: systemPrompt,
		UserPrompt:   instruction + "\n\n" + dynamicContent,
		Model:        model,
		MaxTokens:    1024,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// critique runs the step-2 review pass, always at the fast tier. It falls
// back to (stepOneText, false) on any failure, including an unparseable
// response, so a flaky critic never blocks the pipeline.
func (s *Service) critique(ctx context.Context, stepOneText, title, url string) (string, bool) {
	dynamicContent := fmt.Sprintf("Original article title: %s\nURL: %s\n\nFirst-pass summary:\n%s", title, url, stepOneText)

	text, err := s.complete(ctx, summarizer.TierFast, criticPrompt, dynamicContent)
	if err != nil {
		slog.Warn("summarize: critic step failed, using step-1 summary",
			slog.String("url", url), slog.Any("error", err))
		return "", false
	}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(stripJSONFence(text)), &parsed); err != nil {
		slog.Warn("summarize: critic returned unparseable json, using step-1 summary",
			slog.String("url", url), slog.Any("error", err))
		return "", false
	}

	if len(parsed.RevisionsMade) > 0 {
		slog.Info("summarize: critic made revisions",
			slog.String("url", url), slog.Int("count", len(parsed.RevisionsMade)))
	}
	return text, true
}

// selectTier picks standard tier for long or technically dense content,
// and the configured default tier otherwise.
func (s *Service) selectTier(content string) summarizer.ModelTier {
	if len(strings.Fields(content)) > 2000 {
		return summarizer.TierStandard
	}

	lower := strings.ToLower(content)
	matches := 0
	for _, term := range technicalTerms {
		if strings.Contains(lower, term) {
			matches++
		}
	}
	if matches >= 3 {
		return summarizer.TierStandard
	}

	return s.defaultTier
}

// shouldCritique runs the critic for long articles and newsletters,
// regardless of the tier step 1 used.
func shouldCritique(content string, genre Genre) bool {
	if len(strings.Fields(content)) > 2000 {
		return true
	}
	return genre == GenreNewsletter
}

func buildArticleContent(content, title, url string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "Original title: %s\n", title)
	}
	if url != "" {
		fmt.Fprintf(&b, "URL: %s\n", url)
	}
	b.WriteString("\nArticle:\n")

	if len(content) > maxContentLength {
		b.WriteString(content[:maxContentLength])
		b.WriteString("\n\n[Content truncated...]")
	} else {
		b.WriteString(content)
	}
	return b.String()
}

func extractGenre(text string) Genre {
	var parsed llmResponse
	if err := json.Unmarshal([]byte(stripJSONFence(text)), &parsed); err != nil {
		return ""
	}
	return Genre(parsed.ContentType)
}

// parseResponse parses a step-1 or critic completion into a Result. A
// response that isn't valid JSON falls back to treating the raw text as
// the summary and its first sentence as the headline.
func parseResponse(text, title string) Result {
	result := Result{Title: title}

	var parsed llmResponse
	if err := json.Unmarshal([]byte(stripJSONFence(text)), &parsed); err == nil {
		result.Headline = parsed.Headline
		result.Summary = parsed.Summary
		result.KeyPoints = parsed.KeyPoints
		result.ContentType = Genre(parsed.ContentType)
	} else {
		result.Summary = stripMarkdown(text)
	}

	if len(result.Headline) > 200 {
		result.Headline = result.Headline[:200]
	}
	if len(result.KeyPoints) > 5 {
		result.KeyPoints = result.KeyPoints[:5]
	}

	if result.Summary == "" {
		result.Summary = stripMarkdown(text)
	}
	if result.Headline == "" {
		result.Headline = fallbackHeadline(text)
	}

	return result
}

func fallbackHeadline(text string) string {
	if idx := strings.Index(text, "."); idx >= 0 {
		if head := stripMarkdown(text[:idx]); head != "" {
			return head + "."
		}
	}
	truncated := text
	if len(truncated) > 150 {
		truncated = truncated[:150]
	}
	return stripMarkdown(truncated)
}

// stripJSONFence removes a surrounding ```/```json markdown code fence, if
// present, so the remainder can be handed to json.Unmarshal.
func stripJSONFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[1 : len(lines)-1]
	} else {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "#") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "#"))
	}
	s = strings.ReplaceAll(s, "**", "")
	return strings.TrimSpace(s)
}

// mapLegacyModelToTier recovers a tier from a cached entry written before
// Result started recording tiers directly, when the cache stored the
// resolved model name instead (e.g. "claude-haiku-4-5").
func mapLegacyModelToTier(model string) summarizer.ModelTier {
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "haiku"):
		return summarizer.TierFast
	case strings.Contains(lower, "flash"):
		return summarizer.TierFast
	case strings.Contains(lower, "-mini"):
		return summarizer.TierFast
	default:
		return summarizer.TierStandard
	}
}

func cacheKey(url string) string { return "summary:" + url }

func (s *Service) readCache(url, title string) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}
	raw, ok := s.cache.Get(cacheKey(url))
	if !ok {
		return Result{}, false
	}

	var cached cachedSummary
	if err := json.Unmarshal(raw, &cached); err != nil {
		return Result{}, false
	}

	tier := summarizer.ModelTier(cached.ModelTier)
	if tier != summarizer.TierFast && tier != summarizer.TierStandard && tier != summarizer.TierAdvanced {
		tier = mapLegacyModelToTier(cached.ModelTier)
	}

	resultTitle := cached.Title
	if resultTitle == "" {
		resultTitle = title
	}

	return Result{
		Title:       resultTitle,
		Headline:    cached.Headline,
		Summary:     cached.Summary,
		KeyPoints:   cached.KeyPoints,
		ContentType: Genre(cached.ContentType),
		ModelTier:   tier,
		Cached:      true,
	}, true
}

func (s *Service) writeCache(url string, r Result) {
	if s.cache == nil {
		return
	}

	payload := cachedSummary{
		Title:       r.Title,
		Headline:    r.Headline,
		Summary:     r.Summary,
		KeyPoints:   r.KeyPoints,
		ContentType: string(r.ContentType),
		ModelTier:   string(r.ModelTier),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("summarize: failed to marshal cache payload", slog.String("url", url), slog.Any("error", err))
		return
	}
	if err := s.cache.Set(cacheKey(url), data, 0); err != nil {
		slog.Warn("summarize: failed to write cache", slog.String("url", url), slog.Any("error", err))
	}
}
