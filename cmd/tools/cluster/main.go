// Command cluster groups recently ingested articles into topic clusters
// and records the result for trend queries.
// Usage: cluster [--since 24h] [--limit 200] [--output json]
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/adapter/persistence/sqlite"
	"catchup-feed/internal/infra/cache"
	"catchup-feed/internal/infra/clusterer"
	"catchup-feed/internal/infra/summarizer"
	"catchup-feed/internal/repository"
)

type output struct {
	Topics []topicOutput `json:"topics"`
	Cached bool          `json:"cached"`
	Error  string        `json:"error,omitempty"`
}

type topicOutput struct {
	Label      string  `json:"label"`
	ArticleIDs []int64 `json:"article_ids"`
}

func main() {
	outputFormat := flag.String("output", "text", "Output format: text or json")
	dbPath := flag.String("db", "./catchup-feed.db", "Path to the sqlite database")
	since := flag.Duration("since", 24*time.Hour, "Cluster articles published since this long ago")
	limit := flag.Int("limit", 200, "Maximum articles to consider")
	timeout := flag.Duration("timeout", 60*time.Second, "Cluster timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	database, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cluster: opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	keys := summarizer.Keys{
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Google:    os.Getenv("GOOGLE_API_KEY"),
	}
	if keys.Anthropic == "" && keys.OpenAI == "" && keys.Google == "" {
		fmt.Fprintln(os.Stderr, "cluster: no summarizer API keys configured (ANTHROPIC_API_KEY, OPENAI_API_KEY, or GOOGLE_API_KEY)")
		os.Exit(1)
	}
	provider, err := summarizer.New(ctx, os.Getenv("SUMMARIZER_PREFERRED"), keys)
	if err != nil || provider == nil {
		fmt.Fprintf(os.Stderr, "cluster: initializing provider: %v\n", err)
		os.Exit(1)
	}

	var topicCache clusterer.Cache
	if diskCache, err := cache.NewDisk("./cluster-cache", time.Hour); err == nil {
		topicCache = diskCache
	}

	articleRepo := sqlite.NewArticleRepo(database)
	topicHistoryRepo := sqlite.NewTopicHistoryRepo(database)

	periodStart := time.Now().Add(-*since)
	articles, err := articleRepo.List(ctx, repository.ArticleFilters{
		From:  &periodStart,
		Limit: *limit,
		Sort:  repository.SortNewestFirst,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cluster: listing articles: %v\n", err)
		os.Exit(1)
	}

	inputs := make([]clusterer.ArticleInput, len(articles))
	for i, a := range articles {
		summary := ""
		if a.SummaryShort != nil {
			summary = *a.SummaryShort
		}
		inputs[i] = clusterer.ArticleInput{ID: a.ID, Title: a.Title, SummaryShort: summary, Content: a.Content}
	}

	c := clusterer.New(provider, topicCache)
	result, err := c.Cluster(ctx, inputs)

	out := output{}
	if err == nil {
		out.Cached = result.Cached
		out.Topics = make([]topicOutput, len(result.Topics))
		periodEnd := time.Now()
		for i, topic := range result.Topics {
			out.Topics[i] = topicOutput{Label: topic.Label, ArticleIDs: topic.ArticleIDs}
			entry := &entity.TopicHistoryEntry{
				Label:        topic.Label,
				LabelHash:    labelHash(topic.Label),
				ArticleCount: len(topic.ArticleIDs),
				ArticleIDs:   topic.ArticleIDs,
				ClusteredAt:  periodEnd,
				PeriodStart:  periodStart,
				PeriodEnd:    periodEnd,
			}
			if rerr := topicHistoryRepo.Record(ctx, entry); rerr != nil {
				fmt.Fprintf(os.Stderr, "cluster: recording topic %q: %v\n", topic.Label, rerr)
			}
		}
	} else {
		out.Error = err.Error()
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "cluster failed: %v\n", err)
		os.Exit(1)
	}
	for _, topic := range out.Topics {
		fmt.Printf("%s (%d articles): %v\n", topic.Label, len(topic.ArticleIDs), topic.ArticleIDs)
	}
}

// labelHash matches entity.ComputeContentHash's 16-hex-char SHA-256 prefix
// convention, letting the store dedupe recurring topic labels cheaply.
func labelHash(label string) string {
	sum := sha256.Sum256([]byte(label))
	return hex.EncodeToString(sum[:])[:16]
}
