package relatedlinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
)

const requestTimeout = 15 * time.Second

// client talks to the external neural-search API's search endpoint.
type client struct {
	cfg            Config
	http           *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func newClient(cfg Config) *client {
	return &client{
		cfg:            cfg,
		http:           &http.Client{Timeout: requestTimeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		retryConfig:    retry.WebScraperConfig(),
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
	Type       string `json:"type"`
	Contents   struct {
		Text     bool `json:"text"`
		Summary  bool `json:"summary"`
		Highlights bool `json:"highlights"`
	} `json:"contents"`
}

type searchResponseItem struct {
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Summary       string  `json:"summary"`
	Text          string  `json:"text"`
	PublishedDate string  `json:"publishedDate"`
	Score         float64 `json:"score"`
}

type searchResponse struct {
	Results []searchResponseItem `json:"results"`
}

// search requests numResults candidates for query, retried and
// circuit-broken like every other outbound dependency.
func (c *client) search(ctx context.Context, query string, numResults int) ([]searchResponseItem, error) {
	var items []searchResponseItem
	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		_, execErr := c.circuitBreaker.Execute(func() (interface{}, error) {
			got, err := c.doSearch(ctx, query, numResults)
			if err != nil {
				return nil, err
			}
			items = got
			return nil, nil
		})
		return execErr
	})
	return items, err
}

func (c *client) doSearch(ctx context.Context, query string, numResults int) ([]searchResponseItem, error) {
	reqBody := searchRequest{Query: query, NumResults: numResults, Type: "neural"}
	reqBody.Contents.Summary = true

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("relatedlinks: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("relatedlinks: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relatedlinks: search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("relatedlinks: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relatedlinks: search returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("relatedlinks: decode response: %w", err)
	}
	return parsed.Results, nil
}
