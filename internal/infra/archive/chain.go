package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"catchup-feed/internal/resilience/circuitbreaker"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Config controls the archive chain's per-request timeout and snapshot
// freshness requirement.
type Config struct {
	Timeout time.Duration
	MaxAge  time.Duration
}

// DefaultConfig returns a 30s per-request timeout and a 30-day snapshot
// freshness window.
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second, MaxAge: 30 * 24 * time.Hour}
}

// service is one archive backend in the chain.
type service struct {
	name  string
	fetch func(c *Chain, ctx context.Context, rawURL string) (html string, err error)
}

// Chain implements fetcher.ArchiveFetcher by trying archive.today, the
// Wayback Machine, and Google Cache in that order, returning the first
// snapshot that is both present and within Config.MaxAge.
type Chain struct {
	client   *http.Client
	config   Config
	breakers map[string]*circuitbreaker.CircuitBreaker
	services []service
}

// NewChain builds the default three-service chain.
func NewChain(config Config) *Chain {
	c := &Chain{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		breakers: map[string]*circuitbreaker.CircuitBreaker{
			"archive.today": circuitbreaker.New(circuitbreaker.WebScraperConfig()),
			"wayback":       circuitbreaker.New(circuitbreaker.WebScraperConfig()),
			"google_cache":  circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		},
	}
	c.services = []service{
		{"archive.today", (*Chain).fetchArchiveToday},
		{"wayback", (*Chain).fetchWayback},
		{"google_cache", (*Chain).fetchGoogleCache},
	}
	return c
}

// Fetch tries each archive service in order, returning the first one that
// yields usable HTML. source identifies which service served the result.
func (c *Chain) Fetch(ctx context.Context, rawURL string) (string, string, error) {
	var lastErr error
	for _, svc := range c.services {
		breaker := c.breakers[svc.name]
		result, err := breaker.Execute(func() (interface{}, error) {
			return svc.fetch(c, ctx, rawURL)
		})
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", svc.name, err)
			continue
		}
		html := result.(string)
		if html == "" {
			continue
		}
		return html, svc.name, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no archived version found")
	}
	return "", "", lastErr
}

func (c *Chain) get(ctx context.Context, requestURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	return c.client.Do(req)
}

func readBody(resp *http.Response) (string, error) {
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}

// fetchArchiveToday resolves https://archive.today/newest/<url>, which
// redirects straight to the most recent snapshot when one exists.
func (c *Chain) fetchArchiveToday(ctx context.Context, rawURL string) (string, error) {
	searchURL := "https://archive.today/newest/" + rawURL
	resp, err := c.get(ctx, searchURL)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return "", fmt.Errorf("not found (status %d)", resp.StatusCode)
	}
	html, err := readBody(resp)
	if err != nil {
		return "", err
	}
	finalURL := resp.Request.URL.String()
	if snapshotDate := parseArchiveTodayDate(finalURL); snapshotDate != nil && isTooOld(*snapshotDate, c.config.MaxAge) {
		return "", fmt.Errorf("cached version too old")
	}
	return html, nil
}

// cdxRow is one row of the Wayback CDX API's JSON array response:
// [urlkey, timestamp, original, mimetype, statuscode, digest, length].
type cdxRow = []string

// fetchWayback queries the CDX API for the most recent snapshot, then
// fetches the raw (un-toolbar-wrapped) capture via the id_ suffix.
func (c *Chain) fetchWayback(ctx context.Context, rawURL string) (string, error) {
	cdxURL := fmt.Sprintf("https://web.archive.org/cdx/search/cdx?url=%s&output=json&limit=1&sort=reverse", url.QueryEscape(rawURL))
	resp, err := c.get(ctx, cdxURL)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return "", fmt.Errorf("cdx API error (status %d)", resp.StatusCode)
	}
	var rows []cdxRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		_ = resp.Body.Close()
		return "", fmt.Errorf("decode cdx response: %w", err)
	}
	_ = resp.Body.Close()
	if len(rows) < 2 {
		return "", fmt.Errorf("no snapshots found")
	}

	snapshot := rows[1]
	if len(snapshot) < 3 {
		return "", fmt.Errorf("malformed cdx row")
	}
	timestamp, originalURL := snapshot[1], snapshot[2]

	if snapshotDate, ok := parseWaybackTimestamp(timestamp); ok && isTooOld(snapshotDate, c.config.MaxAge) {
		return "", fmt.Errorf("cached version too old")
	}

	archiveURL := fmt.Sprintf("https://web.archive.org/web/%sid_/%s", timestamp, originalURL)
	pageResp, err := c.get(ctx, archiveURL)
	if err != nil {
		return "", err
	}
	if pageResp.StatusCode != http.StatusOK {
		_ = pageResp.Body.Close()
		return "", fmt.Errorf("failed to fetch snapshot (status %d)", pageResp.StatusCode)
	}
	html, err := readBody(pageResp)
	if err != nil {
		return "", err
	}
	return cleanWaybackHTML(html), nil
}

// fetchGoogleCache fetches Google's cached copy of the page. Google Cache
// has been unreliable in practice (frequently returning nothing), so it
// sits last in the chain.
func (c *Chain) fetchGoogleCache(ctx context.Context, rawURL string) (string, error) {
	cacheURL := "https://webcache.googleusercontent.com/search?q=cache:" + url.QueryEscape(rawURL)
	resp, err := c.get(ctx, cacheURL)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return "", fmt.Errorf("not in cache (status %d)", resp.StatusCode)
	}
	html, err := readBody(resp)
	if err != nil {
		return "", err
	}
	return cleanGoogleCacheHTML(html), nil
}

func isTooOld(snapshotDate time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return time.Since(snapshotDate) > maxAge
}

var archiveTodayDatePattern = regexp.MustCompile(`archive\.\w+/(\d{4})\.(\d{2})\.(\d{2})`)

func parseArchiveTodayDate(archiveURL string) *time.Time {
	m := archiveTodayDatePattern.FindStringSubmatch(archiveURL)
	if m == nil {
		return nil
	}
	t, err := time.Parse("2006.01.02", fmt.Sprintf("%s.%s.%s", m[1], m[2], m[3]))
	if err != nil {
		return nil
	}
	return &t
}

func parseWaybackTimestamp(timestamp string) (time.Time, bool) {
	if len(timestamp) < 14 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102150405", timestamp[:14])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var (
	waybackToolbarPattern = regexp.MustCompile(`(?s)<!-- BEGIN WAYBACK TOOLBAR INSERT -->.*?<!-- END WAYBACK TOOLBAR INSERT -->`)
	waybackScriptPattern  = regexp.MustCompile(`(?is)<script[^>]*src="[^"]*web\.archive\.org[^"]*"[^>]*>.*?</script>`)
)

func cleanWaybackHTML(html string) string {
	html = waybackToolbarPattern.ReplaceAllString(html, "")
	html = waybackScriptPattern.ReplaceAllString(html, "")
	return html
}

var googleCacheHeaderPattern = regexp.MustCompile(`(?is)<div[^>]*style="[^"]*background:#[^"]*"[^>]*>.*?</div>\s*<hr[^>]*>`)

func cleanGoogleCacheHTML(html string) string {
	return googleCacheHeaderPattern.ReplaceAllString(html, "")
}
