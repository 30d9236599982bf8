// Package jsrender implements fetcher.JSRenderer by driving a headless
// Chrome instance through chromedp. It is the escalation tier EnhancedFetcher
// reaches for when a direct HTTP fetch returns a shell page that a
// client-side framework fills in after load.
package jsrender
