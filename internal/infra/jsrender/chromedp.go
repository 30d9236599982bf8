package jsrender

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// userAgent matches the one the direct fetcher sends so a site can't
// distinguish the JS-render tier from the first attempt by header alone.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// defaultSettleDelay is how long Render waits after navigation completes
// before capturing the DOM, giving client-side frameworks time to hydrate.
const defaultSettleDelay = 1500 * time.Millisecond

// Renderer implements fetcher.JSRenderer over a shared headless Chrome exec
// allocator. Each Render call starts its own browser from that allocator so
// concurrent renders don't share cookies or navigation state.
type Renderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	settleDelay time.Duration
}

// NewRenderer builds a headless Chrome exec allocator; no browser starts
// until the first Render. Call Close when done.
func NewRenderer() *Renderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Renderer{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		settleDelay: defaultSettleDelay,
	}
}

// Close cancels the allocator, shutting down any Chrome process it started.
// Safe to call once.
func (r *Renderer) Close() {
	r.allocCancel()
}

// Render navigates to url in a fresh browser, waits for client-side rendering to
// settle, and returns the resulting document along with the URL the page
// ended up at after any client-side redirects.
func (r *Renderer) Render(ctx context.Context, url string) (string, string, error) {
	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx)
	defer tabCancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}

	var html, finalURL string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(r.settleDelay),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", "", fmt.Errorf("render %s: %w", url, err)
	}
	if finalURL == "" {
		finalURL = url
	}
	return html, finalURL, nil
}
