package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/usecase/fetch"
)

var heuristicNoiseSelectors = []string{
	"script", "style", "nav", "header", "footer", "aside", "form",
	"[class*='ad-']", "[class*='advert']", "[id*='ad-']", "[class*='social']",
	"[class*='share']", "[class*='comment']", "[id*='comment']", "[class*='sidebar']",
	"[class*='related']", "[class*='newsletter']", "[class*='cookie']",
}

var heuristicContentSelectors = []string{
	"article",
	"[class*='article']", "[class*='post-content']", "[class*='entry-content']", "[class*='story']",
	"[role='main']", "main",
	"[class*='content']", "[class*='body']",
	"body",
}

var heuristicAuthorSelectors = []string{"[class*='author']", "[class*='byline']"}

const heuristicTextFallbackID = "heuristic"

// HeuristicExtractor is the last-resort stage in the dispatch chain: it
// strips obvious chrome off a page and keeps whatever block-level content
// elements remain. It never errors; an empty page just yields an empty
// result and lets the caller decide whether that's acceptable.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("parse html: %w", err)
	}

	clone := doc.Selection.Clone()
	for _, selector := range heuristicNoiseSelectors {
		clone.Find(selector).Remove()
	}

	var container *goquery.Selection
	for _, selector := range heuristicContentSelectors {
		if sel := clone.Find(selector).First(); sel.Length() > 0 {
			container = sel
			break
		}
	}
	if container == nil {
		container = clone
	}

	var blocks []string
	container.Find("p, h1, h2, h3, h4, h5, h6, ul, ol, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			if html, err := goquery.OuterHtml(s); err == nil {
				blocks = append(blocks, html)
			}
		}
	})
	content := strings.Join(blocks, "\n")

	title := stripTitleSuffix(strings.TrimSpace(doc.Find("title").First().Text()))
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).First().Attr("content")
	}

	author := ""
	if meta, ok := doc.Find(`meta[name="author"]`).First().Attr("content"); ok {
		author = meta
	}
	if author == "" {
		for _, selector := range heuristicAuthorSelectors {
			if sel := doc.Find(selector).First(); sel.Length() > 0 {
				author = strings.TrimSpace(sel.Text())
				break
			}
		}
	}

	var publishedAt *time.Time
	if datetime, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
		publishedAt = parseGitHubTime(datetime)
	} else if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		publishedAt = parseGitHubTime(datetime)
	}

	featuredImage, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")

	text := textOf(content)

	return fetch.ExtractedContent{
		Title:           title,
		Content:         content,
		Author:          author,
		PublishedAt:     publishedAt,
		WordCount:       wordCount(text),
		ReadingTimeMins: estimateReadingTime(text),
		FeaturedImage:   featuredImage,
		HasCodeBlocks:   hasCodeBlocks(container),
		CodeLanguages:   extractCodeLanguages(container),
		ExtractorID:     heuristicTextFallbackID,
	}, nil
}
