package extractor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/usecase/fetch"
)

var bloombergDomains = []string{"bloomberg.com"}

var bloombergTitleSuffix = regexp.MustCompile(`(?i)\s*-\s*Bloomberg.*$`)
var bloombergByPrefix = regexp.MustCompile(`(?i)^By\s+`)

var bloombergPaywallMarkers = []string{
	"subscribe to continue", "subscription required", "paywall",
	"sign in to read", "subscriber-only",
}

var bloombergContentSelectors = []string{
	`[data-component="body-content"]`, `[data-component="article-body"]`,
	`[class*="body-content"]`, `[class*="article-body"]`, `[class*="story-body"]`,
	`[class*="ArticleBody"]`, `.body-content`, `article .content`, `.article-body__content`,
}

var bloombergNoiseSelectors = []string{
	`[class*="newsletter"]`, `[class*="subscribe"]`, `[class*="related"]`,
	`[class*="recommended"]`, `[class*="ad-"]`, `[class*="promo"]`, `[class*="Promo"]`,
	`[class*="recirc"]`, `[class*="Recirc"]`, `[class*="terminal"]`, `[class*="Terminal"]`,
	"aside", "nav", "footer", "script", "style",
	`[data-component="related"]`, `[data-component="newsletter"]`,
}

var bloombergNoisePhrases = []string{
	"subscribe", "sign up", "newsletter", "cookie", "privacy",
	"more from bloomberg", "top reads", "related", "before it's here",
	"bloomberg terminal", "learn more", "gift this article",
	"add us on", "contact us", "send a tip", "site feedback",
	"take our survey", "provide news feedback", "report an error",
	"by bloomberg", "updated", "read more", "see also",
}

// BloombergExtractor handles bloomberg.com articles. It prefers the
// JSON-LD articleBody when present, since Bloomberg's HTML body selectors
// shift frequently and JSON-LD is comparatively stable.
type BloombergExtractor struct{}

func (BloombergExtractor) CanHandle(host string) bool { return hostMatches(host, bloombergDomains) }

func (BloombergExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).First().Attr("content")
	}
	if title == "" {
		title = bloombergTitleSuffix.ReplaceAllString(strings.TrimSpace(doc.Find("title").First().Text()), "")
	}

	author := ""
	if el := doc.Find(`[class*="author"], .byline, [data-component="byline"]`).First(); el.Length() > 0 {
		author = bloombergByPrefix.ReplaceAllString(strings.TrimSpace(el.Text()), "")
	}
	if author == "" {
		author, _ = doc.Find(`meta[name="author"]`).First().Attr("content")
	}

	var publishedAt *time.Time
	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		publishedAt = parseGitHubTime(datetime)
	} else if datetime, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
		publishedAt = parseGitHubTime(datetime)
	}

	content := bloombergFromJSONLD(doc)
	if len(content) < fetch.MinContentLength {
		if htmlContent := bloombergFromHTML(doc); htmlContent != "" {
			content = htmlContent
		}
	}

	lowerHTML := strings.ToLower(string(html))
	paywalled := false
	for _, marker := range bloombergPaywallMarkers {
		if strings.Contains(lowerHTML, marker) {
			paywalled = true
			break
		}
	}

	featuredImage, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")

	var categories []string
	if section, ok := doc.Find(`meta[property="article:section"]`).First().Attr("content"); ok && section != "" {
		categories = append(categories, section)
	}

	text := textOf(content)

	return fetch.ExtractedContent{
		Title:           title,
		Content:         content,
		Author:          author,
		PublishedAt:     publishedAt,
		WordCount:       wordCount(text),
		ReadingTimeMins: estimateReadingTime(text),
		Categories:      categories,
		FeaturedImage:   featuredImage,
		Paywalled:       paywalled,
		SiteName:        "Bloomberg",
		ExtractorID:     "bloomberg",
	}, nil
}

type jsonLDArticle struct {
	Type        string          `json:"@type"`
	ArticleBody string          `json:"articleBody"`
	Graph       []jsonLDArticle `json:"@graph"`
}

func bloombergFromJSONLD(doc *goquery.Document) string {
	var content string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var article jsonLDArticle
		if err := json.Unmarshal([]byte(s.Text()), &article); err != nil {
			var list []jsonLDArticle
			if err := json.Unmarshal([]byte(s.Text()), &list); err != nil {
				return true
			}
			for _, item := range list {
				if c := articleBodyOf(item); c != "" {
					content = c
					return false
				}
			}
			return true
		}
		if c := articleBodyOf(article); c != "" {
			content = c
			return false
		}
		return true
	})
	return content
}

func articleBodyOf(a jsonLDArticle) string {
	if a.ArticleBody != "" {
		return paragraphsToHTML(a.ArticleBody)
	}
	for _, item := range a.Graph {
		if item.Type == "NewsArticle" || item.Type == "Article" || item.Type == "WebPage" {
			if item.ArticleBody != "" {
				return paragraphsToHTML(item.ArticleBody)
			}
		}
	}
	return ""
}

func paragraphsToHTML(articleBody string) string {
	var b strings.Builder
	for _, p := range strings.Split(articleBody, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(p)
		b.WriteString("</p>\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func bloombergFromHTML(doc *goquery.Document) string {
	for _, selector := range bloombergContentSelectors {
		body := doc.Find(selector).First()
		if body.Length() == 0 {
			continue
		}
		if body.Find("p").Length() < 2 {
			continue
		}
		return stripAndOuterHTML(body, bloombergNoiseSelectors...)
	}

	if article := doc.Find("article").First(); article.Length() > 0 {
		var paragraphs []string
		article.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); len(text) > 100 {
				if html, err := goquery.OuterHtml(p); err == nil {
					paragraphs = append(paragraphs, html)
				}
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n")
		}
	}

	return bloombergExtractParagraphs(doc)
}

func bloombergExtractParagraphs(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) < 80 {
			return
		}
		lower := strings.ToLower(text)
		for _, phrase := range bloombergNoisePhrases {
			if strings.Contains(lower, phrase) {
				return
			}
		}
		parentClass := strings.ToLower(p.Parent().AttrOr("class", ""))
		for _, bad := range []string{"related", "sidebar", "nav", "footer", "promo", "ad-"} {
			if strings.Contains(parentClass, bad) {
				return
			}
		}
		if html, err := goquery.OuterHtml(p); err == nil {
			paragraphs = append(paragraphs, html)
		}
	})
	return strings.Join(paragraphs, "\n")
}
