package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/usecase/fetch"
)

var substackDomains = []string{"substack.com"}

// SubstackExtractor handles Substack-hosted newsletters.
type SubstackExtractor struct{}

func (SubstackExtractor) CanHandle(host string) bool { return hostMatches(host, substackDomains) }

func (SubstackExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1.post-title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	siteName := strings.TrimSpace(doc.Find(".publication-name").First().Text())
	author := strings.TrimSpace(doc.Find(".author-name").First().Text())
	if author == "" {
		author, _ = doc.Find(`meta[name="author"]`).First().Attr("content")
	}

	body := doc.Find(".body, .post-content, article").First()
	content := ""
	if body.Length() > 0 {
		content = stripAndOuterHTML(body, ".subscribe-widget", ".post-ufi", ".share-dialog",
			".subscription-widget", ".footer")
	}

	lowerHTML := strings.ToLower(string(html))
	paywalled := strings.Contains(lowerHTML, "paywall") || strings.Contains(lowerHTML, "subscriber-only")

	featuredImage, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")

	var images []string
	doc.Find(".body img, .post-content img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if ok && src != "" && !strings.HasPrefix(src, "data:") {
			images = append(images, src)
		}
	})

	text := textOf(content)
	if siteName == "" {
		siteName = "Substack"
	}

	return fetch.ExtractedContent{
		Title:           title,
		Content:         content,
		Author:          author,
		WordCount:       wordCount(text),
		ReadingTimeMins: estimateReadingTime(text),
		FeaturedImage:   featuredImage,
		Images:          images,
		Paywalled:       paywalled,
		HasCodeBlocks:   hasCodeBlocks(doc.Selection),
		CodeLanguages:   extractCodeLanguages(doc.Selection),
		SiteName:        siteName,
		ExtractorID:     "substack",
	}, nil
}
