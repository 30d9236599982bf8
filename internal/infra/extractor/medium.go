package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/usecase/fetch"
)

var mediumDomains = []string{
	"medium.com", "towardsdatascience.com", "betterprogramming.pub",
	"levelup.gitconnected.com", "javascript.plainenglish.io",
}

var mediumPaywallMarkers = []string{
	"memberonlycontent", "meteredcontent", "you have 2 free member-only", "member-only story",
}

var mediumTitleSuffix = regexp.MustCompile(`(?i)\s*[|\-–—]\s*Medium.*$`)
var mediumReadingTimePattern = regexp.MustCompile(`(\d+)\s*min\s*read`)
var mediumTagPattern = regexp.MustCompile(`/tag/([^/?#]+)`)

// MediumExtractor handles Medium.com and the handful of Medium-hosted
// publications that share its DOM layout.
type MediumExtractor struct{}

func (MediumExtractor) CanHandle(host string) bool { return hostMatches(host, mediumDomains) }

func (MediumExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = mediumTitleSuffix.ReplaceAllString(strings.TrimSpace(doc.Find("title").First().Text()), "")
	}

	author := strings.TrimSpace(doc.Find(`a[data-testid="authorName"]`).First().Text())
	if author == "" {
		author, _ = doc.Find(`meta[name="author"]`).First().Attr("content")
	}

	lowerHTML := strings.ToLower(string(html))
	paywalled := false
	for _, marker := range mediumPaywallMarkers {
		if strings.Contains(lowerHTML, marker) {
			paywalled = true
			break
		}
	}

	readingTime := 0
	if m := mediumReadingTimePattern.FindStringSubmatch(strings.ToLower(doc.Find("body").Text())); m != nil {
		readingTime = atoiOrZero(m[1])
	}

	article := doc.Find("article").First()
	if article.Length() == 0 {
		article = doc.Find("main").First()
	}
	content := ""
	if article.Length() > 0 {
		content = stripAndOuterHTML(article, `[data-testid="headerSocialShare"]`, `[data-testid="responses"]`,
			".pw-multi-vote-count", ".js-postActionsFooter")
	}

	featuredImage, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")

	var categories []string
	if m := mediumTagPattern.FindStringSubmatch(rawURL); m != nil {
		categories = append(categories, titleCase(strings.ReplaceAll(m[1], "-", " ")))
	}

	text := textOf(content)
	if readingTime == 0 {
		readingTime = estimateReadingTime(text)
	}

	return fetch.ExtractedContent{
		Title:           title,
		Content:         content,
		Author:          author,
		WordCount:       wordCount(text),
		ReadingTimeMins: readingTime,
		FeaturedImage:   featuredImage,
		Categories:      categories,
		Paywalled:       paywalled,
		HasCodeBlocks:   hasCodeBlocks(doc.Selection),
		CodeLanguages:   extractCodeLanguages(doc.Selection),
		SiteName:        "Medium",
		ExtractorID:     "medium",
	}, nil
}

func atoiOrZero(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
