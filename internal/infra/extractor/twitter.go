package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/usecase/fetch"
)

var twitterDomains = []string{"twitter.com", "x.com"}

// TwitterExtractor handles twitter.com and x.com post pages. Twitter renders
// almost everything client-side, so this works entirely off Open Graph meta
// tags and gets only a title, the tweet text, an og:image that is not a
// profile picture, and an author handle from the URL path.
type TwitterExtractor struct{}

func (TwitterExtractor) CanHandle(host string) bool { return hostMatches(host, twitterDomains) }

func (TwitterExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("parse html: %w", err)
	}

	title, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	content := ""
	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok && desc != "" {
		content = "<p>" + desc + "</p>"
	}

	author := ""
	if parts := strings.Split(strings.Trim(pathOf(rawURL), "/"), "/"); len(parts) > 0 && parts[0] != "" {
		author = parts[0]
	}

	featuredImage, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if ok && strings.Contains(featuredImage, "profile_images") {
		featuredImage = ""
	}

	return fetch.ExtractedContent{
		Title:         title,
		Content:       content,
		Author:        author,
		FeaturedImage: featuredImage,
		SiteName:      "X (Twitter)",
		ExtractorID:   "twitter",
	}, nil
}

func pathOf(rawURL string) string {
	path := rawURL
	if idx := strings.Index(path, "://"); idx != -1 {
		path = path[idx+3:]
	}
	if idx := strings.IndexByte(path, '/'); idx != -1 {
		path = path[idx:]
	} else {
		return ""
	}
	if idx := strings.IndexAny(path, "?#"); idx != -1 {
		path = path[:idx]
	}
	return path
}
