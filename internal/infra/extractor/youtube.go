package extractor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/usecase/fetch"
)

var youtubeDomains = []string{"youtube.com", "youtu.be"}

var youtubeTitleSuffix = regexp.MustCompile(`(?i)\s*-\s*YouTube$`)

// YouTubeExtractor handles youtube.com and youtu.be video pages. It cannot
// see the transcript or comments (those are loaded by JS), so it works
// entirely off the page's meta tags.
type YouTubeExtractor struct{}

func (YouTubeExtractor) CanHandle(host string) bool { return hostMatches(host, youtubeDomains) }

func (YouTubeExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("parse html: %w", err)
	}

	videoID := youtubeVideoID(rawURL)

	title, _ := doc.Find(`meta[name="title"]`).First().Attr("content")
	if title == "" {
		title = youtubeTitleSuffix.ReplaceAllString(strings.TrimSpace(doc.Find("title").First().Text()), "")
	}

	author, _ := doc.Find(`link[itemprop="name"]`).First().Attr("content")
	if author == "" {
		author, _ = doc.Find(`meta[itemprop="author"]`).First().Attr("content")
	}

	var publishedAt *time.Time
	if datePublished, ok := doc.Find(`meta[itemprop="datePublished"]`).First().Attr("content"); ok {
		publishedAt = parseGitHubTime(datePublished)
	}

	content := ""
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok && desc != "" {
		content = "<p>" + desc + "</p>"
	}

	featuredImage, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if featuredImage == "" && videoID != "" {
		featuredImage = "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg"
	}

	var videoEmbedURL string
	if videoID != "" {
		videoEmbedURL = "https://www.youtube.com/embed/" + videoID
	}

	var categories []string
	if keywords, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok && keywords != "" {
		parts := strings.Split(keywords, ",")
		for i, k := range parts {
			if i >= 5 {
				break
			}
			if k = strings.TrimSpace(k); k != "" {
				categories = append(categories, k)
			}
		}
	}

	return fetch.ExtractedContent{
		Title:         title,
		Content:       content,
		Author:        author,
		PublishedAt:   publishedAt,
		Categories:    categories,
		FeaturedImage: featuredImage,
		HasVideo:      true,
		VideoEmbedURL: videoEmbedURL,
		SiteName:      "YouTube",
		ExtractorID:   "youtube",
	}, nil
}

func youtubeVideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)

	if strings.Contains(host, "youtu.be") {
		return strings.Trim(u.Path, "/")
	}
	if strings.Contains(host, "youtube.com") {
		if u.Path == "/watch" {
			return u.Query().Get("v")
		}
		if idx := strings.Index(u.Path, "/shorts/"); idx != -1 {
			rest := u.Path[idx+len("/shorts/"):]
			if slash := strings.IndexByte(rest, '/'); slash != -1 {
				rest = rest[:slash]
			}
			return rest
		}
	}
	return ""
}
