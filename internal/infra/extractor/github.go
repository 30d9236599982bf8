package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/usecase/fetch"
)

var githubDomains = []string{"github.com"}

var githubTitleSuffix = regexp.MustCompile(`(?i)\s*·\s*GitHub.*$`)

// GitHubExtractor handles github.com releases, READMEs, issues, pull
// requests, and discussions, classifying the page by its URL path.
type GitHubExtractor struct{}

func (GitHubExtractor) CanHandle(host string) bool { return hostMatches(host, githubDomains) }

func (GitHubExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("parse html: %w", err)
	}

	pathParts := githubPathParts(rawURL)
	contentType := "repository"
	if len(pathParts) >= 3 {
		switch pathParts[2] {
		case "releases":
			contentType = "release"
		case "discussions":
			contentType = "discussion"
		case "issues":
			contentType = "issue"
		case "pull":
			contentType = "pull_request"
		case "blob":
			contentType = "file"
		}
	}

	title := ""
	if contentType == "release" {
		title = strings.TrimSpace(doc.Find(".release-header .f1").First().Text())
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = githubTitleSuffix.ReplaceAllString(strings.TrimSpace(doc.Find("title").First().Text()), "")
	}

	author := ""
	if link := doc.Find(".author, .user-mention").First(); link.Length() > 0 {
		author = strings.TrimPrefix(strings.TrimSpace(link.Text()), "@")
	}

	var publishedAt *time.Time
	if datetime, ok := doc.Find("relative-time[datetime]").First().Attr("datetime"); ok {
		publishedAt = parseGitHubTime(datetime)
	} else if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		publishedAt = parseGitHubTime(datetime)
	}

	var content string
	switch contentType {
	case "release":
		content = stripAndOuterHTML(doc.Find(".markdown-body").First())
	case "issue", "discussion", "pull_request":
		body := doc.Find(".comment-body, .markdown-body").First()
		content = stripAndOuterHTML(body)
	default:
		content = stripAndOuterHTML(doc.Find("#readme .markdown-body").First())
	}

	var siteName string
	if len(pathParts) >= 2 {
		siteName = pathParts[0] + "/" + pathParts[1]
	}

	var tags []string
	if contentType == "release" {
		if tag := strings.TrimSpace(doc.Find(".css-truncate-target").First().Text()); tag != "" {
			tags = append(tags, tag)
		}
	}

	text := textOf(content)

	return fetch.ExtractedContent{
		Title:           title,
		Content:         content,
		Author:          author,
		PublishedAt:     publishedAt,
		WordCount:       wordCount(text),
		ReadingTimeMins: estimateReadingTime(text),
		HasCodeBlocks:   hasCodeBlocks(doc.Selection),
		CodeLanguages:   extractCodeLanguages(doc.Selection),
		SiteName:        siteName,
		Tags:            tags,
		ExtractorID:     "github_" + contentType,
	}, nil
}

func githubPathParts(rawURL string) []string {
	path := rawURL
	if idx := strings.Index(path, "://"); idx != -1 {
		path = path[idx+3:]
	}
	if idx := strings.IndexByte(path, '/'); idx != -1 {
		path = path[idx+1:]
	} else {
		path = ""
	}
	if idx := strings.IndexAny(path, "?#"); idx != -1 {
		path = path[:idx]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func parseGitHubTime(datetime string) *time.Time {
	t, err := time.Parse(time.RFC3339, datetime)
	if err != nil {
		return nil
	}
	return &t
}
