package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/usecase/fetch"
)

var wikipediaDomains = []string{"wikipedia.org", "wikimedia.org"}

var wikipediaTitleSuffix = regexp.MustCompile(`(?i)\s*-\s*Wikipedia.*$`)

var wikipediaNoiseSelectors = []string{
	".reflist", ".navbox", ".sistersitebox", ".mw-editsection",
	".mw-empty-elt", ".noprint", "#coordinates", ".ambox", ".hatnote",
}

// WikipediaExtractor handles wikipedia.org and wikimedia.org articles.
type WikipediaExtractor struct{}

func (WikipediaExtractor) CanHandle(host string) bool { return hostMatches(host, wikipediaDomains) }

func (WikipediaExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
	if title == "" {
		title = wikipediaTitleSuffix.ReplaceAllString(strings.TrimSpace(doc.Find("title").First().Text()), "")
	}

	content := ""
	if contentDiv := doc.Find("#mw-content-text").First(); contentDiv.Length() > 0 {
		content = stripAndOuterHTML(contentDiv, wikipediaNoiseSelectors...)
	}

	var categories []string
	doc.Find("#mw-normal-catlinks a").Each(func(i int, s *goquery.Selection) {
		if i == 0 || i > 5 {
			return // first link is the "Categories" label itself, cap at 5
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			categories = append(categories, text)
		}
	})

	featuredImage, _ := doc.Find(".infobox img").First().Attr("src")
	if strings.HasPrefix(featuredImage, "//") {
		featuredImage = "https:" + featuredImage
	}

	text := textOf(content)

	return fetch.ExtractedContent{
		Title:           title,
		Content:         content,
		Categories:      categories,
		WordCount:       wordCount(text),
		ReadingTimeMins: estimateReadingTime(text),
		FeaturedImage:   featuredImage,
		SiteName:        "Wikipedia",
		ExtractorID:     "wikipedia",
	}, nil
}
