package extractor

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"catchup-feed/internal/usecase/fetch"
)

// GenericExtractor runs Mozilla's Readability algorithm against any page
// that no site-specific extractor claimed. It is the second-to-last stage
// in the dispatch chain, ahead of only the heuristic fallback.
type GenericExtractor struct{}

func (GenericExtractor) Extract(rawURL string, html []byte) (fetch.ExtractedContent, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		parsedURL = nil
	}

	article, err := readability.FromReader(io.NopCloser(bytes.NewReader(html)), parsedURL)
	if err != nil {
		return fetch.ExtractedContent{}, fmt.Errorf("readability: %w", err)
	}

	content := article.Content
	if content == "" {
		content = "<p>" + article.TextContent + "</p>"
	}

	text := article.TextContent
	if text == "" {
		text = textOf(content)
	}

	var hasCode bool
	var codeLangs []string
	if doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(content)); docErr == nil {
		hasCode = hasCodeBlocks(doc.Selection)
		codeLangs = extractCodeLanguages(doc.Selection)
	}

	var images []string
	if article.Image != "" {
		images = append(images, article.Image)
	}

	return fetch.ExtractedContent{
		Title:           article.Title,
		Content:         content,
		Author:          article.Byline,
		PublishedAt:     article.PublishedTime,
		WordCount:       wordCount(text),
		ReadingTimeMins: estimateReadingTime(text),
		FeaturedImage:   article.Image,
		Images:          images,
		HasCodeBlocks:   hasCode,
		CodeLanguages:   codeLangs,
		SiteName:        article.SiteName,
		ExtractorID:     "readability",
	}, nil
}
