package library

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// htmlSanitizer strips scripts/styles/event handlers from an uploaded HTML
// file before it is stored, the same discipline spec §4.4 asks of the
// heuristic fallback fetch path — an upload is untrusted input just like a
// fetched page.
var htmlSanitizer = bluemonday.UGCPolicy()

// extractHTML sanitizes the document and returns its <title> and the
// sanitized body HTML as content.
func extractHTML(data []byte) (title, content string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	body, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(body) == "" {
		body, _ = doc.Html()
	}

	return title, htmlSanitizer.Sanitize(body), nil
}
