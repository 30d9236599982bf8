package library

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// extractMarkdown renders Markdown to HTML with goldmark, matching how the
// extractor registry projects HTML for downstream storage/FTS indexing.
// The title is taken from the first top-level heading line, if any.
func extractMarkdown(data []byte) (title, content string, err error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(data, &buf); err != nil {
		return "", "", fmt.Errorf("render markdown: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			break
		}
	}

	return title, buf.String(), nil
}

// extractPlainText passes TXT uploads through unchanged, deriving no title.
func extractPlainText(data []byte) (title, content string, err error) {
	return "", string(data), nil
}
