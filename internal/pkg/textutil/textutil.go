// Package textutil provides word-count and reading-time estimates shared by
// the extractor and library-upload pipelines, plus the rune-counting
// primitive internal/utils/text already provides for CJK-aware text.
package textutil

import (
	"regexp"
	"strings"

	"catchup-feed/internal/utils/text"
)

// averageWordsPerMinute is the reading speed used to estimate
// ReadingTimeMinutes, matching common reader-mode estimates.
const averageWordsPerMinute = 200

var wordSplitter = regexp.MustCompile(`\s+`)

// WordCount estimates the word count of content. For predominantly CJK text
// (where whitespace does not separate words), it falls back to a rune count
// divided by an average CJK characters-per-word ratio.
func WordCount(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}

	words := wordSplitter.Split(trimmed, -1)
	wordCount := len(words)

	runeCount := text.CountRunes(trimmed)
	if runeCount > 0 && wordCount*4 < runeCount {
		// Whitespace-based splitting found far fewer "words" than runes
		// exist, a sign of CJK content; approximate 2 characters per word.
		return runeCount / 2
	}

	return wordCount
}

// ReadingTimeMinutes estimates reading time from a word count, rounding up
// so even a short article reports at least one minute.
func ReadingTimeMinutes(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	minutes := (wordCount + averageWordsPerMinute - 1) / averageWordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// languageAliases normalizes common language tag variants to the canonical
// form the store's `categories`/language-facing fields use.
var languageAliases = map[string]string{
	"en-us": "en", "en-gb": "en", "en_us": "en", "en_gb": "en",
	"ja-jp": "ja", "ja_jp": "ja",
	"zh-cn": "zh", "zh-tw": "zh", "zh_cn": "zh", "zh_tw": "zh",
}

// NormalizeLanguageAlias maps a language tag to its canonical short form,
// lower-casing first. Unknown tags pass through unchanged.
func NormalizeLanguageAlias(lang string) string {
	lower := strings.ToLower(strings.TrimSpace(lang))
	if canonical, ok := languageAliases[lower]; ok {
		return canonical
	}
	return lower
}
