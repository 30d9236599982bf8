package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// hostMatches reports whether host equals or is a subdomain of any of the
// extractor's registered domains. A plain substring match ("medium.com" in
// the URL) is deliberately not used: it would also match a path segment or
// an unrelated domain that merely contains the string.
func hostMatches(host string, domains []string) bool {
	host = strings.ToLower(host)
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// estimateReadingTime applies the same words/225, round-up-to-1 formula the
// generic extractor and the fetch heuristics share.
func estimateReadingTime(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 1
	}
	minutes := (words + 112) / 225 // integer division rounded to nearest
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// codeLangPattern matches language-python, lang-js, highlight-ruby,
// hljs-go style class names.
var codeLangPattern = regexp.MustCompile(`(?i)^(?:language-|lang-|highlight-|hljs-)([a-z0-9+#]+)$`)

// languageAliases normalizes the handful of common shorthand forms sites
// use on code-block class names to the names the rest of the system uses.
var languageAliases = map[string]string{
	"js":    "javascript",
	"ts":    "typescript",
	"py":    "python",
	"rb":    "ruby",
	"yml":   "yaml",
	"sh":    "bash",
	"shell": "bash",
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(lang)
	if alias, ok := languageAliases[lang]; ok {
		return alias
	}
	return lang
}

// extractCodeLanguages scans pre/code elements' class names and
// data-language attributes for a language hint, de-duplicating the result.
func extractCodeLanguages(doc *goquery.Selection) []string {
	seen := make(map[string]bool)
	var langs []string

	add := func(lang string) {
		lang = normalizeLanguage(lang)
		if lang == "" || seen[lang] {
			return
		}
		seen[lang] = true
		langs = append(langs, lang)
	}

	doc.Find("pre, code").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		for _, cls := range strings.Fields(class) {
			if m := codeLangPattern.FindStringSubmatch(cls); m != nil {
				add(m[1])
			}
		}
	})
	doc.Find("[data-language]").Each(func(_ int, s *goquery.Selection) {
		if lang, ok := s.Attr("data-language"); ok && lang != "" {
			add(lang)
		}
	})
	return langs
}

// hasCodeBlocks reports whether the document contains any <pre> element.
func hasCodeBlocks(doc *goquery.Selection) bool {
	return doc.Find("pre").Length() > 0
}

// stripAndOuterHTML removes every element matching selectors from sel (a
// clone, so the caller's original document is untouched) and returns the
// resulting outer HTML.
func stripAndOuterHTML(sel *goquery.Selection, selectors ...string) string {
	clone := sel.Clone()
	for _, selector := range selectors {
		clone.Find(selector).Remove()
	}
	html, err := goquery.OuterHtml(clone)
	if err != nil {
		return ""
	}
	return html
}

// textOf returns the text-only projection of an HTML fragment, used to
// compute word counts over already-extracted content.
func textOf(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return doc.Text()
}

// siteNameSuffixPattern strips a trailing "| Site Name" / "- Site Name" /
// "– Site Name" / "— Site Name" segment off a <title> tag's text.
var siteNameSuffixPattern = regexp.MustCompile(`\s*[|\-–—]\s*[^|\-–—]+$`)

func stripTitleSuffix(title string) string {
	return siteNameSuffixPattern.ReplaceAllString(title, "")
}

// titleCase capitalizes the first letter of each word, used for turning a
// URL slug segment like "machine-learning" into a display category.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
			words[i] = string(r)
		}
	}
	return strings.Join(words, " ")
}
