package gmail

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// knownMailerPlatforms maps an X-Mailer header substring (lower-cased) to
// the newsletter platform name it identifies, per the original
// email_parser.py's platform table.
var knownMailerPlatforms = []struct {
	needle   string
	platform string
}{
	{"substack", "Substack"},
	{"mailchimp", "Mailchimp"},
	{"convertkit", "ConvertKit"},
	{"beehiiv", "beehiiv"},
	{"ghost", "Ghost"},
	{"revue", "Revue"},
}

// deriveNewsletterName implements the original's name-derivation order:
// List-Id header, then known X-Mailer platform values, then HTML selectors.
func deriveNewsletterName(listID, xMailer, fromName, htmlBody string) string {
	if name := parseListID(listID); name != "" {
		return name
	}

	lowerMailer := strings.ToLower(xMailer)
	for _, platform := range knownMailerPlatforms {
		if strings.Contains(lowerMailer, platform.needle) {
			return platform.platform
		}
	}

	if htmlBody != "" {
		if name := nameFromHTML(htmlBody); name != "" {
			return name
		}
	}

	if fromName != "" {
		return fromName
	}
	return "Newsletter"
}

var listIDPattern = regexp.MustCompile(`^\s*"?([^"<]+)"?\s*<`)

// parseListID extracts the human-readable name from a List-Id header like
// `"Weekly Digest" <weekly.example.com>`.
func parseListID(listID string) string {
	if listID == "" {
		return ""
	}
	if m := listIDPattern.FindStringSubmatch(listID); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(strings.SplitN(listID, "<", 2)[0])
}

// nameFromHTML looks for a logo alt text or a masthead heading, the two
// selectors the original's HTML-based fallback checks.
func nameFromHTML(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return ""
	}
	if alt, ok := doc.Find("img").First().Attr("alt"); ok && strings.TrimSpace(alt) != "" {
		return strings.TrimSpace(alt)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return ""
}

var angleBracketURL = regexp.MustCompile(`<(https?://[^>]+)>`)

// deriveUnsubscribeURL implements the original's preference order:
// List-Unsubscribe header (preferring the angle-bracketed http(s) variant),
// else an HTML link whose text or href mentions "unsubscribe".
func deriveUnsubscribeURL(listUnsubscribe, htmlBody string) string {
	if listUnsubscribe != "" {
		for _, m := range angleBracketURL.FindAllStringSubmatch(listUnsubscribe, -1) {
			return m[1]
		}
	}

	if htmlBody == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		text := strings.ToLower(sel.Text())
		if strings.Contains(strings.ToLower(href), "unsubscribe") || strings.Contains(text, "unsubscribe") {
			found = href
			return false
		}
		return true
	})
	return found
}

// spacerSelectors are the presentational wrappers that carry no content
// value and should be stripped before storage, per spec §4.9.
var spacerSelectors = []string{
	"script", "style",
	"img[width='1']", "img[height='1']", // tracking pixels
	".preview-text", ".preheader", // hidden preview spans
}

// cleanNewsletterHTML strips tracking pixels, preview spans, scripts, empty
// spacer divs, single-cell presentational table wrappers, and trailing
// footer/unsubscribe blocks from a newsletter's HTML body.
func cleanNewsletterHTML(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return htmlBody
	}

	for _, sel := range spacerSelectors {
		doc.Find(sel).Remove()
	}

	doc.Find("div").Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.Text()) == "" && sel.Find("img").Length() == 0 {
			sel.Remove()
		}
	})

	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		if sel.Find("td").Length() == 1 && sel.Find("tr").Length() == 1 {
			sel.ReplaceWithSelection(sel.Find("td").Contents())
		}
	})

	removeFooterBlocks(doc)

	out, err := doc.Html()
	if err != nil {
		return htmlBody
	}
	return out
}

// removeFooterBlocks drops the last block-level element in the body when it
// mentions "unsubscribe", the common shape of a newsletter's footer.
func removeFooterBlocks(doc *goquery.Document) {
	body := doc.Find("body")
	children := body.Children()
	if children.Length() == 0 {
		return
	}
	last := children.Last()
	if strings.Contains(strings.ToLower(last.Text()), "unsubscribe") {
		last.Remove()
	}
}
