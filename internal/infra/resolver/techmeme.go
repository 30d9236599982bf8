package resolver

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// resolveTechmeme scans the RSS description's inline links first; if that
// yields nothing, it fetches the Techmeme page and, when the URL carries a
// fragment identifying a specific story cluster, extracts that cluster's
// outbound link, falling back to the homepage's top story link. Confidence
// decreases through the fallback chain, matching the Python original's
// scoring.
func (r *Resolver) resolveTechmeme(ctx context.Context, rawURL, content string) (Result, error) {
	if content != "" {
		if href, ok := firstExternalLinkInHTML(content, "techmeme.com"); ok {
			return Result{SourceURL: href, Aggregator: AggregatorTechmeme, Confidence: 0.9}, nil
		}
	}

	resp, err := r.get(ctx, rawURL)
	if err != nil {
		return Result{Aggregator: AggregatorTechmeme}, err
	}
	html, err := readBody(resp)
	if err != nil {
		return Result{Aggregator: AggregatorTechmeme}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{Aggregator: AggregatorTechmeme}, err
	}

	fragment := ""
	if parsed, perr := url.Parse(rawURL); perr == nil {
		fragment = parsed.Fragment
	}

	if fragment != "" {
		anchor := doc.Find(`a[name="` + fragment + `"]`).First()
		if anchor.Length() > 0 {
			cluster := anchor.ParentsFiltered("div.clus").First()
			if cluster.Length() == 0 {
				cluster = anchor.NextFiltered("div.clus")
			}
			if cluster.Length() > 0 {
				link := cluster.Find(".ii a[href^='http']").First()
				if link.Length() == 0 {
					link = cluster.Find("a.ourh[href^='http']").First()
				}
				if href, ok := link.Attr("href"); ok && href != "" && !strings.Contains(strings.ToLower(href), "techmeme.com") {
					return Result{SourceURL: href, Aggregator: AggregatorTechmeme, Confidence: 0.95}, nil
				}
			}
		}
	}

	if link := doc.Find("a.ourh[href^='http']").First(); link.Length() > 0 {
		if href, ok := link.Attr("href"); ok && !strings.Contains(strings.ToLower(href), "techmeme.com") {
			return Result{SourceURL: href, Aggregator: AggregatorTechmeme, Confidence: 0.7}, nil
		}
	}

	var found string
	doc.Find(".ii a[href^='http']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if ok && href != "" && !strings.Contains(strings.ToLower(href), "techmeme.com") {
			found = href
			return false
		}
		return true
	})
	if found != "" {
		return Result{SourceURL: found, Aggregator: AggregatorTechmeme, Confidence: 0.5}, nil
	}

	return Result{Aggregator: AggregatorTechmeme, Confidence: 0}, nil
}

// firstExternalLinkInHTML scans an HTML fragment's anchor tags for the
// first href that does not contain excludeHost.
func firstExternalLinkInHTML(htmlFragment, excludeHost string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlFragment))
	if err != nil {
		return "", false
	}
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http") && !strings.Contains(strings.ToLower(href), excludeHost) {
			found = href
			return false
		}
		return true
	})
	return found, found != ""
}
