// Package extractor implements the content-extraction dispatch chain: a small
// set of site-specific extractors, a generic reader-mode extractor built on
// go-readability, and a heuristic last resort, all wired together behind a
// single fetch.Dispatcher.
package extractor
