// Package archive implements fetcher.ArchiveFetcher by trying a chain of web
// archive services — archive.today, the Wayback Machine, and Google Cache —
// in order of how likely each is to carry a pre-paywall snapshot of a page.
package archive
