package archive

import (
	"testing"
	"time"
)

func TestParseArchiveTodayDate(t *testing.T) {
	t.Parallel()
	got := parseArchiveTodayDate("https://archive.today/2024.01.15-123456/https://example.com/a")
	if got == nil {
		t.Fatal("expected a parsed date")
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if parseArchiveTodayDate("https://archive.today/newest/https://example.com") != nil {
		t.Error("expected no date for a URL without a snapshot timestamp")
	}
}

func TestParseWaybackTimestamp(t *testing.T) {
	t.Parallel()
	got, ok := parseWaybackTimestamp("20240115123456")
	if !ok {
		t.Fatal("expected timestamp to parse")
	}
	want := time.Date(2024, 1, 15, 12, 34, 56, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, ok := parseWaybackTimestamp("short"); ok {
		t.Error("expected short timestamp to fail to parse")
	}
}

func TestIsTooOld(t *testing.T) {
	t.Parallel()
	if isTooOld(time.Now(), 30*24*time.Hour) {
		t.Error("a fresh snapshot should not be too old")
	}
	if !isTooOld(time.Now().Add(-60*24*time.Hour), 30*24*time.Hour) {
		t.Error("a 60-day-old snapshot should be too old against a 30-day max age")
	}
	if isTooOld(time.Now().Add(-1000*24*time.Hour), 0) {
		t.Error("a zero max age should disable the freshness check")
	}
}

func TestCleanWaybackHTML(t *testing.T) {
	t.Parallel()
	input := `<html><!-- BEGIN WAYBACK TOOLBAR INSERT -->banner content<!-- END WAYBACK TOOLBAR INSERT --><body>article</body></html>`
	got := cleanWaybackHTML(input)
	if got == input {
		t.Error("expected the toolbar block to be stripped")
	}
	if want := `<html><body>article</body></html>`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCleanGoogleCacheHTML(t *testing.T) {
	t.Parallel()
	input := `<div style="background:#fff">This is Google's cache</div><hr>article body`
	got := cleanGoogleCacheHTML(input)
	if got != "article body" {
		t.Errorf("got %q, want stripped header", got)
	}
}

func TestNewChain_BuildsAllThreeServices(t *testing.T) {
	t.Parallel()
	c := NewChain(DefaultConfig())
	if len(c.services) != 3 {
		t.Fatalf("expected 3 services, got %d", len(c.services))
	}
	for _, name := range []string{"archive.today", "wayback", "google_cache"} {
		if c.breakers[name] == nil {
			t.Errorf("expected a circuit breaker for %s", name)
		}
	}
}
