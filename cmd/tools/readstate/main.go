// Command readstate marks articles read/unread or bookmarked/unbookmarked
// for a given user, and lists a user's bookmarks.
// Usage:
//
//	readstate --user 1 --article 42 --read
//	readstate --user 1 --article 42 --bookmark
//	readstate --user 1 --list-bookmarks
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"catchup-feed/internal/infra/adapter/persistence/sqlite"
)

func main() {
	dbPath := flag.String("db", "./catchup-feed.db", "Path to the sqlite database")
	outputFormat := flag.String("output", "text", "Output format: text or json")
	userID := flag.Int64("user", 0, "User ID")
	articleID := flag.Int64("article", 0, "Article ID")
	setRead := flag.Bool("read", false, "Mark the article read")
	setUnread := flag.Bool("unread", false, "Mark the article unread")
	setBookmark := flag.Bool("bookmark", false, "Bookmark the article")
	clearBookmark := flag.Bool("unbookmark", false, "Remove the article's bookmark")
	markAllRead := flag.Bool("mark-all-read", false, "Mark every article read for --user (optionally scoped by --feed)")
	feedID := flag.Int64("feed", 0, "Feed ID to scope --mark-all-read to; 0 means every feed")
	listBookmarks := flag.Bool("list-bookmarks", false, "List the user's bookmarked articles")
	timeout := flag.Duration("timeout", 10*time.Second, "Operation timeout")
	flag.Parse()

	if *userID == 0 {
		fmt.Fprintln(os.Stderr, "readstate: --user is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	database, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "readstate: opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	repo := sqlite.NewUserStateRepo(database)

	switch {
	case *listBookmarks:
		articles, err := repo.ListBookmarked(ctx, *userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "readstate: listing bookmarks: %v\n", err)
			os.Exit(1)
		}
		if *outputFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(articles)
			return
		}
		for _, a := range articles {
			fmt.Printf("%d\t%s\n", a.ID, a.Title)
		}

	case *markAllRead:
		var scopedFeed *int64
		if *feedID != 0 {
			scopedFeed = feedID
		}
		if err := repo.MarkAllRead(ctx, *userID, scopedFeed); err != nil {
			fmt.Fprintf(os.Stderr, "readstate: mark-all-read: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ok")

	case *articleID != 0:
		if *setRead || *setUnread {
			if err := repo.SetRead(ctx, *userID, *articleID, *setRead); err != nil {
				fmt.Fprintf(os.Stderr, "readstate: set-read: %v\n", err)
				os.Exit(1)
			}
		}
		if *setBookmark || *clearBookmark {
			if err := repo.SetBookmarked(ctx, *userID, *articleID, *setBookmark); err != nil {
				fmt.Fprintf(os.Stderr, "readstate: set-bookmark: %v\n", err)
				os.Exit(1)
			}
		}
		state, err := repo.Get(ctx, *userID, *articleID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "readstate: get: %v\n", err)
			os.Exit(1)
		}
		if *outputFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(state)
			return
		}
		if state == nil {
			fmt.Println("unread, not bookmarked")
			return
		}
		fmt.Printf("read=%v bookmarked=%v\n", state.IsRead, state.IsBookmarked)

	default:
		fmt.Fprintln(os.Stderr, "readstate: specify --article with --read/--unread/--bookmark/--unbookmark, --mark-all-read, or --list-bookmarks")
		os.Exit(1)
	}
}
