// Command upload ingests a single local file (PDF, DOCX, HTML, Markdown,
// plain text, or .eml) into the library as a standalone article.
// Usage: upload /path/to/file.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catchup-feed/internal/infra/adapter/persistence/sqlite"
	"catchup-feed/internal/infra/library"
)

func main() {
	dbPath := flag.String("db", "./catchup-feed.db", "Path to the sqlite database")
	uploadsDir := flag.String("uploads-dir", "./uploads", "Directory to store the original uploaded file")
	timeout := flag.Duration("timeout", 30*time.Second, "Ingest timeout")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: upload <path> [--db ./catchup-feed.db] [--uploads-dir ./uploads]")
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload: reading file: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	database, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload: opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	svc := library.NewService(
		sqlite.NewFeedRepo(database),
		sqlite.NewArticleRepo(database),
		library.NewFileUploadStore(*uploadsDir),
	)

	article, err := svc.Ingest(ctx, filepath.Base(args[0]), data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload: ingest failed: %v\n", err)
		os.Exit(1)
	}
	if article == nil {
		fmt.Println("already in library (duplicate content)")
		return
	}

	fmt.Printf("ingested article %d: %s\n", article.ID, article.Title)
}
