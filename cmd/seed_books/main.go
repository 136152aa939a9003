// Command seed_books fills an empty (or sparse) catalog with volumes from
// the Google Books API, using the same config and data files as the main
// application. Duplicate titles are skipped, so it is safe to re-run.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"library-desk/library"
	"library-desk/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := library.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	store, err := library.OpenStore(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	catalog := library.NewCatalog(store, log)

	fmt.Printf("Fetching candidates for query %q...\n", cfg.GoogleBooks.Query)
	client := library.NewGoogleBooksClient(cfg.GoogleBooks, log)
	drafts, err := client.FetchCandidates(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}

	added, err := catalog.BulkImport(drafts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Candidates fetched: %d\n", len(drafts))
	fmt.Printf("New books added:    %d\n", added)

	if added > 0 {
		fmt.Println("\nCatalog now contains:")
		fmt.Printf("%-38s %-45s %-30s\n", "ID", "Title", "Author")
		fmt.Println(strings.Repeat("-", 115))
		for _, book := range catalog.List() {
			fmt.Printf("%-38s %-45s %-30s\n", book.ID, truncateString(book.Title, 45), truncateString(book.Author, 30))
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
