package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"brigade/internal/config"
	"brigade/internal/db"
	"brigade/internal/pricelist"
	"brigade/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_ingredients <price-list.csv|.pdf|.txt>")
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("price list path must not be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("locate price list: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	return importFile(ctx, store.New(database), path, os.Stdout)
}

// importFile parses the price list at path and upserts its entries. Lines that
// could not be read are listed after the summary.
func importFile(ctx context.Context, kitchen *store.Store, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read price list: %w", err)
	}

	list, err := pricelist.Parse(data, pricelist.MimeTypeFromName(path))
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	summary, err := kitchen.UpsertPrices(ctx, list.Entries)
	if err != nil {
		return fmt.Errorf("store prices: %w", err)
	}

	fmt.Fprintf(out, "Imported %d prices from %s (%d created, %d updated)\n",
		summary.Created+summary.Updated, filepath.Base(path), summary.Created, summary.Updated)
	for _, issue := range list.Issues {
		fmt.Fprintf(out, "  skipped %s\n", issue)
	}
	return nil
}
