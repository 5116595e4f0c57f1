// flavor-scraper refreshes the flavor catalog from the shop collection page.
//
// Usage examples:
//
//	go run ./cmd/flavor-scraper --catalog json/gfuel_flavors.json
//	go run ./cmd/flavor-scraper --catalog json/gfuel_flavors.json --images images
//	go run ./cmd/flavor-scraper --catalog json/gfuel_flavors.json --out codes.xlsx
//
// Known flavors keep their codes; new flavors get the next free code.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/observability"
	"github.com/poku-e/tubtakes/internal/scraper"
)

const defaultURL = "https://gfuel.com/collections/all-tubs?filter.p.product_type=Tub&sort_by=title-ascending"

func main() {
	var (
		pageURL     string
		catalogPath string
		outPath     string
		imagesDir   string
		dryRun      bool
	)
	flag.StringVar(&pageURL, "url", defaultURL, "Collection page URL to fetch")
	flag.StringVar(&catalogPath, "catalog", "", "Catalog JSON file to update (required)")
	flag.StringVar(&outPath, "out", "", "Optional code table export (.csv or .xlsx)")
	flag.StringVar(&imagesDir, "images", "", "Optional directory to download missing flavor images into")
	flag.BoolVar(&dryRun, "dry-run", false, "Report changes without writing the catalog")
	flag.Parse()

	if catalogPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := observability.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fetcher := scraper.NewFetcher(25 * time.Second)
	html, base, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		fatal(err)
	}
	products, err := scraper.ParseProducts(html, base)
	if err != nil {
		fatal(err)
	}
	if len(products) == 0 {
		fatal(errors.New("parsed 0 products; check that the page is server-rendered"))
	}

	current, err := catalog.Load(catalogPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fatal(err)
		}
		logger.Info("catalog not found, starting a new one", zap.String("path", catalogPath))
		current = catalog.MustNew(nil)
	}

	merged, rep, err := scraper.Merge(current, products)
	if err != nil {
		fatal(err)
	}
	logger.Info("catalog merged",
		zap.Int("scraped", len(products)),
		zap.Strings("added", rep.Added),
		zap.Int("image_id_updates", rep.ImageIDUpdates))

	if !dryRun {
		if err := merged.Save(catalogPath); err != nil {
			fatal(err)
		}
	}

	if imagesDir != "" && !dryRun {
		saved, failed, err := scraper.DownloadImages(ctx, fetcher, imagesDir, products, logger)
		if err != nil {
			fatal(err)
		}
		logger.Info("images synced", zap.Int("saved", saved), zap.Int("failed", failed))
	}

	if outPath != "" {
		if err := scraper.ExportCatalog(outPath, merged); err != nil {
			fatal(err)
		}
	}

	fmt.Printf("OK: %d flavors (%d new, %d image ids updated) -> %s\n",
		merged.Len(), len(rep.Added), rep.ImageIDUpdates, catalogPath)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
