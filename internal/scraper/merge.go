package scraper

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/poku-e/tubtakes/internal/catalog"
)

// MergeReport counts what Merge changed.
type MergeReport struct {
	Added          []string
	ImageIDUpdates int
}

// Merge folds scraped products into c: known flavors get their image id
// refreshed, unknown ones are appended, and every new flavor receives a code.
// Existing codes never change.
func Merge(c *catalog.Catalog, products []Product) (*catalog.Catalog, MergeReport, error) {
	flavors := c.Flavors()
	index := make(map[string]int, len(flavors))
	for i, f := range flavors {
		index[f.Name] = i
	}

	var rep MergeReport
	for _, p := range products {
		if i, ok := index[p.Name]; ok {
			if p.ImageID != "" && flavors[i].ImageID != p.ImageID {
				flavors[i].ImageID = p.ImageID
				rep.ImageIDUpdates++
			}
			continue
		}
		index[p.Name] = len(flavors)
		flavors = append(flavors, catalog.Flavor{
			Name:    p.Name,
			ImageID: p.ImageID,
			Image:   catalog.ImageFileName(p.Name),
		})
		rep.Added = append(rep.Added, p.Name)
	}

	merged, err := catalog.New(flavors)
	if err != nil {
		return nil, MergeReport{}, err
	}
	merged, err = merged.AssignCodes()
	if err != nil {
		return nil, MergeReport{}, err
	}
	return merged, rep, nil
}

// DownloadImages saves each product image into dir unless a file with the
// flavor's image name already exists. Failures are logged and counted; only
// a cancelled context or an unusable dir aborts the run.
func DownloadImages(ctx context.Context, f *Fetcher, dir string, products []Product, logger *zap.Logger) (saved, failed int, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, 0, err
	}
	for _, p := range products {
		name := catalog.ImageFileName(p.Name)
		if name == "" || !filepath.IsLocal(name) {
			logger.Warn("image skipped: unusable file name", zap.String("flavor", p.Name))
			failed++
			continue
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		b, err := f.Download(ctx, p.ImageURL)
		if err != nil {
			if ctx.Err() != nil {
				return saved, failed, ctx.Err()
			}
			logger.Warn("image download failed", zap.String("flavor", p.Name), zap.Error(err))
			failed++
			continue
		}
		if err := os.WriteFile(path, b, 0o644); err != nil {
			logger.Warn("image save failed", zap.String("flavor", p.Name), zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		saved++
	}
	return saved, failed, nil
}
