package harvest

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/bmitrev/vesnik/app/article"
	"github.com/bmitrev/vesnik/app/catalog"
	"github.com/bmitrev/vesnik/app/fetcher"
	"github.com/bmitrev/vesnik/app/store"
)

// PageFetcher retrieves one page of raw post records for a category.
// Implementations return fetcher.ErrEndOfPagination when the category
// has no further pages.
type PageFetcher interface {
	FetchPage(ctx context.Context, categoryID, page int) ([]fetcher.Post, error)
}

// Summary aggregates the results of one harvest run.
type Summary struct {
	Added      int
	Total      int
	Categories int
	Failed     int
}

// Harvester drives the per-category pagination loop, deduplicates
// against the existing store by URL and persists the extended
// collections. Categories are processed sequentially.
type Harvester struct {
	fetcher    PageFetcher
	store      *store.Store
	normalizer *article.Normalizer
	maxPages   int
}

func NewHarvester(pageFetcher PageFetcher, articleStore *store.Store, normalizer *article.Normalizer, maxPages int) *Harvester {
	return &Harvester{
		fetcher:    pageFetcher,
		store:      articleStore,
		normalizer: normalizer,
		maxPages:   maxPages,
	}
}

// Run harvests every category in the catalog. An error stopping one
// category never prevents the remaining categories from being
// harvested; only per-category failures are counted.
func (h *Harvester) Run(ctx context.Context, cat *catalog.Catalog) Summary {
	var summary Summary

	for _, category := range cat.Categories {
		select {
		case <-ctx.Done():
			slog.Warn("Harvest run cancelled", "remaining_from", category.Name)
			return summary
		default:
		}

		collection, newCount, err := h.HarvestCategory(ctx, category)
		if err != nil {
			slog.Error("Category harvest failed", "category", category.Name, "error", err)
			summary.Failed++
			continue
		}

		summary.Added += newCount
		summary.Total += len(collection)
		summary.Categories++
	}

	slog.Info("Harvest run finished",
		"categories", summary.Categories,
		"failed", summary.Failed,
		"new", summary.Added,
		"total", summary.Total)

	return summary
}

// HarvestCategory loads the existing collection for one category,
// paginates the remote API until it signals the end (or a transient
// failure stops the run early), appends the newly built articles and
// saves the whole collection back. Articles already present by URL are
// never re-fetched or overwritten. Returns the saved collection and
// the number of newly added articles.
func (h *Harvester) HarvestCategory(ctx context.Context, cat catalog.Category) ([]article.Article, int, error) {
	existing := h.loadExisting(cat.Name)
	existingURLs := store.URLSet(existing)

	slog.Info("Harvesting category", "category", cat.Name, "id", cat.ID, "existing", len(existing))

	var added []article.Article

	for page := 1; page <= h.maxPages; page++ {
		posts, err := h.fetcher.FetchPage(ctx, cat.ID, page)
		if err != nil {
			if errors.Is(err, fetcher.ErrEndOfPagination) {
				slog.Info("Reached end of pagination", "category", cat.Name, "page", page)
			} else {
				slog.Warn("Stopping category pagination", "category", cat.Name, "page", page, "error", err)
			}
			break
		}

		pageNew := 0
		for _, post := range posts {
			if post.Link == "" {
				continue
			}
			if _, known := existingURLs[post.Link]; known {
				continue
			}

			added = append(added, h.buildArticle(cat.Name, post))
			existingURLs[post.Link] = struct{}{}
			pageNew++
		}

		slog.Debug("Page finished", "category", cat.Name, "page", page, "new", pageNew)
	}

	collection := append(existing, added...)

	if err := h.store.Save(cat.Name, collection); err != nil {
		return nil, 0, fmt.Errorf("failed to save category %s: %w", cat.Name, err)
	}

	slog.Info("Category harvested", "category", cat.Name, "new", len(added), "total", len(collection))

	return collection, len(added), nil
}

// loadExisting reads the stored collection for a category. A missing
// file is a normal first run. A corrupt file is backed up and logged,
// then the category proceeds as empty so the slot can be rebuilt
// without silently discarding the prior bytes.
func (h *Harvester) loadExisting(category string) []article.Article {
	existing, err := h.store.Load(category)
	if err == nil {
		return existing
	}

	if errors.Is(err, store.ErrNotFound) {
		return nil
	}

	var parseErr *store.ParseError
	if errors.As(err, &parseErr) {
		backup, backupErr := h.store.BackupCorrupt(category)
		if backupErr != nil {
			slog.Warn("Corrupt category file could not be backed up", "category", category, "error", backupErr)
		} else {
			slog.Warn("Corrupt category file backed up, starting from empty collection",
				"category", category, "backup", backup, "error", parseErr)
		}
		return nil
	}

	slog.Warn("Failed to load category file, starting from empty collection", "category", category, "error", err)
	return nil
}

func (h *Harvester) buildArticle(category string, post fetcher.Post) article.Article {
	a := article.Article{
		URL:        post.Link,
		Title:      html.UnescapeString(post.Title.Rendered),
		Text:       h.normalizer.Run(post.Content.Rendered),
		Categories: []string{category},
		ScrapedAt:  article.Now(),
	}

	if post.ID != 0 {
		id := post.ID
		a.PageID = &id
	}

	return a
}
