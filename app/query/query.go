package query

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/bmitrev/vesnik/app/article"
)

// Match pairs a found article with the category file it came from.
type Match struct {
	Category string          `json:"category"`
	Article  article.Article `json:"article"`
}

// CategoryCount is one row of the per-category breakdown.
type CategoryCount struct {
	Category string
	Count    int
}

// Stats summarizes a loaded corpus. Earliest and Latest span the
// scraped_at range; both are nil when no timestamp parses.
type Stats struct {
	TotalArticles   int
	TotalCategories int
	EmptyText       int
	Earliest        *time.Time
	Latest          *time.Time
	PerCategory     []CategoryCount
}

// Search returns all articles whose title or text contains the query,
// case-folded. An optional category restricts the search to one
// collection. Matches are returned in lexicographic category order.
func Search(collections map[string][]article.Article, q, category string) []Match {
	// Unicode case folding handles the Cyrillic titles and bodies in
	// the corpus, unlike a plain ASCII lowercase. A Caser may be
	// stateful, so each call gets its own.
	folder := cases.Fold()
	needle := folder.String(q)

	var matches []Match
	for _, cat := range sortedCategories(collections) {
		if category != "" && cat != category {
			continue
		}

		for _, a := range collections[cat] {
			if strings.Contains(folder.String(a.Title), needle) ||
				strings.Contains(folder.String(a.Text), needle) {
				matches = append(matches, Match{Category: cat, Article: a})
			}
		}
	}

	return matches
}

// FilterByDateRange returns articles scraped within [start, end].
// Either bound may be nil. Articles with unparseable timestamps are
// skipped.
func FilterByDateRange(collections map[string][]article.Article, start, end *time.Time) []Match {
	var all []Match
	for _, cat := range sortedCategories(collections) {
		for _, a := range collections[cat] {
			all = append(all, Match{Category: cat, Article: a})
		}
	}

	return FilterMatches(all, start, end)
}

// FilterMatches keeps the matches scraped within [start, end], so a
// keyword search can be narrowed by date. Either bound may be nil.
func FilterMatches(matches []Match, start, end *time.Time) []Match {
	var kept []Match
	for _, m := range matches {
		ts, err := m.Article.ScrapedTime()
		if err != nil {
			continue
		}
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		kept = append(kept, m)
	}

	return kept
}

// ComputeStats builds corpus statistics over the loaded collections.
func ComputeStats(collections map[string][]article.Article) Stats {
	stats := Stats{TotalCategories: len(collections)}

	for _, cat := range sortedCategories(collections) {
		articles := collections[cat]
		stats.TotalArticles += len(articles)
		stats.PerCategory = append(stats.PerCategory, CategoryCount{Category: cat, Count: len(articles)})

		for _, a := range articles {
			if a.Text == "" {
				stats.EmptyText++
			}

			ts, err := a.ScrapedTime()
			if err != nil {
				continue
			}
			if stats.Earliest == nil || ts.Before(*stats.Earliest) {
				earliest := ts
				stats.Earliest = &earliest
			}
			if stats.Latest == nil || ts.After(*stats.Latest) {
				latest := ts
				stats.Latest = &latest
			}
		}
	}

	return stats
}

// Export writes the matched articles to a JSON file. The file is a
// flat array of bare article objects in the interchange shape, the
// same format the consolidated corpus uses, so downstream tooling can
// read it without knowing about match wrappers.
func Export(path string, matches []Match) error {
	articles := make([]article.Article, 0, len(matches))
	for _, m := range matches {
		articles = append(articles, m.Article)
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func sortedCategories(collections map[string][]article.Article) []string {
	categories := make([]string, 0, len(collections))
	for cat := range collections {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories
}
