package merge

import (
	"testing"

	"github.com/bmitrev/vesnik/app/article"
)

func makeArticle(url, title string, categories ...string) article.Article {
	return article.Article{
		URL:        url,
		Title:      title,
		Categories: categories,
		ScrapedAt:  "2026-08-28T10:00:00Z",
	}
}

func TestRun_DistinctURLCount(t *testing.T) {
	collections := map[string][]article.Article{
		"sport": {
			makeArticle("https://example.com/a", "A", "sport"),
			makeArticle("https://example.com/b", "B", "sport"),
		},
		"svet": {
			makeArticle("https://example.com/b", "B", "svet"),
			makeArticle("https://example.com/c", "C", "svet"),
		},
	}

	result := Run(collections)

	if len(result.Articles) != 3 {
		t.Errorf("Expected 3 distinct URLs, got %d", len(result.Articles))
	}
	if result.Duplicates != 1 {
		t.Errorf("Expected 1 duplicate, got %d", result.Duplicates)
	}
}

func TestRun_PerSourceStatsSumToTotal(t *testing.T) {
	collections := map[string][]article.Article{
		"sport": {
			makeArticle("https://example.com/a", "A", "sport"),
			makeArticle("https://example.com/b", "B", "sport"),
		},
		"svet": {
			makeArticle("https://example.com/b", "B", "svet"),
			makeArticle("https://example.com/c", "C", "svet"),
			makeArticle("https://example.com/d", "D", "svet"),
		},
		"zena": {
			makeArticle("https://example.com/a", "A", "zena"),
		},
	}

	result := Run(collections)

	uniqueSum := 0
	for _, stat := range result.Stats {
		uniqueSum += stat.Unique
	}

	if uniqueSum != len(result.Articles) {
		t.Errorf("Expected per-source unique counts (%d) to sum to merged size (%d)",
			uniqueSum, len(result.Articles))
	}

	for _, stat := range result.Stats {
		original := len(collections[stat.Category])
		if stat.Original != original {
			t.Errorf("Expected original count %d for %s, got %d", original, stat.Category, stat.Original)
		}
	}
}

func TestRun_FirstSeenWinsInCategoryOrder(t *testing.T) {
	// "ekonomija" sorts before "sport", so its copy of the shared URL
	// is the one kept.
	collections := map[string][]article.Article{
		"sport":     {makeArticle("https://example.com/a", "Sport copy", "sport")},
		"ekonomija": {makeArticle("https://example.com/a", "Ekonomija copy", "ekonomija")},
	}

	result := Run(collections)

	if len(result.Articles) != 1 {
		t.Fatalf("Expected 1 merged article, got %d", len(result.Articles))
	}
	if result.Articles[0].Title != "Ekonomija copy" {
		t.Errorf("Expected first-seen article in lexicographic category order, got %q", result.Articles[0].Title)
	}
}

func TestRun_UnionsCategoryMemberships(t *testing.T) {
	collections := map[string][]article.Article{
		"sport": {makeArticle("https://example.com/a", "A", "sport")},
		"svet":  {makeArticle("https://example.com/a", "A", "svet")},
	}

	result := Run(collections)

	if len(result.Articles) != 1 {
		t.Fatalf("Expected 1 merged article, got %d", len(result.Articles))
	}

	merged := result.Articles[0]
	if !merged.HasCategory("sport") || !merged.HasCategory("svet") {
		t.Errorf("Expected category union [sport svet], got %v", merged.Categories)
	}
	if len(merged.Categories) != 2 {
		t.Errorf("Expected no duplicate category entries, got %v", merged.Categories)
	}
}

func TestRun_DoesNotMutateInputs(t *testing.T) {
	sportArticle := makeArticle("https://example.com/a", "A", "sport")
	collections := map[string][]article.Article{
		"sport": {sportArticle},
		"svet":  {makeArticle("https://example.com/a", "A", "svet")},
	}

	Run(collections)

	if len(collections["sport"][0].Categories) != 1 || collections["sport"][0].Categories[0] != "sport" {
		t.Errorf("Expected input collections to be untouched, got %v", collections["sport"][0].Categories)
	}
}

func TestRun_DeterministicOrder(t *testing.T) {
	collections := map[string][]article.Article{
		"zena":  {makeArticle("https://example.com/z", "Z", "zena")},
		"sport": {makeArticle("https://example.com/s", "S", "sport")},
		"hrana": {makeArticle("https://example.com/h", "H", "hrana")},
	}

	first := Run(collections)
	second := Run(collections)

	expected := []string{"https://example.com/h", "https://example.com/s", "https://example.com/z"}
	for i, url := range expected {
		if first.Articles[i].URL != url {
			t.Errorf("Expected article %d to be %s, got %s", i, url, first.Articles[i].URL)
		}
		if second.Articles[i].URL != first.Articles[i].URL {
			t.Errorf("Expected repeated merges to produce identical order")
		}
	}

	statOrder := []string{"hrana", "sport", "zena"}
	for i, category := range statOrder {
		if first.Stats[i].Category != category {
			t.Errorf("Expected stat %d to be %s, got %s", i, category, first.Stats[i].Category)
		}
	}
}

func TestRun_SkipsArticlesWithoutURL(t *testing.T) {
	collections := map[string][]article.Article{
		"sport": {
			makeArticle("", "No identity", "sport"),
			makeArticle("https://example.com/a", "A", "sport"),
		},
	}

	result := Run(collections)

	if len(result.Articles) != 1 {
		t.Errorf("Expected URL-less articles to be skipped, got %d articles", len(result.Articles))
	}
}

func TestRun_EmptyInput(t *testing.T) {
	result := Run(map[string][]article.Article{})

	if len(result.Articles) != 0 || result.Duplicates != 0 {
		t.Errorf("Expected empty result for empty input, got %d articles, %d duplicates",
			len(result.Articles), result.Duplicates)
	}
}
