package merge

import (
	"sort"

	"github.com/bmitrev/vesnik/app/article"
)

// SourceStat reports one source collection's contribution to the
// merged corpus.
type SourceStat struct {
	Category string `json:"category"`
	Original int    `json:"original"`
	Unique   int    `json:"unique"`
}

// Result is the outcome of one merge.
type Result struct {
	Articles   []article.Article
	Stats      []SourceStat
	Duplicates int
}

// Run combines the given category collections into one collection
// deduplicated by URL. Categories are visited in lexicographic order
// so the outcome is deterministic; the first-seen article for a URL
// is kept and later occurrences contribute only category memberships
// the kept copy lacks. Input collections are never mutated.
func Run(collections map[string][]article.Article) Result {
	categories := make([]string, 0, len(collections))
	for category := range collections {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var result Result
	index := make(map[string]int)

	for _, category := range categories {
		articles := collections[category]
		stat := SourceStat{Category: category, Original: len(articles)}

		for _, a := range articles {
			if a.URL == "" {
				continue
			}

			pos, seen := index[a.URL]
			if !seen {
				index[a.URL] = len(result.Articles)
				result.Articles = append(result.Articles, copyArticle(a))
				stat.Unique++
				continue
			}

			result.Duplicates++
			for _, name := range a.Categories {
				if !result.Articles[pos].HasCategory(name) {
					result.Articles[pos].Categories = append(result.Articles[pos].Categories, name)
				}
			}
		}

		result.Stats = append(result.Stats, stat)
	}

	return result
}

// copyArticle clones an article so category-membership unions never
// touch the caller's slices.
func copyArticle(a article.Article) article.Article {
	clone := a
	clone.Categories = append([]string(nil), a.Categories...)
	return clone
}
