package article

import (
	"time"
)

// Article is one harvested item. The JSON shape matches the on-disk
// category files consumed by the merge and query tooling, so field
// names must stay stable.
type Article struct {
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
	PageID     *int64   `json:"page_id"`
	ScrapedAt  string   `json:"scraped_at"`
}

// Now returns the current UTC time formatted for the scraped_at field.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ScrapedTime parses the scraped_at field. Legacy files carry bare
// ISO timestamps without a zone offset, so both layouts are accepted.
func (a Article) ScrapedTime() (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, a.ScrapedAt); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", a.ScrapedAt)
}

// HasCategory reports whether the article already belongs to the
// given category.
func (a Article) HasCategory(name string) bool {
	for _, c := range a.Categories {
		if c == name {
			return true
		}
	}
	return false
}
