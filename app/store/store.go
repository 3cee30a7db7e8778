package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmitrev/vesnik/app/article"
)

// ErrNotFound is returned by Load when no file exists for a category.
var ErrNotFound = errors.New("category file not found")

// ParseError is returned by Load when a category file exists but
// cannot be decoded. Callers decide whether to abort or proceed with
// an empty collection; Load never hides the condition.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Store persists one JSON article collection per category under a
// single data directory.
type Store struct {
	dataDir string
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Init makes sure the data directory exists and is writable.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", s.dataDir, err)
	}
	return nil
}

// Path returns the on-disk file for a category.
func (s *Store) Path(category string) string {
	return filepath.Join(s.dataDir, category+".json")
}

// Load reads the article collection for a category. A missing file
// yields ErrNotFound, an unreadable or invalid file yields *ParseError.
func (s *Store) Load(category string) ([]article.Article, error) {
	path := s.Path(category)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	var articles []article.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return articles, nil
}

// Save overwrites the category file with the full collection. The new
// content is written to a temp file in the same directory and renamed
// into place, so a failed write leaves the prior file intact.
func (s *Store) Save(category string, articles []article.Article) error {
	if articles == nil {
		articles = []article.Article{}
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode articles for %s: %w", category, err)
	}

	path := s.Path(category)

	tmp, err := os.CreateTemp(s.dataDir, category+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", category, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file for %s: %w", category, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", category, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// BackupCorrupt moves a corrupt category file aside to a timestamped
// backup so harvesting can overwrite the slot without discarding the
// prior bytes.
func (s *Store) BackupCorrupt(category string) (string, error) {
	path := s.Path(category)
	backup := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102_150405"))

	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("failed to back up corrupt file %s: %w", path, err)
	}

	return backup, nil
}

// ListCategories returns the category names present in the data
// directory, sorted lexicographically.
func (s *Store) ListCategories() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data directory %s: %w", s.dataDir, err)
	}

	var categories []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		categories = append(categories, strings.TrimSuffix(name, ".json"))
	}

	sort.Strings(categories)
	return categories, nil
}

// LoadAll loads every category collection in the data directory.
// Corrupt files are reported through the returned map of errors rather
// than aborting the whole load.
func (s *Store) LoadAll() (map[string][]article.Article, map[string]error, error) {
	categories, err := s.ListCategories()
	if err != nil {
		return nil, nil, err
	}

	collections := make(map[string][]article.Article, len(categories))
	failures := make(map[string]error)

	for _, category := range categories {
		articles, err := s.Load(category)
		if err != nil {
			failures[category] = err
			continue
		}
		collections[category] = articles
	}

	return collections, failures, nil
}

// URLSet returns the set of article URLs in a collection, the dedup
// index used by the harvest loop.
func URLSet(articles []article.Article) map[string]struct{} {
	urls := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		if a.URL != "" {
			urls[a.URL] = struct{}{}
		}
	}
	return urls
}
