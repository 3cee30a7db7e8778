package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmitrev/vesnik/app/article"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("Failed to init store: %v", err)
	}
	return s
}

func sampleArticles() []article.Article {
	id := int64(101)
	return []article.Article{
		{
			URL:        "https://example.com/a",
			Title:      "Прва статија",
			Text:       "Текст на првата статија.",
			Categories: []string{"sport"},
			PageID:     &id,
			ScrapedAt:  "2026-08-28T10:00:00Z",
		},
		{
			URL:        "https://example.com/b",
			Title:      "Втора статија",
			Text:       "",
			Categories: []string{"sport"},
			ScrapedAt:  "2026-08-28T10:00:01Z",
		},
	}
}

func TestStore_SaveAndLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	saved := sampleArticles()
	if err := s.Save("sport", saved); err != nil {
		t.Fatalf("Expected save to succeed, got: %v", err)
	}

	loaded, err := s.Load("sport")
	if err != nil {
		t.Fatalf("Expected load to succeed, got: %v", err)
	}

	if len(loaded) != len(saved) {
		t.Fatalf("Expected %d articles, got %d", len(saved), len(loaded))
	}

	if loaded[0].URL != saved[0].URL {
		t.Errorf("Expected URL %q, got %q", saved[0].URL, loaded[0].URL)
	}
	if loaded[0].Title != saved[0].Title {
		t.Errorf("Expected title %q, got %q", saved[0].Title, loaded[0].Title)
	}
	if loaded[0].PageID == nil || *loaded[0].PageID != 101 {
		t.Errorf("Expected page_id 101 to survive the round trip")
	}
	if loaded[1].PageID != nil {
		t.Errorf("Expected nil page_id for second article")
	}
}

func TestStore_Save_PreservesFieldNames(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sport", sampleArticles()); err != nil {
		t.Fatalf("Expected save to succeed, got: %v", err)
	}

	data, err := os.ReadFile(s.Path("sport"))
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}

	// The on-disk field names are an interchange format consumed by
	// downstream tooling and must not drift.
	for _, field := range []string{`"url"`, `"title"`, `"text"`, `"categories"`, `"page_id"`, `"scraped_at"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("Expected saved file to contain field %s", field)
		}
	}
}

func TestStore_Load_MissingFile(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestStore_Load_CorruptFile(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.Path("sport"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	_, err := s.Load("sport")
	if err == nil {
		t.Fatal("Expected error for corrupt file")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected *ParseError, got: %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("Corrupt file must not be reported as ErrNotFound")
	}
}

func TestStore_Save_EmptyCollectionWritesArray(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sport", nil); err != nil {
		t.Fatalf("Expected save to succeed, got: %v", err)
	}

	loaded, err := s.Load("sport")
	if err != nil {
		t.Fatalf("Expected load to succeed, got: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected empty collection, got %d articles", len(loaded))
	}
}

func TestStore_Save_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Init(); err != nil {
		t.Fatalf("Failed to init store: %v", err)
	}

	if err := s.Save("sport", sampleArticles()); err != nil {
		t.Fatalf("Expected save to succeed, got: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read data dir: %v", err)
	}

	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("Expected no temp files to remain, found %s", entry.Name())
		}
	}
}

func TestStore_Save_OverwritesPreviousContent(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sport", sampleArticles()); err != nil {
		t.Fatalf("Expected save to succeed, got: %v", err)
	}

	replacement := []article.Article{{URL: "https://example.com/c", ScrapedAt: "2026-08-28T11:00:00Z"}}
	if err := s.Save("sport", replacement); err != nil {
		t.Fatalf("Expected save to succeed, got: %v", err)
	}

	loaded, err := s.Load("sport")
	if err != nil {
		t.Fatalf("Expected load to succeed, got: %v", err)
	}
	if len(loaded) != 1 || loaded[0].URL != "https://example.com/c" {
		t.Errorf("Expected rewritten collection, got %+v", loaded)
	}
}

func TestStore_BackupCorrupt(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.Path("sport"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	backup, err := s.BackupCorrupt("sport")
	if err != nil {
		t.Fatalf("Expected backup to succeed, got: %v", err)
	}

	if _, err := os.Stat(s.Path("sport")); !os.IsNotExist(err) {
		t.Error("Expected original corrupt file to be moved away")
	}

	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("Expected backup file to exist, got: %v", err)
	}
	if string(data) != "{not json" {
		t.Errorf("Expected backup to preserve original bytes, got %q", string(data))
	}
}

func TestStore_ListCategories_Sorted(t *testing.T) {
	s := newTestStore(t)

	for _, category := range []string{"svet", "ekonomija", "sport"} {
		if err := s.Save(category, nil); err != nil {
			t.Fatalf("Failed to save %s: %v", category, err)
		}
	}

	// Non-JSON files are ignored.
	if err := os.WriteFile(filepath.Join(s.dataDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write extra file: %v", err)
	}

	categories, err := s.ListCategories()
	if err != nil {
		t.Fatalf("Expected list to succeed, got: %v", err)
	}

	expected := []string{"ekonomija", "sport", "svet"}
	if len(categories) != len(expected) {
		t.Fatalf("Expected %d categories, got %d: %v", len(expected), len(categories), categories)
	}
	for i, name := range expected {
		if categories[i] != name {
			t.Errorf("Expected category %d to be %q, got %q", i, name, categories[i])
		}
	}
}

func TestStore_LoadAll_ReportsCorruptFiles(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("sport", sampleArticles()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := os.WriteFile(s.Path("svet"), []byte("broken"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	collections, failures, err := s.LoadAll()
	if err != nil {
		t.Fatalf("Expected LoadAll to succeed, got: %v", err)
	}

	if len(collections["sport"]) != 2 {
		t.Errorf("Expected sport collection to load, got %d articles", len(collections["sport"]))
	}
	if _, ok := collections["svet"]; ok {
		t.Error("Expected corrupt svet collection to be excluded")
	}
	if _, ok := failures["svet"]; !ok {
		t.Error("Expected corrupt svet collection to be reported as a failure")
	}
}

func TestURLSet(t *testing.T) {
	urls := URLSet([]article.Article{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
		{URL: ""},
	})

	if len(urls) != 2 {
		t.Errorf("Expected 2 URLs, got %d", len(urls))
	}
	if _, ok := urls["https://example.com/a"]; !ok {
		t.Error("Expected URL set to contain https://example.com/a")
	}
}
