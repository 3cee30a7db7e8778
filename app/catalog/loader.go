package catalog

import (
	"embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCatalogFS embed.FS

// Load reads the category catalog from the given YAML file. When the
// file does not exist the built-in catalog shipped with the binary is
// used instead, so a plain `vesnik harvest` works out of the box.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("Catalog file not found, using built-in catalog", "path", path)
			return loadDefault()
		}
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	catalog, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	slog.Debug("Catalog loaded", "path", path, "categories", catalog.Len())
	return catalog, nil
}

func loadDefault() (*Catalog, error) {
	data, err := defaultCatalogFS.ReadFile("categories.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in catalog: %w", err)
	}

	catalog, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid built-in catalog: %w", err)
	}

	return catalog, nil
}

func parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&catalog); err != nil {
		return nil, err
	}

	return &catalog, nil
}

func validate(catalog *Catalog) error {
	if len(catalog.Categories) == 0 {
		return fmt.Errorf("catalog contains no categories")
	}

	seen := make(map[string]bool, len(catalog.Categories))
	for i, cat := range catalog.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category at index %d has no name", i)
		}
		if cat.ID <= 0 {
			return fmt.Errorf("category %q has invalid id %d", cat.Name, cat.ID)
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category name %q", cat.Name)
		}
		seen[cat.Name] = true
	}

	return nil
}
