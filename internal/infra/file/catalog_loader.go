package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"paradox-quiz-service/internal/domain"
)

// catalogDocument is the on-disk catalog format.
type catalogDocument struct {
	Paradoxes []domain.Paradox `json:"paradoxes" yaml:"paradoxes"`
}

// CatalogLoader reads the catalog from a YAML or JSON file on every load.
type CatalogLoader struct {
	path string
}

func NewCatalogLoader(path string) *CatalogLoader {
	return &CatalogLoader{path: path}
}

func (l *CatalogLoader) LoadCatalog(_ context.Context) ([]domain.Paradox, error) {
	return LoadCatalog(l.path)
}

// LoadCatalog reads, parses and checks a catalog file.
func LoadCatalog(path string) ([]domain.Paradox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	doc, err := parseCatalog(data, path)
	if err != nil {
		return nil, err
	}
	if err := checkCatalog(doc.Paradoxes); err != nil {
		return nil, err
	}
	return doc.Paradoxes, nil
}

func parseCatalog(data []byte, path string) (catalogDocument, error) {
	var doc catalogDocument
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&doc); err != nil {
			return catalogDocument{}, fmt.Errorf("parse json catalog: %w", err)
		}
		return doc, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return catalogDocument{}, nil
		}
		return catalogDocument{}, fmt.Errorf("parse yaml catalog: %w", err)
	}
	return doc, nil
}

// checkCatalog rejects entries the filter engine cannot reason about:
// missing IDs, duplicates, and the required context/medium attributes.
func checkCatalog(items []domain.Paradox) error {
	seen := make(map[string]struct{}, len(items))
	for i, p := range items {
		if p.ID == "" {
			return fmt.Errorf("catalog entry %d: missing id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("catalog entry %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Context == "" || p.Medium == "" {
			return fmt.Errorf("catalog entry %q: context and medium are required", p.ID)
		}
	}
	return nil
}
