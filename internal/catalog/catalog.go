// Package catalog reads pattern catalogs from YAML and converts them to
// repository rows.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jask/patterndeck/internal/database/repository"
	"github.com/jask/patterndeck/internal/deck"
)

//go:embed default_patterns.yaml
var defaultCatalog []byte

// Entry is one pattern as written in a catalog file.
type Entry struct {
	DocumentID  string   `yaml:"documentId"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Phases      []string `yaml:"phases"`
	Image       string   `yaml:"image"`
	Related     []string `yaml:"related"` // ids or names
}

// Catalog is an ordered list of entries.
type Catalog struct {
	Patterns []Entry `yaml:"patterns"`
}

// Default returns the catalog bundled with the binary.
func Default() (Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Load reads a catalog file.
func Load(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a catalog. Missing ids are derived from the
// pattern name so re-imports update the same rows.
func Parse(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	seen := map[string]bool{}
	for i := range c.Patterns {
		e := &c.Patterns[i]
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return Catalog{}, fmt.Errorf("pattern %d: name required", i+1)
		}
		if !deck.Category(e.Category).Valid() {
			return Catalog{}, fmt.Errorf("pattern %q: unknown category %q", e.Name, e.Category)
		}
		if e.DocumentID == "" {
			e.DocumentID = IDFor(e.Name)
		}
		if seen[e.DocumentID] {
			return Catalog{}, fmt.Errorf("pattern %q: duplicate documentId %q", e.Name, e.DocumentID)
		}
		seen[e.DocumentID] = true
	}
	return c, nil
}

// IDFor derives a stable id from a pattern name.
func IDFor(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("pattern:"+strings.ToLower(strings.TrimSpace(name)))).String()
}

// Rows converts the catalog to repository rows. Related entries given by
// name are resolved against the catalog; unknown names are kept as ids.
func (c Catalog) Rows() []repository.Pattern {
	byName := make(map[string]string, len(c.Patterns))
	for _, e := range c.Patterns {
		byName[strings.ToLower(e.Name)] = e.DocumentID
	}
	out := make([]repository.Pattern, 0, len(c.Patterns))
	for i, e := range c.Patterns {
		row := repository.Pattern{
			ID:          e.DocumentID,
			Name:        e.Name,
			Description: strings.TrimSpace(e.Description),
			Category:    e.Category,
			SortOrder:   i + 1,
			Phases:      e.Phases,
		}
		if e.Image != "" {
			img := e.Image
			row.ImageURL = &img
		}
		for _, rel := range e.Related {
			if id, ok := byName[strings.ToLower(strings.TrimSpace(rel))]; ok {
				row.RelatedIDs = append(row.RelatedIDs, id)
				continue
			}
			row.RelatedIDs = append(row.RelatedIDs, rel)
		}
		out = append(out, row)
	}
	return out
}
