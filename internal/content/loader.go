// Package content loads card collections from disk into a catalog.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"cardduel/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither YAML nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported collection format")
	// ErrInvalidCollection wraps every validation failure of a collection file.
	ErrInvalidCollection = errors.New("invalid collection")
)

// Format is the encoding of a collection file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor infers the format from a file name.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Parse decodes and validates one collection. Cards without a collection
// id inherit the collection's id.
func Parse(data []byte, format Format) (domain.Collection, error) {
	var col domain.Collection
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &col)
	case FormatJSON:
		err = json.Unmarshal(data, &col)
	default:
		return domain.Collection{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return domain.Collection{}, fmt.Errorf("failed to decode collection: %w", err)
	}

	if col.ID == "" {
		return domain.Collection{}, fmt.Errorf("%w: missing id", ErrInvalidCollection)
	}
	seen := make(map[string]struct{}, len(col.Cards))
	for i := range col.Cards {
		card := &col.Cards[i]
		if card.ID == "" {
			return domain.Collection{}, fmt.Errorf("%w: %s card #%d has no id", ErrInvalidCollection, col.ID, i)
		}
		if _, dup := seen[card.ID]; dup {
			return domain.Collection{}, fmt.Errorf("%w: %s has duplicate card %s", ErrInvalidCollection, col.ID, card.ID)
		}
		seen[card.ID] = struct{}{}
		if !card.Type.Valid() {
			return domain.Collection{}, fmt.Errorf("%w: card %s has unknown type %q", ErrInvalidCollection, card.ID, card.Type)
		}
		if !card.Rarity.Valid() {
			return domain.Collection{}, fmt.Errorf("%w: card %s has unknown rarity %q", ErrInvalidCollection, card.ID, card.Rarity)
		}
		if card.Collection == "" {
			card.Collection = col.ID
		}
	}
	return col, nil
}

// LoadFile reads and parses a single collection file.
func LoadFile(path string) (domain.Collection, error) {
	format, err := FormatFor(path)
	if err != nil {
		return domain.Collection{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("failed to read collection: %w", err)
	}
	col, err := Parse(data, format)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return col, nil
}

// LoadDir loads every YAML and JSON collection in dir, ordered by file
// name. Other files are ignored. Two files declaring the same collection
// id are an error.
func LoadDir(dir string) (domain.Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read collections dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatFor(e.Name()); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	catalog := make(domain.Catalog, 0, len(names))
	ids := make(map[string]string, len(names))
	for _, name := range names {
		col, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if prev, dup := ids[col.ID]; dup {
			return nil, fmt.Errorf("%w: collection %s declared by %s and %s", ErrInvalidCollection, col.ID, prev, name)
		}
		ids[col.ID] = name
		catalog = append(catalog, col)
	}
	return catalog, nil
}
