// Package catalog holds the make/model lookup table produced by the model
// fetcher and persists it as indented JSON. Writes either replace the file
// atomically or, for compatibility with older tooling, append to it.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/salvage-search/salvage-tools/internal/registry"
)

// Model is one vehicle line of a make, keyed in Make.Models by its
// normalized name.
type Model struct {
	DisplayName string      `json:"displayName"`
	ID          registry.ID `json:"id"`
}

// Make is a manufacturer entry in the catalog.
type Make struct {
	ID     registry.ID      `json:"id"`
	Models map[string]Model `json:"models"`
}

// Catalog maps make names to their models.
type Catalog map[string]Make

// ModelCount returns the number of models across all makes.
func (c Catalog) ModelCount() int {
	n := 0
	for _, m := range c {
		n += len(m.Models)
	}
	return n
}

// WriteMode selects how Write treats an existing file.
type WriteMode int

const (
	// Truncate replaces the file contents atomically.
	Truncate WriteMode = iota
	// Append adds the encoded catalog after any existing content. Repeated
	// runs produce concatenated JSON documents.
	Append
)

func (m WriteMode) String() string {
	switch m {
	case Truncate:
		return "truncate"
	case Append:
		return "append"
	default:
		return fmt.Sprintf("WriteMode(%d)", int(m))
	}
}

// Encode renders the catalog as JSON indented with four spaces. Makes and
// models are written in sorted key order, so output is stable across runs.
func Encode(c Catalog) ([]byte, error) {
	if c == nil {
		c = Catalog{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Write persists the catalog to path using the given mode. Parent
// directories are created as needed.
func Write(path string, c Catalog, mode WriteMode) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	switch mode {
	case Append:
		return appendFile(path, data)
	case Truncate:
		return replaceFile(path, data)
	default:
		return fmt.Errorf("unknown write mode %v", mode)
	}
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// replaceFile writes to a temp file in the target directory, then renames
// it over path. On failure the temp file is removed.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
