package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Extension holds the manifest fields the packager cares about.
type Extension struct {
	ManifestVersion int    `json:"manifest_version"`
	Name            string `json:"name"`
	Version         string `json:"version"`
	Description     string `json:"description,omitempty"`
}

// Parse reads a manifest file as JSON.
func Parse(path string) (*Extension, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var ext Extension
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &ext, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
