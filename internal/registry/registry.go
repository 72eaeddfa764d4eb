package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Registry maps make names to make identifiers.
type Registry struct {
	names []string
	ids   map[string]ID
}

// Load reads and parses the registry file at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading make registry %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing make registry %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a registry from a JSON object. Key order is preserved; a
// repeated key keeps its first position and its last value.
func Parse(data []byte) (*Registry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("registry must be a JSON object")
	}

	r := &Registry{ids: make(map[string]ID)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading make name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var id ID
		if err := dec.Decode(&id); err != nil {
			return nil, fmt.Errorf("make %q: %w", name, err)
		}
		if id.IsZero() {
			return nil, fmt.Errorf("make %q has no id", name)
		}

		if _, seen := r.ids[name]; !seen {
			r.names = append(r.names, name)
		}
		r.ids[name] = id
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading registry end: %w", err)
	}
	return r, nil
}

// Len returns the number of makes.
func (r *Registry) Len() int {
	return len(r.names)
}

// Lookup returns the identifier for a make.
func (r *Registry) Lookup(name string) (ID, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// NamesFrom returns, in file order, the makes whose name sorts at or after
// start. An empty start returns every make.
func (r *Registry) NamesFrom(start string) []string {
	var out []string
	for _, name := range r.names {
		if name < start {
			continue
		}
		out = append(out, name)
	}
	return out
}
