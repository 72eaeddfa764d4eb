package packager

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ManifestName is the file name browsers load the manifest from.
const ManifestName = "manifest.json"

// versionPlaceholder is replaced by the release version in archive templates.
const versionPlaceholder = "{version}"

// Target is one browser package.
type Target struct {
	Name string
	// Manifest is the path of the platform manifest injected as manifest.json.
	Manifest string
	// Archive is the output file name template, e.g. "ext-{version}-fx.zip".
	Archive string
}

// ArchiveName expands the archive template with version.
func (t Target) ArchiveName(version string) string {
	return strings.ReplaceAll(t.Archive, versionPlaceholder, version)
}

// Validate checks that the target is usable.
func (t Target) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("target has no name")
	}
	if t.Manifest == "" {
		return fmt.Errorf("target %s: no manifest", t.Name)
	}
	if t.Archive == "" {
		return fmt.Errorf("target %s: no archive template", t.Name)
	}
	if !strings.Contains(t.Archive, versionPlaceholder) {
		return fmt.Errorf("target %s: archive template %q has no %s placeholder", t.Name, t.Archive, versionPlaceholder)
	}
	if filepath.Base(t.Archive) != t.Archive {
		return fmt.Errorf("target %s: archive template %q must be a file name", t.Name, t.Archive)
	}
	return nil
}

// SelectTargets returns the targets whose names are listed, in the order of
// all. An empty names list selects every target.
func SelectTargets(all []Target, names []string) ([]Target, error) {
	if len(names) == 0 {
		return all, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var selected []Target
	for _, t := range all {
		if want[t.Name] {
			selected = append(selected, t)
			delete(want, t.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown target %q", n)
	}
	return selected, nil
}
