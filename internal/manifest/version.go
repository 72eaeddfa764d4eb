package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
)

// ErrVersionNotFound is returned when no line of a manifest carries a
// "version" field in the expected form.
var ErrVersionNotFound = errors.New("version not found")

// versionLine matches `"version": "<value>"` preceded only by spaces. The
// value runs to the last quote on the line.
var versionLine = regexp.MustCompile(`^ *"version": "(.*)"`)

// ReadVersion opens the manifest at path and returns its version string.
func ReadVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening manifest %s: %w", path, err)
	}
	defer f.Close()

	v, err := ExtractVersion(f)
	if err != nil {
		return "", fmt.Errorf("manifest %s: %w", path, err)
	}
	return v, nil
}

// ExtractVersion returns the value of the first matching version line in r.
// A matching line with an empty value is treated as not found.
func ExtractVersion(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if m := versionLine.FindStringSubmatch(line); m != nil {
			if m[1] == "" {
				return "", fmt.Errorf("%w: empty version value", ErrVersionNotFound)
			}
			return m[1], nil
		}
		if err == io.EOF {
			return "", ErrVersionNotFound
		}
		if err != nil {
			return "", fmt.Errorf("reading manifest: %w", err)
		}
	}
}
