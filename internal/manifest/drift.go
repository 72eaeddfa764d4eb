package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions compares two version strings using semver.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
// Handles "v" prefix tolerance (strips leading "v" before parsing).
func CompareVersions(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// Drift describes a platform manifest whose version differs from the
// release version.
type Drift struct {
	Manifest string
	Want     string
	Got      string
	// Cmp is -1 when the platform manifest is behind the release version and
	// 1 when it is ahead. Zero when the versions could not be ordered.
	Cmp int
}

func (d *Drift) Error() string {
	switch d.Cmp {
	case -1:
		return fmt.Sprintf("%s has version %s, behind release version %s", d.Manifest, d.Got, d.Want)
	case 1:
		return fmt.Sprintf("%s has version %s, ahead of release version %s", d.Manifest, d.Got, d.Want)
	default:
		return fmt.Sprintf("%s has version %s, release version is %s", d.Manifest, d.Got, d.Want)
	}
}

// CheckDrift reads the version field of the manifest at path and compares
// it with want. It returns a *Drift when they differ and nil when they
// match. Versions that are not valid semver (such as four-part browser
// versions) are compared as plain strings.
func CheckDrift(path, want string) (*Drift, error) {
	ext, err := Parse(path)
	if err != nil {
		return nil, err
	}
	got := ext.Version

	cmp, err := CompareVersions(got, want)
	if err != nil {
		if got == want {
			return nil, nil
		}
		return &Drift{Manifest: path, Want: want, Got: got}, nil
	}
	if cmp == 0 {
		return nil, nil
	}
	return &Drift{Manifest: path, Want: want, Got: got, Cmp: cmp}, nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
