package packager

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

// writeTree creates files under root from a map of slash paths to contents.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// readArchive returns entry names in order and their contents.
func readArchive(t *testing.T, path string) ([]string, map[string]string) {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening archive %s: %v", path, err)
	}
	defer r.Close()

	var names []string
	contents := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading entry %s: %v", f.Name, err)
		}
		names = append(names, f.Name)
		contents[f.Name] = string(data)
	}
	return names, contents
}

type fixture struct {
	src    string
	dest   string
	target Target
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeTree(t, src, map[string]string{
		"a.txt":         "alpha",
		"manifest.json": `{"version": "real"}`,
		"sub/b.txt":     "bravo",
	})
	manifest := filepath.Join(root, "manifest-x.json")
	if err := os.WriteFile(manifest, []byte(`{"version": "x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	return fixture{
		src:  src,
		dest: filepath.Join(root, "releases"),
		target: Target{
			Name:     "x",
			Manifest: manifest,
			Archive:  "ext-{version}-x.zip",
		},
	}
}

func TestPackageSwapsManifest(t *testing.T) {
	fx := newFixture(t)

	a, err := New(fx.src, fx.dest).Package(fx.target, "2.3.1")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}

	wantPath := filepath.Join(fx.dest, "ext-2.3.1-x.zip")
	if a.Path != wantPath {
		t.Errorf("Path = %s, want %s", a.Path, wantPath)
	}
	if a.Size <= 0 {
		t.Errorf("Size = %d, want > 0", a.Size)
	}

	names, contents := readArchive(t, a.Path)
	wantNames := []string{"a.txt", "sub/b.txt", "manifest.json"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("entries = %v, want %v", names, wantNames)
	}
	if !reflect.DeepEqual(a.Entries, wantNames) {
		t.Errorf("Artifact.Entries = %v, want %v", a.Entries, wantNames)
	}
	if contents["manifest.json"] != `{"version": "x"}` {
		t.Errorf("manifest.json = %q, want target manifest", contents["manifest.json"])
	}
	for name, data := range contents {
		if data == `{"version": "real"}` {
			t.Errorf("source manifest leaked in as %s", name)
		}
	}
	if contents["sub/b.txt"] != "bravo" {
		t.Errorf("sub/b.txt = %q", contents["sub/b.txt"])
	}
}

func TestPackageSkipsNestedManifests(t *testing.T) {
	fx := newFixture(t)
	writeTree(t, fx.src, map[string]string{
		"vendor/manifest.json": "{}",
		"vendor/lib.js":        "lib",
	})

	a, err := New(fx.src, fx.dest).Package(fx.target, "1.0")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	names, _ := readArchive(t, a.Path)
	want := []string{"a.txt", "sub/b.txt", "vendor/lib.js", "manifest.json"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestPackageIsDeterministic(t *testing.T) {
	fx := newFixture(t)
	p := New(fx.src, fx.dest)

	first, err := p.Package(fx.target, "1.0")
	if err != nil {
		t.Fatal(err)
	}
	firstNames, firstContents := readArchive(t, first.Path)

	second, err := p.Package(fx.target, "1.0")
	if err != nil {
		t.Fatal(err)
	}
	secondNames, secondContents := readArchive(t, second.Path)

	if !reflect.DeepEqual(firstNames, secondNames) {
		t.Errorf("entry lists differ: %v vs %v", firstNames, secondNames)
	}
	if !reflect.DeepEqual(firstContents, secondContents) {
		t.Error("entry contents differ between runs")
	}
}

func TestPackageAllBuildsEveryTarget(t *testing.T) {
	fx := newFixture(t)
	other := fx.target
	other.Name = "y"
	other.Archive = "ext-{version}-y.zip"

	artifacts, err := New(fx.src, fx.dest).PackageAll([]Target{fx.target, other}, "3.0.0")
	if err != nil {
		t.Fatalf("PackageAll: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("len(artifacts) = %d, want 2", len(artifacts))
	}
	for _, name := range []string{"ext-3.0.0-x.zip", "ext-3.0.0-y.zip"} {
		if _, err := os.Stat(filepath.Join(fx.dest, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestPackageRejectsEmptyVersion(t *testing.T) {
	fx := newFixture(t)
	_, err := New(fx.src, fx.dest).Package(fx.target, "")
	if !errors.Is(err, ErrNoVersion) {
		t.Fatalf("err = %v, want ErrNoVersion", err)
	}
	if _, err := os.Stat(fx.dest); !os.IsNotExist(err) {
		t.Error("no output should be created without a version")
	}
}

func TestPackageMissingSource(t *testing.T) {
	fx := newFixture(t)
	_, err := New(filepath.Join(fx.src, "missing"), fx.dest).Package(fx.target, "1.0")
	if err == nil {
		t.Fatal("expected error for missing source directory")
	}
	if _, err := os.Stat(filepath.Join(fx.dest, "ext-1.0-x.zip")); !os.IsNotExist(err) {
		t.Error("archive should not exist")
	}
}

func TestPackageRemovesPartialArchive(t *testing.T) {
	fx := newFixture(t)
	fx.target.Manifest = filepath.Join(filepath.Dir(fx.src), "missing-manifest.json")

	_, err := New(fx.src, fx.dest).Package(fx.target, "1.0")
	if err == nil {
		t.Fatal("expected error for missing target manifest")
	}
	if _, err := os.Stat(filepath.Join(fx.dest, "ext-1.0-x.zip")); !os.IsNotExist(err) {
		t.Errorf("partial archive should be removed, stat err = %v", err)
	}
}

func TestPackageKeepPartial(t *testing.T) {
	fx := newFixture(t)
	fx.target.Manifest = filepath.Join(filepath.Dir(fx.src), "missing-manifest.json")

	_, err := New(fx.src, fx.dest, WithKeepPartial(true)).Package(fx.target, "1.0")
	if err == nil {
		t.Fatal("expected error for missing target manifest")
	}
	if _, err := os.Stat(filepath.Join(fx.dest, "ext-1.0-x.zip")); err != nil {
		t.Errorf("partial archive should be kept: %v", err)
	}
}

func TestPackageIncludesSymlinkedFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	fx := newFixture(t)
	shared := filepath.Join(filepath.Dir(fx.src), "shared.js")
	if err := os.WriteFile(shared, []byte("shared"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(shared, filepath.Join(fx.src, "shared.js")); err != nil {
		t.Fatal(err)
	}

	a, err := New(fx.src, fx.dest).Package(fx.target, "1.0")
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	names, contents := readArchive(t, a.Path)
	want := []string{"a.txt", "shared.js", "sub/b.txt", "manifest.json"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("entries = %v, want %v", names, want)
	}
	if contents["shared.js"] != "shared" {
		t.Errorf("shared.js = %q, want link target contents", contents["shared.js"])
	}
}

func TestPackageRejectsVersionOutsideDest(t *testing.T) {
	for _, version := range []string{"../1.0", "1.0/evil", ".."} {
		t.Run(version, func(t *testing.T) {
			fx := newFixture(t)
			fx.target.Archive = "{version}"
			_, err := New(fx.src, fx.dest).Package(fx.target, version)
			if err == nil {
				t.Fatal("expected error for version that escapes the output directory")
			}
			if _, err := os.Stat(fx.dest); !os.IsNotExist(err) {
				t.Error("no output should be created")
			}
		})
	}
}
