package packager

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Entry is one file to be stored in an archive.
type Entry struct {
	// Name is the slash-separated path inside the archive.
	Name string
	// Source is the file on disk.
	Source string
}

// Skip reasons reported in Skipped.Reason.
const (
	ReasonReplaced = "replaced by target manifest"
	ReasonDangling = "broken symlink"
	ReasonSpecial  = "not a regular file"
	ReasonCycle    = "symlink loop"
)

// Skipped records a source file left out of the archive.
type Skipped struct {
	Source string
	Reason string
}

// Expected reports whether the file was left out on purpose, as opposed to
// a link or special file that could not be packaged.
func (s Skipped) Expected() bool {
	return s.Reason == ReasonReplaced
}

// Plan lists the archive entries for target: the files under src in
// lexical depth-first order, minus any file named manifest.json, followed by
// the target manifest as manifest.json. Symlinks are followed; broken links,
// loops and special files are reported as skipped.
func Plan(src string, target Target) ([]Entry, []Skipped, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, nil, fmt.Errorf("reading source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("source %s is not a directory", src)
	}

	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving source directory: %w", err)
	}

	w := &walker{active: map[string]bool{root: true}}
	if err := w.walk(src, ""); err != nil {
		return nil, nil, err
	}

	w.entries = append(w.entries, Entry{Name: ManifestName, Source: target.Manifest})
	return w.entries, w.skipped, nil
}

type walker struct {
	entries []Entry
	skipped []Skipped
	// active holds the resolved directories on the current descent path.
	active map[string]bool
}

// walk appends entries for dir, whose archive prefix is prefix. Directories
// are recursed into and never become entries of their own.
func (w *walker) walk(dir, prefix string) error {
	list, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}

	for _, de := range list {
		srcPath := filepath.Join(dir, de.Name())
		name := path.Join(prefix, de.Name())

		mode := de.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(srcPath)
			if err != nil {
				w.skip(srcPath, ReasonDangling)
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			if err := w.descend(srcPath, name); err != nil {
				return err
			}
		case !mode.IsRegular():
			w.skip(srcPath, ReasonSpecial)
		case de.Name() == ManifestName:
			w.skip(srcPath, ReasonReplaced)
		default:
			w.entries = append(w.entries, Entry{Name: name, Source: srcPath})
		}
	}
	return nil
}

func (w *walker) descend(dir, prefix string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.skip(dir, ReasonDangling)
		return nil
	}
	if w.active[resolved] {
		w.skip(dir, ReasonCycle)
		return nil
	}
	w.active[resolved] = true
	defer delete(w.active, resolved)
	return w.walk(dir, prefix)
}

func (w *walker) skip(src, reason string) {
	w.skipped = append(w.skipped, Skipped{Source: src, Reason: reason})
}
