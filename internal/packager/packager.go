package packager

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/salvage-search/salvage-tools/internal/logging"
)

// ErrNoVersion is returned when packaging is attempted without a version.
var ErrNoVersion = errors.New("release version is empty")

// Artifact describes a written archive.
type Artifact struct {
	Target  string
	Path    string
	Entries []string
	Size    int64
}

// Packager writes target archives for one source tree.
type Packager struct {
	src         string
	dest        string
	keepPartial bool
	log         *slog.Logger
}

// Option configures a Packager.
type Option func(*Packager)

// WithLogger sets the logger used for per-file and summary records.
func WithLogger(l *slog.Logger) Option {
	return func(p *Packager) {
		p.log = l
	}
}

// WithKeepPartial leaves a half-written archive in place after a failure.
func WithKeepPartial(keep bool) Option {
	return func(p *Packager) {
		p.keepPartial = keep
	}
}

// New creates a Packager reading from src and writing archives into dest.
func New(src, dest string, opts ...Option) *Packager {
	p := &Packager{
		src:  src,
		dest: dest,
		log:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan lists the entries the archive for target would contain.
func (p *Packager) Plan(target Target) ([]Entry, error) {
	entries, skipped, err := Plan(p.src, target)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		if s.Expected() {
			p.log.Debug("skipped", "file", s.Source, "reason", s.Reason)
			continue
		}
		p.log.Warn("skipped", "file", s.Source, "reason", s.Reason)
	}
	return entries, nil
}

// PackageAll builds every target in order and stops at the first failure.
func (p *Packager) PackageAll(targets []Target, version string) ([]Artifact, error) {
	var artifacts []Artifact
	for _, t := range targets {
		a, err := p.Package(t, version)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, *a)
	}
	return artifacts, nil
}

// Package writes the archive for one target.
func (p *Packager) Package(target Target, version string) (*Artifact, error) {
	if version == "" {
		return nil, ErrNoVersion
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	archiveName := target.ArchiveName(version)
	if filepath.Base(archiveName) != archiveName || archiveName == ".." {
		return nil, fmt.Errorf("target %s: archive name %q for version %q is not a file name", target.Name, archiveName, version)
	}

	entries, err := p.Plan(target)
	if err != nil {
		return nil, fmt.Errorf("planning %s package: %w", target.Name, err)
	}

	if err := os.MkdirAll(p.dest, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", p.dest, err)
	}

	archivePath := filepath.Join(p.dest, archiveName)
	p.log.Info("building package", "target", target.Name, "version", version, "archive", archivePath)

	size, err := p.writeArchive(archivePath, entries)
	if err != nil {
		if !p.keepPartial {
			_ = os.Remove(archivePath)
		}
		return nil, fmt.Errorf("writing %s package: %w", target.Name, err)
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	p.log.Info("package written",
		"target", target.Name,
		"entries", len(entries),
		"size", humanize.Bytes(uint64(size)),
	)

	return &Artifact{
		Target:  target.Name,
		Path:    archivePath,
		Entries: names,
		Size:    size,
	}, nil
}

func (p *Packager) writeArchive(archivePath string, entries []Entry) (int64, error) {
	f, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}

	zw := zip.NewWriter(f)
	for _, e := range entries {
		p.log.Debug("adding", "entry", e.Name, "source", e.Source)
		if err := addFile(zw, e); err != nil {
			zw.Close()
			f.Close()
			return 0, err
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing archive: %w", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return 0, fmt.Errorf("stat archive: %w", err)
	}
	return info.Size(), nil
}

func addFile(zw *zip.Writer, e Entry) error {
	in, err := os.Open(e.Source)
	if err != nil {
		return fmt.Errorf("opening %s: %w", e.Source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", e.Source, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", e.Source)
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("building header for %s: %w", e.Source, err)
	}
	hdr.Name = e.Name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", e.Name, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("copying %s: %w", e.Source, err)
	}
	return nil
}
