// Package local writes packages to a directory on the build machine.
//
// Layout: <dir>/<slug>/<revision>/{README.md, metadata.csv, package.json,
// manifest.json}. Data files stay where they are; package.json records their
// absolute paths and checksums.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/packager/bundle"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Packager writes revisions under a build directory.
type Packager struct {
	dir    string
	fsys   filesystem.WritableFileSystem
	logger dsdist.Logger
}

// New returns a packager writing under dir ("" = dsdist.DefaultBuildDir).
func New(dir string, fsys filesystem.WritableFileSystem, logger dsdist.Logger) *Packager {
	if dir == "" {
		dir = dsdist.DefaultBuildDir
	}
	return &Packager{dir: dir, fsys: fsys, logger: logger}
}

// Push writes the revision into a staging directory and renames it into
// place, so a failed push leaves no revision directory behind.
func (p *Packager) Push(ctx context.Context, pkg *dsdist.Package, destination string) (dsdist.PackageHandle, error) {
	final, err := p.fsys.Abs(filepath.Join(p.dir, filepath.FromSlash(bundle.RevisionDir(pkg))))
	if err != nil {
		return dsdist.PackageHandle{}, fmt.Errorf("failed to resolve build directory: %w", err)
	}
	if _, err := p.fsys.Stat(final); err == nil {
		return dsdist.PackageHandle{}, fmt.Errorf("revision directory %s already exists", final)
	}

	parent := filepath.Dir(final)
	if err := p.checkSlugOwner(parent, pkg.Name); err != nil {
		return dsdist.PackageHandle{}, err
	}
	if err := p.fsys.MkdirAll(parent); err != nil {
		return dsdist.PackageHandle{}, fmt.Errorf("failed to create %s: %w", parent, err)
	}

	staging, err := p.fsys.MkdirTemp(parent, ".staging-")
	if err != nil {
		return dsdist.PackageHandle{}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = p.fsys.RemoveAll(staging)
		}
	}()

	docs, err := bundle.Documents(pkg, bundle.NewIndex(pkg, nil))
	if err != nil {
		return dsdist.PackageHandle{}, err
	}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return dsdist.PackageHandle{}, err
		}
		target := filepath.Join(staging, doc.Name)
		if err := p.fsys.WriteFile(target, doc.Body); err != nil {
			return dsdist.PackageHandle{}, fmt.Errorf("failed to write %s: %w", doc.Name, err)
		}
		p.logger.Verbose("Wrote %s", target)
	}

	if err := p.fsys.Rename(staging, final); err != nil {
		return dsdist.PackageHandle{}, fmt.Errorf("failed to move revision into place: %w", err)
	}
	committed = true

	return dsdist.PackageHandle{
		Name:        pkg.Name,
		Revision:    pkg.Revision,
		Destination: destination,
		Location:    final,
		Keys:        pkg.Keys(),
	}, nil
}

// checkSlugOwner rejects name when slugDir already holds a revision of a
// different name that maps to the same slug.
func (p *Packager) checkSlugOwner(slugDir, name string) error {
	revisions, err := p.fsys.ReadDir(slugDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", slugDir, err)
	}
	for _, rev := range revisions {
		if !rev.IsDir() || strings.HasPrefix(rev.Name(), ".") {
			continue
		}
		data, err := p.fsys.ReadFile(filepath.Join(slugDir, rev.Name(), bundle.IndexEntry))
		if err != nil {
			continue
		}
		var idx bundle.Index
		if json.Unmarshal(data, &idx) != nil || idx.Name == "" {
			continue
		}
		if idx.Name != name {
			return fmt.Errorf("dataset %q maps to %s, already used by %q: %w",
				name, slugDir, idx.Name, dsdist.ErrValidation)
		}
		return nil
	}
	return nil
}
