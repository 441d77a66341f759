// Package objectstore pushes packages to a bucket-style store. The S3 and
// Azure Blob backends only provide the Store; upload order, retries and the
// object layout live here.
//
// Layout under the destination prefix:
//
//	<slug>/<label>/<sha256 prefix>-<basename>   data files, shared across revisions
//	<slug>/<revision>/README.md
//	<slug>/<revision>/metadata.csv
//	<slug>/<revision>/package.json
//	<slug>/<revision>/manifest.json             written last
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/packager/bundle"
	"github.com/vvka-141/dsdist/internal/packager/destination"
	"github.com/vvka-141/dsdist/internal/retry"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Store writes single objects into one container.
type Store interface {
	// Put stores size bytes read from body under key.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Location returns a URL-like name of key for reporting.
	Location(key string) string
}

// Publisher uploads packages through a Store.
type Publisher struct {
	store    Store
	dest     destination.Destination
	fsys     filesystem.FileSystemProvider
	executor *retry.Executor
	logger   dsdist.Logger
}

// NewPublisher creates a publisher. Every Put is wrapped in executor.
func NewPublisher(store Store, dest destination.Destination, fsys filesystem.FileSystemProvider, executor *retry.Executor, logger dsdist.Logger) *Publisher {
	if store == nil {
		panic("store cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}
	onRetry := func(attempt int, err error, delay time.Duration) {
		logger.Verbose("Upload attempt %d failed, retrying in %s: %v", attempt+1, delay, err)
	}
	return &Publisher{
		store:    store,
		dest:     dest,
		fsys:     fsys,
		executor: executor.WithOnRetry(onRetry),
		logger:   logger,
	}
}

// Push uploads data files first, then the revision documents with the
// manifest last. A file listed under several labels is uploaded once, under
// the first label it appears with. A failure stops the push; objects already
// written are left in place but the revision has no manifest.json.
func (p *Publisher) Push(ctx context.Context, pkg *dsdist.Package, rawDestination string) (dsdist.PackageHandle, error) {
	total := uniqueFiles(pkg.Entries)
	objects := make(map[string]string, total)
	for _, e := range pkg.Entries {
		if _, done := objects[e.Path]; done {
			continue
		}
		key := p.dest.Key(pkg.Slug, bundle.EntryObject(e))
		if err := p.putFile(ctx, key, e); err != nil {
			return dsdist.PackageHandle{}, err
		}
		objects[e.Path] = key
		dsdist.ReportProgress(ctx, len(objects), total)
	}
	p.logger.Verbose("Uploaded %d data files", len(objects))

	idx := bundle.NewIndex(pkg, func(e dsdist.Entry) string { return objects[e.Path] })
	docs, err := bundle.Documents(pkg, idx)
	if err != nil {
		return dsdist.PackageHandle{}, err
	}

	revision := bundle.RevisionDir(pkg)
	var manifestKey string
	for _, doc := range docs {
		key := p.dest.Key(revision, doc.Name)
		body := doc.Body
		err := p.executor.Execute(ctx, func(ctx context.Context) error {
			return p.store.Put(ctx, key, bytes.NewReader(body), int64(len(body)), doc.ContentType)
		})
		if err != nil {
			return dsdist.PackageHandle{}, fmt.Errorf("failed to upload %s: %w", key, err)
		}
		manifestKey = key
	}

	return dsdist.PackageHandle{
		Name:        pkg.Name,
		Revision:    pkg.Revision,
		Destination: rawDestination,
		Location:    p.store.Location(manifestKey),
		Keys:        pkg.Keys(),
	}, nil
}

func (p *Publisher) putFile(ctx context.Context, key string, e dsdist.Entry) error {
	err := p.executor.Execute(ctx, func(ctx context.Context) error {
		f, err := p.fsys.Open(e.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", e.Path, dsdist.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", e.Path, err)
		}
		defer f.Close()
		return p.store.Put(ctx, key, f, e.SizeBytes, "application/octet-stream")
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", e.Path, key, err)
	}
	p.logger.Verbose("Uploaded %s", p.store.Location(key))
	return nil
}

func uniqueFiles(entries []dsdist.Entry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.Path] = struct{}{}
	}
	return len(seen)
}
