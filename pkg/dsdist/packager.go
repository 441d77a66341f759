package dsdist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Packager stores an assembled package at a destination.
// Implementations are selected by destination scheme (local directory,
// s3://, az://, postgres://).
type Packager interface {
	// Push stores every entry of pkg plus its README, metadata snapshot and
	// manifest. A failed push must not report success for a partial upload.
	Push(ctx context.Context, pkg *Package, destination string) (PackageHandle, error)
}

// Package is the unit handed to a Packager.
type Package struct {
	Name     string    // Human readable dataset name
	Slug     string    // Path-safe dataset name
	Owner    string    // Package owner / namespace
	Message  string    // Commit message for this revision
	Revision uuid.UUID // Unique revision id
	Created  time.Time // Build timestamp (UTC)

	// Labels lists group labels in manifest order.
	Labels []string

	// Entries lists every (label, file) pair in manifest order.
	Entries []Entry

	// Manifest is the JSON encoding of label -> path -> metadata record.
	Manifest []byte

	// Readme is the rendered README document.
	Readme []byte

	// MetadataCSV is the CSV snapshot of the source table.
	MetadataCSV []byte
}

// Entry is one file of one group.
type Entry struct {
	Label     string                 // Group label
	Path      string                 // Absolute source path
	Meta      map[string]interface{} // Reduced, JSON-safe metadata
	Checksum  string                 // SHA-256 of the file content
	SizeBytes int64                  // File size in bytes
}

// Keys returns the top-level keys of the package: every group label
// followed by the README and metadata snapshot entries.
func (p *Package) Keys() []string {
	keys := make([]string, 0, len(p.Labels)+2)
	keys = append(keys, p.Labels...)
	return append(keys, ReadmeEntry, MetadataSnapshotEntry)
}

// PackageHandle describes a stored package revision.
type PackageHandle struct {
	Name        string
	Revision    uuid.UUID
	Destination string // Destination as requested ("" for a local build)
	Location    string // Where the manifest ended up (directory, object URL, catalog row)
	Keys        []string
}
