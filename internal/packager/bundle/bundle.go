// Package bundle lays out the documents every packaging backend writes for
// one package revision.
package bundle

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// IndexEntry is the file name of the revision index.
const IndexEntry = "package.json"

// Document is one file of a revision.
type Document struct {
	Name        string
	Body        []byte
	ContentType string
}

// IndexedEntry records where one package entry was stored.
type IndexedEntry struct {
	Label     string `json:"label"`
	Path      string `json:"path"`
	Object    string `json:"object,omitempty"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
}

// Index describes a revision: who built it, when, and every entry.
type Index struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Owner    string         `json:"owner,omitempty"`
	Message  string         `json:"message,omitempty"`
	Revision uuid.UUID      `json:"revision"`
	Created  time.Time      `json:"created"`
	Keys     []string       `json:"keys"`
	Entries  []IndexedEntry `json:"entries"`
}

// NewIndex builds the index of pkg. object maps an entry to the name it was
// stored under; nil leaves Object empty.
func NewIndex(pkg *dsdist.Package, object func(dsdist.Entry) string) Index {
	idx := Index{
		Name:     pkg.Name,
		Slug:     pkg.Slug,
		Owner:    pkg.Owner,
		Message:  pkg.Message,
		Revision: pkg.Revision,
		Created:  pkg.Created,
		Keys:     pkg.Keys(),
		Entries:  make([]IndexedEntry, 0, len(pkg.Entries)),
	}
	for _, e := range pkg.Entries {
		ie := IndexedEntry{Label: e.Label, Path: e.Path, SHA256: e.Checksum, SizeBytes: e.SizeBytes}
		if object != nil {
			ie.Object = object(e)
		}
		idx.Entries = append(idx.Entries, ie)
	}
	return idx
}

// Documents returns the revision documents in write order. The manifest
// comes last: a revision without manifest.json is incomplete.
func Documents(pkg *dsdist.Package, idx Index) ([]Document, error) {
	indexJSON, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", IndexEntry, err)
	}
	return []Document{
		{Name: dsdist.ReadmeEntry, Body: pkg.Readme, ContentType: "text/markdown; charset=utf-8"},
		{Name: dsdist.MetadataSnapshotEntry, Body: pkg.MetadataCSV, ContentType: "text/csv; charset=utf-8"},
		{Name: IndexEntry, Body: indexJSON, ContentType: "application/json"},
		{Name: dsdist.ManifestEntry, Body: pkg.Manifest, ContentType: "application/json"},
	}, nil
}

// EntryObject returns the storage name of an entry relative to the dataset
// root: "<label>/<first 12 hex of sha256>-<basename>". Identical content under
// one label maps to one object across revisions.
func EntryObject(e dsdist.Entry) string {
	sum := e.Checksum
	if len(sum) > 12 {
		sum = sum[:12]
	}
	return path.Join(e.Label, sum+"-"+filepath.Base(e.Path))
}

// RevisionDir returns "<slug>/<revision>".
func RevisionDir(pkg *dsdist.Package) string {
	return path.Join(pkg.Slug, pkg.Revision.String())
}
