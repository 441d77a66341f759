package bundle

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

func testPackage() *dsdist.Package {
	return &dsdist.Package{
		Name:     "Cell Atlas",
		Slug:     "cell_atlas",
		Owner:    "lab",
		Revision: uuid.MustParse("6f1c9f8e-3a7b-4d5e-9f00-1234567890ab"),
		Created:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Labels:   []string{"images", dsdist.ReferencedFilesLabel},
		Entries: []dsdist.Entry{
			{Label: "images", Path: "/data/a.tif", Checksum: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", SizeBytes: 3},
		},
		Manifest:    []byte(`{"images":{}}`),
		Readme:      []byte("# Cells\n"),
		MetadataCSV: []byte("path\n"),
	}
}

func TestEntryObject(t *testing.T) {
	e := testPackage().Entries[0]
	assert.Equal(t, "images/ba7816bf8f01-a.tif", EntryObject(e))
	assert.Equal(t, "x/-b", EntryObject(dsdist.Entry{Label: "x", Path: "/b"}))
}

func TestDocuments_ManifestLast(t *testing.T) {
	pkg := testPackage()
	docs, err := Documents(pkg, NewIndex(pkg, EntryObject))
	require.NoError(t, err)

	require.Len(t, docs, 4)
	assert.Equal(t, dsdist.ReadmeEntry, docs[0].Name)
	assert.Equal(t, dsdist.MetadataSnapshotEntry, docs[1].Name)
	assert.Equal(t, IndexEntry, docs[2].Name)
	assert.Equal(t, dsdist.ManifestEntry, docs[3].Name)

	var idx Index
	require.NoError(t, json.Unmarshal(docs[2].Body, &idx))
	assert.Equal(t, pkg.Revision, idx.Revision)
	assert.Equal(t, []string{"images", dsdist.ReferencedFilesLabel, dsdist.ReadmeEntry, dsdist.MetadataSnapshotEntry}, idx.Keys)
	require.Len(t, idx.Entries, 1)
	assert.Equal(t, "images/ba7816bf8f01-a.tif", idx.Entries[0].Object)
}

func TestRevisionDir(t *testing.T) {
	assert.Equal(t, "cell_atlas/6f1c9f8e-3a7b-4d5e-9f00-1234567890ab", RevisionDir(testPackage()))
}
