package table

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Load returns a table for src, which is either a path to a .csv, .tsv or
// .parquet file or an already built *Table.
//
// Errors wrap dsdist.ErrNotFound for missing files, dsdist.ErrIsADirectory
// for directories and dsdist.ErrInvalidType for any other source type or
// unsupported file extension.
func Load(fsys filesystem.FileSystemProvider, src interface{}) (*Table, error) {
	switch s := src.(type) {
	case *Table:
		if s == nil {
			return nil, fmt.Errorf("nil table: %w", dsdist.ErrInvalidType)
		}
		return s, nil
	case string:
		return LoadFile(fsys, s)
	default:
		return nil, fmt.Errorf("unsupported table source of type %T: %w", src, dsdist.ErrInvalidType)
	}
}

// LoadFile reads a table from disk, choosing the decoder by file extension.
func LoadFile(fsys filesystem.FileSystemProvider, path string) (*Table, error) {
	abs, err := filesystem.RequireFile(fsys, path)
	if err != nil {
		return nil, err
	}

	data, err := fsys.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", path, err)
	}

	var t *Table
	switch ext := strings.ToLower(filepath.Ext(abs)); ext {
	case ".csv":
		t, err = ReadCSV(bytes.NewReader(data), ',')
	case ".tsv":
		t, err = ReadCSV(bytes.NewReader(data), '\t')
	case ".parquet", ".pq":
		t, err = ReadParquet(context.Background(), data)
	default:
		return nil, fmt.Errorf("unsupported table file extension %q: %w", ext, dsdist.ErrInvalidType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", path, err)
	}

	t.source = abs
	t.baseDir = filepath.Dir(abs)
	return t, nil
}
