// Package reducer collapses the rows that reference each file into one
// metadata record per file.
//
// For every (file, metadata column) pair the distinct observed values are
// kept in first-seen order. No values omits the key, a single value is
// emitted as a scalar and several values as an ordered list.
package reducer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/planner"
	"github.com/vvka-141/dsdist/internal/table"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// ReductionError reports a cell that cannot be reduced.
type ReductionError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *ReductionError) Error() string {
	return fmt.Sprintf("column %q row %d: value %s: %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *ReductionError) Unwrap() error { return e.Err }

// ValidateMetadata checks that every cell of the given columns has a JSON form.
func ValidateMetadata(t *table.Table, columns []string) error {
	for _, col := range columns {
		for r := 0; r < t.Len(); r++ {
			v := t.Cell(r, col)
			if _, err := v.JSON(); err != nil {
				return &ReductionError{Column: col, Row: r, Value: fmt.Sprintf("%v", v.Interface()), Err: err}
			}
		}
	}
	return nil
}

// ResolvePath turns a path cell into a cleaned absolute path. Relative paths
// resolve against the table's base directory, or the filesystem's working
// directory when the table has none.
func ResolvePath(fsys filesystem.FileSystemProvider, t *table.Table, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	if base := t.BaseDir(); base != "" {
		return filepath.Join(base, p), nil
	}
	abs, err := fsys.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", p, err)
	}
	return filepath.Clean(abs), nil
}

// pathCell returns the file referenced by row r through col, or "" when the
// row references nothing through that column.
func pathCell(fsys filesystem.FileSystemProvider, t *table.Table, r int, col string) (string, error) {
	v := t.Cell(r, col)
	if v.IsNull() {
		return "", nil
	}

	p, ok := v.Text()
	if !ok {
		return "", &ReductionError{
			Column: col,
			Row:    r,
			Value:  fmt.Sprintf("%v", v.Interface()),
			Err:    fmt.Errorf("path cell of kind %s is not a string: %w", v.Kind(), dsdist.ErrInvalidType),
		}
	}
	if strings.TrimSpace(p) == "" {
		return "", nil
	}
	return ResolvePath(fsys, t, p)
}

// Reduce builds the records of one planner group.
//
// Rows are visited in order and, within a row, path columns in group order.
// When the group has no metadata columns each file gets an "associates"
// entry holding the zero-based indices of the rows that reference it.
func Reduce(fsys filesystem.FileSystemProvider, t *table.Table, g planner.Group) (*Files, error) {
	if err := ValidateMetadata(t, g.MetadataColumns); err != nil {
		return nil, err
	}

	keys := g.MetadataColumns
	associates := len(keys) == 0
	if associates {
		keys = []string{dsdist.AssociatesKey}
	}

	files := NewFiles()
	acc := make(map[string]map[string]*OrderedSet)

	for r := 0; r < t.Len(); r++ {
		for _, col := range g.PathColumns {
			path, err := pathCell(fsys, t, r, col)
			if err != nil {
				return nil, err
			}
			if path == "" {
				continue
			}

			files.Add(path)
			sets, ok := acc[path]
			if !ok {
				sets = make(map[string]*OrderedSet, len(keys))
				for _, k := range keys {
					sets[k] = NewOrderedSet()
				}
				acc[path] = sets
			}

			if associates {
				sets[dsdist.AssociatesKey].Add(table.Int(int64(r)))
				continue
			}
			for _, m := range g.MetadataColumns {
				sets[m].Add(t.Cell(r, m))
			}
		}
	}

	for _, path := range files.Paths() {
		rec := files.Record(path)
		for _, k := range keys {
			value, ok, err := acc[path][k].Reduce()
			if err != nil {
				return nil, &ReductionError{Column: k, Row: -1, Value: path, Err: err}
			}
			if ok {
				rec.Set(k, value)
			}
		}
	}

	return files, nil
}
