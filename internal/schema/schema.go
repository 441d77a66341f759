// Package schema records which table columns are path columns, which carry
// metadata, how path columns are labelled in the output and which supporting
// files ride along with a dataset.
//
// A Schema is a value. Every With* method validates its input against the
// table columns and returns a new Schema; the receiver is never modified, so
// a rejected setter leaves the previous configuration intact.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// SupportingFiles maps a group label to the files attached under it.
type SupportingFiles map[string][]string

// Flat returns supporting files that all go under the default
// "supporting_files" label.
func Flat(paths ...string) SupportingFiles {
	return SupportingFiles{dsdist.SupportingFilesLabel: paths}
}

// SupportingSet is one resolved supporting-file label.
type SupportingSet struct {
	Label string
	Paths []string // absolute, in the order given
}

// Schema is the column-role configuration of one table.
type Schema struct {
	columns []string

	pathColumns []string
	pathSet     bool

	metadataColumns []string
	metadataSet     bool

	labels     map[string]string
	supporting []SupportingSet
}

// New returns the default schema for a table with the given columns.
func New(columns []string) Schema {
	return Schema{columns: append([]string(nil), columns...)}
}

// Columns returns the table columns the schema validates against.
func (s Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

func (s Schema) has(name string) bool {
	for _, c := range s.columns {
		if c == name {
			return true
		}
	}
	return false
}

func (s Schema) checkColumns(kind string, cols []string) error {
	var errs []error
	for _, c := range cols {
		if !s.has(c) {
			errs = append(errs, fmt.Errorf("%s column %q is not a column of the table: %w", kind, c, dsdist.ErrValidation))
		}
	}
	return errors.Join(errs...)
}

func dedupe(cols []string) []string {
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// WithPathColumns replaces the path columns.
// Label mappings keyed by a column that is no longer a path column are dropped.
func (s Schema) WithPathColumns(cols ...string) (Schema, error) {
	if err := s.checkColumns("path", cols); err != nil {
		return s, err
	}

	next := s
	next.pathColumns = dedupe(cols)
	next.pathSet = true

	if len(s.labels) > 0 {
		next.labels = make(map[string]string, len(s.labels))
		for col, label := range s.labels {
			if contains(next.pathColumns, col) {
				next.labels[col] = label
			}
		}
	}
	return next, nil
}

// WithMetadataColumns replaces the metadata columns.
func (s Schema) WithMetadataColumns(cols ...string) (Schema, error) {
	if err := s.checkColumns("metadata", cols); err != nil {
		return s, err
	}

	next := s
	next.metadataColumns = dedupe(cols)
	next.metadataSet = true
	return next, nil
}

// WithColumnLabels replaces the path column to display label mapping.
// Several columns may share a label; their files form one group.
func (s Schema) WithColumnLabels(labels map[string]string) (Schema, error) {
	paths := s.PathColumns()

	var errs []error
	for col, label := range labels {
		switch {
		case !contains(paths, col):
			errs = append(errs, fmt.Errorf("column %q is not a path column: %w", col, dsdist.ErrValidation))
		case strings.TrimSpace(label) == "":
			errs = append(errs, fmt.Errorf("column %q has an empty label: %w", col, dsdist.ErrValidation))
		case dsdist.IsReservedLabel(label):
			errs = append(errs, fmt.Errorf("label %q of column %q is reserved: %w", label, col, dsdist.ErrValidation))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return s, err
	}

	next := s
	next.labels = make(map[string]string, len(labels))
	for col, label := range labels {
		next.labels[col] = label
	}
	if !s.pathSet {
		// Freeze the detected path columns so later label lookups stay consistent.
		next.pathColumns = paths
		next.pathSet = true
	}
	return next, nil
}

// WithSupportingFiles replaces the supporting files. Every path must name an
// existing regular file; paths are stored absolute. Labels are kept in sorted
// order.
func (s Schema) WithSupportingFiles(fsys filesystem.FileSystemProvider, files SupportingFiles) (Schema, error) {
	labels := make([]string, 0, len(files))
	for label := range files {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	sets := make([]SupportingSet, 0, len(labels))
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			return s, fmt.Errorf("supporting files need a label: %w", dsdist.ErrValidation)
		}
		if label != dsdist.SupportingFilesLabel && dsdist.IsReservedLabel(label) {
			return s, fmt.Errorf("supporting file label %q is reserved: %w", label, dsdist.ErrValidation)
		}

		set := SupportingSet{Label: label}
		for _, p := range files[label] {
			abs, err := filesystem.RequireFile(fsys, p)
			if err != nil {
				return s, fmt.Errorf("supporting file under %q: %w", label, err)
			}
			if !contains(set.Paths, abs) {
				set.Paths = append(set.Paths, abs)
			}
		}
		sets = append(sets, set)
	}

	next := s
	next.supporting = sets
	return next, nil
}

// PathColumns returns the configured path columns, or, if none were set,
// every column whose name contains "path" in any letter case.
func (s Schema) PathColumns() []string {
	if s.pathSet {
		return append([]string(nil), s.pathColumns...)
	}
	var out []string
	for _, c := range s.columns {
		if strings.Contains(strings.ToLower(c), dsdist.DefaultPathColumnMarker) {
			out = append(out, c)
		}
	}
	return out
}

// MetadataColumns returns the effective metadata columns: the configured set,
// or every column that is not a path column. Path columns are never metadata.
func (s Schema) MetadataColumns() []string {
	paths := s.PathColumns()
	source := s.columns
	if s.metadataSet {
		source = s.metadataColumns
	}

	out := make([]string, 0, len(source))
	for _, c := range source {
		if !contains(paths, c) {
			out = append(out, c)
		}
	}
	return out
}

// Label returns the display label of a path column.
func (s Schema) Label(col string) string {
	if label, ok := s.labels[col]; ok {
		return label
	}
	return col
}

// Supporting returns the supporting-file sets in label order.
func (s Schema) Supporting() []SupportingSet {
	out := make([]SupportingSet, len(s.supporting))
	for i, set := range s.supporting {
		out[i] = SupportingSet{Label: set.Label, Paths: append([]string(nil), set.Paths...)}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
