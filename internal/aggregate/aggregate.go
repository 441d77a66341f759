// Package aggregate assembles the output manifest: group label to absolute
// file path to reduced metadata record.
package aggregate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/planner"
	"github.com/vvka-141/dsdist/internal/reducer"
	"github.com/vvka-141/dsdist/internal/schema"
	"github.com/vvka-141/dsdist/internal/table"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Manifest is an ordered mapping from group label to files.
type Manifest struct {
	labels []string
	groups map[string]*reducer.Files
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{groups: make(map[string]*reducer.Files)}
}

// Group returns the files under label, creating the group if needed.
func (m *Manifest) Group(label string) *reducer.Files {
	if files, ok := m.groups[label]; ok {
		return files
	}
	files := reducer.NewFiles()
	m.labels = append(m.labels, label)
	m.groups[label] = files
	return files
}

// Files returns the files under label, or nil.
func (m *Manifest) Files(label string) *reducer.Files { return m.groups[label] }

// Keys returns the group labels in insertion order.
func (m *Manifest) Keys() []string { return append([]string(nil), m.labels...) }

// MarshalJSON encodes labels and files in insertion order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range m.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		val, err := m.groups[label].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", label, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Entries flattens the manifest into (label, path, metadata) entries in order.
func (m *Manifest) Entries() []dsdist.Entry {
	var out []dsdist.Entry
	for _, label := range m.labels {
		files := m.groups[label]
		for _, p := range files.Paths() {
			out = append(out, dsdist.Entry{Label: label, Path: p, Meta: files.Record(p).Map()})
		}
	}
	return out
}

// Build produces the manifest of t under s.
//
// Planner groups come first, in plan order. Supporting files follow: each
// path is added with an empty record, joining an existing group of the same
// label without replacing entries already there. "referenced_files" comes
// last and always exists; it lists every file referenced by any path column
// once, in first-seen order.
//
// A file reached through two path columns merged under one label is a single
// entry fed by both columns. The same file under two different labels is an
// entry in each group.
func Build(fsys filesystem.FileSystemProvider, t *table.Table, s schema.Schema, plan planner.Plan) (*Manifest, error) {
	m := NewManifest()
	referenced := reducer.NewFiles()

	for _, g := range plan.Groups {
		files, err := reducer.Reduce(fsys, t, g)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Label, err)
		}
		m.groups[g.Label] = files
		m.labels = append(m.labels, g.Label)

		for _, p := range files.Paths() {
			referenced.Add(p)
		}
	}

	for _, set := range s.Supporting() {
		group := m.Group(set.Label)
		for _, p := range set.Paths {
			group.Add(p)
		}
	}

	m.labels = append(m.labels, dsdist.ReferencedFilesLabel)
	m.groups[dsdist.ReferencedFilesLabel] = referenced

	return m, nil
}
