package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// memEntry is a file or directory of a MemoryFileSystem. It is its own
// fs.FileInfo.
type memEntry struct {
	name    string
	data    []byte
	dir     bool
	modTime time.Time
}

func (e *memEntry) Name() string       { return e.name }
func (e *memEntry) Size() int64        { return int64(len(e.data)) }
func (e *memEntry) ModTime() time.Time { return e.modTime }
func (e *memEntry) IsDir() bool        { return e.dir }
func (e *memEntry) Sys() interface{}   { return nil }

func (e *memEntry) Mode() fs.FileMode {
	if e.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

// MemoryFileSystem is an in-memory WritableFileSystem for tests. Paths
// use forward slashes; relative paths resolve against the root passed to
// NewMemoryFileSystem, which exists from the start.
type MemoryFileSystem struct {
	root    string
	entries map[string]*memEntry
	tempSeq int
}

func NewMemoryFileSystem(root string) *MemoryFileSystem {
	m := &MemoryFileSystem{
		root:    path.Clean(filepath.ToSlash(root)),
		entries: make(map[string]*memEntry),
	}
	m.mkdirAll(m.root)
	return m
}

// AddFile creates or replaces a file, creating its parent directories.
func (m *MemoryFileSystem) AddFile(name, content string) {
	p := m.resolve(name)
	m.mkdirAll(path.Dir(p))
	m.entries[p] = &memEntry{name: path.Base(p), data: []byte(content), modTime: time.Now()}
}

// AddDir creates a directory and its parents.
func (m *MemoryFileSystem) AddDir(name string) {
	m.mkdirAll(m.resolve(name))
}

func (m *MemoryFileSystem) mkdirAll(p string) {
	for {
		if _, ok := m.entries[p]; ok {
			return
		}
		m.entries[p] = &memEntry{name: path.Base(p), dir: true, modTime: time.Now()}
		parent := path.Dir(p)
		if parent == p || parent == "." {
			return
		}
		p = parent
	}
}

func (m *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" {
		return m.root
	}
	if !path.IsAbs(p) {
		p = path.Join(m.root, p)
	}
	return path.Clean(p)
}

func (m *MemoryFileSystem) lookup(name string) (*memEntry, error) {
	e, ok := m.entries[m.resolve(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return e, nil
}

func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	e, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if e.dir {
		return nil, fmt.Errorf("%s: %w", name, dsdist.ErrIsADirectory)
	}
	return e.data, nil
}

func (m *MemoryFileSystem) Open(name string) (io.ReadCloser, error) {
	data, err := m.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryFileSystem) Stat(name string) (FileInfo, error) {
	e, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (m *MemoryFileSystem) Abs(name string) (string, error) {
	return m.resolve(name), nil
}

func (m *MemoryFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	e, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if !e.dir {
		return nil, fmt.Errorf("%s: not a directory", name)
	}
	p := m.resolve(name)
	var out []fs.DirEntry
	for child, ce := range m.entries {
		if child != p && path.Dir(child) == p {
			out = append(out, fs.FileInfoToDirEntry(ce))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (m *MemoryFileSystem) MkdirAll(name string) error {
	p := m.resolve(name)
	for q := p; ; q = path.Dir(q) {
		if e, ok := m.entries[q]; ok {
			if !e.dir {
				return fmt.Errorf("%s: %s is not a directory", name, q)
			}
			break
		}
		if path.Dir(q) == q {
			break
		}
	}
	m.mkdirAll(p)
	return nil
}

func (m *MemoryFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	parent, err := m.lookup(dir)
	if err != nil {
		return "", err
	}
	if !parent.dir {
		return "", fmt.Errorf("%s: not a directory", dir)
	}
	prefix, suffix := pattern, ""
	if i := strings.LastIndex(pattern, "*"); i >= 0 {
		prefix, suffix = pattern[:i], pattern[i+1:]
	}
	for {
		m.tempSeq++
		p := path.Join(m.resolve(dir), prefix+strconv.Itoa(m.tempSeq)+suffix)
		if _, ok := m.entries[p]; !ok {
			m.entries[p] = &memEntry{name: path.Base(p), dir: true, modTime: time.Now()}
			return p, nil
		}
	}
}

func (m *MemoryFileSystem) WriteFile(name string, data []byte) error {
	p := m.resolve(name)
	parent, ok := m.entries[path.Dir(p)]
	if !ok || !parent.dir {
		return fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	if e, ok := m.entries[p]; ok && e.dir {
		return fmt.Errorf("%s: %w", name, dsdist.ErrIsADirectory)
	}
	m.entries[p] = &memEntry{name: path.Base(p), data: append([]byte(nil), data...), modTime: time.Now()}
	return nil
}

func (m *MemoryFileSystem) Rename(oldPath, newPath string) error {
	from, to := m.resolve(oldPath), m.resolve(newPath)
	if _, ok := m.entries[from]; !ok {
		return fmt.Errorf("rename %s: %w", oldPath, fs.ErrNotExist)
	}
	if _, ok := m.entries[to]; ok {
		return fmt.Errorf("rename %s: %s: %w", oldPath, newPath, fs.ErrExist)
	}
	if parent, ok := m.entries[path.Dir(to)]; !ok || !parent.dir {
		return fmt.Errorf("rename %s: %s: %w", oldPath, path.Dir(newPath), fs.ErrNotExist)
	}
	if strings.HasPrefix(to, from+"/") {
		return fmt.Errorf("rename %s: cannot move into itself", oldPath)
	}
	var moving []string
	for p := range m.entries {
		if p == from || strings.HasPrefix(p, from+"/") {
			moving = append(moving, p)
		}
	}
	for _, p := range moving {
		e := m.entries[p]
		delete(m.entries, p)
		moved := to + strings.TrimPrefix(p, from)
		e.name = path.Base(moved)
		m.entries[moved] = e
	}
	return nil
}

func (m *MemoryFileSystem) RemoveAll(name string) error {
	p := m.resolve(name)
	for q := range m.entries {
		if q == p || strings.HasPrefix(q, p+"/") {
			delete(m.entries, q)
		}
	}
	return nil
}
