package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem reads and writes the local disk. Relative paths resolve
// against the process working directory.
type OSFileSystem struct{}

func NewOSFileSystem() *OSFileSystem { return &OSFileSystem{} }

func (*OSFileSystem) ReadFile(name string) ([]byte, error)    { return os.ReadFile(name) }
func (*OSFileSystem) Open(name string) (io.ReadCloser, error) { return os.Open(name) }
func (*OSFileSystem) Stat(name string) (FileInfo, error)      { return os.Stat(name) }
func (*OSFileSystem) Abs(name string) (string, error)         { return filepath.Abs(name) }

func (*OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }
func (*OSFileSystem) MkdirAll(name string) error                 { return os.MkdirAll(name, 0o755) }
func (*OSFileSystem) WriteFile(name string, data []byte) error   { return os.WriteFile(name, data, 0o644) }
func (*OSFileSystem) RemoveAll(name string) error                { return os.RemoveAll(name) }

func (*OSFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

func (*OSFileSystem) Rename(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("rename %s: %s: %w", oldPath, newPath, fs.ErrExist)
	}
	return os.Rename(oldPath, newPath)
}
