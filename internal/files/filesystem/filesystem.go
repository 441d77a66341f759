package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// FileSystemProvider gives read access to the files a dataset references.
// Missing paths are reported with errors wrapping fs.ErrNotExist.
type FileSystemProvider interface {
	// ReadFile reads a specific file at the given path
	ReadFile(path string) ([]byte, error)

	// Open returns a reader over the file content.
	// Callers must close it.
	Open(path string) (io.ReadCloser, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)

	// Abs returns the absolute, cleaned form of path.
	Abs(path string) (string, error)
}

// WritableFileSystem adds the operations a local build directory needs.
// Directories are created 0755 and files 0644.
type WritableFileSystem interface {
	FileSystemProvider

	// ReadDir lists a directory sorted by name.
	ReadDir(path string) ([]fs.DirEntry, error)

	MkdirAll(path string) error

	// MkdirTemp creates a new directory in dir. The last "*" in pattern is
	// replaced by a unique string; without one the string is appended.
	MkdirTemp(dir, pattern string) (string, error)

	WriteFile(path string, data []byte) error

	// Rename moves a file or directory. The target must not exist.
	Rename(oldPath, newPath string) error

	// RemoveAll removes path and everything below it. A missing path is not
	// an error.
	RemoveAll(path string) error
}

// RequireFile checks that path names an existing regular file and returns
// its absolute form. Missing paths wrap dsdist.ErrNotFound, directories wrap
// dsdist.ErrIsADirectory.
func RequireFile(p FileSystemProvider, path string) (string, error) {
	info, err := p.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("no such file: %s: %w", path, dsdist.ErrNotFound)
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("expected a file, got a directory: %s: %w", path, dsdist.ErrIsADirectory)
	}

	abs, err := p.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}
