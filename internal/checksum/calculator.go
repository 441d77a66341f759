package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Calculator computes content checksums.
type Calculator interface {
	// Bytes returns the hex checksum of content.
	Bytes(content []byte) string

	// Reader returns the hex checksum of everything read from r and the byte count.
	Reader(r io.Reader) (string, int64, error)

	// File returns the hex checksum and size of the file at path.
	File(fsys filesystem.FileSystemProvider, path string) (string, int64, error)
}

// SHA256 implements Calculator using SHA-256.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// Bytes computes SHA-256 of content.
func (c SHA256) Bytes(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Reader computes SHA-256 of a stream.
func (c SHA256) Reader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// File computes SHA-256 of a file. Missing files fail with dsdist.ErrNotFound
// and directories with dsdist.ErrIsADirectory.
func (c SHA256) File(fsys filesystem.FileSystemProvider, path string) (string, int64, error) {
	abs, err := filesystem.RequireFile(fsys, path)
	if err != nil {
		return "", 0, err
	}

	f, err := fsys.Open(abs)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", abs, err)
	}
	defer f.Close()

	sum, n, err := c.Reader(f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash %s: %w", abs, err)
	}
	return sum, n, nil
}

// Entries fills Checksum and SizeBytes of every entry. Entries that share a
// path are hashed once.
func Entries(calc Calculator, fsys filesystem.FileSystemProvider, entries []dsdist.Entry) error {
	type result struct {
		sum  string
		size int64
	}
	done := make(map[string]result)

	for i := range entries {
		p := entries[i].Path
		r, ok := done[p]
		if !ok {
			sum, size, err := calc.File(fsys, p)
			if err != nil {
				return fmt.Errorf("entry %q of %q: %w", p, entries[i].Label, err)
			}
			r = result{sum: sum, size: size}
			done[p] = r
		}
		entries[i].Checksum = r.sum
		entries[i].SizeBytes = r.size
	}
	return nil
}
