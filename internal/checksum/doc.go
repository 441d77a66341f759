// Package checksum hashes the files that go into a package.
//
// Every entry of a package carries the SHA-256 of its content and its size,
// so a downstream consumer can verify what it fetched:
//
//	calculator := checksum.New()
//	sum, size, err := calculator.File(fsProvider, "/data/a.tif")
//
// Content is streamed; files are never read into memory whole.
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
