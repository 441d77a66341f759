// Package files groups file access used while assembling a dataset.
//
// Sub-packages:
//   - filesystem: read-only filesystem abstraction (OS and in-memory)
//
// Entry files, README documents and supporting files are all read through a
// filesystem.FileSystemProvider so tests can run against MemoryFileSystem.
package files
