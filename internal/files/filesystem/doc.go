// Package filesystem provides the filesystem abstraction dsdist uses to
// check and read the files a dataset references and to write local builds.
//
// Key pieces:
//   - FileSystemProvider: Stat/ReadFile/Open/Abs over some namespace
//   - WritableFileSystem: adds the directory and file writes of a local build
//   - RequireFile: existence check that maps failures onto dsdist.ErrNotFound
//     and dsdist.ErrIsADirectory
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
