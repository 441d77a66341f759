package dsdist

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Distribution completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid dsdist.yaml or flags
	ExitValidationError = 11 // Unknown column, reserved label or bad dataset name
	ExitNotFound        = 12 // Table, README or supporting file missing
	ExitInvalidType     = 13 // Unsupported table source or non-JSON metadata value
	ExitPushDenied      = 14 // User declined the remote push
	ExitPushFailed      = 15 // Packaging backend failed
)

// Reserved group labels and package entry names.
const (
	// ReferencedFilesLabel holds the flat union of every file referenced by any path column.
	ReferencedFilesLabel = "referenced_files"

	// SupportingFilesLabel is the label used when supporting files are given as a flat list.
	SupportingFilesLabel = "supporting_files"

	// AssociatesKey is the synthetic metadata key used when a group has no metadata columns.
	AssociatesKey = "associates"

	// ReadmeEntry is the package entry name of the rendered README.
	ReadmeEntry = "README.md"

	// MetadataSnapshotEntry is the package entry name of the table snapshot.
	MetadataSnapshotEntry = "metadata.csv"

	// ManifestEntry is the file name of the serialized group manifest.
	ManifestEntry = "manifest.json"
)

// IsReservedLabel reports whether label collides with a name dsdist
// assigns itself in every package.
func IsReservedLabel(label string) bool {
	switch label {
	case ReferencedFilesLabel, SupportingFilesLabel, ReadmeEntry, MetadataSnapshotEntry:
		return true
	}
	return false
}

const (
	// DefaultBuildDir is where local-only builds are written.
	DefaultBuildDir = "dist"

	// DefaultPushApprovalCountdown is the countdown before a forced remote push proceeds.
	DefaultPushApprovalCountdown = 3 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts per upload.
	DefaultRetryMaxAttempts = 3

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 200 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultPathColumnMarker selects path columns when none were configured:
	// every column whose name contains it, case-insensitively.
	DefaultPathColumnMarker = "path"
)
