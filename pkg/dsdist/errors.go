package dsdist

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// Every error returned by dsdist components wraps one of these, so callers
// can classify failures with errors.Is().
//
// Example usage:
//
//	_, err := ds.Distribute(ctx, "", "initial release")
//	if errors.Is(err, dsdist.ErrInvalidType) {
//	    // a metadata column holds a value that cannot be encoded as JSON
//	}
var (
	// ErrNotFound indicates a referenced table, README or supporting file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIsADirectory indicates a file was expected but the path is a directory.
	ErrIsADirectory = errors.New("is a directory")

	// ErrInvalidType indicates an unsupported table source or a metadata value
	// that cannot be represented as a JSON primitive.
	ErrInvalidType = errors.New("invalid type")

	// ErrValidation indicates an unknown column reference, a reserved or
	// malformed label, or a malformed dataset name.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidConfig indicates the project configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPushDenied indicates the user declined pushing to a remote destination.
	ErrPushDenied = errors.New("push denied")

	// ErrPushFailed indicates the packaging backend failed to store the package.
	ErrPushFailed = errors.New("push failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrValidation):
		return ExitValidationError
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrIsADirectory):
		return ExitNotFound
	case errors.Is(err, ErrInvalidType):
		return ExitInvalidType
	case errors.Is(err, ErrPushDenied):
		return ExitPushDenied
	case errors.Is(err, ErrPushFailed):
		return ExitPushFailed
	}

	// cobra reports flag problems as plain errors
	errStr := err.Error()
	if strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.HasPrefix(errStr, "unknown command") ||
		strings.HasPrefix(errStr, "required flag") ||
		strings.HasPrefix(errStr, "invalid argument") ||
		strings.HasPrefix(errStr, "accepts ") {
		return ExitUsageError
	}

	return ExitGeneralError
}
