package dsdist

// Logger receives printf-style progress messages from every component.
// Verbose lines are diagnostics a caller may discard; Info and Error lines
// are always shown. Implementations must be safe for concurrent use.
type Logger interface {
	Verbose(format string, args ...interface{})
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
}
