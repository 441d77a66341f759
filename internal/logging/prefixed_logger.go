package logging

import "github.com/vvka-141/dsdist/pkg/dsdist"

// PrefixedLogger tags every message with a component name, e.g. "[s3] ".
type PrefixedLogger struct {
	next   dsdist.Logger
	prefix string
}

// WithPrefix returns a logger that forwards to next with "[name] " prepended.
func WithPrefix(next dsdist.Logger, name string) *PrefixedLogger {
	return &PrefixedLogger{next: next, prefix: "[" + name + "] "}
}

// Verbose forwards to the wrapped logger.
func (l *PrefixedLogger) Verbose(format string, args ...interface{}) {
	l.next.Verbose(l.prefix+format, args...)
}

// Info forwards to the wrapped logger.
func (l *PrefixedLogger) Info(format string, args ...interface{}) {
	l.next.Info(l.prefix+format, args...)
}

// Error forwards to the wrapped logger.
func (l *PrefixedLogger) Error(format string, args ...interface{}) {
	l.next.Error(l.prefix+format, args...)
}
