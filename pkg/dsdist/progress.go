package dsdist

import "context"

// ProgressFunc receives the number of data files a backend has stored so
// far out of total.
type ProgressFunc func(done, total int)

type progressKey struct{}

// WithProgress returns a context whose pushes report to fn.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress calls the ProgressFunc attached to ctx, if any.
func ReportProgress(ctx context.Context, done, total int) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(done, total)
	}
}
