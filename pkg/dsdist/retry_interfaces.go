package dsdist

import "time"

// ErrorClassifier decides whether a failed transfer step may be retried.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy spaces out retries. NextDelay receives the zero-based
// retry number. MaxAttempts is the number of retries after the first try:
// 0 disables retrying, -1 retries until the context ends.
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
	MaxAttempts() int
}
