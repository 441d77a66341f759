package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// MaxRetryAfter caps a server-requested Retry-After delay.
const MaxRetryAfter = time.Minute

// OnRetryFunc is called before each retry. attempt is zero-based.
type OnRetryFunc func(attempt int, err error, delay time.Duration)

// ExhaustedError is returned when every allowed attempt failed with a
// transient error. It unwraps to the last failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Executor runs an upload or catalog write until it succeeds, fails with a
// fatal error, or runs out of attempts.
//
// An Executor is immutable and safe for concurrent use. WithOnRetry returns
// a copy.
type Executor struct {
	classifier dsdist.ErrorClassifier
	strategy   dsdist.BackoffStrategy
	onRetry    OnRetryFunc
}

// NewExecutor panics if classifier or strategy is nil.
func NewExecutor(classifier dsdist.ErrorClassifier, strategy dsdist.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls callback before each retry.
func (e *Executor) WithOnRetry(callback OnRetryFunc) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute calls operation once plus up to MaxAttempts retries. A negative
// MaxAttempts retries until ctx is done. When the failure carries a
// Retry-After hint longer than the backoff delay, the hint is used.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	maxRetries := e.strategy.MaxAttempts()

	for attempt := 0; ; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}
		if !e.classifier.IsTransient(err) {
			return err
		}
		if maxRetries >= 0 && attempt >= maxRetries {
			if attempt == 0 {
				return err
			}
			return &ExhaustedError{Attempts: attempt + 1, Err: err}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if hint, ok := RetryAfter(err); ok && hint > delay {
			delay = min(hint, MaxRetryAfter)
		}
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
