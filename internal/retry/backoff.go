package retry

import (
	"math/rand"
	"time"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// ExponentialBackoff doubles the delay after every attempt, up to a cap,
// and spreads each delay by a random factor in [1-jitter, 1+jitter).
type ExponentialBackoff struct {
	attempts int
	initial  time.Duration
	ceiling  time.Duration
	jitter   float64
	random   func() float64 // [0, 1)
}

// BackoffOption configures an ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initial = d }
}

// WithMaxDelay caps every delay.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.ceiling = d }
}

// WithJitter sets the relative spread. Zero makes delays exact.
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithJitterFunc replaces the random source.
func WithJitterFunc(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.random = f }
}

// NewExponentialBackoff allows attempts retries, 0 for none and -1 for
// unlimited, starting at dsdist.DefaultRetryInitialDelay and capped at
// dsdist.DefaultRetryMaxDelay with 10% jitter.
func NewExponentialBackoff(attempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		attempts: attempts,
		initial:  dsdist.DefaultRetryInitialDelay,
		ceiling:  dsdist.DefaultRetryMaxDelay,
		jitter:   0.1,
		random:   rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewUploadExecutor builds the executor the packaging backends share.
// A negative maxAttempts selects dsdist.DefaultRetryMaxAttempts.
func NewUploadExecutor(maxAttempts int) *Executor {
	if maxAttempts < 0 {
		maxAttempts = dsdist.DefaultRetryMaxAttempts
	}
	return NewExecutor(NewTransferErrorClassifier(), NewExponentialBackoff(maxAttempts))
}

// NextDelay returns the wait before retry number attempt, counting from 0.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	d := b.initial
	for i := 0; i < attempt && d < b.ceiling; i++ {
		d *= 2
	}
	if d > b.ceiling {
		d = b.ceiling
	}
	if b.jitter > 0 {
		spread := b.jitter * (2*b.random() - 1)
		d = time.Duration(float64(d) * (1 + spread))
	}
	return d
}

func (b *ExponentialBackoff) MaxAttempts() int { return b.attempts }
