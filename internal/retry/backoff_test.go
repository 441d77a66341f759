package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

func TestExponentialBackoff_Defaults(t *testing.T) {
	b := NewExponentialBackoff(3)

	assert.Equal(t, 3, b.MaxAttempts())
	assert.Equal(t, dsdist.DefaultRetryInitialDelay, b.initial)
	assert.Equal(t, dsdist.DefaultRetryMaxDelay, b.ceiling)
	assert.Equal(t, 0.1, b.jitter)

	b = NewExponentialBackoff(3, WithJitterFunc(func() float64 { return 0.5 }))
	assert.Equal(t, dsdist.DefaultRetryInitialDelay, b.NextDelay(0), "a centered draw adds no jitter")
	assert.Equal(t, dsdist.DefaultRetryMaxDelay, b.NextDelay(100))
}

func TestExponentialBackoff_NextDelay(t *testing.T) {
	b := NewExponentialBackoff(10,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Second),
		WithJitter(0),
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1 * time.Second},
		{30, 1 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_JitterBounds(t *testing.T) {
	low := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.2), WithJitterFunc(func() float64 { return 0 }))
	high := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.2), WithJitterFunc(func() float64 { return 0.999 }))

	assert.InDelta(t, float64(800*time.Millisecond), float64(low.NextDelay(0)), float64(2*time.Millisecond))
	assert.InDelta(t, float64(1200*time.Millisecond), float64(high.NextDelay(0)), float64(2*time.Millisecond))
}

func TestNewUploadExecutor(t *testing.T) {
	e := NewUploadExecutor(-1)
	assert.Equal(t, dsdist.DefaultRetryMaxAttempts, e.strategy.MaxAttempts())

	e = NewUploadExecutor(0)
	assert.Equal(t, 0, e.strategy.MaxAttempts())
}
