package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

func atlasSummary() dsdist.PushSummary {
	return dsdist.PushSummary{
		Name:        "atlas",
		Destination: "s3://bucket/datasets",
		Labels:      []string{"images", dsdist.ReferencedFilesLabel},
		Files:       12,
		Bytes:       3 * 1024 * 1024,
	}
}

func TestForcedApprover_ApprovesAfterCountdown(t *testing.T) {
	var out bytes.Buffer
	sleeps := 0
	a := &ForcedApprover{
		countdown: 3 * time.Second,
		output:    &out,
		sleepFn:   func(time.Duration) { sleeps++ },
	}

	approved, err := a.RequestApproval(context.Background(), atlasSummary())
	require.NoError(t, err)
	assert.True(t, approved)
	assert.Equal(t, 3, sleeps, "one sleep per countdown second")

	assert.Contains(t, out.String(), "s3://bucket/datasets")
	assert.Contains(t, out.String(), "12 (3.0 MiB)")
	assert.Contains(t, out.String(), "Proceeding with push")
	assert.NotContains(t, out.String(), "Labels:", "labels are verbose-only")
}

func TestForcedApprover_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sleeps := 0
	a := &ForcedApprover{
		countdown: 3 * time.Second,
		output:    io.Discard,
		sleepFn: func(time.Duration) {
			sleeps++
			if sleeps == 2 {
				cancel()
			}
		},
	}

	approved, err := a.RequestApproval(ctx, atlasSummary())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, approved)
	assert.Equal(t, 2, sleeps)
}

func TestNewForcedApprover(t *testing.T) {
	a, ok := NewForcedApprover(true).(*ForcedApprover)
	require.True(t, ok)
	assert.True(t, a.verbose)
	assert.Equal(t, dsdist.DefaultPushApprovalCountdown, a.countdown)
	assert.NotNil(t, a.output)
	assert.NotNil(t, a.sleepFn)
}

func TestInteractiveApprover(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		approved bool
		output   string
	}{
		{"exact name", "atlas\n", true, "Confirmed"},
		{"surrounding whitespace", "  atlas  \n", true, "Confirmed"},
		{"no trailing newline", "atlas", true, "Confirmed"},
		{"wrong name", "atlas2\n", false, "'atlas2' does not match"},
		{"empty line", "\n", false, "does not match"},
		{"case differs", "Atlas\n", false, "does not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			a := &InteractiveApprover{input: strings.NewReader(tt.input), output: &out}

			approved, err := a.RequestApproval(context.Background(), atlasSummary())
			require.NoError(t, err)
			assert.Equal(t, tt.approved, approved)
			assert.Contains(t, out.String(), "WARNING")
			assert.Contains(t, out.String(), "s3://bucket/datasets")
			assert.Contains(t, out.String(), tt.output)
		})
	}
}

func TestInteractiveApprover_VerboseListsLabels(t *testing.T) {
	var out bytes.Buffer
	a := &InteractiveApprover{verbose: true, input: strings.NewReader("atlas\n"), output: &out}

	_, err := a.RequestApproval(context.Background(), atlasSummary())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "images, referenced_files")
}

func TestInteractiveApprover_ReadError(t *testing.T) {
	a := &InteractiveApprover{input: &errorReader{err: io.ErrUnexpectedEOF}, output: io.Discard}

	approved, err := a.RequestApproval(context.Background(), atlasSummary())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "failed to read input")
	assert.False(t, approved)
}

func TestInteractiveApprover_ClosedInput(t *testing.T) {
	a := &InteractiveApprover{input: strings.NewReader(""), output: io.Discard}

	approved, err := a.RequestApproval(context.Background(), atlasSummary())
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, approved)
}

func TestInteractiveApprover_ContextCancellation(t *testing.T) {
	input := newBlockingReader()
	t.Cleanup(func() { input.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &InteractiveApprover{input: input, output: io.Discard}
	approved, err := a.RequestApproval(ctx, atlasSummary())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, approved)
}

func TestNewInteractiveApprover(t *testing.T) {
	a, ok := NewInteractiveApprover(false).(*InteractiveApprover)
	require.True(t, ok)
	assert.False(t, a.verbose)
	assert.NotNil(t, a.input)
	assert.NotNil(t, a.output)
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:                      "0 B",
		1023:                   "1023 B",
		1024:                   "1.0 KiB",
		1536:                   "1.5 KiB",
		5 * 1024 * 1024 * 1024: "5.0 GiB",
	}
	for n, want := range tests {
		assert.Equal(t, want, formatBytes(n), "formatBytes(%d)", n)
	}
}

type errorReader struct {
	err error
}

func (r *errorReader) Read([]byte) (int, error) {
	return 0, r.err
}

type blockingReader struct {
	done chan struct{}
}

func newBlockingReader() *blockingReader {
	return &blockingReader{done: make(chan struct{})}
}

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.done
	return 0, io.EOF
}

func (r *blockingReader) Close() error {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
	return nil
}
