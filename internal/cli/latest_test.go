package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dsdist/internal/packager/catalog"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

type fakeFinder struct {
	revisions map[string]catalog.Revision
	asked     []string
}

func (f *fakeFinder) Latest(_ context.Context, slug string) (catalog.Revision, error) {
	f.asked = append(f.asked, slug)
	r, ok := f.revisions[slug]
	if !ok {
		return catalog.Revision{}, fmt.Errorf("no revision of %q in catalog: %w", slug, dsdist.ErrNotFound)
	}
	return r, nil
}

func TestPrintLatest(t *testing.T) {
	rev := catalog.Revision{
		Revision: uuid.MustParse("3f1b7a52-7c1e-4c7e-9a51-0d7d3f4c2b10"),
		Name:     "Cell Atlas",
		Owner:    "lab",
		Message:  "March release",
		Created:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f := &fakeFinder{revisions: map[string]catalog.Revision{"cell_atlas": rev}}

	var out bytes.Buffer
	require.NoError(t, printLatest(context.Background(), &out, f, "Cell  Atlas"))
	assert.Equal(t, "3f1b7a52-7c1e-4c7e-9a51-0d7d3f4c2b10\tCell Atlas\t2026-03-01T12:00:00Z\tlab\tMarch release\n", out.String())
	assert.Equal(t, []string{"cell_atlas"}, f.asked)

	err := printLatest(context.Background(), &out, f, "unknown")
	assert.ErrorIs(t, err, dsdist.ErrNotFound)
	assert.Equal(t, dsdist.ExitNotFound, dsdist.ExitCodeForError(err))
}

func TestRunLatest_RequiresCatalogDestination(t *testing.T) {
	latestFlags.project = t.TempDir()
	latestFlags.timeout = time.Second
	t.Cleanup(func() { latestFlags.project, latestFlags.timeout = ".", time.Minute })

	err := runLatest(latestCmd, []string{"s3://bucket/releases", "atlas"})
	assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)

	err = runLatest(latestCmd, []string{"ftp://host/x", "atlas"})
	assert.ErrorIs(t, err, dsdist.ErrValidation)
}
