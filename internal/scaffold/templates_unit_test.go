package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dsdist/internal/config"
	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/table"
)

func TestListTemplates(t *testing.T) {
	templates, err := ListTemplates()
	require.NoError(t, err)
	assert.Equal(t, []string{"basic", "labeled"}, templates)
	assert.Contains(t, templates, DefaultTemplate)
}

// TestTemplatesAreConsistent creates every template and checks that the
// generated dsdist.yaml points at files that exist and columns the table has.
func TestTemplatesAreConsistent(t *testing.T) {
	templates, err := ListTemplates()
	require.NoError(t, err)

	for _, name := range templates {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), name)
			require.NoError(t, NewScaffolder(logging.NewNullLogger()).CreateProject(Project{Name: "Template Check", Template: name}, dir))

			cfg, err := config.Load(dir)
			require.NoError(t, err)
			assert.Equal(t, "Template Check", cfg.Dataset.Name)
			assert.FileExists(t, cfg.Dataset.Readme)

			tbl, err := table.LoadFile(filesystem.NewOSFileSystem(), cfg.Dataset.Table)
			require.NoError(t, err)
			for _, col := range append(append([]string(nil), cfg.Dataset.PathColumns...), cfg.Dataset.MetadataColumns...) {
				assert.True(t, tbl.HasColumn(col), "column %q missing from %s", col, cfg.Dataset.Table)
			}
			for col := range cfg.Dataset.ColumnLabels {
				assert.True(t, tbl.HasColumn(col), "labelled column %q missing", col)
			}
			for _, paths := range cfg.Dataset.SupportingFiles {
				for _, p := range paths {
					assert.FileExists(t, p)
				}
			}

			for row := 0; row < tbl.Len(); row++ {
				for _, col := range tbl.Columns() {
					if !strings.HasSuffix(col, "_path") {
						continue
					}
					s, ok := tbl.Cell(row, col).Text()
					require.True(t, ok, "row %d column %s is not a string", row, col)
					_, err := os.Stat(filepath.Join(dir, s))
					assert.NoError(t, err, "row %d references a missing file", row)
				}
			}
		})
	}
}
