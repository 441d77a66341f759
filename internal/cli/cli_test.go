package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/dsdist/internal/config"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// writeProject creates a project directory with two images, a metadata
// table and an optional dsdist.yaml.
func writeProject(t *testing.T, yamlConfig string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "a.tif"), []byte("aaa"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "b.tif"), []byte("bbbb"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cells.csv"), []byte(
		"CellId,ImagePath,Donor\n1,images/a.tif,d1\n2,images/a.tif,d2\n3,images/b.tif,d1\n"), 0644))
	if yamlConfig != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(yamlConfig), 0644))
	}
	return dir
}

func clearDatasetEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvName, EnvOwner, EnvTable, EnvReadme, EnvDestination, EnvMessage} {
		t.Setenv(env, "")
	}
	t.Setenv("DSDIST_NON_INTERACTIVE", "1")
}

func resetDistributeFlags() {
	distributeFlags = distributeFlagValues{retries: -1, timeout: 30 * time.Minute}
}

func TestResolveDataset_Precedence(t *testing.T) {
	clearDatasetEnv(t)
	cfg := &config.ProjectConfig{Dataset: config.DatasetConfig{
		Name:      "from-file",
		Owner:     "file-owner",
		Table:     "/file/cells.csv",
		UsageDocs: []string{"file usage"},
	}}

	ds, err := resolveDataset(datasetFlags{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-file", ds.Name)
	assert.Equal(t, "/file/cells.csv", ds.Table)

	t.Setenv(EnvName, "from-env")
	t.Setenv(EnvOwner, "env-owner")
	ds, err = resolveDataset(datasetFlags{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-env", ds.Name)
	assert.Equal(t, "env-owner", ds.Owner)

	ds, err = resolveDataset(datasetFlags{name: "from-flag", usage: []string{"flag usage"}}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-flag", ds.Name)
	assert.Equal(t, "env-owner", ds.Owner)
	assert.Equal(t, []string{"file usage", "flag usage"}, ds.UsageDocs)
	assert.Equal(t, []string{"file usage"}, cfg.Dataset.UsageDocs, "file config must not be modified")
}

func TestResolveDataset_MissingRequired(t *testing.T) {
	clearDatasetEnv(t)

	_, err := resolveDataset(datasetFlags{name: "atlas"}, &config.ProjectConfig{})
	assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)

	_, err = resolveDataset(datasetFlags{table: "cells.csv"}, &config.ProjectConfig{})
	assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)
}

func TestParseLabelPairs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "single", pairs: []string{"RawPath=images"}, want: map[string]string{"RawPath": "images"}},
		{name: "trimmed", pairs: []string{" RawPath = images "}, want: map[string]string{"RawPath": "images"}},
		{name: "merged", pairs: []string{"A=x", "B=x"}, want: map[string]string{"A": "x", "B": "x"}},
		{name: "no separator", pairs: []string{"RawPath"}, wantErr: true},
		{name: "empty label", pairs: []string{"RawPath="}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLabelPairs(tt.pairs)
			if tt.wantErr {
				assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSupportingFlags(t *testing.T) {
	got := parseSupportingFlags([]string{"docs/a.pdf", "protocols=p1.pdf", "protocols=p2.pdf", "=c.txt"})
	assert.Equal(t, config.SupportingFiles{
		dsdist.SupportingFilesLabel: {"docs/a.pdf", "c.txt"},
		"protocols":                 {"p1.pdf", "p2.pdf"},
	}, got)
}

func TestBuildDistributeRequest_MergesConfig(t *testing.T) {
	clearDatasetEnv(t)
	resetDistributeFlags()
	dir := writeProject(t, `dataset:
  name: Cell Atlas
  table: cells.csv
push:
  destination: s3://bucket/releases
  message: from file
  build_dir: out
  retry_attempts: 5
  timeout: 5m
`)

	req, err := buildDistributeRequest(distributeCmd, dir, distributeFlags)
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/releases", req.Destination)
	assert.Equal(t, "from file", req.Message)
	assert.Equal(t, filepath.Join(dir, "out"), req.Router.BuildDir)
	assert.Equal(t, 5, req.Router.Retries)
	assert.Equal(t, 5*time.Minute, req.Timeout)
	assert.Equal(t, filepath.Join(dir, "cells.csv"), req.Dataset.Table)

	t.Setenv(EnvDestination, "az://container")
	flags := distributeFlags
	flags.message = "from flag"
	flags.retries = 0
	req, err = buildDistributeRequest(distributeCmd, dir, flags)
	require.NoError(t, err)
	assert.Equal(t, "az://container", req.Destination)
	assert.Equal(t, "from flag", req.Message)
	assert.Equal(t, 0, req.Router.Retries)
}

func TestBuildDistributeRequest_InvalidConfig(t *testing.T) {
	clearDatasetEnv(t)
	resetDistributeFlags()
	dir := writeProject(t, "push:\n  timeout: soon\n")

	_, err := buildDistributeRequest(distributeCmd, dir, distributeFlags)
	assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)
	assert.Equal(t, dsdist.ExitConfigError, dsdist.ExitCodeForError(err))
}

func TestRunPlan_PrintsManifest(t *testing.T) {
	clearDatasetEnv(t)
	dir := writeProject(t, "dataset:\n  name: atlas\n  table: cells.csv\n  metadata_columns: [Donor]\n")
	planFlags = datasetFlags{}

	var out bytes.Buffer
	planCmd.SetOut(&out)
	t.Cleanup(func() { planCmd.SetOut(nil) })

	require.NoError(t, runPlan(planCmd, []string{dir}))

	var manifest map[string]map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &manifest))
	a := filepath.Join(dir, "images", "a.tif")
	b := filepath.Join(dir, "images", "b.tif")
	assert.Equal(t, []interface{}{"d1", "d2"}, manifest["ImagePath"][a]["Donor"])
	assert.Equal(t, "d1", manifest["ImagePath"][b]["Donor"])
	assert.Contains(t, manifest[dsdist.ReferencedFilesLabel], a)
}

func TestRunValidate(t *testing.T) {
	clearDatasetEnv(t)
	dir := writeProject(t, "dataset:\n  name: atlas\n  table: cells.csv\n")
	validateFlags = datasetFlags{}

	var out bytes.Buffer
	validateCmd.SetOut(&out)
	t.Cleanup(func() { validateCmd.SetOut(nil) })

	require.NoError(t, runValidate(validateCmd, []string{dir}))
	assert.Contains(t, out.String(), "atlas is ready to distribute")
	assert.Contains(t, out.String(), "ImagePath")
}

func TestRunValidate_MissingFile(t *testing.T) {
	clearDatasetEnv(t)
	dir := writeProject(t, "dataset:\n  name: atlas\n  table: cells.csv\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "images", "b.tif")))
	validateFlags = datasetFlags{}

	err := runValidate(validateCmd, []string{dir})
	assert.ErrorIs(t, err, dsdist.ErrNotFound)
}

func TestRunValidate_UnknownColumn(t *testing.T) {
	clearDatasetEnv(t)
	dir := writeProject(t, "dataset:\n  name: atlas\n  table: cells.csv\n")
	validateFlags = datasetFlags{metadataColumns: []string{"Nope"}}

	err := runValidate(validateCmd, []string{dir})
	assert.Equal(t, dsdist.ExitValidationError, dsdist.ExitCodeForError(err))
}

func TestRunDistribute_LocalBuild(t *testing.T) {
	clearDatasetEnv(t)
	resetDistributeFlags()
	dir := writeProject(t, "dataset:\n  name: Cell Atlas\n  table: cells.csv\npush:\n  build_dir: out\n")

	require.NoError(t, runDistribute(distributeCmd, []string{dir}))

	slugDir := filepath.Join(dir, "out", "cell_atlas")
	revisions, err := os.ReadDir(slugDir)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	for _, name := range []string{dsdist.ManifestEntry, dsdist.ReadmeEntry, dsdist.MetadataSnapshotEntry} {
		assert.FileExists(t, filepath.Join(slugDir, revisions[0].Name(), name))
	}
}

func TestRunDistribute_UnknownScheme(t *testing.T) {
	clearDatasetEnv(t)
	resetDistributeFlags()
	dir := writeProject(t, "dataset:\n  name: atlas\n  table: cells.csv\n")
	distributeFlags.destination = "ftp://host/path"

	err := runDistribute(distributeCmd, []string{dir})
	assert.Equal(t, dsdist.ExitValidationError, dsdist.ExitCodeForError(err))
}

func TestDistributeCmd_ArgsValidation(t *testing.T) {
	err := distributeCmd.Args(distributeCmd, []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, dsdist.ExitUsageError, dsdist.ExitCodeForError(err))
}

func TestDatasetFlags_KeepCommas(t *testing.T) {
	clearDatasetEnv(t)
	cmd := &cobra.Command{Use: "test"}
	var f datasetFlags
	addDatasetFlags(cmd, &f)

	require.NoError(t, cmd.ParseFlags([]string{
		"--usage", "Load with pandas, then filter by Structure",
		"--license", "CC-BY-4.0, see LICENSE",
		"--supporting", "protocols=docs/plate 1, rev 2.pdf",
		"--label", "ImagePath=images, raw",
		"--path-column", "ImagePath,MaskPath",
	}))

	assert.Equal(t, []string{"Load with pandas, then filter by Structure"}, f.usage)
	assert.Equal(t, []string{"CC-BY-4.0, see LICENSE"}, f.license)
	assert.Equal(t, []string{"ImagePath", "MaskPath"}, f.pathColumns, "column lists still split on commas")

	ds, err := resolveDataset(f, &config.ProjectConfig{Dataset: config.DatasetConfig{Name: "atlas", Table: "cells.csv"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/plate 1, rev 2.pdf"}, ds.SupportingFiles["protocols"])
	assert.Equal(t, map[string]string{"ImagePath": "images, raw"}, ds.ColumnLabels)
}

func TestRunPlan_NoMetadata(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		flags datasetFlags
	}{
		{"flag", "dataset:\n  name: atlas\n  table: cells.csv\n", datasetFlags{noMetadata: true}},
		{"empty list in dsdist.yaml", "dataset:\n  name: atlas\n  table: cells.csv\n  metadata_columns: []\n", datasetFlags{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearDatasetEnv(t)
			dir := writeProject(t, tt.yaml)
			planFlags = tt.flags
			t.Cleanup(func() { planFlags = datasetFlags{} })

			var out bytes.Buffer
			planCmd.SetOut(&out)
			t.Cleanup(func() { planCmd.SetOut(nil) })

			require.NoError(t, runPlan(planCmd, []string{dir}))

			var manifest map[string]map[string]map[string]interface{}
			require.NoError(t, json.Unmarshal(out.Bytes(), &manifest))
			a := manifest["ImagePath"][filepath.Join(dir, "images", "a.tif")]
			assert.Equal(t, map[string]interface{}{dsdist.AssociatesKey: []interface{}{0.0, 1.0}}, a)
		})
	}
}

func TestDatasetFlags_MetadataFlagsExclusive(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	var f datasetFlags
	addDatasetFlags(cmd, &f)
	cmd.SetArgs([]string{"--no-metadata", "--metadata-column", "Donor"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}
