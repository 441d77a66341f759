package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/dsdist/internal/config"
	"github.com/vvka-141/dsdist/internal/params"
	"github.com/vvka-141/dsdist/internal/schema"
	"github.com/vvka-141/dsdist/internal/services"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Environment variables consulted when a flag is not set.
const (
	EnvName        = "DSDIST_NAME"
	EnvOwner       = "DSDIST_OWNER"
	EnvTable       = "DSDIST_TABLE"
	EnvReadme      = "DSDIST_README"
	EnvDestination = "DSDIST_DESTINATION"
	EnvMessage     = "DSDIST_MESSAGE"
)

// datasetFlags holds the dataset flags shared by distribute, plan and validate.
type datasetFlags struct {
	table           string
	name            string
	owner           string
	readme          string
	pathColumns     []string
	metadataColumns []string
	noMetadata      bool
	labels          []string
	supporting      []string
	usage           []string
	license         []string
}

func addDatasetFlags(cmd *cobra.Command, f *datasetFlags) {
	cmd.Flags().StringVarP(&f.table, "table", "t", "",
		"Metadata table (.csv, .tsv or .parquet)\n"+
			"Precedence: --table > $DSDIST_TABLE > dataset.table")
	cmd.Flags().StringVarP(&f.name, "name", "n", "",
		"Dataset name (letters, digits, spaces, '-' and '_')\n"+
			"Precedence: --name > $DSDIST_NAME > dataset.name")
	cmd.Flags().StringVar(&f.owner, "owner", "",
		"Package owner shown in the README footer\n"+
			"Precedence: --owner > $DSDIST_OWNER > dataset.owner")
	cmd.Flags().StringVar(&f.readme, "readme", "",
		"Markdown file used as the README body\n"+
			"Precedence: --readme > $DSDIST_README > dataset.readme")
	cmd.Flags().StringSliceVar(&f.pathColumns, "path-column", nil,
		"Columns holding file paths (default: every column whose name contains 'path')")
	cmd.Flags().StringSliceVar(&f.metadataColumns, "metadata-column", nil,
		"Columns attached as metadata to every referenced file (default: all non-path columns)")
	cmd.Flags().BoolVar(&f.noMetadata, "no-metadata", false,
		"Attach no metadata columns; each file lists the rows referencing it under \"associates\"")
	cmd.MarkFlagsMutuallyExclusive("metadata-column", "no-metadata")
	// Values are taken whole: notes, labels and paths may contain commas.
	cmd.Flags().StringArrayVar(&f.labels, "label", nil,
		"Group label for a path column as column=label (can be specified multiple times)\n"+
			"Columns sharing a label are merged into one group")
	cmd.Flags().StringArrayVar(&f.supporting, "supporting", nil,
		"Supporting file as label=path, or path for the supporting_files group\n"+
			"(can be specified multiple times)")
	cmd.Flags().StringArrayVar(&f.usage, "usage", nil,
		"Usage note or URL appended to the README (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&f.license, "license", nil,
		"License note or URL appended to the README (can be specified multiple times)")
}

// loadProjectConfig loads .env files and dsdist.yaml from dir.
// A missing dsdist.yaml yields an empty config.
func loadProjectConfig(dir string) (*config.ProjectConfig, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))
	_ = godotenv.Load()

	projectCfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return &config.ProjectConfig{}, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// resolveDataset merges flags over environment over dsdist.yaml.
// Flag paths are taken relative to the working directory; dsdist.yaml paths
// were already made relative to the project directory by config.Load.
func resolveDataset(flags datasetFlags, projectCfg *config.ProjectConfig) (config.DatasetConfig, error) {
	ds := projectCfg.Dataset

	ds.Table = firstNonEmpty(flags.table, os.Getenv(EnvTable), ds.Table)
	ds.Name = firstNonEmpty(flags.name, os.Getenv(EnvName), ds.Name)
	ds.Owner = firstNonEmpty(flags.owner, os.Getenv(EnvOwner), ds.Owner)
	ds.Readme = firstNonEmpty(flags.readme, os.Getenv(EnvReadme), ds.Readme)

	if len(flags.pathColumns) > 0 {
		ds.PathColumns = flags.pathColumns
	}
	switch {
	case flags.noMetadata:
		ds.MetadataColumns = []string{}
	case len(flags.metadataColumns) > 0:
		ds.MetadataColumns = flags.metadataColumns
	}
	if len(flags.labels) > 0 {
		labels, err := parseLabelPairs(flags.labels)
		if err != nil {
			return config.DatasetConfig{}, err
		}
		ds.ColumnLabels = labels
	}
	if len(flags.supporting) > 0 {
		ds.SupportingFiles = parseSupportingFlags(flags.supporting)
	}
	ds.UsageDocs = append(append([]string(nil), ds.UsageDocs...), flags.usage...)
	ds.LicenseDocs = append(append([]string(nil), ds.LicenseDocs...), flags.license...)

	if ds.Table == "" {
		return config.DatasetConfig{}, fmt.Errorf("no metadata table given (--table, $%s or dataset.table in %s): %w",
			EnvTable, config.ConfigFileName, dsdist.ErrInvalidConfig)
	}
	if ds.Name == "" {
		return config.DatasetConfig{}, fmt.Errorf("no dataset name given (--name, $%s or dataset.name in %s): %w",
			EnvName, config.ConfigFileName, dsdist.ErrInvalidConfig)
	}
	return ds, nil
}

// parseLabelPairs parses column=label pairs. Labels must not be empty.
func parseLabelPairs(pairs []string) (map[string]string, error) {
	labels, err := params.ParseKeyValuePairs("label", pairs)
	if err != nil {
		return nil, err
	}
	for col, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("--label for column %q is empty: %w", col, dsdist.ErrInvalidConfig)
		}
	}
	return labels, nil
}

// parseSupportingFlags groups label=path values by label. Values without
// a label go to the supporting_files group.
func parseSupportingFlags(values []string) config.SupportingFiles {
	return config.SupportingFiles(params.ParseGrouped(values, dsdist.SupportingFilesLabel))
}

// openDataset builds a dataset from the resolved configuration.
func openDataset(ds config.DatasetConfig, opts ...services.Option) (*services.Dataset, error) {
	dataset, err := services.NewDataset(ds.Table, ds.Name, ds.Owner, ds.Readme, opts...)
	if err != nil {
		return nil, err
	}

	if len(ds.PathColumns) > 0 {
		if err := dataset.SetPathColumns(ds.PathColumns...); err != nil {
			return nil, err
		}
	}
	// An empty non-nil list is an explicit choice of no metadata columns.
	if ds.MetadataColumns != nil {
		if err := dataset.SetMetadataColumns(ds.MetadataColumns...); err != nil {
			return nil, err
		}
	}
	if len(ds.ColumnLabels) > 0 {
		if err := dataset.SetColumnLabels(ds.ColumnLabels); err != nil {
			return nil, err
		}
	}
	if len(ds.SupportingFiles) > 0 {
		if err := dataset.SetSupportingFiles(schema.SupportingFiles(ds.SupportingFiles)); err != nil {
			return nil, err
		}
	}
	for _, doc := range ds.UsageDocs {
		dataset.AddUsageDoc(doc)
	}
	for _, doc := range ds.LicenseDocs {
		dataset.AddLicenseDoc(doc)
	}
	return dataset, nil
}

// projectDir returns the optional project directory argument.
func projectDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
