package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/naming"
	"github.com/vvka-141/dsdist/internal/packager"
	"github.com/vvka-141/dsdist/internal/packager/catalog"
	"github.com/vvka-141/dsdist/internal/packager/destination"
)

var latestCmd = &cobra.Command{
	Use:   "latest <catalog_url> <name>",
	Short: "Show the newest revision of a dataset in a catalog",
	Long: `Latest looks up the most recent revision pushed to a PostgreSQL
catalog for a dataset name. Names are matched by slug, so "Cell Atlas" and
"cell atlas" find the same dataset.

Catalog authentication is read from storage.catalog in the dsdist.yaml of
--project.

Examples:
  dsdist latest postgres://reader@db.example.org/datasets "Cell Atlas"
  dsdist latest postgres://iam_user@mydb.rds.amazonaws.com/catalog atlas --project ./atlas`,
	Args: cobra.ExactArgs(2),
	RunE: runLatest,
}

var latestFlags struct {
	project string
	timeout time.Duration
}

func init() {
	rootCmd.AddCommand(latestCmd)
	latestCmd.Flags().StringVar(&latestFlags.project, "project", ".",
		"Directory containing dsdist.yaml with the catalog settings")
	latestCmd.Flags().DurationVar(&latestFlags.timeout, "timeout", time.Minute,
		"Upper bound for the lookup")
}

// revisionFinder is the part of a catalog packager latest needs.
type revisionFinder interface {
	Latest(ctx context.Context, slug string) (catalog.Revision, error)
}

func runLatest(cmd *cobra.Command, args []string) error {
	dest, err := destination.Parse(args[0])
	if err != nil {
		return err
	}
	projectCfg, err := loadProjectConfig(latestFlags.project)
	if err != nil {
		return err
	}
	opts, err := packager.OptionsFromConfig(projectCfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), latestFlags.timeout)
	defer cancel()

	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	p, err := packager.NewRouter(opts, filesystem.NewOSFileSystem(), logger).Catalog(ctx, dest)
	if err != nil {
		return err
	}
	defer p.Close()

	return printLatest(ctx, cmd.OutOrStdout(), p, args[1])
}

func printLatest(ctx context.Context, w io.Writer, f revisionFinder, name string) error {
	r, err := f.Latest(ctx, naming.Slug(name))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		r.Revision, r.Name, r.Created.UTC().Format(time.RFC3339), r.Owner, r.Message)
	return err
}
