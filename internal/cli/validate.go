package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/services"
	"github.com/vvka-141/dsdist/internal/tui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [project_dir]",
	Short: "Check that a dataset can be distributed",
	Long: `Validate runs every step of distribute except the push: it loads the
table, checks the schema and labels, reduces metadata and reads every
referenced file. Nothing is written.

Examples:
  dsdist validate ./atlas
  dsdist validate --table cells.csv --name atlas -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var validateFlags datasetFlags

func init() {
	rootCmd.AddCommand(validateCmd)
	addDatasetFlags(validateCmd, &validateFlags)
}

func runValidate(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(projectDir(args))
	if err != nil {
		return err
	}
	ds, err := resolveDataset(validateFlags, projectCfg)
	if err != nil {
		return err
	}

	dataset, err := openDataset(ds, services.WithLogger(logging.NewConsoleLogger(verbose)))
	if err != nil {
		return err
	}
	pkg, err := dataset.Assemble("")
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(pkg.Labels))
	var bytes int64
	for _, e := range pkg.Entries {
		counts[e.Label]++
		bytes += e.SizeBytes
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s is ready to distribute\n", tui.SuccessStyle.Render(tui.SymbolCheck), pkg.Name)
	for _, label := range pkg.Labels {
		fmt.Fprintf(out, "  %s %-24s %d files\n", tui.SymbolBullet, label, counts[label])
	}
	fmt.Fprintf(out, "  %s %d entries, %d bytes\n", tui.SymbolArrowRight, len(pkg.Entries), bytes)
	return nil
}
