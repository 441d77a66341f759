package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/services"
	"github.com/vvka-141/dsdist/internal/tui"
)

var planCmd = &cobra.Command{
	Use:   "plan [project_dir]",
	Short: "Print the manifest a distribute run would produce",
	Long: `Plan builds the manifest (label -> file -> metadata) without
checksumming or pushing anything and prints it as JSON on stdout.

Examples:
  dsdist plan ./atlas > manifest.json
  dsdist plan --table cells.csv --name atlas --metadata-column donor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

var planFlags datasetFlags

func init() {
	rootCmd.AddCommand(planCmd)
	addDatasetFlags(planCmd, &planFlags)
}

func runPlan(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(projectDir(args))
	if err != nil {
		return err
	}
	ds, err := resolveDataset(planFlags, projectCfg)
	if err != nil {
		return err
	}

	dataset, err := openDataset(ds, services.WithLogger(logging.NewConsoleLogger(verbose)))
	if err != nil {
		return err
	}
	manifest, err := dataset.Build()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to write manifest: %v\n", tui.WarningStyle.Render("Warning:"), err)
	}
	return nil
}
