package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dsdist/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "dsdist",
	Short: "Package metadata tables and the files they reference",
	Long: `dsdist turns a metadata table whose columns point at files into a
distributable dataset package: every referenced file grouped by path column,
each file annotated with the metadata of the rows that reference it, plus a
README and a snapshot of the table.

Packages are written to a local build directory or pushed to S3, Azure Blob
Storage or a PostgreSQL catalog.

Configuration is read from dsdist.yaml in the project directory. Flags
override environment variables, which override the file.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Validation failed (unknown column, reserved label, bad name)
  12 - Table, README or referenced file not found
  13 - Unsupported table or non-JSON metadata value
  14 - User denied the push
  15 - Push failed`,
	SilenceUsage: true,
}

// Execute runs the command line in os.Args.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = currentBuild().String()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag reports --verbose, false when the command does not carry it.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", tui.WarningStyle.Render("Warning:"), err)
		return false
	}
	return verbose
}
