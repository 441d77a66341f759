package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/scaffold"
	"github.com/vvka-141/dsdist/internal/tui"
)

var initCmd = &cobra.Command{
	Use:   "init <project_dir>",
	Short: "Create a new dataset project from a template",
	Long: `Init writes a dsdist.yaml, a README, a sample metadata table and the
files it references into an empty directory.

Templates:
  basic      one path column, metadata attached per file
  labeled    two path columns merged under one label, plus supporting files

Examples:
  dsdist init ./atlas --name "Cell Atlas"
  dsdist init ./atlas --name atlas --owner "Imaging Lab" --template labeled`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var initFlags struct {
	name     string
	owner    string
	template string
}

func init() {
	rootCmd.AddCommand(initCmd)

	templates, _ := scaffold.ListTemplates()
	initCmd.Flags().StringVarP(&initFlags.name, "name", "n", "",
		"Dataset name (default: the directory name)")
	initCmd.Flags().StringVar(&initFlags.owner, "owner", "",
		"Dataset owner written to dsdist.yaml")
	initCmd.Flags().StringVar(&initFlags.template, "template", scaffold.DefaultTemplate,
		"Project template: "+strings.Join(templates, ", "))
}

func runInit(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	targetPath := args[0]

	name := initFlags.name
	if name == "" {
		name = defaultDatasetName(targetPath)
	}

	scaffolder := scaffold.NewScaffolder(logging.NewConsoleLogger(verbose))
	if err := scaffolder.CreateProject(scaffold.Project{
		Name:     name,
		Owner:    initFlags.owner,
		Template: initFlags.template,
	}, targetPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Created dataset project '%s'\n\n", tui.SuccessStyle.Render(tui.SymbolCheck), name)
	if tree, err := scaffold.BuildFileTree(targetPath); err == nil {
		fmt.Fprintln(out, tree)
	} else {
		fmt.Fprintf(os.Stderr, "%s failed to list project files: %v\n", tui.WarningStyle.Render("Warning:"), err)
	}
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  dsdist validate %s\n", targetPath)
	fmt.Fprintf(out, "  dsdist distribute %s\n", targetPath)
	return nil
}

// defaultDatasetName derives a dataset name from a directory path.
func defaultDatasetName(path string) string {
	base := strings.TrimRight(strings.ReplaceAll(path, "\\", "/"), "/")
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if base == "" || base == "." || base == ".." {
		return "dataset"
	}
	return base
}
