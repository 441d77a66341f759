package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/dsdist/internal/config"
	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/packager"
	"github.com/vvka-141/dsdist/internal/packager/destination"
	"github.com/vvka-141/dsdist/internal/services"
	"github.com/vvka-141/dsdist/internal/tui"
	"github.com/vvka-141/dsdist/internal/ui"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

var distributeCmd = &cobra.Command{
	Use:   "distribute [project_dir]",
	Short: "Build a dataset package and push it to a destination",
	Long: `Distribute reads the metadata table, groups the files its path columns
reference, attaches the metadata of every referencing row to each file and
writes the package.

Destinations:
  (none)                     local build under push.build_dir (default: dist)
  file:///path/to/dir        local build under the given directory
  s3://bucket/prefix         Amazon S3 or an S3-compatible service
  az://container/prefix      Azure Blob Storage
  postgres://user@host/db    PostgreSQL package catalog

Remote destinations ask for confirmation first: type the dataset name, or
pass --force to push after a short countdown.

Arguments:
  project_dir    Directory containing dsdist.yaml (default: current directory)

Examples:
  # Local build from dsdist.yaml
  dsdist distribute ./atlas

  # Push to S3 without a prompt (CI/CD)
  dsdist distribute ./atlas -d s3://datasets/releases -m "March release" --force

  # Everything from flags
  dsdist distribute --table cells.csv --name "Cell Atlas" \
    --label image_path=images --supporting docs/protocol.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDistribute,
}

type distributeFlagValues struct {
	dataset     datasetFlags
	destination string
	message     string
	buildDir    string
	retries     int
	force       bool
	timeout     time.Duration
}

var distributeFlags distributeFlagValues

func init() {
	rootCmd.AddCommand(distributeCmd)

	addDatasetFlags(distributeCmd, &distributeFlags.dataset)

	distributeCmd.Flags().StringVarP(&distributeFlags.destination, "destination", "d", "",
		"Where to push the package (file://, s3://, az://, postgres://)\n"+
			"Precedence: --destination > $DSDIST_DESTINATION > push.destination > local build")
	distributeCmd.Flags().StringVarP(&distributeFlags.message, "message", "m", "",
		"Message recorded with this revision\n"+
			"Precedence: --message > $DSDIST_MESSAGE > push.message")
	distributeCmd.Flags().StringVar(&distributeFlags.buildDir, "build-dir", "",
		"Directory for local builds (default: push.build_dir or dist)")
	distributeCmd.Flags().IntVar(&distributeFlags.retries, "retries", -1,
		"Retry attempts per upload (default: push.retry_attempts or 3)")
	distributeCmd.Flags().BoolVar(&distributeFlags.force, "force", false,
		"Skip the interactive confirmation for remote destinations\n"+
			"A short countdown is shown instead")
	distributeCmd.Flags().DurationVar(&distributeFlags.timeout, "timeout", 30*time.Minute,
		"Upper bound for the whole run, uploads included\n"+
			"Examples: 90s, 10m, 2h")
}

// distributeRequest is the fully resolved input of one distribute run.
type distributeRequest struct {
	Dataset     config.DatasetConfig
	Destination string
	Message     string
	Router      packager.Options
	Timeout     time.Duration
}

// buildDistributeRequest merges flags, environment and dsdist.yaml.
func buildDistributeRequest(cmd *cobra.Command, dir string, flags distributeFlagValues) (distributeRequest, error) {
	projectCfg, err := loadProjectConfig(dir)
	if err != nil {
		return distributeRequest{}, err
	}

	ds, err := resolveDataset(flags.dataset, projectCfg)
	if err != nil {
		return distributeRequest{}, err
	}

	opts, err := packager.OptionsFromConfig(projectCfg)
	if err != nil {
		return distributeRequest{}, err
	}
	if flags.buildDir != "" {
		opts.BuildDir = flags.buildDir
	}
	if flags.retries >= 0 {
		opts.Retries = flags.retries
	}

	timeout := flags.timeout
	if !cmd.Flags().Changed("timeout") {
		if d := projectCfg.TimeoutDuration(); d > 0 {
			timeout = d
		}
	}

	return distributeRequest{
		Dataset:     ds,
		Destination: firstNonEmpty(flags.destination, os.Getenv(EnvDestination), projectCfg.Push.Destination),
		Message:     firstNonEmpty(flags.message, os.Getenv(EnvMessage), projectCfg.Push.Message),
		Router:      opts,
		Timeout:     timeout,
	}, nil
}

func runDistribute(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	req, err := buildDistributeRequest(cmd, projectDir(args), distributeFlags)
	if err != nil {
		return err
	}

	// Select approver implementation based on --force flag
	var approver dsdist.Approver
	if distributeFlags.force {
		approver = ui.NewForcedApprover(verbose)
	} else {
		approver = ui.NewInteractiveApprover(verbose)
	}
	logger := logging.NewConsoleLogger(verbose)
	fsys := filesystem.NewOSFileSystem()

	var resolver services.PackagerResolver = packager.NewRouter(req.Router, fsys, logger)
	if !verbose {
		resolver = progressResolver{next: resolver}
	}

	dataset, err := openDataset(req.Dataset,
		services.WithFileSystem(fsys),
		services.WithLogger(logger),
		services.WithApprover(approver),
		services.WithPackagers(resolver),
	)
	if err != nil {
		return err
	}

	// Setup context with timeout and signal handling for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), req.Timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling push...")
			cancel()
		case <-ctx.Done():
		}
	}()

	handle, err := dataset.Distribute(ctx, req.Destination, req.Message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s was not distributed\n", tui.ErrorStyle.Render(tui.SymbolCross), dataset.Name())
		return err
	}

	printHandle(os.Stderr, handle)
	fmt.Println(handle.Location)
	return nil
}

func printHandle(w io.Writer, handle dsdist.PackageHandle) {
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", tui.LabelStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
	}
	fmt.Fprintln(w, tui.TitleStyle.Render(handle.Name))
	row("Revision", handle.Revision.String())
	row("Location", handle.Location)
	row("Keys", strings.Join(handle.Keys, ", "))
}

// progressResolver shows a spinner while a backend pushes.
type progressResolver struct {
	next services.PackagerResolver
}

func (r progressResolver) Resolve(ctx context.Context, dest destination.Destination) (dsdist.Packager, error) {
	p, err := r.next.Resolve(ctx, dest)
	if err != nil {
		return nil, err
	}
	return &progressPackager{next: p, dest: dest}, nil
}

type progressPackager struct {
	next dsdist.Packager
	dest destination.Destination
}

func (p *progressPackager) Push(ctx context.Context, pkg *dsdist.Package, rawDestination string) (dsdist.PackageHandle, error) {
	var handle dsdist.PackageHandle
	message := fmt.Sprintf("Pushing %d files of %s to %s", len(pkg.Entries), pkg.Name, p.dest)
	_, err := tui.RunWithSpinner(ctx, message, func(ctx context.Context) (string, error) {
		h, err := p.next.Push(ctx, pkg, rawDestination)
		if err != nil {
			return "", err
		}
		handle = h
		return fmt.Sprintf("Pushed revision %s", h.Revision), nil
	})
	return handle, err
}

func (p *progressPackager) Close() error {
	if c, ok := p.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
