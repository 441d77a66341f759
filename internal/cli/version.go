package cli

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/vvka-141/dsdist/internal/cli.version=..." at release.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		writeVersion(cmd.OutOrStdout(), cmd.ErrOrStderr(), currentBuild())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

type buildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b buildInfo) String() string {
	return fmt.Sprintf("dsdist %s (%s, %s) %s/%s", b.Version, b.Commit, b.Date, runtime.GOOS, runtime.GOARCH)
}

// currentBuild returns the ldflags values, or for a dev build whatever the
// Go toolchain stamped into the binary.
func currentBuild() buildInfo {
	b := buildInfo{Version: version, Commit: commit, Date: date}
	if b.Version != "dev" {
		return b
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		b = b.withModule(info)
	}
	return b
}

func (b buildInfo) withModule(info *debug.BuildInfo) buildInfo {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		b.Version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
			if len(b.Commit) > 12 {
				b.Commit = b.Commit[:12]
			}
		case "vcs.time":
			b.Date = s.Value
		}
	}
	return b
}

// writeVersion puts the version line on out, for scripts, and the
// project line on errOut.
func writeVersion(out, errOut io.Writer, b buildInfo) {
	fmt.Fprintln(out, b)
	fmt.Fprintln(errOut, "Dataset packaging and distribution tool")
	fmt.Fprintln(errOut, "https://github.com/vvka-141/dsdist")
}
