package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/vvka-141/dsdist/internal/tui"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// writeSummary prints what a push will store. Labels are listed only in
// verbose mode.
func writeSummary(w io.Writer, s dsdist.PushSummary, verbose bool) {
	fmt.Fprintf(w, "  %s %-12s %s\n", tui.SymbolBullet, "Dataset:", s.Name)
	fmt.Fprintf(w, "  %s %-12s %s\n", tui.SymbolBullet, "Destination:", s.Destination)
	fmt.Fprintf(w, "  %s %-12s %d (%s)\n", tui.SymbolBullet, "Files:", s.Files, formatBytes(s.Bytes))
	if verbose && len(s.Labels) > 0 {
		fmt.Fprintf(w, "  %s %-12s %s\n", tui.SymbolBullet, "Labels:", strings.Join(s.Labels, ", "))
	}
}

// formatBytes renders n with a binary unit, e.g. "1.5 MiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
