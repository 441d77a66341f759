package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/dsdist/internal/tui"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// ForcedApprover approves every push after a short countdown that can be
// interrupted with Ctrl+C. Used with --force.
type ForcedApprover struct {
	verbose   bool
	countdown time.Duration
	output    io.Writer
	sleepFn   func(time.Duration)
}

// NewForcedApprover writes its countdown to stderr.
func NewForcedApprover(verbose bool) dsdist.Approver {
	return &ForcedApprover{
		verbose:   verbose,
		countdown: dsdist.DefaultPushApprovalCountdown,
		output:    os.Stderr,
		sleepFn:   time.Sleep,
	}
}

func (a *ForcedApprover) RequestApproval(ctx context.Context, s dsdist.PushSummary) (bool, error) {
	fmt.Fprintln(a.output, "\nPushing without confirmation (--force):")
	writeSummary(a.output, s, a.verbose)

	for left := int(a.countdown / time.Second); left > 0; left-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rStarting in %ds... (Ctrl+C to cancel)", left)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r%s Proceeding with push...              \n", tui.SuccessStyle.Render(tui.SymbolCheck))
	return true, nil
}

var _ dsdist.Approver = (*ForcedApprover)(nil)
