package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/dsdist/internal/tui"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// InteractiveApprover asks the user to type the dataset name before a
// remote push.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover reads from stdin and prompts on stderr.
func NewInteractiveApprover(verbose bool) dsdist.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval approves only when the typed line, trimmed, equals the
// dataset name. Cancelling ctx abandons the pending read.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, s dsdist.PushSummary) (bool, error) {
	fmt.Fprintf(a.output, "\n%s You are about to publish:\n", tui.WarningStyle.Render("WARNING:"))
	writeSummary(a.output, s, a.verbose)
	fmt.Fprintln(a.output, "Readers of the destination will see every file listed above.")
	fmt.Fprintf(a.output, "\nType the dataset name '%s' to confirm: ", s.Name)

	type line struct {
		text string
		err  error
	}
	read := make(chan line, 1)
	go func() {
		text, err := bufio.NewReader(a.input).ReadString('\n')
		if err != nil && !(err == io.EOF && text != "") {
			read <- line{err: err}
			return
		}
		read <- line{text: strings.TrimSpace(text)}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case l := <-read:
		if l.err != nil {
			return false, fmt.Errorf("failed to read input: %w", l.err)
		}
		if l.text != s.Name {
			fmt.Fprintf(a.output, "%s '%s' does not match dataset name '%s'. Push cancelled.\n",
				tui.ErrorStyle.Render(tui.SymbolCross), l.text, s.Name)
			return false, nil
		}
		fmt.Fprintf(a.output, "%s Confirmed. Proceeding with push...\n", tui.SuccessStyle.Render(tui.SymbolCheck))
		return true, nil
	}
}

var _ dsdist.Approver = (*InteractiveApprover)(nil)
