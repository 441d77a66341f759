package tui

import (
	"os"

	"golang.org/x/term"
)

// NonInteractiveEnv disables the push spinner when set to "1".
const NonInteractiveEnv = "DSDIST_NON_INTERACTIVE"

// Mode says whether progress can be drawn for a human.
type Mode int

const (
	ModeNonInteractive Mode = iota
	ModeInteractive
)

// environment is what DetectMode looks at. Tests replace it.
type environment struct {
	getenv     func(string) string
	isTerminal func(fd int) bool
}

var defaultEnvironment = environment{
	getenv:     os.Getenv,
	isTerminal: term.IsTerminal,
}

// DetectMode reports ModeInteractive only when stdin and stderr are both
// terminals and none of DSDIST_NON_INTERACTIVE=1, CI or NO_COLOR is set.
//
// stdout is not checked: it carries the package location and is often
// captured, e.g. loc=$(dsdist distribute -d s3://bucket).
func DetectMode() Mode {
	return defaultEnvironment.mode(int(os.Stdin.Fd()), int(os.Stderr.Fd()))
}

func (e environment) mode(stdin, stderr int) Mode {
	if e.getenv(NonInteractiveEnv) == "1" || e.getenv("CI") != "" || e.getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	if !e.isTerminal(stdin) || !e.isTerminal(stderr) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports whether DetectMode returns ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
