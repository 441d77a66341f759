package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/dsdist/internal/cli"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

func main() {
	os.Exit(run())
}

// run maps the command's outcome to an exit code. A panic exits with
// dsdist.ExitPanic after printing its stack.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			code = dsdist.ExitPanic
		}
	}()

	if os.Getenv("DSDIST_TEST_PANIC") == "1" {
		panic("DSDIST_TEST_PANIC is set")
	}
	if err := cli.Execute(); err != nil {
		return dsdist.ExitCodeForError(err)
	}
	return dsdist.ExitSuccess
}
