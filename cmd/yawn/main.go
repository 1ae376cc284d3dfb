// Command yawn compiles and runs relational query documents.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/yawn/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own errors; cobra-level errors (unknown
		// flags, missing arguments) are printed here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
