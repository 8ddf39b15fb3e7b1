package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"petdeface/internal/services"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command tree and maps its outcome to a process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return services.ExitOK
	}
	code := services.ExitCode(err)

	var reported reportedError
	switch {
	case errors.As(err, &reported):
	case jsonRequested(cmd):
		report := failureReport(err)
		if encErr := writeJSONTo(stdout, report); encErr != nil {
			fmt.Fprintln(stderr, err)
		}
	case errors.Is(err, context.Canceled):
	default:
		fmt.Fprintln(stderr, err)
	}
	return code
}

// jsonRequested reports whether --json was set. Persistent flags share their
// value with every subcommand, so the root lookup sees what the leaf parsed.
func jsonRequested(root *cobra.Command) bool {
	flag := root.PersistentFlags().Lookup("json")
	return flag != nil && flag.Value.String() == "true"
}
