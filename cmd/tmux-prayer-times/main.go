// Command tmux-prayer-times prints the next prayer in a form suited to a
// tmux status line. It is shorthand for "prayer-times next" with the
// name-and-time format, and accepts the same flags.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smokyabdulrahman/prayer-times/internal/cli"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the status-line command and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	for _, a := range args {
		if a == "--version" || a == "-version" {
			fmt.Fprintf(stdout, "tmux-prayer-times %s\n", version)
			return 0
		}
	}

	root := cli.NewRootCmd(version)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(nextArgs(args))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// nextArgs routes args to the next subcommand, defaulting to name-and-time.
func nextArgs(args []string) []string {
	out := append([]string{"next"}, args...)
	for _, a := range args {
		if a == "--format" || strings.HasPrefix(a, "--format=") {
			return out
		}
	}
	return append(out, "--format", prayer.FormatNameAndTime)
}
