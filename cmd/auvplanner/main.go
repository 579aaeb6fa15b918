package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// BuildDate can be set at build time via ldflags
var (
	Version   string = "0.1.0"
	BuildDate string = "unknown"

	AppName string = "auvplanner"
)

const (
	exitOK       = 0
	exitRejected = 1
	exitFailure  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = strings.ToLower(args[0])
		args = args[1:]
	}

	switch cmd {
	case "serve":
		return runServe(args, stderr)
	case "estimate":
		return runEstimate(args, stdin, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "%s %s (built %s)\n", AppName, Version, BuildDate)
		return exitOK
	case "help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		usage(stderr)
		return exitFailure
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  %[1]s [serve] [--config DIR] [--address ADDR]
  %[1]s estimate [--config DIR] [--remote URL] FILE|-
  %[1]s version
`, AppName)
}
