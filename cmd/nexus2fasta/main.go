package main

import (
	"errors"
	"fmt"
	"os"

	"nexus2fasta/internal/convert"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.2.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy to shell-visible codes so scripts can
// tell a structurally unusable NEXUS file (2), a parse that recovered
// nothing (3), and ordinary I/O or usage failures (1) apart.
func exitCode(err error) int {
	switch {
	case errors.Is(err, convert.ErrNoMatrix):
		return 2
	case errors.Is(err, convert.ErrNoSequences):
		return 3
	}
	return 1
}
