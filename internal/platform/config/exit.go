package config

import (
	"fmt"
	"os"
)

// Exitf reports a fatal error on stderr and terminates the process
// with status 1. Entry points use it for failures that happen before
// the service's logger is configured.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
