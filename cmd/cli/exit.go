package main

import (
	"fmt"
	"os"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/ui"
)

// exitWithError prints a formatted error message and exits with the
// user-error code. For failures before a run starts: bad flags, unreadable
// files, invalid config.
func exitWithError(format string, args ...any) {
	ui.PrintError(fmt.Sprintf(format, args...))
	os.Exit(defaults.ExitUserError)
}
