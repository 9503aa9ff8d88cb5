package main

import (
	"os"

	"github.com/authscope/authscope/pkg/config"
	"github.com/authscope/authscope/pkg/scan"
)

// runDefaults scans the built-in demo roster, the same sites the web UI
// batch button hits. Takes no targets; everything else works like scan.
func runDefaults(args []string) {
	os.Exit(runBatch("defaults", args, func(sc *scan.Scanner, _ *config.Config, _ []string) ([]string, error) {
		return sc.DefaultSites(), nil
	}))
}
