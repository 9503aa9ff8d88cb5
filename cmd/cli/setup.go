// This file carries the setup shared by all commands: the settings
// precedence chain, target gathering, and process logging.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/authscope/authscope/pkg/config"
	"github.com/authscope/authscope/pkg/input"
	"github.com/authscope/authscope/pkg/scan"
	"github.com/authscope/authscope/presets"
)

// resolveConfig runs the settings chain for one command: defaults, then an
// optional -profile overlay, then the config file, environment variables,
// and flags. The caller registers its own flags on fs first; Parse happens
// here so everything lands in one pass.
func resolveConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	cfg := config.Default()

	// -profile is pre-scanned because its overlay has to apply below the
	// file, env, and flag layers.
	if name := preScanFlag(args, "profile"); name != "" {
		overlay, err := presets.Profile(name)
		if err != nil {
			return nil, err
		}
		if err := cfg.LoadBytes(overlay); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
	}

	if path := config.ResolveFile(args); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	cfg.RegisterFlags(fs)
	fs.String("profile", "", "Preset profile: "+strings.Join(presets.ProfileNames(), ", "))
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// preScanFlag pulls one flag value out of raw arguments before flag
// parsing, for flags that influence how the config chain is built.
func preScanFlag(args []string, name string) string {
	for i := 0; i < len(args); i++ {
		for _, form := range []string{"-" + name, "--" + name} {
			if args[i] == form && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(args[i], form+"=") {
				return strings.TrimPrefix(args[i], form+"=")
			}
		}
	}
	return ""
}

// gatherTargets merges config targets, positional arguments, the list
// file, and piped stdin into one deduplicated list.
func gatherTargets(cfg *config.Config, positional []string) ([]string, error) {
	urls := append([]string{}, cfg.Targets...)
	urls = append(urls, positional...)

	src := &input.TargetSource{
		URLs:     urls,
		ListFile: cfg.TargetsFile,
		Stdin:    cfg.Stdin,
	}
	targets, err := src.GetTargets()
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets given, use -u, -l, or -stdin: %w", config.ErrMissingRequired)
	}
	return targets, nil
}

// setupLogger builds the process logger. Warnings only by default so log
// lines do not fight the progress display; -verbose opens it up to debug.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSONLog {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// configSummary builds the settings map for the pre-run banner.
func configSummary(cfg *config.Config, sc *scan.Scanner, targets []string) map[string]string {
	m := map[string]string{
		"Renderer":    sc.RendererName(),
		"Fallback":    cfg.Fallback,
		"Concurrency": strconv.Itoa(cfg.Concurrency),
		"Timeout":     cfg.Timeout().String(),
	}
	if len(targets) == 1 {
		m["Target"] = targets[0]
	} else {
		m["Targets"] = strconv.Itoa(len(targets))
	}
	if len(cfg.Providers) > 0 {
		m["Providers"] = strings.Join(cfg.Providers, ", ")
	}
	if cfg.RatePerSec > 0 {
		m["Rate Limit"] = fmt.Sprintf("%g/s", cfg.RatePerSec)
	}
	return m
}
