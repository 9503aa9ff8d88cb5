package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/authscope/authscope/pkg/config"
	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/output"
	"github.com/authscope/authscope/pkg/output/events"
	"github.com/authscope/authscope/pkg/output/exitcode"
	"github.com/authscope/authscope/pkg/scan"
	"github.com/authscope/authscope/pkg/ui"
)

// runScan is the scan subcommand: gather targets, scan them, report.
func runScan(args []string) {
	os.Exit(runBatch("scan", args, func(_ *scan.Scanner, cfg *config.Config, positional []string) ([]string, error) {
		return gatherTargets(cfg, positional)
	}))
}

// runBatch is the shared body of the scan and defaults commands; they
// differ only in where the target list comes from.
func runBatch(name string, args []string, pick func(*scan.Scanner, *config.Config, []string) ([]string, error)) int {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	out := registerOutputFlags(fs)
	cfg, err := resolveConfig(fs, args)
	if err != nil {
		ui.PrintError(err.Error())
		return defaults.ExitUserError
	}

	ui.SetSilent(cfg.Silent || out.JSONMode)
	ui.SetNoColor(cfg.NoColor)
	logger := setupLogger(cfg)

	sc := scan.New(cfg)
	targets, err := pick(sc, cfg, fs.Args())
	if err != nil {
		ui.PrintError(err.Error())
		return defaults.ExitUserError
	}

	if !ui.IsSilent() {
		ui.PrintBanner()
		ui.PrintConfigBanner(configSummary(cfg, sc, targets))
	}

	d, err := output.BuildDispatcher(out.outputConfig(cfg, logger))
	if err != nil {
		ui.PrintError(err.Error())
		return defaults.ExitUserError
	}
	gate := exitcode.New(exitcode.Config{
		FailOnFound:    out.FailOnFound,
		ErrorThreshold: out.MaxErrors,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dc := &DispatcherContext{Dispatcher: d, RunID: uuid.NewString()}
	return executeRun(ctx, sc, cfg, targets, dc, gate)
}

// executeRun drives one batch through the scanner and the output pipeline
// and returns the process exit code. The exit gate is fed synchronously
// from the result callback rather than registered as a dispatcher hook:
// hooks run on goroutines, and the verdict has to be settled before the
// complete event goes out.
func executeRun(ctx context.Context, sc *scan.Scanner, cfg *config.Config, targets []string, dc *DispatcherContext, gate *exitcode.Manager) int {
	startedAt := time.Now().UTC()
	dc.EmitStart(ctx, targets, cfg, sc.RendererName())

	progress := ui.NewProgress(ui.ProgressConfig{Total: len(targets)})
	progress.Start()

	var mu sync.Mutex
	var done int
	var stats events.StatsInfo

	batch := sc.ScanBatch(ctx, targets, scan.BatchOptions{
		Concurrency: cfg.Concurrency,
		RatePerSec:  cfg.RatePerSec,
		OnResult: func(res *scan.Result) {
			_ = gate.OnEvent(ctx, dc.EmitResult(ctx, res))
			if errEvent := dc.EmitError(ctx, res); errEvent != nil {
				_ = gate.OnEvent(ctx, errEvent)
			}
			progress.Increment(res.Outcome())

			mu.Lock()
			done++
			if !res.Success {
				stats.Errors++
			} else if res.Auth != nil {
				if res.Auth.Found {
					stats.SitesWithAuth++
				}
				stats.Components += res.Auth.Total
			}
			current, snapshot := done, stats
			mu.Unlock()

			dc.EmitProgress(ctx, current, len(targets), snapshot, startedAt)
		},
	})
	progress.Stop()

	summary := dc.EmitSummary(ctx, batch, startedAt)
	code, reason := gate.ExitCode()
	dc.EmitComplete(ctx, code, reason, summary)

	if err := dc.Close(); err != nil {
		slog.Error("closing output pipeline", "error", err)
		if code == defaults.ExitSuccess {
			code = defaults.ExitInternalError
		}
	}

	if code != defaults.ExitSuccess && !ui.IsSilent() {
		ui.PrintWarning(fmt.Sprintf("exit %d: %s", code, reason))
	}
	return code
}
