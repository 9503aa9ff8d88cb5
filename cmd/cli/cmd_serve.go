package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/authscope/authscope/pkg/output/hooks"
	"github.com/authscope/authscope/pkg/scan"
	"github.com/authscope/authscope/pkg/server"
	"github.com/authscope/authscope/pkg/ui"
)

// runServe starts the web UI and JSON API and blocks until interrupted.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg, err := resolveConfig(fs, args)
	if err != nil {
		exitWithError("%v", err)
	}

	ui.SetSilent(cfg.Silent)
	ui.SetNoColor(cfg.NoColor)
	logger := setupLogger(cfg)

	sc := scan.New(cfg)

	// Metrics mount on the API mux, so one port serves UI, API, and
	// scrapes. The -metrics-port sidecar is for headless scan runs.
	metrics, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{WithoutServer: true})
	if err != nil {
		exitWithError("metrics: %v", err)
	}
	defer metrics.Close()

	srv := server.New(cfg, sc, server.WithLogger(logger), server.WithMetrics(metrics))

	if !ui.IsSilent() {
		ui.PrintBanner()
		ui.PrintConfigBanner(map[string]string{
			"Listen":   cfg.Listen,
			"Renderer": sc.RendererName(),
			"Fallback": cfg.Fallback,
			"Timeout":  cfg.Timeout().String(),
		})
		ui.PrintInfo("Web UI on http://" + displayAddr(cfg.Listen))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		exitWithError("server: %v", err)
	}
}

// displayAddr turns a listen address into something clickable.
func displayAddr(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "localhost" + listen
	}
	return listen
}
