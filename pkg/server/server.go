// Package server exposes the scan pipeline over HTTP: the JSON API the
// embedded UI talks to, a liveness endpoint, and optional Prometheus
// metrics mounted on the same mux.
package server

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/authscope/authscope/pkg/config"
	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/duration"
	"github.com/authscope/authscope/pkg/iohelper"
	"github.com/authscope/authscope/pkg/jsonutil"
	"github.com/authscope/authscope/pkg/output/hooks"
	"github.com/authscope/authscope/pkg/scan"
)

//go:embed index.html
var indexPage []byte

// Server serves the scan API and the single-page UI.
type Server struct {
	scanner *scan.Scanner
	addr    string
	batch   scan.BatchOptions
	log     *slog.Logger
	metrics *hooks.PrometheusHook
	srv     *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics mounts the hook's scrape handler at /metrics and feeds it a
// result event per completed scan.
func WithMetrics(h *hooks.PrometheusHook) Option {
	return func(s *Server) { s.metrics = h }
}

// New builds a Server around an existing Scanner. The listen address and
// batch fan-out settings come from cfg.
func New(cfg *config.Config, sc *scan.Scanner, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		scanner: sc,
		addr:    cfg.Listen,
		batch: scan.BatchOptions{
			Concurrency: cfg.Concurrency,
			RatePerSec:  cfg.RatePerSec,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Handler returns the full route table. Exposed separately from Start so
// tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/scan", s.handleScan)
	mux.HandleFunc("/api/scan-defaults", s.handleScanDefaults)
	mux.HandleFunc("/api/health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// Start runs the server until ctx is canceled, then drains connections
// within the shutdown window. A clean shutdown returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  duration.ServerRead,
		WriteTimeout: duration.ServerWrite,
		IdleTimeout:  duration.ServerIdle,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), duration.ServerShutdown)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("server listening", "addr", s.addr, "renderer", s.scanner.RendererName())
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

// scanRequest distinguishes an absent url key from a present-but-empty
// one: absent is "Missing url", empty fails target validation.
type scanRequest struct {
	URL *string `json:"url"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req scanRequest
	if body, err := iohelper.ReadRequestBody(r.Body); err == nil && len(body) > 0 {
		// a malformed body reads as an absent url
		_ = jsonutil.Unmarshal(body, &req)
	}
	if req.URL == nil {
		writeError(w, http.StatusBadRequest, "Missing url")
		return
	}

	res, err := s.scanner.ScanPage(r.Context(), *req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid URL")
		return
	}

	s.observe(r.Context(), uuid.NewString(), res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleScanDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	runID := uuid.NewString()
	opts := s.batch
	opts.OnResult = func(res *scan.Result) {
		s.observe(r.Context(), runID, res)
	}

	batch := s.scanner.ScanDefaults(r.Context(), opts)
	s.log.Info("default scan finished",
		"run", runID,
		"scanned", batch.TotalScanned,
		"sites_with_auth", batch.SitesWithAuth)
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": defaults.Version,
	})
}

// observe logs one finished scan and mirrors it into the metrics hook.
func (s *Server) observe(ctx context.Context, runID string, res *scan.Result) {
	s.log.Info("scan finished",
		"url", res.URL,
		"outcome", res.Outcome(),
		"scan_time", res.ScanTime)
	if s.metrics != nil {
		_ = s.metrics.OnEvent(ctx, res.Event(runID))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := jsonutil.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
