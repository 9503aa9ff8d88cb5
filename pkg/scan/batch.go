package scan

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/authscope/authscope/pkg/defaults"
	"github.com/authscope/authscope/pkg/duration"
	"github.com/authscope/authscope/pkg/output/events"
	"github.com/authscope/authscope/pkg/workerpool"
)

// BatchOptions tune one batch run.
type BatchOptions struct {
	// Concurrency caps simultaneous page scans. Non-positive falls back to
	// the batch default; values above the pool ceiling are clamped.
	Concurrency int

	// RatePerSec paces fetch starts across the whole batch. Zero disables
	// pacing.
	RatePerSec float64

	// OnResult, when set, receives each result as it lands. Called from
	// worker goroutines, so implementations must be safe for concurrent
	// use.
	OnResult func(*Result)
}

// ScanBatch scans targets in parallel and tallies the response envelope.
// Results keep input order. A target that fails to fetch, or cannot be
// normalized at all, lands in its own error result and never disturbs the
// rest of the batch. When ctx carries no deadline the whole batch is
// bounded by the batch window.
func (s *Scanner) ScanBatch(ctx context.Context, targets []string, opts BatchOptions) *BatchResult {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration.BatchOverall)
		defer cancel()
	}

	workers := opts.Concurrency
	if workers <= 0 {
		workers = defaults.ConcurrencyBatch
	}
	if workers > defaults.ConcurrencyMax {
		workers = defaults.ConcurrencyMax
	}

	var limiter *rate.Limiter
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}

	pool := workerpool.New(workers)
	defer pool.Close()

	results := workerpool.Map(pool, targets, func(target string) *Result {
		if limiter != nil {
			// A canceled wait falls through: the renderer fails fast on the
			// dead context and the result carries the timeout reason.
			_ = limiter.Wait(ctx)
		}
		res := s.scanTarget(ctx, target)
		if opts.OnResult != nil {
			opts.OnResult(res)
		}
		return res
	})

	batch := &BatchResult{Results: results, TotalScanned: len(results)}
	for _, r := range results {
		if r.Auth != nil && r.Auth.Found {
			batch.SitesWithAuth++
		}
	}
	return batch
}

// ScanDefaults scans this scanner's default site list.
func (s *Scanner) ScanDefaults(ctx context.Context, opts BatchOptions) *BatchResult {
	return s.ScanBatch(ctx, s.sites, opts)
}

// scanTarget is the per-URL batch unit: a target that cannot be normalized
// becomes an error result instead of aborting the batch.
func (s *Scanner) scanTarget(ctx context.Context, raw string) *Result {
	res, err := s.ScanPage(ctx, raw)
	if err != nil {
		return &Result{
			ScanID:  uuid.NewString(),
			URL:     strings.TrimSpace(raw),
			Error:   "Invalid URL",
			Failure: events.ErrorTypeInvalidTarget,
		}
	}
	return res
}
