package ui

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/authscope/authscope/pkg/duration"
)

// ProgressMode determines how batch progress is displayed.
type ProgressMode int

const (
	// ProgressAuto picks Interactive on a terminal, Streaming otherwise.
	ProgressAuto ProgressMode = iota
	// ProgressInteractive redraws a single line with ANSI escape codes.
	ProgressInteractive
	// ProgressStreaming prints plain lines for CI and redirected output.
	ProgressStreaming
	// ProgressSilent suppresses progress output entirely.
	ProgressSilent
)

// DefaultProgressMode returns Interactive when stderr is a terminal,
// Streaming otherwise. Silent mode wins over both.
func DefaultProgressMode() ProgressMode {
	if IsSilent() {
		return ProgressSilent
	}
	if StderrIsTerminal() {
		return ProgressInteractive
	}
	return ProgressStreaming
}

// ProgressConfig holds progress display settings.
type ProgressConfig struct {
	Total    int
	Mode     ProgressMode
	Writer   io.Writer     // default os.Stderr
	Interval time.Duration // redraw interval; defaults per mode
}

// Progress is a live-updating display for batch scans. It tracks pages
// scanned and their outcomes ("found", "none", "error") and renders either
// an animated status line or periodic plain-text updates.
type Progress struct {
	config    ProgressConfig
	spinner   Spinner
	startTime time.Time

	current int64
	found   int64
	none    int64
	errored int64

	done     chan struct{}
	mu       sync.Mutex
	running  bool
	renderMu sync.Mutex // serializes writes from the render loop and Stop
}

// NewProgress creates a progress display for a batch of total pages.
func NewProgress(config ProgressConfig) *Progress {
	if config.Mode == ProgressAuto {
		config.Mode = DefaultProgressMode()
	}
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	spinner := DefaultSpinner()
	if config.Interval == 0 {
		if config.Mode == ProgressStreaming {
			config.Interval = duration.StreamRefresh
		} else {
			config.Interval = spinner.Interval
		}
	}
	return &Progress{
		config:  config,
		spinner: spinner,
		done:    make(chan struct{}),
	}
}

// Start begins rendering. No-op in silent mode.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || p.config.Mode == ProgressSilent {
		return
	}
	p.running = true
	p.startTime = time.Now()
	go p.renderLoop()
}

// Stop halts rendering and prints the final state.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.done)
	p.running = false

	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	switch p.config.Mode {
	case ProgressInteractive:
		fmt.Fprint(p.config.Writer, "\r\033[2K")
		fmt.Fprintln(p.config.Writer, p.statusLine(""))
	case ProgressStreaming:
		fmt.Fprintln(p.config.Writer, p.plainLine())
	}
}

// Increment records one finished page. Outcome is "found" when the page
// has auth components, "none" when it is clean, "error" when the fetch
// failed.
func (p *Progress) Increment(outcome string) {
	atomic.AddInt64(&p.current, 1)
	switch outcome {
	case "found":
		atomic.AddInt64(&p.found, 1)
	case "none":
		atomic.AddInt64(&p.none, 1)
	case "error":
		atomic.AddInt64(&p.errored, 1)
	}
}

// Stats returns the current outcome counters.
func (p *Progress) Stats() (found, none, errored int64) {
	return atomic.LoadInt64(&p.found),
		atomic.LoadInt64(&p.none),
		atomic.LoadInt64(&p.errored)
}

func (p *Progress) renderLoop() {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-ticker.C:
			p.renderMu.Lock()
			switch p.config.Mode {
			case ProgressInteractive:
				frame = (frame + 1) % len(p.spinner.Frames)
				fmt.Fprint(p.config.Writer, "\r\033[2K")
				fmt.Fprint(p.config.Writer, p.statusLine(p.spinner.Frames[frame]))
			case ProgressStreaming:
				fmt.Fprintln(p.config.Writer, p.plainLine())
			}
			p.renderMu.Unlock()
		case <-p.done:
			return
		}
	}
}

// statusLine builds the colorized single-line display.
// [spinner] [elapsed] [percent] Pages: n/total | Auth: n | Clean: n | Errors: n | ETA: mm:ss
func (p *Progress) statusLine(spinner string) string {
	current, percent, eta := p.snapshot()
	found, none, errored := p.Stats()

	prefix := ""
	if spinner != "" {
		prefix = SpinnerStyle.Render(spinner) + " "
	}
	return fmt.Sprintf("%s[%s] [%s] Pages: %s/%d %s Auth: %s %s Clean: %s %s Errors: %s %s ETA: %s",
		prefix,
		StatValueStyle.Render(formatDuration(time.Since(p.startTime))),
		StatValueStyle.Render(fmt.Sprintf("%5.1f%%", percent)),
		StatValueStyle.Render(fmt.Sprintf("%d", current)),
		p.config.Total,
		BracketStyle.Render("|"),
		FoundStyle.Render(fmt.Sprintf("%d", found)),
		BracketStyle.Render("|"),
		NoneStyle.Render(fmt.Sprintf("%d", none)),
		BracketStyle.Render("|"),
		ErrorStyle.Render(fmt.Sprintf("%d", errored)),
		BracketStyle.Render("|"),
		StatLabelStyle.Render(formatDuration(eta)),
	)
}

// plainLine builds the unstyled streaming display. No ANSI codes: this
// output lands in CI logs and redirected files.
func (p *Progress) plainLine() string {
	current, percent, eta := p.snapshot()
	found, none, errored := p.Stats()
	return fmt.Sprintf("progress: %d/%d pages (%.1f%%) | auth: %d | clean: %d | errors: %d | elapsed: %s | eta: %s",
		current, p.config.Total, percent,
		found, none, errored,
		formatDuration(time.Since(p.startTime)),
		formatDuration(eta),
	)
}

func (p *Progress) snapshot() (current int64, percent float64, eta time.Duration) {
	current = atomic.LoadInt64(&p.current)
	total := int64(p.config.Total)

	percent = float64(current) / float64(total) * 100
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		percent = 0
	}

	rate := float64(current) / time.Since(p.startTime).Seconds()
	if current > 0 && current < total && rate > 0 && !math.IsInf(rate, 0) {
		remaining := total - current
		eta = time.Duration(float64(remaining) / rate * float64(time.Second))
	}
	return current, percent, eta
}

// formatDuration formats a duration as MM:SS or HH:MM:SS
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
